package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"platebundle/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The work and state directories exist; output directories are left for the
// code under test to create.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.PlatesDir = filepath.Join(cfgVal.Paths.WorkDir, "plates")
	cfgVal.Paths.SupplementsDir = filepath.Join(cfgVal.Paths.WorkDir, "afd")
	cfgVal.Paths.BundleDir = filepath.Join(base, "bundles")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Pipeline.MinFreeGiB = 0
	for _, dir := range []string{cfgVal.Paths.WorkDir, cfgVal.Paths.StateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithCycleOffset overrides the cycle offset on the test config.
func WithCycleOffset(offset int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cycle.Offset = offset
	}
}

// WithWorkDirName relocates the work directory, and the output directories
// under it, to name inside the test root.
func WithWorkDirName(name string) ConfigOption {
	return func(b *configBuilder) {
		work := filepath.Join(b.baseDir, name)
		if err := os.MkdirAll(work, 0o755); err != nil {
			b.t.Fatalf("mkdir %s: %v", work, err)
		}
		b.cfg.Paths.WorkDir = work
		b.cfg.Paths.PlatesDir = filepath.Join(work, "plates")
		b.cfg.Paths.SupplementsDir = filepath.Join(work, "afd")
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the configured chart tools are
// stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			tools := b.cfg.Tools
			names = []string{tools.Mogrify, tools.GDALInfo, tools.GDALWarp, tools.ExifTool, tools.PDFToText}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
