package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"platebundle/internal/config"
)

func TestLoadDefaultsExpandPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("PLATEBUNDLE_WORK_DIR", "")
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved != filepath.Join(tempHome, ".config", "platebundle", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}

	wantWork := filepath.Join(tempHome, ".local", "share", "platebundle", "work")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, wantWork)
	}
	if cfg.Paths.PlatesDir != filepath.Join(wantWork, "plates") {
		t.Fatalf("unexpected plates dir: %q", cfg.Paths.PlatesDir)
	}
	if cfg.Paths.SupplementsDir != filepath.Join(wantWork, "afd") {
		t.Fatalf("unexpected supplements dir: %q", cfg.Paths.SupplementsDir)
	}
	if cfg.Paths.BundleDir != wantWork {
		t.Fatalf("expected bundles in work dir, got %q", cfg.Paths.BundleDir)
	}
	if cfg.Pipeline.BatchSize != 8 {
		t.Fatalf("unexpected batch size %d", cfg.Pipeline.BatchSize)
	}
	if cfg.Publish.Enabled {
		t.Fatal("expected publishing disabled by default")
	}
	if cfg.Pipeline.ToolTimeout != 0 || cfg.ToolTimeout() != 0 {
		t.Fatalf("expected tools unbounded by default, got %d", cfg.Pipeline.ToolTimeout)
	}
	if cfg.LockPath() != filepath.Join(cfg.Paths.StateDir, "platebundle.lock") {
		t.Fatalf("unexpected lock path %q", cfg.LockPath())
	}
}

func TestLoadReadsFileAndEnvOverrides(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	work := filepath.Join(t.TempDir(), "work")
	t.Setenv("PLATEBUNDLE_WORK_DIR", work)
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIA")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[cycle]
offset = 1

[pipeline]
batch_size = 4

[publish]
enabled = true
bucket = "charts"
prefix = "/bundles/"

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected explicit config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.WorkDir != work {
		t.Fatalf("expected env work dir, got %q", cfg.Paths.WorkDir)
	}
	if cfg.Cycle.Offset != 1 || cfg.Pipeline.BatchSize != 4 {
		t.Fatalf("unexpected cycle/pipeline %+v %+v", cfg.Cycle, cfg.Pipeline)
	}
	if cfg.Publish.AccessKeyID != "AKIA" || cfg.Publish.SecretAccessKey != "secret" {
		t.Fatalf("expected credentials from env, got %+v", cfg.Publish)
	}
	if cfg.Publish.Prefix != "bundles" {
		t.Fatalf("expected trimmed prefix, got %q", cfg.Publish.Prefix)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected lowercased logging settings, got %+v", cfg.Logging)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[paths]\nlibrary_dir = \"/x\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"batch size", func(c *config.Config) { c.Pipeline.BatchSize = 0 }, "pipeline.batch_size"},
		{"colors", func(c *config.Config) { c.Conversion.Colors = 1 }, "conversion.colors"},
		{"quality", func(c *config.Config) { c.Conversion.Quality = 101 }, "conversion.quality"},
		{"metafile", func(c *config.Config) { c.Catalog.PlatesMetafile = "sub/meta.xml" }, "catalog.plates_metafile"},
		{"bucket", func(c *config.Config) { c.Publish.Enabled = true }, "publish.bucket"},
		{"credentials", func(c *config.Config) {
			c.Publish.Enabled = true
			c.Publish.Bucket = "b"
			c.Publish.AccessKeyID = "only-id"
		}, "secret_access_key"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"same dirs", func(c *config.Config) { c.Paths.SupplementsDir = c.Paths.PlatesDir }, "must differ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Paths.PlatesDir = "/work/plates"
			cfg.Paths.SupplementsDir = "/work/afd"
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestSampleConfigDecodes(t *testing.T) {
	var cfg config.Config
	decoder := toml.NewDecoder(strings.NewReader(config.Sample()))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		t.Fatalf("sample config does not decode: %v", err)
	}
	if cfg.Pipeline.BatchSize != 8 || cfg.Pipeline.ToolTimeout != 0 || cfg.Conversion.Density != 225 {
		t.Fatalf("unexpected sample values %+v %+v", cfg.Pipeline, cfg.Conversion)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if string(data) != config.Sample() {
		t.Fatal("written sample differs from embedded sample")
	}
}
