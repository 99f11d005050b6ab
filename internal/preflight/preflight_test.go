package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"platebundle/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	if r := CheckFreeSpace("vol", dir, 0); !r.Passed || !strings.Contains(r.Detail, "GiB free") {
		t.Fatalf("expected pass with zero minimum, got %+v", r)
	}
	if r := CheckFreeSpace("vol", dir, 1<<20); r.Passed {
		t.Fatalf("expected failure for a petabyte minimum, got %+v", r)
	}
	if r := CheckFreeSpace("vol", filepath.Join(dir, "missing"), 0); r.Passed {
		t.Fatal("expected failure for missing path")
	}
}

func TestCheckToolsReportsMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Tools.Mogrify = "clearly-not-present-mogrify"
	results := CheckTools(&cfg)
	if len(results) != 5 {
		t.Fatalf("expected 5 tool results, got %d", len(results))
	}
	if results[0].Passed {
		t.Fatalf("expected missing mogrify to fail, got %+v", results[0])
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_DirectoryChecks(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.WorkDir = t.TempDir()
	cfg.Paths.StateDir = t.TempDir()
	cfg.Paths.BundleDir = cfg.Paths.WorkDir
	cfg.Pipeline.MinFreeGiB = 0

	results := RunAll(&cfg)
	if len(results) != 8 {
		t.Fatalf("expected 8 results, got %d", len(results))
	}
	for _, r := range results[:3] {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
}

func TestFailed(t *testing.T) {
	failed := Failed([]Result{{Name: "a", Passed: true}, {Name: "b"}})
	if len(failed) != 1 || failed[0].Name != "b" {
		t.Fatalf("unexpected failures %+v", failed)
	}
}
