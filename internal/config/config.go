package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkDir        string `toml:"work_dir"`
	PlatesDir      string `toml:"plates_dir"`
	SupplementsDir string `toml:"supplements_dir"`
	BundleDir      string `toml:"bundle_dir"`
	StateDir       string `toml:"state_dir"`
}

// Cycle selects which publication cycle a run targets.
type Cycle struct {
	// Offset is counted in 28-day periods from now.
	Offset int `toml:"offset"`
}

// Pipeline contains worker and tool execution limits.
type Pipeline struct {
	BatchSize   int `toml:"batch_size"`
	ToolTimeout int `toml:"tool_timeout"`
	MinFreeGiB  int `toml:"min_free_gib"`
}

// Tools names the external binaries.
type Tools struct {
	Mogrify   string `toml:"mogrify"`
	GDALInfo  string `toml:"gdalinfo"`
	GDALWarp  string `toml:"gdalwarp"`
	ExifTool  string `toml:"exiftool"`
	PDFToText string `toml:"pdftotext"`
}

// Conversion holds the rasterisation and reprojection template.
type Conversion struct {
	Density    int    `toml:"density"`
	Colors     int    `toml:"colors"`
	Quality    int    `toml:"quality"`
	TargetSRS  string `toml:"target_srs"`
	Resampling string `toml:"resampling"`
}

// Catalog locates the publisher metadata inside the work directory.
type Catalog struct {
	PlatesMetafile  string `toml:"plates_metafile"`
	SupplementsGlob string `toml:"supplements_glob"`
	DiagramTags     string `toml:"diagram_tags"`
}

// Publish configures optional bundle upload to S3-compatible storage.
type Publish struct {
	Enabled         bool   `toml:"enabled"`
	Bucket          string `toml:"bucket"`
	Prefix          string `toml:"prefix"`
	Region          string `toml:"region"`
	Endpoint        string `toml:"endpoint"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
}

// Metrics configures the Prometheus textfile output.
type Metrics struct {
	Textfile string `toml:"textfile"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for platebundle.
type Config struct {
	Paths      Paths      `toml:"paths"`
	Cycle      Cycle      `toml:"cycle"`
	Pipeline   Pipeline   `toml:"pipeline"`
	Tools      Tools      `toml:"tools"`
	Conversion Conversion `toml:"conversion"`
	Catalog    Catalog    `toml:"catalog"`
	Publish    Publish    `toml:"publish"`
	Metrics    Metrics    `toml:"metrics"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("platebundle.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output and state directories. The work
// directory must already hold the downloaded sources, so it is not created.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.PlatesDir, c.Paths.SupplementsDir, c.Paths.BundleDir, c.Paths.StateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ToolTimeout bounds each external tool invocation. Zero means unbounded.
func (c *Config) ToolTimeout() time.Duration {
	return time.Duration(c.Pipeline.ToolTimeout) * time.Second
}

// LockPath is the file guarding against concurrent runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "platebundle.lock")
}

// LogPath is the persistent log file written alongside console output.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.StateDir, "platebundle.log")
}

// LedgerPath is the sqlite run ledger.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.Paths.StateDir, "ledger.db")
}

// PlatesMetafilePath is the absolute path of the plates catalog.
func (c *Config) PlatesMetafilePath() string {
	return filepath.Join(c.Paths.WorkDir, c.Catalog.PlatesMetafile)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// Sample returns the embedded sample configuration.
func Sample() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
