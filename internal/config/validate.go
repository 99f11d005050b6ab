package config

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateConversion(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validatePublish(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.WorkDir == "" {
		return errors.New("paths.work_dir must be set")
	}
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	if filepath.Clean(c.Paths.PlatesDir) == filepath.Clean(c.Paths.SupplementsDir) {
		return errors.New("paths.plates_dir and paths.supplements_dir must differ")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.BatchSize <= 0 {
		return errors.New("pipeline.batch_size must be positive")
	}
	if c.Pipeline.ToolTimeout < 0 {
		return errors.New("pipeline.tool_timeout must be zero or positive")
	}
	if c.Pipeline.MinFreeGiB < 0 {
		return errors.New("pipeline.min_free_gib must be zero or positive")
	}
	return nil
}

func (c *Config) validateConversion() error {
	if c.Conversion.Density <= 0 {
		return errors.New("conversion.density must be positive")
	}
	if c.Conversion.Colors < 2 || c.Conversion.Colors > 256 {
		return errors.New("conversion.colors must be between 2 and 256")
	}
	if c.Conversion.Quality <= 0 || c.Conversion.Quality > 100 {
		return errors.New("conversion.quality must be between 1 and 100")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if strings.ContainsAny(c.Catalog.PlatesMetafile, `/\`) {
		return fmt.Errorf("catalog.plates_metafile must be a file name inside paths.work_dir, got %q", c.Catalog.PlatesMetafile)
	}
	if _, err := path.Match(c.Catalog.SupplementsGlob, ""); err != nil {
		return fmt.Errorf("catalog.supplements_glob: %w", err)
	}
	return nil
}

func (c *Config) validatePublish() error {
	if !c.Publish.Enabled {
		return nil
	}
	if c.Publish.Bucket == "" {
		return errors.New("publish.bucket is required when publish.enabled is true")
	}
	if (c.Publish.AccessKeyID == "") != (c.Publish.SecretAccessKey == "") {
		return errors.New("publish.access_key_id and publish.secret_access_key must be set together")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
