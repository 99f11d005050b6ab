package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeCatalog()
	c.normalizePublish()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("PLATEBUNDLE_WORK_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.WorkDir = strings.TrimSpace(value)
	}
	var err error
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.PlatesDir) == "" {
		c.Paths.PlatesDir = filepath.Join(c.Paths.WorkDir, defaultPlatesSubdir)
	}
	if c.Paths.PlatesDir, err = expandPath(c.Paths.PlatesDir); err != nil {
		return fmt.Errorf("paths.plates_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SupplementsDir) == "" {
		c.Paths.SupplementsDir = filepath.Join(c.Paths.WorkDir, defaultSupplementsDir)
	}
	if c.Paths.SupplementsDir, err = expandPath(c.Paths.SupplementsDir); err != nil {
		return fmt.Errorf("paths.supplements_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.BundleDir) == "" {
		c.Paths.BundleDir = c.Paths.WorkDir
	}
	if c.Paths.BundleDir, err = expandPath(c.Paths.BundleDir); err != nil {
		return fmt.Errorf("paths.bundle_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Metrics.Textfile != "" {
		if c.Metrics.Textfile, err = expandPath(c.Metrics.Textfile); err != nil {
			return fmt.Errorf("metrics.textfile: %w", err)
		}
	}
	if c.Catalog.DiagramTags != "" {
		if c.Catalog.DiagramTags, err = expandPath(c.Catalog.DiagramTags); err != nil {
			return fmt.Errorf("catalog.diagram_tags: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeTools() {
	defaults := Default().Tools
	fill := func(value *string, fallback string) {
		*value = strings.TrimSpace(*value)
		if *value == "" {
			*value = fallback
		}
	}
	fill(&c.Tools.Mogrify, defaults.Mogrify)
	fill(&c.Tools.GDALInfo, defaults.GDALInfo)
	fill(&c.Tools.GDALWarp, defaults.GDALWarp)
	fill(&c.Tools.ExifTool, defaults.ExifTool)
	fill(&c.Tools.PDFToText, defaults.PDFToText)
	c.Conversion.TargetSRS = strings.TrimSpace(c.Conversion.TargetSRS)
	if c.Conversion.TargetSRS == "" {
		c.Conversion.TargetSRS = defaultTargetSRS
	}
	c.Conversion.Resampling = strings.ToLower(strings.TrimSpace(c.Conversion.Resampling))
	if c.Conversion.Resampling == "" {
		c.Conversion.Resampling = defaultResampling
	}
}

func (c *Config) normalizeCatalog() {
	c.Catalog.PlatesMetafile = strings.TrimSpace(c.Catalog.PlatesMetafile)
	if c.Catalog.PlatesMetafile == "" {
		c.Catalog.PlatesMetafile = defaultPlatesMetafile
	}
	c.Catalog.SupplementsGlob = strings.TrimSpace(c.Catalog.SupplementsGlob)
	if c.Catalog.SupplementsGlob == "" {
		c.Catalog.SupplementsGlob = defaultSupplementsGlob
	}
}

func (c *Config) normalizePublish() {
	if c.Publish.AccessKeyID == "" {
		if value, ok := os.LookupEnv("AWS_ACCESS_KEY_ID"); ok {
			c.Publish.AccessKeyID = value
		}
	}
	if c.Publish.SecretAccessKey == "" {
		if value, ok := os.LookupEnv("AWS_SECRET_ACCESS_KEY"); ok {
			c.Publish.SecretAccessKey = value
		}
	}
	c.Publish.Bucket = strings.TrimSpace(c.Publish.Bucket)
	c.Publish.Prefix = strings.Trim(strings.TrimSpace(c.Publish.Prefix), "/")
	c.Publish.Endpoint = strings.TrimSpace(c.Publish.Endpoint)
	if strings.TrimSpace(c.Publish.Region) == "" {
		c.Publish.Region = defaultPublishRegion
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
