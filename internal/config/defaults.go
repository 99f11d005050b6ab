package config

const (
	defaultConfigPath      = "~/.config/platebundle/config.toml"
	defaultWorkDir         = "~/.local/share/platebundle/work"
	defaultStateDir        = "~/.local/share/platebundle/state"
	defaultPlatesSubdir    = "plates"
	defaultSupplementsDir  = "afd"
	defaultBatchSize       = 8
	defaultToolTimeout     = 0
	defaultMinFreeGiB      = 2
	defaultDensity         = 225
	defaultColors          = 15
	defaultQuality         = 100
	defaultTargetSRS       = "EPSG:3857"
	defaultResampling      = "lanczos"
	defaultPlatesMetafile  = "d-TPP_Metafile.xml"
	defaultSupplementsGlob = "afd_*.xml"
	defaultPublishRegion   = "us-east-1"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults. Output
// directories left empty are placed under the work directory by normalize.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:  defaultWorkDir,
			StateDir: defaultStateDir,
		},
		Pipeline: Pipeline{
			BatchSize:   defaultBatchSize,
			ToolTimeout: defaultToolTimeout,
			MinFreeGiB:  defaultMinFreeGiB,
		},
		Tools: Tools{
			Mogrify:   "mogrify",
			GDALInfo:  "gdalinfo",
			GDALWarp:  "gdalwarp",
			ExifTool:  "exiftool",
			PDFToText: "pdftotext",
		},
		Conversion: Conversion{
			Density:    defaultDensity,
			Colors:     defaultColors,
			Quality:    defaultQuality,
			TargetSRS:  defaultTargetSRS,
			Resampling: defaultResampling,
		},
		Catalog: Catalog{
			PlatesMetafile:  defaultPlatesMetafile,
			SupplementsGlob: defaultSupplementsGlob,
		},
		Publish: Publish{
			Region: defaultPublishRegion,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
