package deps

import "platebundle/internal/config"

// Requirements lists the chart tools named by cfg.
func Requirements(cfg *config.Config) []Requirement {
	tools := config.Default().Tools
	if cfg != nil {
		tools = cfg.Tools
	}
	return []Requirement{
		{Name: "ImageMagick", Command: tools.Mogrify, Description: "Rasterises chart PDFs to PNG"},
		{Name: "GDAL info", Command: tools.GDALInfo, Description: "Detects and reads geo-referenced charts"},
		{Name: "GDAL warp", Command: tools.GDALWarp, Description: "Reprojects geo-referenced charts"},
		{Name: "ExifTool", Command: tools.ExifTool, Description: "Embeds calibration and diagram comments"},
		{Name: "pdftotext", Command: tools.PDFToText, Description: "Locates airport pages in minimums documents"},
	}
}
