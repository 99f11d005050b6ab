// Package geo turns gdalinfo reports for reprojected charts into pixel
// calibrations.
//
// gdalinfo prints each corner as a projected pair followed by the same point
// in degrees, minutes and seconds:
//
//	Upper Left  (-13627361.185, 4548465.229) (122d25'10.22"W, 37d43'47.90"N)
//
// Only the DMS pair is read. The text format belongs to GDAL, so the parser is
// pinned by tests against captured output.
package geo
