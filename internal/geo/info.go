package geo

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	sizePrefix       = "Size is"
	upperLeftPrefix  = "Upper Left"
	lowerRightPrefix = "Lower Right"
)

// Point is a longitude/latitude pair in decimal degrees.
type Point struct {
	Lon float64
	Lat float64
}

// Raster is the subset of a gdalinfo report needed for calibration.
type Raster struct {
	Width      int
	Height     int
	UpperLeft  Point
	LowerRight Point
}

// Calibration maps pixels to degrees with a linear scale per axis anchored at
// the upper left corner.
type Calibration struct {
	XScale float64
	YScale float64
	Lon    float64
	Lat    float64
}

// ParseInfo extracts the raster size and corner coordinates from a gdalinfo
// report.
func ParseInfo(report string) (Raster, error) {
	var raster Raster
	var haveSize, haveUL, haveLR bool
	scanner := bufio.NewScanner(strings.NewReader(report))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		var err error
		switch {
		case strings.HasPrefix(line, sizePrefix):
			raster.Width, raster.Height, err = parseSize(strings.TrimPrefix(line, sizePrefix))
			haveSize = err == nil
		case strings.HasPrefix(line, upperLeftPrefix):
			raster.UpperLeft, err = parseCorner(line)
			haveUL = err == nil
		case strings.HasPrefix(line, lowerRightPrefix):
			raster.LowerRight, err = parseCorner(line)
			haveLR = err == nil
		}
		if err != nil {
			return Raster{}, err
		}
	}
	if err := scanner.Err(); err != nil {
		return Raster{}, fmt.Errorf("scan gdalinfo report: %w", err)
	}
	if !haveSize || !haveUL || !haveLR {
		return Raster{}, errors.New("gdalinfo report missing size or corner coordinates")
	}
	return raster, nil
}

// Calibrate computes pixels per degree for each axis. The latitude scale is
// negative because image rows grow southward.
func (r Raster) Calibrate() (Calibration, error) {
	dLon := r.LowerRight.Lon - r.UpperLeft.Lon
	dLat := r.LowerRight.Lat - r.UpperLeft.Lat
	if dLon == 0 || dLat == 0 {
		return Calibration{}, errors.New("degenerate raster extent")
	}
	return Calibration{
		XScale: float64(r.Width) / dLon,
		YScale: float64(r.Height) / dLat,
		Lon:    r.UpperLeft.Lon,
		Lat:    r.UpperLeft.Lat,
	}, nil
}

// Comment renders the calibration as x-scale|y-scale|lon|lat.
func (c Calibration) Comment() string {
	parts := []float64{c.XScale, c.YScale, c.Lon, c.Lat}
	out := make([]string, len(parts))
	for i, v := range parts {
		out[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(out, "|")
}

// CalibrateReport parses report and returns its calibration.
func CalibrateReport(report string) (Calibration, error) {
	raster, err := ParseInfo(report)
	if err != nil {
		return Calibration{}, err
	}
	return raster.Calibrate()
}

func parseSize(s string) (int, int, error) {
	w, h, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size line %q", s)
	}
	width, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid raster width %q: %w", w, err)
	}
	height, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid raster height %q: %w", h, err)
	}
	return width, height, nil
}

// parseCorner reads the last parenthesised group of a corner line.
func parseCorner(line string) (Point, error) {
	open := strings.LastIndex(line, "(")
	end := strings.LastIndex(line, ")")
	if open < 0 || end < open {
		return Point{}, fmt.Errorf("invalid corner line %q", line)
	}
	lonText, latText, ok := strings.Cut(line[open+1:end], ",")
	if !ok {
		return Point{}, fmt.Errorf("invalid corner line %q", line)
	}
	lon, err := ParseDMS(lonText)
	if err != nil {
		return Point{}, err
	}
	lat, err := ParseDMS(latText)
	if err != nil {
		return Point{}, err
	}
	return Point{Lon: lon, Lat: lat}, nil
}
