package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"testing"
)

const warpedReport = `Driver: GTiff/GeoTIFF
Files: SFO_IAP.tif
Size is 2000, 1500
Coordinate System is:
PROJCRS["WGS 84 / Pseudo-Mercator",
    BASEGEOGCRS["WGS 84"]]
Origin = (-13650000.000000000000000,4570000.000000000000000)
Pixel Size = (20.000000000000000,-20.000000000000000)
Corner Coordinates:
Upper Left  (-13650000.000, 4570000.000) (122d37'12.00"W, 37d52'30.00"N)
Lower Left  (-13650000.000, 4540000.000) (122d37'12.00"W, 37d39'45.00"N)
Upper Right (-13610000.000, 4570000.000) (122d15'36.00"W, 37d52'30.00"N)
Lower Right (-13610000.000, 4540000.000) (122d15'36.00"W, 37d39'45.00"N)
Center      (-13630000.000, 4555000.000) (122d26'24.00"W, 37d46'07.50"N)
Band 1 Block=2000x1 Type=Byte, ColorInterp=Red
`

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestParseDMS(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{`40d30'0.00"N`, 40.5},
		{`40d30'0.00"S`, -40.5},
		{`122d25'10.22"W`, -(122 + 25.0/60 + 10.22/3600)},
		{`0d0'36.00"E`, 0.01},
		{` 7d 6' 0.0"N `, 7.1},
	}
	for _, tt := range tests {
		got, err := ParseDMS(tt.in)
		if err != nil {
			t.Fatalf("ParseDMS(%q) returned error: %v", tt.in, err)
		}
		if !nearlyEqual(got, tt.want) {
			t.Fatalf("ParseDMS(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseDMSRoundTrip(t *testing.T) {
	for _, decimal := range []float64{0.25, 12.3456, 45.999, 89.5, 179.0125} {
		deg := math.Floor(decimal)
		rem := (decimal - deg) * 60
		minutes := math.Floor(rem)
		seconds := (rem - minutes) * 60
		for _, hemi := range []string{"N", "E", "S", "W"} {
			text := formatDMS(deg, minutes, seconds, hemi)
			got, err := ParseDMS(text)
			if err != nil {
				t.Fatalf("ParseDMS(%q) returned error: %v", text, err)
			}
			want := decimal
			if hemi == "S" || hemi == "W" {
				want = -decimal
			}
			if math.Abs(got-want) > 1e-6 {
				t.Fatalf("ParseDMS(%q) = %v, want %v", text, got, want)
			}
		}
	}
}

func formatDMS(deg, minutes, seconds float64, hemi string) string {
	return fmt.Sprintf(`%.0fd%.0f'%.6f"%s`, deg, minutes, seconds, hemi)
}

func TestParseDMSRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "40.5", `40d30'N`, `40d30'0.00"X`} {
		if _, err := ParseDMS(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestParseInfo(t *testing.T) {
	raster, err := ParseInfo(warpedReport)
	if err != nil {
		t.Fatalf("ParseInfo returned error: %v", err)
	}
	if raster.Width != 2000 || raster.Height != 1500 {
		t.Fatalf("unexpected size %dx%d", raster.Width, raster.Height)
	}
	if !nearlyEqual(raster.UpperLeft.Lon, -122.62) || !nearlyEqual(raster.UpperLeft.Lat, 37.875) {
		t.Fatalf("unexpected upper left %+v", raster.UpperLeft)
	}
	if !nearlyEqual(raster.LowerRight.Lon, -122.26) || !nearlyEqual(raster.LowerRight.Lat, 37.6625) {
		t.Fatalf("unexpected lower right %+v", raster.LowerRight)
	}
}

func TestCalibrateReport(t *testing.T) {
	cal, err := CalibrateReport(warpedReport)
	if err != nil {
		t.Fatalf("CalibrateReport returned error: %v", err)
	}
	if math.Abs(cal.XScale-2000/0.36) > 1e-6 {
		t.Fatalf("unexpected x scale %v", cal.XScale)
	}
	if math.Abs(cal.YScale-1500/-0.2125) > 1e-6 {
		t.Fatalf("unexpected y scale %v", cal.YScale)
	}
	parts := strings.Split(cal.Comment(), "|")
	if len(parts) != 4 {
		t.Fatalf("unexpected comment %q", cal.Comment())
	}
	lon, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || !nearlyEqual(lon, -122.62) {
		t.Fatalf("unexpected longitude in comment %q", cal.Comment())
	}
	lat, err := strconv.ParseFloat(parts[3], 64)
	if err != nil || !nearlyEqual(lat, 37.875) {
		t.Fatalf("unexpected latitude in comment %q", cal.Comment())
	}
}

func TestParseInfoMissingFields(t *testing.T) {
	if _, err := ParseInfo("Driver: GTiff/GeoTIFF\nSize is 10, 10\n"); err == nil {
		t.Fatal("expected error for report without corners")
	}
	if _, err := ParseInfo("Upper Left  (0, 0) (bogus, 1d0'0\"N)\n"); err == nil {
		t.Fatal("expected error for malformed corner")
	}
}

func TestCalibrateRejectsDegenerateExtent(t *testing.T) {
	r := Raster{Width: 10, Height: 10}
	if _, err := r.Calibrate(); err == nil {
		t.Fatal("expected error for zero extent")
	}
}
