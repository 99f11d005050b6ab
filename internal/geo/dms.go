package geo

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var dmsPattern = regexp.MustCompile(`^(\d+)d\s*(\d+)'\s*(\d+(?:\.\d+)?)"\s*([NSEW])$`)

// ParseDMS converts a coordinate such as 122d25'10.22"W to decimal degrees.
// West and South hemispheres are negative.
func ParseDMS(s string) (float64, error) {
	m := dmsPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("invalid dms coordinate %q", s)
	}
	deg, _ := strconv.ParseFloat(m[1], 64)
	minutes, _ := strconv.ParseFloat(m[2], 64)
	seconds, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid dms seconds %q: %w", m[3], err)
	}
	value := deg + minutes/60 + seconds/3600
	if m[4] == "W" || m[4] == "S" {
		value = -value
	}
	return value, nil
}
