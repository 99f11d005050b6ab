// Package regions holds the static partition of state and territory codes into
// the distribution regions used for regional bundles.
package regions

import "slices"

// table lists each region with its areas in publication order.
var table = []struct {
	code  string
	areas []string
}{
	{"AK", []string{"AK"}},
	{"PAC", []string{"HI", "XX"}},
	{"NW", []string{"WA", "MT", "WY", "ID", "OR"}},
	{"SW", []string{"CA", "NV", "UT", "CO", "NM", "AZ"}},
	{"NC", []string{"ND", "MN", "IA", "MO", "KS", "NE", "SD"}},
	{"EC", []string{"WI", "MI", "OH", "IN", "IL"}},
	{"SC", []string{"OK", "AR", "MS", "LA", "TX"}},
	{"NE", []string{"NY", "ME", "VT", "NH", "MA", "RI", "CT", "NJ", "DE", "MD", "DC", "VA", "WV", "PA"}},
	{"SE", []string{"KY", "NC", "SC", "GA", "FL", "AL", "TN", "PR", "VI"}},
}

var areaRegion = func() map[string]string {
	index := make(map[string]string)
	for _, region := range table {
		for _, area := range region.areas {
			index[area] = region.code
		}
	}
	return index
}()

// Codes returns the region codes in table order.
func Codes() []string {
	codes := make([]string, 0, len(table))
	for _, region := range table {
		codes = append(codes, region.code)
	}
	return codes
}

// Areas returns the area codes belonging to region, or nil for an unknown region.
func Areas(region string) []string {
	for _, r := range table {
		if r.code == region {
			return slices.Clone(r.areas)
		}
	}
	return nil
}

// AllAreas returns every area code, grouped by region in table order.
func AllAreas() []string {
	var areas []string
	for _, region := range table {
		areas = append(areas, region.areas...)
	}
	return areas
}

// RegionOf returns the region owning area.
func RegionOf(area string) (string, bool) {
	region, ok := areaRegion[area]
	return region, ok
}
