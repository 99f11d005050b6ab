package packager

import (
	"path"

	"platebundle/internal/regions"
)

// Bundle name prefixes. Region and state codes overlap (NC, SC, NE), so the
// prefixes keep their artifacts apart.
const (
	RegionPlatesPrefix = "PLATES"
	StatePlatesPrefix  = "STATE"
	SupplementsPrefix  = "CS"
)

// Kinds label bundle families.
const (
	KindPlates      = "plates"
	KindSupplements = "supplements"
)

// Spec selects the members of one bundle by glob patterns relative to the
// package root. Patterns are applied in order and duplicates are dropped.
type Spec struct {
	Name     string
	Kind     string
	Patterns []string
}

// StatePattern selects every plate of area below platesDir.
func StatePattern(platesDir, area string) string {
	return path.Join(platesDir, "*", "*-"+area+"-*")
}

// PlateSpecs returns one bundle per region followed by one per state.
// platesDir is the plates directory relative to the package root.
func PlateSpecs(platesDir string) []Spec {
	var specs []Spec
	for _, region := range regions.Codes() {
		var patterns []string
		for _, area := range regions.Areas(region) {
			patterns = append(patterns, StatePattern(platesDir, area))
		}
		specs = append(specs, Spec{Name: RegionPlatesPrefix + "_" + region, Kind: KindPlates, Patterns: patterns})
	}
	for _, area := range regions.AllAreas() {
		specs = append(specs, Spec{
			Name:     StatePlatesPrefix + "_" + area,
			Kind:     KindPlates,
			Patterns: []string{StatePattern(platesDir, area)},
		})
	}
	return specs
}

// SupplementSpecs returns one chart supplement bundle per region.
// supplementsDir is relative to the package root.
func SupplementSpecs(supplementsDir string) []Spec {
	codes := regions.Codes()
	specs := make([]Spec, 0, len(codes))
	for _, region := range codes {
		specs = append(specs, Spec{
			Name:     SupplementsPrefix + "_" + region,
			Kind:     KindSupplements,
			Patterns: []string{path.Join(supplementsDir, "*", "CS-"+region+"_*")},
		})
	}
	return specs
}
