package transcode

import (
	"regexp"
	"strings"
)

// Strategy names the conversion path applied to a document.
type Strategy string

const (
	StrategyPlain      Strategy = "plain"
	StrategyDiagram    Strategy = "diagram"
	StrategyMinimums   Strategy = "minimums"
	StrategyGeo        Strategy = "geo"
	StrategySupplement Strategy = "supplement"
)

// Output name prefixes that select a conversion path.
const (
	DiagramPrefix  = "APD-"
	MinimumsPrefix = "MIN-"
)

// Classify picks the non geo-referenced strategy for an output base name.
func Classify(baseName string) Strategy {
	switch {
	case strings.HasPrefix(baseName, DiagramPrefix):
		return StrategyDiagram
	case strings.HasPrefix(baseName, MinimumsPrefix):
		return StrategyMinimums
	default:
		return StrategyPlain
	}
}

// MatchingPages returns the 0-based indexes of pages mentioning airport either
// bare or with the K prefix, as a whole word.
func MatchingPages(pages []string, airport string) []int {
	if airport == "" {
		return nil
	}
	pattern := regexp.MustCompile(`\bK?` + regexp.QuoteMeta(airport) + `\b`)
	var matched []int
	for i, page := range pages {
		if pattern.MatchString(page) {
			matched = append(matched, i)
		}
	}
	return matched
}

// supplementBase derives CS-<TOKEN0> from a supplement file name, where
// TOKEN0 is the text before the first underscore.
func supplementBase(source string) string {
	token, _, _ := strings.Cut(strings.ToUpper(source), "_")
	return "CS-" + token
}
