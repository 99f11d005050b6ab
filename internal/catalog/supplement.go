package catalog

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
)

// Supplement lists the chart supplement pages published for one airport.
type Supplement struct {
	AirportID string
	Sources   []string
}

type supplementNode struct {
	ID    string `xml:"aptid"`
	Pages struct {
		PDFs []string `xml:"pdf"`
	} `xml:"pages"`
}

// ParseSupplementsFile opens and parses a chart supplement index.
func ParseSupplementsFile(path string) ([]Supplement, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open supplement index: %w", err)
	}
	defer file.Close()
	return ParseSupplements(file)
}

// ParseSupplements decodes every airport element of a chart supplement index,
// regardless of how deeply it is nested.
func ParseSupplements(r io.Reader) ([]Supplement, error) {
	upper := newUpper()
	decoder := xml.NewDecoder(r)
	var out []Supplement
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode supplement index: %w", err)
		}
		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != "airport" {
			continue
		}
		var node supplementNode
		if err := decoder.DecodeElement(&node, &start); err != nil {
			return nil, fmt.Errorf("decode supplement airport: %w", err)
		}
		id := upper(node.ID)
		if id == "" {
			continue
		}
		entry := Supplement{AirportID: id}
		for _, pdf := range node.Pages.PDFs {
			if source := upper(pdf); source != "" {
				entry.Sources = append(entry.Sources, source)
			}
		}
		out = append(out, entry)
	}
}
