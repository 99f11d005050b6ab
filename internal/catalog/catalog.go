package catalog

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// deletedAction marks a record withdrawn in a change cycle.
const deletedAction = "D"

// Catalog is the parsed terminal procedures metafile.
type Catalog struct {
	// Cycle is the publisher's own cycle attribute, kept for cross-checking.
	Cycle    string
	Airports []Airport
}

// Airport is one airport entry together with its chart documents.
type Airport struct {
	ID        string
	ICAO      string
	Name      string
	City      string
	State     string
	Military  bool
	Documents []ChartDocument
}

// ChartDocument references a single source file and the names derived from it.
type ChartDocument struct {
	AirportID string
	ICAO      string
	Code      string
	Name      string
	Area      string
	Source    string
	BaseName  string
}

// OutputBaseName joins code, area and name into the file stem used for
// converted plates. Path separators are not legal in a file name and become
// underscores.
func OutputBaseName(code, area, name string) string {
	return code + "-" + area + "-" + strings.ReplaceAll(name, "/", "_")
}

type metafile struct {
	XMLName xml.Name    `xml:"digital_tpp"`
	Cycle   string      `xml:"cycle,attr"`
	States  []stateNode `xml:"state_code"`
}

type stateNode struct {
	ID     string     `xml:"ID,attr"`
	Cities []cityNode `xml:"city_name"`
}

type cityNode struct {
	ID       string        `xml:"ID,attr"`
	Airports []airportNode `xml:"airport_name"`
}

type airportNode struct {
	ID       string       `xml:"ID,attr"`
	Military string       `xml:"military,attr"`
	Ident    string       `xml:"apt_ident,attr"`
	ICAO     string       `xml:"icao_ident,attr"`
	Records  []recordNode `xml:"record"`
}

type recordNode struct {
	Code       string `xml:"chart_code"`
	Name       string `xml:"chart_name"`
	UserAction string `xml:"useraction"`
	PDF        string `xml:"pdf_name"`
}

// ParseFile opens and parses a terminal procedures metafile.
func ParseFile(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer file.Close()
	return Parse(file)
}

// Parse decodes a terminal procedures metafile.
func Parse(r io.Reader) (*Catalog, error) {
	var doc metafile
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	upper := newUpper()
	catalog := &Catalog{Cycle: upper(doc.Cycle)}
	for _, state := range doc.States {
		area := upper(state.ID)
		for _, city := range state.Cities {
			cityName := upper(city.ID)
			for _, node := range city.Airports {
				ident := upper(node.Ident)
				if ident == "" {
					continue
				}
				airport := Airport{
					ID:       ident,
					ICAO:     upper(node.ICAO),
					Name:     upper(node.ID),
					City:     cityName,
					State:    area,
					Military: upper(node.Military) == "Y",
				}
				for _, rec := range node.Records {
					source := upper(rec.PDF)
					if source == "" || upper(rec.UserAction) == deletedAction {
						continue
					}
					code := upper(rec.Code)
					name := upper(rec.Name)
					airport.Documents = append(airport.Documents, ChartDocument{
						AirportID: ident,
						ICAO:      airport.ICAO,
						Code:      code,
						Name:      name,
						Area:      area,
						Source:    source,
						BaseName:  OutputBaseName(code, area, name),
					})
				}
				catalog.Airports = append(catalog.Airports, airport)
			}
		}
	}
	return catalog, nil
}

// States returns the area codes present in the catalog in document order.
func (c *Catalog) States() []string {
	seen := make(map[string]struct{})
	var states []string
	for _, airport := range c.Airports {
		if _, ok := seen[airport.State]; ok {
			continue
		}
		seen[airport.State] = struct{}{}
		states = append(states, airport.State)
	}
	return states
}

// AirportsIn returns the airports located in state.
func (c *Catalog) AirportsIn(state string) []Airport {
	var out []Airport
	for _, airport := range c.Airports {
		if airport.State == state {
			out = append(out, airport)
		}
	}
	return out
}

// Airport looks up an airport by identifier.
func (c *Catalog) Airport(id string) (Airport, bool) {
	for _, airport := range c.Airports {
		if airport.ID == id {
			return airport, true
		}
	}
	return Airport{}, false
}

// DocumentCount returns the number of chart documents across all airports.
func (c *Catalog) DocumentCount() int {
	total := 0
	for _, airport := range c.Airports {
		total += len(airport.Documents)
	}
	return total
}

func newUpper() func(string) string {
	caser := cases.Upper(language.Und)
	return func(value string) string {
		return caser.String(strings.TrimSpace(value))
	}
}
