package transcode

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tags maps an airport id to the comment embedded in its airport diagram.
type Tags map[string]string

// LoadTags reads a YAML mapping of airport id to comment. An empty path
// yields an empty set.
func LoadTags(path string) (Tags, error) {
	if strings.TrimSpace(path) == "" {
		return Tags{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read diagram tags: %w", err)
	}
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse diagram tags %s: %w", path, err)
	}
	tags := make(Tags, len(raw))
	for id, tag := range raw {
		tags[strings.ToUpper(strings.TrimSpace(id))] = tag
	}
	return tags, nil
}

// Lookup returns the tag for airport, or "" when none is defined.
func (t Tags) Lookup(airport string) string {
	if t == nil {
		return ""
	}
	return t[strings.ToUpper(airport)]
}
