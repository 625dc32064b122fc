package landmark

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed landmarks.yaml
var defaultData []byte

// Table maps normalized landmark names to a "City,CC" weather search term.
// It is immutable after construction and safe for concurrent use.
type Table struct {
	entries map[string]string
}

// NewTable loads the embedded landmark list.
func NewTable() (*Table, error) {
	return Parse(defaultData)
}

// Parse builds a table from YAML of the form `"landmark name": "City,CC"`.
func Parse(data []byte) (*Table, error) {
	raw := make(map[string]string)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse landmark table: %w", err)
	}
	entries := make(map[string]string, len(raw))
	for name, city := range raw {
		key := normalize(name)
		city = strings.TrimSpace(city)
		if key == "" || city == "" {
			return nil, fmt.Errorf("landmark table: empty entry %q", name)
		}
		entries[key] = city
	}
	return &Table{entries: entries}, nil
}

// Resolve returns the mapped city for a landmark query. Matching is exact after
// lowercasing and trimming surrounding whitespace.
func (t *Table) Resolve(query string) (string, bool) {
	if t == nil {
		return "", false
	}
	city, ok := t.entries[normalize(query)]
	return city, ok
}

// Len reports how many landmarks are known.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
