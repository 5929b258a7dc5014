package domain

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed taxonomy.json
var taxonomyJSON []byte

// Triple is the cat1/cat2/cat3 filter the list endpoints expect.
type Triple struct {
	Cat1 string `json:"cat1"`
	Cat2 string `json:"cat2"`
	Cat3 string `json:"cat3"`
}

// Table maps a semantic key (a season, a nature category, ...) to its triples.
// Key order is the order of the source document.
type Table struct {
	keys  []string
	byKey map[string][]Triple
}

// Resolve returns the triples for selector. An empty selector selects every
// key in table order; an unknown one selects nothing.
func (t Table) Resolve(selector string) []Triple {
	sel := strings.ToLower(strings.TrimSpace(selector))
	if sel == "" {
		var out []Triple
		for _, k := range t.keys {
			out = append(out, t.byKey[k]...)
		}
		return out
	}
	ts, ok := t.byKey[sel]
	if !ok {
		return nil
	}
	out := make([]Triple, len(ts))
	copy(out, ts)
	return out
}

func (t Table) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

type Taxonomy struct {
	Season  Table
	Nature  Table
	Culture Table
}

type tableDoc []struct {
	Key     string   `json:"key"`
	Triples []Triple `json:"triples"`
}

// ParseTaxonomy builds a Taxonomy from its JSON document.
func ParseTaxonomy(b []byte) (*Taxonomy, error) {
	var doc struct {
		Season  tableDoc `json:"season"`
		Nature  tableDoc `json:"nature"`
		Culture tableDoc `json:"culture"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse taxonomy: %w", err)
	}
	season, err := buildTable("season", doc.Season)
	if err != nil {
		return nil, err
	}
	nature, err := buildTable("nature", doc.Nature)
	if err != nil {
		return nil, err
	}
	culture, err := buildTable("culture", doc.Culture)
	if err != nil {
		return nil, err
	}
	return &Taxonomy{Season: season, Nature: nature, Culture: culture}, nil
}

func buildTable(name string, doc tableDoc) (Table, error) {
	t := Table{byKey: make(map[string][]Triple, len(doc))}
	for _, e := range doc {
		k := strings.ToLower(strings.TrimSpace(e.Key))
		if k == "" {
			return Table{}, fmt.Errorf("taxonomy %s: empty key", name)
		}
		if _, dup := t.byKey[k]; dup {
			return Table{}, fmt.Errorf("taxonomy %s: duplicate key %q", name, k)
		}
		t.keys = append(t.keys, k)
		t.byKey[k] = e.Triples
	}
	return t, nil
}

var defaultTaxonomy = sync.OnceValue(func() *Taxonomy {
	t, err := ParseTaxonomy(taxonomyJSON)
	if err != nil {
		panic(err)
	}
	return t
})

// DefaultTaxonomy returns the embedded taxonomy, parsed on first use.
func DefaultTaxonomy() *Taxonomy { return defaultTaxonomy() }
