package domain_test

import (
	"testing"

	"gangwongo/internal/domain"
)

func TestDefaultTaxonomy_ResolveAllIsUnionOfKeys(t *testing.T) {
	tx := domain.DefaultTaxonomy()
	for name, tbl := range map[string]domain.Table{"season": tx.Season, "nature": tx.Nature, "culture": tx.Culture} {
		keys := tbl.Keys()
		if len(keys) == 0 {
			t.Fatalf("%s: no keys", name)
		}
		sum := 0
		for _, k := range keys {
			n := len(tbl.Resolve(k))
			if n == 0 {
				t.Fatalf("%s/%s: no triples", name, k)
			}
			sum += n
		}
		if got := len(tbl.Resolve("")); got != sum {
			t.Fatalf("%s: all=%d, sum of keys=%d", name, got, sum)
		}
	}
}

func TestTable_ResolveUnknownAndCase(t *testing.T) {
	tx := domain.DefaultTaxonomy()
	if got := tx.Season.Resolve("monsoon"); got != nil {
		t.Fatalf("unknown selector should resolve to nil, got %v", got)
	}
	if len(tx.Season.Resolve(" Winter ")) == 0 {
		t.Fatalf("selector should be case and space insensitive")
	}
}

func TestTable_ResolveReturnsCopy(t *testing.T) {
	tx := domain.DefaultTaxonomy()
	a := tx.Nature.Resolve("ocean")
	a[0].Cat3 = "MUTATED"
	if tx.Nature.Resolve("ocean")[0].Cat3 == "MUTATED" {
		t.Fatalf("taxonomy mutated through Resolve result")
	}
}

func TestParseTaxonomy_RejectsDuplicates(t *testing.T) {
	doc := []byte(`{"season":[{"key":"spring","triples":[]},{"key":"Spring","triples":[]}]}`)
	if _, err := domain.ParseTaxonomy(doc); err == nil {
		t.Fatalf("expected duplicate key error")
	}
	if _, err := domain.ParseTaxonomy([]byte(`{`)); err == nil {
		t.Fatalf("expected parse error")
	}
}
