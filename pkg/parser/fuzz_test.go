package parser_test

import (
	"testing"

	"github.com/sandrolain/exprlite/pkg/naming"
	"github.com/sandrolain/exprlite/pkg/parser"
)

func FuzzParser(f *testing.F) {
	seeds := []string{
		`1 + 2 * 3`,
		`"a" + "b" have "ab"`,
		`qty in [1, 2, 3] && !(price > 10)`,
		`if(total > 4, "big", label)`,
		`#2024-01-01# != #2024-01-02#`,
		`1 / (qty - 2)`,
		``,
		`(`,
		`if(`,
		`1 !`,
		`[1]`,
	}
	for _, s := range seeds {
		f.Add(s)
	}
	p := parser.New(parser.WithProviders(names(), naming.Map{
		"loop": naming.FromExpression("loop", "loop + 1"),
	}))
	f.Fuzz(func(t *testing.T, input string) {
		res, err := p.ParseString(input, "")
		if err != nil {
			return
		}
		if !res.Type().Valid() {
			t.Fatalf("parse of %q produced invalid type", input)
		}
		for id, d := range res.Names {
			if d.ID != id || d.Refs <= 0 {
				t.Fatalf("bad name entry %d: %+v", id, d)
			}
		}
	})
}
