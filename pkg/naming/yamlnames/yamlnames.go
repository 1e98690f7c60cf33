// Package yamlnames loads name bindings from YAML documents.
//
//	names:
//	  - name: rate
//	    type: number
//	    value: "0.15"
//	  - name: total
//	    expression: price * (1 + rate)
//
// Entries carry either a typed plain value or expression source. A Source
// serves a document file as a naming.Provider and can reload it when the
// file changes.
package yamlnames

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/sandrolain/exprlite/pkg/naming"
	"github.com/sandrolain/exprlite/pkg/token"
	"github.com/sandrolain/exprlite/pkg/types"
)

// Document is the top-level shape of a bindings file.
type Document struct {
	Names []Entry `yaml:"names" json:"names"`
}

// Entry is a single binding.
type Entry struct {
	Name string `yaml:"name" json:"name"`
	// Type is one of text, number, boolean or timestamp. Required with Value.
	Type  string `yaml:"type,omitempty" json:"type,omitempty"`
	Value string `yaml:"value,omitempty" json:"value,omitempty"`
	// Expression is source text, mutually exclusive with Value.
	Expression string `yaml:"expression,omitempty" json:"expression,omitempty"`
}

// Info converts the entry to a naming.Info.
func (e Entry) Info() (naming.Info, error) {
	if e.Name == "" {
		return naming.Info{}, types.NewError(types.ErrMalformedNameInfo, "binding without a name", -1)
	}
	if e.Expression != "" {
		if e.Value != "" {
			return naming.Info{}, e.malformed("both value and expression are set")
		}
		return naming.FromExpression(e.Name, e.Expression), nil
	}

	t, ok := types.ParseType(e.Type)
	if !ok {
		return naming.Info{}, e.malformed("unknown type %q", e.Type)
	}
	v, err := Decode(t, e.Value)
	if err != nil {
		return naming.Info{}, e.malformed("%v", err).WithCause(err)
	}
	return naming.Info{Name: e.Name, Type: t, Kind: naming.Plain, Value: v}, nil
}

func (e Entry) malformed(format string, args ...any) *types.Error {
	args = append([]any{e.Name}, args...)
	return types.Errorf(types.ErrMalformedNameInfo, -1, "binding '%s': "+format, args...).WithToken(e.Name)
}

// Decode converts the textual form of a value of type t.
func Decode(t types.Type, s string) (any, error) {
	switch t {
	case types.Text:
		return s, nil
	case types.Boolean:
		return strconv.ParseBool(s)
	case types.Number, types.Timestamp:
		lexeme := s
		if t == types.Timestamp {
			lexeme = "#" + s + "#"
		}
		v, ok := token.DefaultConverter.Convert(lexeme, t)
		if !ok {
			return nil, fmt.Errorf("invalid %s %q", t, s)
		}
		return v, nil
	}
	return nil, fmt.Errorf("unsupported type %s", t)
}

// Build converts entries into a naming.Map. Duplicate names are rejected.
func Build(entries []Entry) (naming.Map, error) {
	m := make(naming.Map, len(entries))
	for _, e := range entries {
		if _, dup := m[e.Name]; dup {
			return nil, e.malformed("defined more than once")
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		m[e.Name] = info
	}
	return m, nil
}

// Parse parses a bindings document.
func Parse(data []byte) (naming.Map, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing bindings: %w", err)
	}
	return Build(doc.Names)
}

// Load reads and parses a bindings file.
func Load(path string) (naming.Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bindings %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
