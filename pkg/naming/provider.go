package naming

import (
	"github.com/sandrolain/exprlite/pkg/token"
)

// Provider resolves a name to its meaning.
type Provider interface {
	Resolve(name string) (Info, bool)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(name string) (Info, bool)

// Resolve calls f(name).
func (f ProviderFunc) Resolve(name string) (Info, bool) {
	return f(name)
}

// Map is a Provider backed by a map. Entries without a Name take their key.
type Map map[string]Info

// Resolve implements Provider.
func (m Map) Resolve(name string) (Info, bool) {
	info, ok := m[name]
	if ok && info.Name == "" {
		info.Name = name
	}
	return info, ok
}

// Values builds a Map of plain values.
func Values(values map[string]any) (Map, error) {
	m := make(Map, len(values))
	for name, v := range values {
		info, err := FromValue(name, v)
		if err != nil {
			return nil, err
		}
		m[name] = info
	}
	return m, nil
}

// Chain tries each provider in order; the first that resolves a name wins.
type Chain []Provider

// Resolve implements Provider.
func (c Chain) Resolve(name string) (Info, bool) {
	for _, p := range c {
		if p == nil {
			continue
		}
		if info, ok := p.Resolve(name); ok {
			return info, true
		}
	}
	return Info{}, false
}

// Details records one distinct identifier of a parse.
type Details struct {
	// ID is the first-seen index of the name within the parse, from 1.
	ID   int
	Info Info
	// Refs counts the identifier nodes still referring to the name.
	Refs int
	// Original and Expanded hold the token runs of an Expression binding.
	Original []token.Token
	Expanded []token.Token
}
