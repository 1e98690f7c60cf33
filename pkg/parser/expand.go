package parser

import (
	"github.com/sandrolain/exprlite/pkg/naming"
	"github.com/sandrolain/exprlite/pkg/token"
	"github.com/sandrolain/exprlite/pkg/types"
)

// state is the per-parse state: the names met so far and the token cursor.
type state struct {
	p     *Parser
	names map[string]*naming.Details
	order int
	self  string

	tokens []token.Token
	pos    int
}

func newState(p *Parser, self string) *state {
	return &state{
		p:     p,
		names: make(map[string]*naming.Details),
		self:  self,
	}
}

// byID indexes the known names by ID.
func (s *state) byID() map[int]*naming.Details {
	out := make(map[int]*naming.Details, len(s.names))
	for _, d := range s.names {
		out[d.ID] = d
	}
	return out
}

// expand drops whitespace and splices expression bindings into the token
// stream. Each name is resolved once per parse.
func (s *state) expand(tokens []token.Token) ([]token.Token, error) {
	scope := make(map[string]bool)
	if s.self != "" {
		scope[s.self] = true
	}
	return s.expandIn(tokens, scope)
}

func (s *state) expandIn(tokens []token.Token, scope map[string]bool) ([]token.Token, error) {
	out := make([]token.Token, 0, len(tokens))
	for _, tok := range tokens {
		switch tok.Group {
		case token.Whitespace:
			continue
		case token.Identifier:
		default:
			out = append(out, tok)
			continue
		}

		name := tok.Lexeme
		if scope[name] {
			return nil, types.Errorf(types.ErrSelfReference, tok.Pos,
				"the identifier '%s' has a reference to itself directly or indirectly", name).WithToken(name)
		}

		d, ok := s.names[name]
		if !ok {
			var err error
			if d, err = s.define(tok, scope); err != nil {
				return nil, err
			}
		}

		if d.Info.Kind != naming.Expression {
			out = append(out, tok)
			continue
		}
		out = append(out, reposition(token.OpenParen, tok.Pos))
		out = append(out, d.Expanded...)
		out = append(out, reposition(token.CloseParen, tok.Pos))
	}
	return out, nil
}

// define resolves the name of tok and, for expression bindings, expands
// its definition with the name added to scope.
func (s *state) define(tok token.Token, scope map[string]bool) (*naming.Details, error) {
	name := tok.Lexeme
	info, err := s.resolve(name, tok.Pos)
	if err != nil {
		return nil, err
	}

	s.order++
	d := &naming.Details{ID: s.order, Info: info}
	s.names[name] = d

	if info.Kind != naming.Expression {
		return d, nil
	}

	if d.Original, err = s.p.opts.Scanner.Tokens(info.Source); err != nil {
		return nil, err
	}
	scope[name] = true
	d.Expanded, err = s.expandIn(d.Original, scope)
	delete(scope, name)
	if err != nil {
		return nil, err
	}

	s.p.opts.Logger.Debug("identifier expanded",
		"name", name,
		"original", len(d.Original),
		"expanded", len(d.Expanded))
	return d, nil
}

func (s *state) resolve(name string, pos int) (naming.Info, error) {
	for _, provider := range s.p.opts.Providers {
		if provider == nil {
			continue
		}
		info, ok := provider.Resolve(name)
		if !ok {
			continue
		}
		info.Name = name
		info, err := info.Normalize()
		if err != nil {
			return naming.Info{}, atPosition(err, pos)
		}
		return info, nil
	}
	return naming.Info{}, types.Errorf(types.ErrUnknownIdentifier, pos,
		"the identifier '%s' has been used without being defined in a name provider", name).WithToken(name)
}

func reposition(known token.Token, pos int) token.Token {
	known.Pos = pos
	return known
}
