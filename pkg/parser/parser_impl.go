package parser

import (
	"errors"

	"github.com/sandrolain/exprlite/pkg/ast"
	"github.com/sandrolain/exprlite/pkg/token"
	"github.com/sandrolain/exprlite/pkg/types"
)

// Grammar, lowest precedence first:
//
//	expression     = or
//	or             = and { "||" and }
//	and            = equality { "&&" equality }
//	equality       = relational { ("==" | "!=") relational }
//	relational     = additive [ ["!"] "in" "[" additive { "," additive } "]"
//	                          | ["!"] "have" additive
//	                          | { ("<" | "<=" | ">" | ">=") additive } ]
//	additive       = multiplicative { ("+" | "-") multiplicative }
//	multiplicative = unary { ("*" | "/" | "%") unary }
//	unary          = ("+" | "-" | "!") unary | primary
//	primary        = "if" "(" or "," expression "," expression ")"
//	               | "(" expression ")" | identifier | "true" | "false" | literal

var (
	equalityOps = []binaryToken{
		{token.Equal, ast.Equal},
		{token.NotEqual, ast.NotEqual},
	}
	relationalOps = []binaryToken{
		{token.Greater, ast.Greater},
		{token.GreaterEqual, ast.GreaterOrEqual},
		{token.Less, ast.Less},
		{token.LessEqual, ast.LessOrEqual},
	}
	additiveOps = []binaryToken{
		{token.Plus, ast.Add},
		{token.Minus, ast.Subtract},
	}
	multiplicativeOps = []binaryToken{
		{token.Multiply, ast.Multiply},
		{token.Divide, ast.Divide},
		{token.Remainder, ast.Remainder},
	}
	unaryOps = []struct {
		tok token.Token
		op  ast.UnaryOp
	}{
		{token.Plus, ast.Plus},
		{token.Minus, ast.Negate},
		{token.Not, ast.Not},
	}
)

type binaryToken struct {
	tok token.Token
	op  ast.BinaryOp
}

func (s *state) eos() bool {
	return s.pos >= len(s.tokens)
}

func (s *state) current() token.Token {
	if s.eos() {
		return token.Token{}
	}
	return s.tokens[s.pos]
}

func (s *state) advance() token.Token {
	tok := s.current()
	s.pos++
	return tok
}

func (s *state) match(k token.Token) bool {
	return !s.eos() && s.current().Is(k)
}

func (s *state) matchOp(ops []binaryToken) (ast.BinaryOp, bool) {
	for _, o := range ops {
		if s.match(o.tok) {
			return o.op, true
		}
	}
	return 0, false
}

// expect consumes the known token k or fails with an expected error.
func (s *state) expect(k token.Token) error {
	if s.eos() {
		return types.Expected(k.Lexeme, "<end of tokens>", s.endPos())
	}
	if !s.current().Is(k) {
		return types.Expected(k.Lexeme, s.current().Lexeme, s.current().Pos)
	}
	s.pos++
	return nil
}

// endPos is the offset just past the last token.
func (s *state) endPos() int {
	if len(s.tokens) == 0 {
		return 0
	}
	return s.tokens[len(s.tokens)-1].End()
}

func (s *state) unexpectedEnd() error {
	return types.NewError(types.ErrUnexpectedEnd, "unexpected end of tokens", s.endPos())
}

func (s *state) parseExpression() (ast.Node, error) {
	return s.parseOr()
}

func (s *state) parseOr() (ast.Node, error) {
	left, err := s.parseAnd()
	if err != nil {
		return nil, err
	}
	for s.match(token.Or) {
		tok := s.advance()
		right, err := s.parseAnd()
		if err != nil {
			return nil, err
		}
		if left, err = binary(ast.Or, left, right, tok); err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (s *state) parseAnd() (ast.Node, error) {
	left, err := s.parseEquality()
	if err != nil {
		return nil, err
	}
	for s.match(token.And) {
		tok := s.advance()
		right, err := s.parseEquality()
		if err != nil {
			return nil, err
		}
		if left, err = binary(ast.And, left, right, tok); err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (s *state) parseEquality() (ast.Node, error) {
	left, err := s.parseRelational()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := s.matchOp(equalityOps)
		if !ok {
			return left, nil
		}
		tok := s.advance()
		right, err := s.parseRelational()
		if err != nil {
			return nil, err
		}
		if left, err = binary(op, left, right, tok); err != nil {
			return nil, err
		}
	}
}

func (s *state) parseRelational() (ast.Node, error) {
	left, err := s.parseAdditive()
	if err != nil {
		return nil, err
	}
	if s.eos() {
		return left, nil
	}

	node, ok, err := s.parseInOrHave(left)
	if err != nil || ok {
		return node, err
	}

	for {
		op, ok := s.matchOp(relationalOps)
		if !ok {
			return left, nil
		}
		tok := s.advance()
		right, err := s.parseAdditive()
		if err != nil {
			return nil, err
		}
		if left, err = binary(op, left, right, tok); err != nil {
			return nil, err
		}
	}
}

// parseInOrHave parses the membership and containment operators after
// left. It reports false when neither follows.
func (s *state) parseInOrHave(left ast.Node) (ast.Node, bool, error) {
	negated := s.match(token.Not)
	if negated {
		s.pos++
		if s.eos() {
			return nil, false, s.unexpectedEnd()
		}
	}

	switch {
	case s.match(token.In):
		tok := s.advance()
		arr, err := s.parseArray()
		if err != nil {
			return nil, false, err
		}
		op := ast.In
		if negated {
			op = ast.NotIn
		}
		node, err := binary(op, left, arr, tok)
		return node, err == nil, err

	case s.match(token.Have):
		tok := s.advance()
		right, err := s.parseAdditive()
		if err != nil {
			return nil, false, err
		}
		op := ast.Have
		if negated {
			op = ast.NotHave
		}
		node, err := binary(op, left, right, tok)
		return node, err == nil, err
	}

	if negated {
		return nil, false, types.Expected("in or have", s.current().Lexeme, s.current().Pos)
	}
	return nil, false, nil
}

func (s *state) parseArray() (ast.Node, error) {
	open := s.current()
	if err := s.expect(token.OpenBracket); err != nil {
		return nil, err
	}
	if s.match(token.CloseBracket) {
		return nil, types.NewError(types.ErrEmptyArray, "empty array is not allowed", open.Pos)
	}

	var elems []ast.Node
	for {
		el, err := s.parseAdditive()
		if err != nil {
			return nil, err
		}
		elems = append(elems, el)
		if !s.match(token.Comma) {
			break
		}
		s.pos++
	}
	if err := s.expect(token.CloseBracket); err != nil {
		return nil, err
	}

	arr, err := ast.NewArray(elems)
	if err != nil {
		return nil, atPosition(err, open.Pos)
	}
	return arr, nil
}

func (s *state) parseAdditive() (ast.Node, error) {
	left, err := s.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := s.matchOp(additiveOps)
		if !ok {
			return left, nil
		}
		tok := s.advance()
		right, err := s.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		if op == ast.Add && left.Type() == types.Text {
			op = ast.Append
		}
		if left, err = binary(op, left, right, tok); err != nil {
			return nil, err
		}
	}
}

func (s *state) parseMultiplicative() (ast.Node, error) {
	left, err := s.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := s.matchOp(multiplicativeOps)
		if !ok {
			return left, nil
		}
		tok := s.advance()
		right, err := s.parseUnary()
		if err != nil {
			return nil, err
		}
		if left, err = binary(op, left, right, tok); err != nil {
			return nil, err
		}
	}
}

func (s *state) parseUnary() (ast.Node, error) {
	for _, u := range unaryOps {
		if !s.match(u.tok) {
			continue
		}
		tok := s.advance()
		operand, err := s.parseUnary()
		if err != nil {
			return nil, err
		}
		node, err := ast.NewUnary(u.op, operand)
		if err != nil {
			return nil, atPosition(err, tok.Pos)
		}
		return node, nil
	}
	return s.parsePrimary()
}

func (s *state) parsePrimary() (ast.Node, error) {
	if s.eos() {
		return nil, s.unexpectedEnd()
	}
	tok := s.current()

	switch {
	case tok.Is(token.If):
		return s.parseIf()

	case tok.Is(token.OpenParen):
		s.pos++
		node, err := s.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := s.expect(token.CloseParen); err != nil {
			return nil, err
		}
		return node, nil

	case tok.Group == token.Identifier:
		s.pos++
		d := s.names[tok.Lexeme]
		d.Refs++
		node, err := ast.NewIdentifier(d.ID, d.Info.Type)
		if err != nil {
			return nil, atPosition(err, tok.Pos)
		}
		return node, nil

	case tok.Is(token.True), tok.Is(token.False):
		s.pos++
		return ast.Const(tok.Is(token.True), types.Boolean), nil

	case tok.Group == token.Literal:
		s.pos++
		node, err := ast.NewConstant(tok.Value)
		if err != nil {
			return nil, atPosition(err, tok.Pos)
		}
		// A custom converter must keep the literal's lexical type.
		if node.Type() != tok.Type {
			return nil, types.Expected(tok.Type.Label(), node.Type().Label(), tok.Pos).WithToken(tok.Lexeme)
		}
		return node, nil
	}

	return nil, types.Expected("<expression, constant, identifier>", tok.Lexeme, tok.Pos)
}

func (s *state) parseIf() (ast.Node, error) {
	tok := s.advance()
	if err := s.expect(token.OpenParen); err != nil {
		return nil, err
	}
	cond, err := s.parseOr()
	if err != nil {
		return nil, err
	}
	if err := s.expect(token.Comma); err != nil {
		return nil, err
	}
	then, err := s.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := s.expect(token.Comma); err != nil {
		return nil, err
	}
	els, err := s.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := s.expect(token.CloseParen); err != nil {
		return nil, err
	}

	node, err := ast.NewIf(cond, then, els)
	if err != nil {
		return nil, atPosition(err, tok.Pos)
	}
	return node, nil
}

func binary(op ast.BinaryOp, left, right ast.Node, tok token.Token) (ast.Node, error) {
	node, err := ast.NewBinary(op, left, right)
	if err != nil {
		return nil, atPosition(err, tok.Pos)
	}
	return node, nil
}

// atPosition fills in the position of a coded error that has none.
func atPosition(err error, pos int) error {
	var e *types.Error
	if !errors.As(err, &e) || e.Position >= 0 {
		return err
	}
	cp := *e
	cp.Position = pos
	return &cp
}
