package ast

// UnaryOp is a unary operator.
type UnaryOp uint8

const (
	Plus UnaryOp = iota + 1
	Negate
	Not
)

// String returns the operator symbol.
func (op UnaryOp) String() string {
	switch op {
	case Plus:
		return "+"
	case Negate:
		return "-"
	case Not:
		return "!"
	default:
		return "?"
	}
}

// Label returns the diagnostic label of an expression using op.
func (op UnaryOp) Label() string {
	switch op {
	case Plus:
		return "<plus-expression>"
	case Negate:
		return "<negate-expression>"
	case Not:
		return "<not-expression>"
	default:
		return "<unknown-expression>"
	}
}

// BinaryOp is a binary operator.
type BinaryOp uint8

const (
	Add BinaryOp = iota + 1
	Subtract
	Multiply
	Divide
	Remainder
	Append
	Equal
	NotEqual
	Greater
	GreaterOrEqual
	Less
	LessOrEqual
	In
	NotIn
	Have
	NotHave
	And
	Or
)

var binarySymbols = [...]string{
	Add:            "+",
	Subtract:       "-",
	Multiply:       "*",
	Divide:         "/",
	Remainder:      "%",
	Append:         "+",
	Equal:          "==",
	NotEqual:       "!=",
	Greater:        ">",
	GreaterOrEqual: ">=",
	Less:           "<",
	LessOrEqual:    "<=",
	In:             "in",
	NotIn:          "!in",
	Have:           "have",
	NotHave:        "!have",
	And:            "&&",
	Or:             "||",
}

var binaryLabels = [...]string{
	Add:            "<add-expression>",
	Subtract:       "<subtract-expression>",
	Multiply:       "<multiply-expression>",
	Divide:         "<divide-expression>",
	Remainder:      "<remainder-expression>",
	Append:         "<append-expression>",
	Equal:          "<equal-expression>",
	NotEqual:       "<not-equal-expression>",
	Greater:        "<greater-than-expression>",
	GreaterOrEqual: "<greater-than-or-equal-expression>",
	Less:           "<less-than-expression>",
	LessOrEqual:    "<less-than-or-equal-expression>",
	In:             "<in-expression>",
	NotIn:          "<not-in-expression>",
	Have:           "<have-expression>",
	NotHave:        "<not-have-expression>",
	And:            "<and-expression>",
	Or:             "<or-expression>",
}

func (op BinaryOp) valid() bool {
	return op >= Add && op <= Or
}

// String returns the operator as written in source.
func (op BinaryOp) String() string {
	if !op.valid() {
		return "?"
	}
	return binarySymbols[op]
}

// Label returns the diagnostic label of an expression using op.
func (op BinaryOp) Label() string {
	if !op.valid() {
		return "<unknown-expression>"
	}
	return binaryLabels[op]
}

// Negated reports whether op is the negated form of a membership operator.
func (op BinaryOp) Negated() bool {
	return op == NotIn || op == NotHave
}
