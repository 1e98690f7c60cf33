package types

import "fmt"

// Source identifies the pipeline stage that raised an error.
type Source uint8

const (
	SourceUnknown Source = iota
	SourceScanner
	SourceParser
	SourceGenerator
)

// String returns the stage name.
func (s Source) String() string {
	switch s {
	case SourceScanner:
		return "scanner"
	case SourceParser:
		return "parser"
	case SourceGenerator:
		return "generator"
	default:
		return "unknown"
	}
}

// ErrorCode is a stable numeric error code. The thousands digit names the
// stage: 1xxx scanner, 2xxx parser, 3xxx generator.
//
// ErrorCode implements error so that callers can match a failure with
// errors.Is(err, types.ErrUnknownIdentifier).
type ErrorCode int

const (
	// 1xxx: scanner errors
	ErrUnknownToken          ErrorCode = 1001
	ErrUnterminatedString    ErrorCode = 1002
	ErrUnterminatedTimestamp ErrorCode = 1003
	ErrInvalidTimestamp      ErrorCode = 1004
	ErrInvalidNumber         ErrorCode = 1005
	ErrIdentifierTooLong     ErrorCode = 1006

	// 2xxx: parser and type errors
	ErrExpected          ErrorCode = 2001
	ErrUnexpectedEnd     ErrorCode = 2002
	ErrExtraTokens       ErrorCode = 2003
	ErrEmptyArray        ErrorCode = 2004
	ErrIfBranchTypes     ErrorCode = 2005
	ErrDivideByZero      ErrorCode = 2006
	ErrSelfReference     ErrorCode = 2007
	ErrUnknownIdentifier ErrorCode = 2008
	ErrMissingBinding    ErrorCode = 2009
	ErrMalformedNameInfo ErrorCode = 2010

	// 3xxx: generator errors
	ErrOutputType          ErrorCode = 3001
	ErrOutputNotAssignable ErrorCode = 3002
	ErrMemberOwner         ErrorCode = 3003
	ErrInputRequired       ErrorCode = 3004
	ErrCompiledArity       ErrorCode = 3005
	ErrCompiledParamType   ErrorCode = 3006
)

// Source returns the stage a code belongs to.
func (c ErrorCode) Source() Source {
	switch c / 1000 {
	case 1:
		return SourceScanner
	case 2:
		return SourceParser
	case 3:
		return SourceGenerator
	default:
		return SourceUnknown
	}
}

func (c ErrorCode) Error() string {
	return fmt.Sprintf("%s error %d", c.Source(), int(c))
}

// Error represents a structured compilation error.
type Error struct {
	Code     ErrorCode
	Message  string
	Position int
	Token    string
	Err      error
}

// NewError creates a new error. Use -1 when the position is unknown.
func NewError(code ErrorCode, message string, position int) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Position: position,
	}
}

// Errorf creates a new error with a formatted message.
func Errorf(code ErrorCode, position int, format string, args ...any) *Error {
	return NewError(code, fmt.Sprintf(format, args...), position)
}

// Source returns the stage that raised the error.
func (e *Error) Source() Source {
	return e.Code.Source()
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("%s error %d at position %d: %s", e.Source(), int(e.Code), e.Position, e.Message)
	}
	return fmt.Sprintf("%s error %d: %s", e.Source(), int(e.Code), e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the ErrorCode of e.
func (e *Error) Is(target error) bool {
	code, ok := target.(ErrorCode)
	return ok && code == e.Code
}

// WithToken adds token information to the error.
func (e *Error) WithToken(token string) *Error {
	e.Token = token
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// Expected builds the parser error used for every expected-vs-found mismatch.
func Expected(expected, found string, position int) *Error {
	return Errorf(ErrExpected, position, "expected '%s', found '%s'", expected, found).WithToken(found)
}
