package assembler

import "fmt"

// ErrorKind categorizes an AssemblerError (spec.md §7).
type ErrorKind int

const (
	ErrUnexpectedToken ErrorKind = iota
	ErrMissingToken
	ErrBadRegister
	ErrBadNumber
	ErrUndefinedLabel
	ErrImageTooLarge
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnexpectedToken:
		return "unexpected token"
	case ErrMissingToken:
		return "missing token"
	case ErrBadRegister:
		return "bad register"
	case ErrBadNumber:
		return "bad number"
	case ErrUndefinedLabel:
		return "undefined label"
	case ErrImageTooLarge:
		return "image too large"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is a single assembly error: its kind, source position, the
// offending lexeme, and a human-readable message. Grounded in the teacher's
// parser.Error/parser.ErrorKind shape (parser/errors.go).
type Error struct {
	Kind    ErrorKind
	Line    int
	Col     int
	Lexeme  string
	Message string
}

func (e *Error) Error() string {
	if e.Lexeme != "" {
		return fmt.Sprintf("%d:%d: %s: %s (near %q)", e.Line, e.Col, e.Kind, e.Message, e.Lexeme)
	}
	return fmt.Sprintf("%d:%d: %s: %s", e.Line, e.Col, e.Kind, e.Message)
}

// ErrorList collects every error recorded during assembly. Assembly fails
// if and only if the list is non-empty (spec.md §4.2, §7).
type ErrorList struct {
	Errors []*Error
}

func (el *ErrorList) add(err *Error) {
	el.Errors = append(el.Errors, err)
}

// HasErrors reports whether any error has been recorded.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

func (el *ErrorList) Error() string {
	if len(el.Errors) == 0 {
		return ""
	}
	s := ""
	for i, e := range el.Errors {
		if i > 0 {
			s += "\n"
		}
		s += e.Error()
	}
	return s
}
