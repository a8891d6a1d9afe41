// Package vmcore defines the register machine's storage: the tagged Value
// sum type, the flat word Memory, the Registers file, and the context
// stack that is threaded through every Language-Logic call.
package vmcore

import "fmt"

// Kind discriminates the variants of Value.
type Kind int

const (
	KindNone Kind = iota
	KindText
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindText:
		return "Text"
	case KindNumber:
		return "Number"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a register cell: exactly one of Text, Number or neither (None).
// There is no implicit coercion between variants — every use site checks
// Kind explicitly (spec.md §9: "avoid any dynamic typing or reflection-based
// dispatch").
type Value struct {
	kind Kind
	text string
	num  uint32
}

// None is the zero value of Value: an uninitialised register cell.
var None = Value{kind: KindNone}

// Text constructs a Value holding a string.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Number constructs a Value holding an unsigned 32-bit integer.
func Number(n uint32) Value { return Value{kind: KindNumber, num: n} }

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// AsText returns v's text and true if v is KindText.
func (v Value) AsText() (string, bool) {
	if v.kind != KindText {
		return "", false
	}
	return v.text, true
}

// AsNumber returns v's number and true if v is KindNumber.
func (v Value) AsNumber() (uint32, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Stringify renders v as text regardless of its kind: KindText returns its
// string unchanged, KindNumber its decimal representation, KindNone "".
// Used by ContextPush, which accepts any register kind (spec.md §4.4).
func (v Value) Stringify() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return fmt.Sprintf("%d", v.num)
	default:
		return ""
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindText:
		return fmt.Sprintf("Text(%q)", v.text)
	case KindNumber:
		return fmt.Sprintf("Number(%d)", v.num)
	default:
		return "None"
	}
}
