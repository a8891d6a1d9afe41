package scanner

import "fmt"

// Kind identifies the lexical category of a Token. The set is closed: every
// token the scanner ever produces is one of these.
type Kind int

const (
	Eof Kind = iota
	Error

	Identifier // register names (xN) and label references
	Label      // "name:" — an identifier whose lexeme ends in a colon
	Number     // decimal digits, optionally with a fractional part
	String     // a double-quoted literal, escapes still raw

	Comma

	// Keywords — one Kind per mnemonic in the source language (spec.md §6.1).
	KwLoadString
	KwLoadImmediate
	KwLoadFile
	KwMove
	KwBranchEqual
	KwBranchLess
	KwBranchLessEqual
	KwBranchGreater
	KwBranchGreaterEqual
	KwExit
	KwOut
	KwMorph
	KwProject
	KwDistill
	KwCorrelate
	KwAudit
	KwSimilarity
	KwContextClear
	KwContextSnapshot
	KwContextRestore
	KwContextPush
	KwContextPop
	KwContextDrop
	KwContextSetRole
	KwDecrement
)

var kindNames = map[Kind]string{
	Eof:                  "EOF",
	Error:                "ERROR",
	Identifier:           "IDENTIFIER",
	Label:                "LABEL",
	Number:               "NUMBER",
	String:               "STRING",
	Comma:                ",",
	KwLoadString:         "ls",
	KwLoadImmediate:      "li",
	KwLoadFile:           "lf",
	KwMove:               "mv",
	KwBranchEqual:        "beq",
	KwBranchLess:         "blt",
	KwBranchLessEqual:    "ble",
	KwBranchGreater:      "bgt",
	KwBranchGreaterEqual: "bge",
	KwExit:               "exit",
	KwOut:                "out",
	KwMorph:              "mrf",
	KwProject:            "prj",
	KwDistill:            "dst",
	KwCorrelate:          "cor",
	KwAudit:              "aud",
	KwSimilarity:         "sim",
	KwContextClear:       "ctxclr",
	KwContextSnapshot:    "ctxsnap",
	KwContextRestore:     "ctxrestore",
	KwContextPush:        "ctxpush",
	KwContextPop:         "ctxpop",
	KwContextDrop:        "ctxdrop",
	KwContextSetRole:     "ctxrole",
	KwDecrement:          "dec",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// keywords maps every source mnemonic to its Kind. Mnemonics are matched
// case-insensitively by the scanner, which lower-cases the lexeme first.
var keywords = map[string]Kind{
	"ls":          KwLoadString,
	"li":          KwLoadImmediate,
	"lf":          KwLoadFile,
	"mv":          KwMove,
	"beq":         KwBranchEqual,
	"blt":         KwBranchLess,
	"ble":         KwBranchLessEqual,
	"bgt":         KwBranchGreater,
	"bge":         KwBranchGreaterEqual,
	"exit":        KwExit,
	"out":         KwOut,
	"mrf":         KwMorph,
	"prj":         KwProject,
	"dst":         KwDistill,
	"cor":         KwCorrelate,
	"aud":         KwAudit,
	"sim":         KwSimilarity,
	"ctxclr":      KwContextClear,
	"ctxsnap":     KwContextSnapshot,
	"ctxrestore":  KwContextRestore,
	"ctxpush":     KwContextPush,
	"ctxpop":      KwContextPop,
	"ctxdrop":     KwContextDrop,
	"ctxrole":     KwContextSetRole,
	"dec":         KwDecrement,
}

// Token is a single lexical unit: its kind, the half-open byte range it
// covers in the source, and the line/column of its first byte. ErrMessage
// is set only for Kind == Error.
type Token struct {
	Kind       Kind
	Start, End int
	Line, Col  int
	ErrMessage string
}

// Lexeme returns the token's raw source text.
func (t Token) Lexeme(source string) string {
	return source[t.Start:t.End]
}

func (t Token) String() string {
	return fmt.Sprintf("%s@%d:%d", t.Kind, t.Line, t.Col)
}
