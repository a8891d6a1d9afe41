// Package assembler turns Language-Logic Machine assembly source into a
// bytecode image: a flat text segment of four-word instructions and a data
// segment of interned strings, produced by a single-pass, one-token-lookahead
// parser with panic-mode error recovery (spec.md §4.2).
package assembler

import (
	"strconv"
	"strings"

	"github.com/nullmodel/llmvm/opcode"
	"github.com/nullmodel/llmvm/scanner"
)

// AssembledProgram is the in-memory result of a successful assemble: the
// text and data segments, kept apart so the caller can report segment sizes
// or hand them straight to vmcore.New without re-parsing a header.
type AssembledProgram struct {
	Text []uint32
	Data []uint32
}

// Assembler drives the scanner over a source string, emitting words into
// Text/Data and recording errors under panic-mode recovery. Exported through
// the package-level Assemble function; callers never construct one
// directly.
type Assembler struct {
	source string
	sc     *scanner.Scanner
	cur    scanner.Token

	errs      *ErrorList
	panicMode bool

	text   []uint32
	data   []uint32
	labels *labelTable
}

// Assemble compiles source into a program. On failure it returns a non-nil
// *ErrorList with every error recorded during the pass (spec.md §4.2, §7);
// on success the returned ErrorList is nil.
func Assemble(source string) (*AssembledProgram, *ErrorList) {
	a := &Assembler{
		source: source,
		sc:     scanner.New(source),
		errs:   &ErrorList{},
		labels: newLabelTable(),
	}
	a.cur = a.sc.NextToken()
	a.run()

	for _, ref := range a.labels.unresolved() {
		a.errs.add(&Error{
			Kind:    ErrUndefinedLabel,
			Line:    ref.line,
			Col:     ref.col,
			Lexeme:  ref.name,
			Message: "label is never defined",
		})
	}

	if a.errs.HasErrors() {
		return nil, a.errs
	}
	return &AssembledProgram{Text: a.text, Data: a.data}, nil
}

func (a *Assembler) lexeme(t scanner.Token) string {
	return t.Lexeme(a.source)
}

func (a *Assembler) advance() {
	a.cur = a.sc.NextToken()
}

func (a *Assembler) errAt(tok scanner.Token, kind ErrorKind, message string) {
	a.errs.add(&Error{Kind: kind, Line: tok.Line, Col: tok.Col, Lexeme: a.lexeme(tok), Message: message})
}

// run is the top-level statement loop. A label definition is recognised and
// back-patched regardless of panic mode, so that undefined-label reporting
// at the end of Assemble stays accurate even after the first syntax error;
// every other token is dispatched to parseStatement only while not in panic
// mode, and otherwise discarded.
func (a *Assembler) run() {
	for {
		switch {
		case a.cur.Kind == scanner.Eof:
			return

		case a.cur.Kind == scanner.Label:
			name := strings.TrimSuffix(a.lexeme(a.cur), ":")
			wordIdx := uint32(len(a.text))
			a.labels.define(name, wordIdx, func(at, value uint32) { a.text[at] = value })
			a.advance()

		case a.panicMode:
			a.advance()

		case a.cur.Kind == scanner.Error:
			a.errAt(a.cur, ErrUnexpectedToken, a.cur.ErrMessage)
			a.panicMode = true
			a.advance()

		default:
			a.parseStatement()
		}
	}
}

// parseStatement parses exactly one instruction production, keyed off the
// mnemonic keyword in a.cur, and emits its four words. An unrecognised
// leading token enters panic mode.
func (a *Assembler) parseStatement() {
	switch a.cur.Kind {
	case scanner.KwLoadString:
		a.advance()
		dst, ok := a.expectRegister()
		if !ok {
			return
		}
		if !a.expectComma() {
			return
		}
		text, ok := a.expectString()
		if !ok {
			return
		}
		offset := a.internString(text)
		a.emit4(opcode.LoadString, dst, offset, 0)

	case scanner.KwLoadFile:
		a.advance()
		dst, ok := a.expectRegister()
		if !ok {
			return
		}
		if !a.expectComma() {
			return
		}
		text, ok := a.expectString()
		if !ok {
			return
		}
		offset := a.internString(text)
		a.emit4(opcode.LoadFile, dst, offset, 0)

	case scanner.KwLoadImmediate:
		a.advance()
		dst, ok := a.expectRegister()
		if !ok {
			return
		}
		if !a.expectComma() {
			return
		}
		imm, ok := a.expectNumber()
		if !ok {
			return
		}
		a.emit4(opcode.LoadImmediate, dst, imm, 0)

	case scanner.KwMove:
		a.advance()
		dst, ok := a.expectRegister()
		if !ok {
			return
		}
		if !a.expectComma() {
			return
		}
		src, ok := a.expectRegister()
		if !ok {
			return
		}
		a.emit4(opcode.Move, dst, src, 0)

	case scanner.KwBranchEqual, scanner.KwBranchLess, scanner.KwBranchLessEqual,
		scanner.KwBranchGreater, scanner.KwBranchGreaterEqual:
		a.parseBranch()

	case scanner.KwExit:
		a.advance()
		a.emit4(opcode.Exit, 0, 0, 0)

	case scanner.KwOut:
		a.advance()
		src, ok := a.expectRegister()
		if !ok {
			return
		}
		a.emit4(opcode.Out, src, 0, 0)

	case scanner.KwMorph, scanner.KwProject, scanner.KwDistill, scanner.KwCorrelate,
		scanner.KwAudit, scanner.KwSimilarity:
		a.parseSemanticR()

	case scanner.KwContextClear:
		a.advance()
		a.emit4(opcode.ContextClear, 0, 0, 0)

	case scanner.KwContextDrop:
		a.advance()
		a.emit4(opcode.ContextDrop, 0, 0, 0)

	case scanner.KwContextSnapshot:
		a.advance()
		dst, ok := a.expectRegister()
		if !ok {
			return
		}
		a.emit4(opcode.ContextSnapshot, dst, 0, 0)

	case scanner.KwContextRestore:
		a.advance()
		src, ok := a.expectRegister()
		if !ok {
			return
		}
		a.emit4(opcode.ContextRestore, src, 0, 0)

	case scanner.KwContextPush:
		a.advance()
		src, ok := a.expectRegister()
		if !ok {
			return
		}
		a.emit4(opcode.ContextPush, src, 0, 0)

	case scanner.KwContextPop:
		a.advance()
		dst, ok := a.expectRegister()
		if !ok {
			return
		}
		a.emit4(opcode.ContextPop, dst, 0, 0)

	case scanner.KwContextSetRole:
		a.advance()
		text, ok := a.expectString()
		if !ok {
			return
		}
		offset := a.internString(text)
		a.emit4(opcode.ContextSetRole, 0, offset, 0)

	case scanner.KwDecrement:
		a.advance()
		src, ok := a.expectRegister()
		if !ok {
			return
		}
		if !a.expectComma() {
			return
		}
		imm, ok := a.expectNumber()
		if !ok {
			return
		}
		a.emit4(opcode.Decrement, src, imm, 0)

	default:
		a.errAt(a.cur, ErrUnexpectedToken, "expected an instruction or label")
		a.panicMode = true
		a.advance()
	}
}

// parseBranch parses `bXX src1, src2, label`, resolving the target
// immediately if label is already defined, otherwise emitting a placeholder
// word and registering it for back-patching.
func (a *Assembler) parseBranch() {
	op := branchOpcode(a.cur.Kind)
	a.advance()

	src1, ok := a.expectRegister()
	if !ok {
		return
	}
	if !a.expectComma() {
		return
	}
	src2, ok := a.expectRegister()
	if !ok {
		return
	}
	if !a.expectComma() {
		return
	}

	if a.cur.Kind != scanner.Identifier {
		a.errAt(a.cur, ErrUnexpectedToken, "expected a label")
		a.panicMode = true
		return
	}
	name := a.lexeme(a.cur)
	labelTok := a.cur
	a.advance()

	target := uint32(0)
	resolved, ok := a.labels.resolve(name)
	if ok {
		target = resolved
	}
	base := a.emit4(op, src1, src2, target)
	if !ok {
		a.labels.deferUse(name, base+3, labelTok.Line, labelTok.Col)
	}
}

func branchOpcode(k scanner.Kind) opcode.OpCode {
	switch k {
	case scanner.KwBranchEqual:
		return opcode.BranchEqual
	case scanner.KwBranchLess:
		return opcode.BranchLess
	case scanner.KwBranchLessEqual:
		return opcode.BranchLessEqual
	case scanner.KwBranchGreater:
		return opcode.BranchGreater
	default:
		return opcode.BranchGreaterEqual
	}
}

// parseSemanticR parses `op dst, src1, src2` for the six semantic
// instructions. src2 is syntactically required for all six even though only
// Similarity reads it at execution time (spec.md §6.1's mnemonic table).
func (a *Assembler) parseSemanticR() {
	op := semanticOpcode(a.cur.Kind)
	a.advance()

	dst, ok := a.expectRegister()
	if !ok {
		return
	}
	if !a.expectComma() {
		return
	}
	src1, ok := a.expectRegister()
	if !ok {
		return
	}
	if !a.expectComma() {
		return
	}
	src2, ok := a.expectRegister()
	if !ok {
		return
	}
	a.emit4(op, dst, src1, src2)
}

func semanticOpcode(k scanner.Kind) opcode.OpCode {
	switch k {
	case scanner.KwMorph:
		return opcode.Morph
	case scanner.KwProject:
		return opcode.Project
	case scanner.KwDistill:
		return opcode.Distill
	case scanner.KwCorrelate:
		return opcode.Correlate
	case scanner.KwAudit:
		return opcode.Audit
	default:
		return opcode.Similarity
	}
}

// emit4 appends the four words of one instruction to the text segment and
// returns the word index the instruction starts at.
func (a *Assembler) emit4(op opcode.OpCode, w1, w2, w3 uint32) uint32 {
	base := uint32(len(a.text))
	a.text = append(a.text, uint32(op), w1, w2, w3)
	return base
}

func (a *Assembler) expectComma() bool {
	if a.cur.Kind != scanner.Comma {
		a.errAt(a.cur, ErrMissingToken, "expected ','")
		a.panicMode = true
		return false
	}
	a.advance()
	return true
}

// expectRegister consumes an Identifier token of the form x<N>, 1 <= N <= 32,
// matched case-insensitively.
func (a *Assembler) expectRegister() (uint32, bool) {
	if a.cur.Kind != scanner.Identifier {
		a.errAt(a.cur, ErrBadRegister, "expected a register operand")
		a.panicMode = true
		return 0, false
	}
	tok := a.cur
	lex := strings.ToLower(a.lexeme(tok))
	if len(lex) < 2 || lex[0] != 'x' {
		a.errAt(tok, ErrBadRegister, "register operands are written x1..x32")
		a.panicMode = true
		return 0, false
	}
	n, err := strconv.Atoi(lex[1:])
	if err != nil || n < 1 || n > 32 {
		a.errAt(tok, ErrBadRegister, "register number must be between 1 and 32")
		a.panicMode = true
		return 0, false
	}
	a.advance()
	return uint32(n), true
}

// expectNumber consumes a Number token and rejects a fractional part
// (spec.md §9, Open Question 1: the scanner accepts it, the assembler does
// not).
func (a *Assembler) expectNumber() (uint32, bool) {
	if a.cur.Kind != scanner.Number {
		a.errAt(a.cur, ErrBadNumber, "expected an immediate number")
		a.panicMode = true
		return 0, false
	}
	tok := a.cur
	lex := a.lexeme(tok)
	if strings.Contains(lex, ".") {
		a.errAt(tok, ErrBadNumber, "fractional numbers are not permitted here")
		a.panicMode = true
		return 0, false
	}
	n, err := strconv.ParseUint(lex, 10, 32)
	if err != nil {
		a.errAt(tok, ErrBadNumber, "number does not fit in 32 bits")
		a.panicMode = true
		return 0, false
	}
	a.advance()
	return uint32(n), true
}

// expectString consumes a String token and unescapes it.
func (a *Assembler) expectString() (string, bool) {
	if a.cur.Kind != scanner.String {
		a.errAt(a.cur, ErrUnexpectedToken, "expected a string literal")
		a.panicMode = true
		return "", false
	}
	text := unescape(a.lexeme(a.cur))
	a.advance()
	return text, true
}
