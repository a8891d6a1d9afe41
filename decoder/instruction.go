// Package decoder turns raw four-word instruction tuples into a decoded
// Instruction the executor can dispatch on, resolving string/file operands
// against the data segment along the way.
package decoder

import "github.com/nullmodel/llmvm/opcode"

// Instruction is a fully decoded instruction: the opcode plus whichever
// operand fields its shape uses. Unused fields are left zero.
type Instruction struct {
	Op OpCode

	Dst  uint32 // destination register, where applicable
	Src1 uint32 // first/only source register
	Src2 uint32 // second source register (R-type, B-type)

	Immediate uint32 // LoadImmediate / Decrement
	Target    uint32 // branch target word index

	Text string // decoded string operand (LoadString, LoadFile, ContextSetRole)
}

// OpCode is a re-export so callers need not import the opcode package just
// to spell Instruction.Op's type.
type OpCode = opcode.OpCode
