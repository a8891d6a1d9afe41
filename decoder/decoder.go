package decoder

import (
	"errors"
	"fmt"

	"github.com/nullmodel/llmvm/opcode"
	"github.com/nullmodel/llmvm/vmcore"
)

// Decode turns one raw four-word instruction tuple into an Instruction.
// mem supplies the data segment that string/file operands point into; word
// indices in Instruction.Text errors are absolute (mem.DataBase()+offset).
func Decode(words [4]uint32, mem *vmcore.Memory) (Instruction, error) {
	op := opcode.OpCode(words[0])
	if !op.Valid() {
		return Instruction{}, &Error{Kind: ErrInvalidOpcode, WordIndex: words[0], Message: fmt.Sprintf("unknown opcode %d", words[0])}
	}

	inst := Instruction{Op: op}

	switch opcode.ShapeOf(op) {
	case opcode.ShapeL:
		inst.Dst = words[1]
		switch op {
		case opcode.LoadString, opcode.LoadFile:
			text, err := readString(mem, words[2])
			if err != nil {
				return Instruction{}, err
			}
			inst.Text = text
		case opcode.LoadImmediate:
			inst.Immediate = words[2]
		case opcode.Move:
			inst.Src1 = words[2]
		}

	case opcode.ShapeR:
		inst.Dst = words[1]
		inst.Src1 = words[2]
		inst.Src2 = words[3]

	case opcode.ShapeB:
		inst.Src1 = words[1]
		inst.Src2 = words[2]
		inst.Target = words[3]

	case opcode.ShapeOut:
		inst.Src1 = words[1]

	case opcode.ShapeExit:
		// no operands

	case opcode.ShapeContext:
		switch op {
		case opcode.ContextSnapshot, opcode.ContextPop:
			inst.Dst = words[1]
		case opcode.ContextRestore, opcode.ContextPush:
			inst.Src1 = words[1]
		case opcode.ContextSetRole:
			text, err := readString(mem, words[2])
			if err != nil {
				return Instruction{}, err
			}
			inst.Text = text
		case opcode.Decrement:
			inst.Src1 = words[1]
			inst.Immediate = words[2]
		case opcode.ContextClear, opcode.ContextDrop:
			// no operands
		}
	}

	return inst, nil
}

// readString resolves a data-segment-relative string pointer via
// mem.ReadString, reclassifying vmcore's sentinel causes into the decoder's
// own typed Error.
func readString(mem *vmcore.Memory, offset uint32) (string, error) {
	absolute := mem.DataBase() + offset
	text, err := mem.ReadString(absolute)
	if err != nil {
		kind := ErrInvalidUTF8
		if errors.Is(err, vmcore.ErrMissingNullTerminator) {
			kind = ErrMissingTerminator
		}
		return "", &Error{Kind: kind, WordIndex: absolute, Message: "reading string operand", Cause: err}
	}
	return text, nil
}
