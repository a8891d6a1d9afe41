package decoder

import (
	"testing"

	"github.com/nullmodel/llmvm/opcode"
	"github.com/nullmodel/llmvm/vmcore"
)

// testMemory builds a Memory whose data segment is exactly data, at a fixed
// four-word text segment so DataBase is always 4 — matching the dataBase
// this test file's expectations were written against.
func testMemory(data []uint32) *vmcore.Memory {
	return vmcore.New(make([]uint32, 4), data)
}

func TestDecodeRoundTripsEveryOpcode(t *testing.T) {
	mem := testMemory([]uint32{'h', 'i', 0})

	cases := []struct {
		name  string
		words [4]uint32
		check func(t *testing.T, inst Instruction)
	}{
		{"LoadString", [4]uint32{uint32(opcode.LoadString), 1, 0, 0}, func(t *testing.T, inst Instruction) {
			if inst.Dst != 1 || inst.Text != "hi" {
				t.Fatalf("got %+v", inst)
			}
		}},
		{"LoadImmediate", [4]uint32{uint32(opcode.LoadImmediate), 2, 42, 0}, func(t *testing.T, inst Instruction) {
			if inst.Dst != 2 || inst.Immediate != 42 {
				t.Fatalf("got %+v", inst)
			}
		}},
		{"Move", [4]uint32{uint32(opcode.Move), 3, 4, 0}, func(t *testing.T, inst Instruction) {
			if inst.Dst != 3 || inst.Src1 != 4 {
				t.Fatalf("got %+v", inst)
			}
		}},
		{"BranchEqual", [4]uint32{uint32(opcode.BranchEqual), 1, 2, 99}, func(t *testing.T, inst Instruction) {
			if inst.Src1 != 1 || inst.Src2 != 2 || inst.Target != 99 {
				t.Fatalf("got %+v", inst)
			}
		}},
		{"Out", [4]uint32{uint32(opcode.Out), 5, 0, 0}, func(t *testing.T, inst Instruction) {
			if inst.Src1 != 5 {
				t.Fatalf("got %+v", inst)
			}
		}},
		{"Exit", [4]uint32{uint32(opcode.Exit), 0, 0, 0}, func(t *testing.T, inst Instruction) {}},
		{"Similarity", [4]uint32{uint32(opcode.Similarity), 1, 2, 3}, func(t *testing.T, inst Instruction) {
			if inst.Dst != 1 || inst.Src1 != 2 || inst.Src2 != 3 {
				t.Fatalf("got %+v", inst)
			}
		}},
		{"Decrement", [4]uint32{uint32(opcode.Decrement), 1, 7, 0}, func(t *testing.T, inst Instruction) {
			if inst.Src1 != 1 || inst.Immediate != 7 {
				t.Fatalf("got %+v", inst)
			}
		}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			inst, err := Decode(c.words, mem)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if inst.Op != opcode.OpCode(c.words[0]) {
				t.Fatalf("Op = %v, want %v", inst.Op, opcode.OpCode(c.words[0]))
			}
			c.check(t, inst)
		})
	}
}

func TestDecodeInvalidOpcode(t *testing.T) {
	_, err := Decode([4]uint32{9999, 0, 0, 0}, testMemory(nil))
	if err == nil {
		t.Fatalf("expected an error")
	}
	var de *Error
	if !asError(err, &de) || de.Kind != ErrInvalidOpcode {
		t.Fatalf("got %v", err)
	}
}

func TestDecodeMissingNullTerminator(t *testing.T) {
	mem := testMemory([]uint32{'h', 'i'}) // no terminator
	_, err := Decode([4]uint32{uint32(opcode.LoadString), 1, 0, 0}, mem)
	if err == nil {
		t.Fatalf("expected an error")
	}
	var de *Error
	if !asError(err, &de) || de.Kind != ErrMissingTerminator {
		t.Fatalf("got %v", err)
	}
}

func TestDecodeInvalidUTF8(t *testing.T) {
	mem := testMemory([]uint32{0xFF, 0})
	_, err := Decode([4]uint32{uint32(opcode.LoadString), 1, 0, 0}, mem)
	if err == nil {
		t.Fatalf("expected an error")
	}
	var de *Error
	if !asError(err, &de) || de.Kind != ErrInvalidUTF8 {
		t.Fatalf("got %v", err)
	}
}

func asError(err error, target **Error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	*target = e
	return true
}
