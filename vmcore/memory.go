package vmcore

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Sentinel causes for ReadString failures, distinguished so callers (the
// decoder) can classify them into their own typed errors without parsing
// message text.
var (
	ErrMissingNullTerminator = errors.New("vmcore: missing null terminator")
	ErrInvalidUTF8String     = errors.New("vmcore: invalid UTF-8 string")
)

// Memory is the flat array of 32-bit words that backs a loaded bytecode
// image: words [0, len(Text)) are the text segment, words
// [len(Text), len(Text)+len(Data)) are the data segment. It is read-only
// after New (spec.md §3: "Memory is read-only after load").
//
// Simpler than the teacher's segmented, permission-checked vm.Memory
// (vm/memory.go) because spec.md defines a single contiguous two-segment
// image rather than a paged address space — the simplification is called
// for directly by spec.md §9's design notes.
type Memory struct {
	words    []uint32
	dataBase uint32
}

// New builds a Memory from an already-assembled text and data segment. The
// words are copied so the caller's slices remain independently mutable.
func New(text, data []uint32) *Memory {
	words := make([]uint32, 0, len(text)+len(data))
	words = append(words, text...)
	words = append(words, data...)
	return &Memory{words: words, dataBase: uint32(len(text))}
}

// Len returns the total word count of the image.
func (m *Memory) Len() uint32 {
	return uint32(len(m.words))
}

// DataBase returns the word index where the data segment begins.
func (m *Memory) DataBase() uint32 {
	return m.dataBase
}

// Word returns the word at index idx.
func (m *Memory) Word(idx uint32) (uint32, error) {
	if idx >= uint32(len(m.words)) {
		return 0, fmt.Errorf("vmcore: word index %d out of bounds (image has %d words)", idx, len(m.words))
	}
	return m.words[idx], nil
}

// Instruction returns the four words making up the instruction at word
// index idx. idx must be strictly less than DataBase (spec.md §3).
func (m *Memory) Instruction(idx uint32) ([4]uint32, error) {
	var words [4]uint32
	if idx >= m.dataBase {
		return words, fmt.Errorf("vmcore: instruction fetch at %d crosses into the data segment (base %d)", idx, m.dataBase)
	}
	if idx+4 > uint32(len(m.words)) {
		return words, fmt.Errorf("vmcore: truncated instruction at word %d", idx)
	}
	copy(words[:], m.words[idx:idx+4])
	return words, nil
}

// ReadString reads a null-terminated run of UTF-8 bytes (one byte per word,
// in the low octet) starting at word index offset, and UTF-8-decodes it
// with the trailing null stripped. offset is relative to the start of the
// image, not the data segment (the decoder computes DataBase+pointer before
// calling this).
func (m *Memory) ReadString(offset uint32) (string, error) {
	var raw []byte
	idx := offset
	for {
		w, err := m.Word(idx)
		if err != nil {
			return "", fmt.Errorf("%w: string started at word %d: %v", ErrMissingNullTerminator, offset, err)
		}
		if w == 0 {
			break
		}
		raw = append(raw, byte(w))
		idx++
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: string starting at word %d", ErrInvalidUTF8String, offset)
	}
	return string(raw), nil
}
