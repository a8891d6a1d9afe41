// Package bytecode serializes and deserializes the two-segment, big-endian
// word image format spec.md §6.3 defines: a two-word header followed by the
// text segment and the data segment.
package bytecode

import (
	"encoding/binary"
	"fmt"
	"io"
)

// headerWords is fixed: word 0 is always 2 (the text segment always starts
// right after the header), word 1 is the data segment's start word index.
const headerWords = 2

// Write serializes text and data as a single image: the two-word header,
// then text, then data, each word big-endian. Grounded in the teacher's
// loader package, which also walks a program word by word rather than
// reaching for a binary-encoding library (loader/loader.go).
func Write(w io.Writer, text, data []uint32) error {
	dataStart := uint32(headerWords + len(text))

	header := []uint32{headerWords, dataStart}
	for _, words := range [][]uint32{header, text, data} {
		for _, word := range words {
			if err := binary.Write(w, binary.BigEndian, word); err != nil {
				return fmt.Errorf("bytecode: write word: %w", err)
			}
		}
	}
	return nil
}

// Read deserializes an image written by Write, validating the header
// against the actual word count before splitting text from data.
func Read(r io.Reader) (text, data []uint32, err error) {
	var words []uint32
	for {
		var word uint32
		if err := binary.Read(r, binary.BigEndian, &word); err != nil {
			if err == io.EOF {
				break
			}
			return nil, nil, fmt.Errorf("bytecode: read word %d: %w", len(words), err)
		}
		words = append(words, word)
	}

	if len(words) < headerWords {
		return nil, nil, fmt.Errorf("bytecode: image too short for header: %d words", len(words))
	}

	textStart := words[0]
	dataStart := words[1]
	if textStart != headerWords {
		return nil, nil, fmt.Errorf("bytecode: unexpected text_start_word_index %d, want %d", textStart, headerWords)
	}
	if dataStart < textStart || int(dataStart) > len(words) {
		return nil, nil, fmt.Errorf("bytecode: data_start_word_index %d out of range for %d-word image", dataStart, len(words))
	}

	text = words[textStart:dataStart]
	data = words[dataStart:]
	return text, data, nil
}
