package assembler

import "hash/fnv"

// hashLabel returns a stable 64-bit hash of a label name. spec.md §4.2
// allows any stable hash and accepts the resulting collision risk; FNV-1a
// is the standard library's own choice for this purpose.
func hashLabel(name string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return h.Sum64()
}

// pendingRef records a single placeholder word still waiting on a label
// definition: where the word lives in the text segment, and the token that
// referenced the label (kept so an unresolved reference can be reported at
// its own source position, not the label's).
type pendingRef struct {
	wordIndex uint32
	name      string
	line, col int
}

// labelTable implements the back-patching scheme of spec.md §4.2: label
// definitions are recorded by hash, and uses that precede their definition
// get a placeholder word plus a pending entry that is overwritten in place
// once the label is defined.
type labelTable struct {
	defined map[uint64]uint32
	pending map[uint64][]pendingRef
}

func newLabelTable() *labelTable {
	return &labelTable{
		defined: make(map[uint64]uint32),
		pending: make(map[uint64][]pendingRef),
	}
}

// define records that name is defined at wordIndex, and back-patches every
// placeholder word recorded for it so far.
func (lt *labelTable) define(name string, wordIndex uint32, patch func(at uint32, value uint32)) {
	h := hashLabel(name)
	lt.defined[h] = wordIndex
	for _, ref := range lt.pending[h] {
		patch(ref.wordIndex, wordIndex)
	}
	delete(lt.pending, h)
}

// resolve returns the word index of name if it is already defined.
func (lt *labelTable) resolve(name string) (uint32, bool) {
	idx, ok := lt.defined[hashLabel(name)]
	return idx, ok
}

// deferUse records that the word at wordIndex is a placeholder awaiting
// name's definition.
func (lt *labelTable) deferUse(name string, wordIndex uint32, line, col int) {
	h := hashLabel(name)
	lt.pending[h] = append(lt.pending[h], pendingRef{wordIndex: wordIndex, name: name, line: line, col: col})
}

// unresolved returns every pending reference still outstanding, in a
// deterministic order (sorted by word index) so repeated assembly of the
// same input reports errors in the same order.
func (lt *labelTable) unresolved() []pendingRef {
	var out []pendingRef
	for _, refs := range lt.pending {
		out = append(out, refs...)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].wordIndex > out[j].wordIndex; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
