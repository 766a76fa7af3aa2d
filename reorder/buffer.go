// Package reorder provides the pre-execution instruction reordering pass
// and the reorder buffer that mirrors its schedule.
package reorder

// Buffer is a FIFO of instruction words awaiting commit.
type Buffer struct {
	entries []uint32
}

// NewBuffer creates an empty reorder buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Add appends word at the back.
func (b *Buffer) Add(word uint32) {
	b.entries = append(b.entries, word)
}

// Commit removes and returns the word at the front. ok is false when the
// buffer is empty.
func (b *Buffer) Commit() (word uint32, ok bool) {
	if len(b.entries) == 0 {
		return 0, false
	}
	word = b.entries[0]
	b.entries = b.entries[1:]
	return word, true
}

// IsEmpty reports whether no words are waiting.
func (b *Buffer) IsEmpty() bool {
	return len(b.entries) == 0
}

// Len returns the number of words waiting.
func (b *Buffer) Len() int {
	return len(b.entries)
}
