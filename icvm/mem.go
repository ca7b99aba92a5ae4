package icvm

import "slices"

// MaxAddress is the largest address a program may write to.
const MaxAddress = 1<<24 - 1

// Memory is the growable word addressed memory of a Machine.
// Reads past the end return 0.  Writes past the end grow the memory.
type Memory struct {
	words []int64
}

// NewMemory returns a Memory initialized with a copy of prog.
func NewMemory(prog []int64) Memory {
	return Memory{words: slices.Clone(prog)}
}

func (m *Memory) Len() int {
	return len(m.words)
}

// Load returns the word at addr, or 0 if addr is past the end.
func (m *Memory) Load(addr int) int64 {
	if addr < 0 || addr >= len(m.words) {
		return 0
	}
	return m.words[addr]
}

// Store writes x at addr, zero filling any gap between the old end and addr.
func (m *Memory) Store(addr int, x int64) {
	if addr >= len(m.words) {
		n := len(m.words)
		m.words = slices.Grow(m.words, addr+1-n)[:addr+1]
		clear(m.words[n:])
	}
	m.words[addr] = x
}

// Slice returns a copy of the memory contents.
func (m *Memory) Slice() []int64 {
	return slices.Clone(m.words)
}

func (m *Memory) Clone() Memory {
	return Memory{words: slices.Clone(m.words)}
}
