package cache

import (
	"github.com/Reed2006/PJ-Y86-64-Simulator/emu"
)

// MemoryBacking wraps an emu.Memory as a BackingStore. Accesses
// outside the image read as zero and drop writes, so block fills near
// the end of the address space stay safe.
type MemoryBacking struct {
	memory *emu.Memory
}

// NewMemoryBacking creates a MemoryBacking adapter.
func NewMemoryBacking(memory *emu.Memory) *MemoryBacking {
	return &MemoryBacking{memory: memory}
}

// Read fetches data from the backing memory.
func (m *MemoryBacking) Read(addr uint64, size int) []byte {
	data := make([]byte, size)
	for i := 0; i < size; i++ {
		b, err := m.memory.ByteAt(int64(addr) + int64(i))
		if err != nil {
			continue
		}
		data[i] = b
	}
	return data
}

// Write stores data to the backing memory.
func (m *MemoryBacking) Write(addr uint64, data []byte) {
	for i, b := range data {
		_ = m.memory.SetByte(int64(addr)+int64(i), b)
	}
}
