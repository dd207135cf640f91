// Package emu provides functional Y86-64 emulation.
package emu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
)

// MemSize is the size of the Y86-64 address space in bytes.
const MemSize = 32768

// WordSize is the width of a Y86-64 memory word in bytes.
const WordSize = 8

// ErrAddress reports a memory access that falls outside the address
// space (the machine-level ADR condition).
var ErrAddress = errors.New("memory address out of range")

// Memory represents the Y86-64 main memory: a fixed byte-addressable
// image of MemSize bytes. Word access is little-endian and may be
// unaligned, but every byte of an access must lie inside the image.
type Memory struct {
	data [MemSize]byte
}

// NewMemory creates a zeroed memory image.
func NewMemory() *Memory {
	return &Memory{}
}

// Size returns the size of the address space in bytes.
func (m *Memory) Size() int64 {
	return MemSize
}

// InRange reports whether an n-byte access at addr lies inside memory.
// The comparison is arranged so that addresses near the int64 limits
// cannot overflow past the bound.
func (m *Memory) InRange(addr, n int64) bool {
	return addr >= 0 && n >= 0 && n <= MemSize && addr <= MemSize-n
}

// ReadWord reads the 8-byte little-endian word at addr.
func (m *Memory) ReadWord(addr int64) (uint64, error) {
	if !m.InRange(addr, WordSize) {
		return 0, fmt.Errorf("%w: 8-byte read at %#x", ErrAddress, addr)
	}
	return binary.LittleEndian.Uint64(m.data[addr : addr+WordSize]), nil
}

// WriteWord writes the 8-byte little-endian word at addr.
func (m *Memory) WriteWord(addr int64, value uint64) error {
	if !m.InRange(addr, WordSize) {
		return fmt.Errorf("%w: 8-byte write at %#x", ErrAddress, addr)
	}
	binary.LittleEndian.PutUint64(m.data[addr:addr+WordSize], value)
	return nil
}

// ByteAt reads the byte at addr.
func (m *Memory) ByteAt(addr int64) (byte, error) {
	if !m.InRange(addr, 1) {
		return 0, fmt.Errorf("%w: byte read at %#x", ErrAddress, addr)
	}
	return m.data[addr], nil
}

// SetByte writes the byte at addr.
func (m *Memory) SetByte(addr int64, value byte) error {
	if !m.InRange(addr, 1) {
		return fmt.Errorf("%w: byte write at %#x", ErrAddress, addr)
	}
	m.data[addr] = value
	return nil
}

// Load copies raw bytes into memory starting at addr.
func (m *Memory) Load(addr int64, data []byte) error {
	if !m.InRange(addr, int64(len(data))) {
		return fmt.Errorf("%w: %d-byte load at %#x", ErrAddress, len(data), addr)
	}
	copy(m.data[addr:], data)
	return nil
}

// Image returns the backing byte image. The slice aliases the memory
// contents, so writes through either view are visible to both.
func (m *Memory) Image() []byte {
	return m.data[:]
}

// Clone returns a deep copy of the memory image.
func (m *Memory) Clone() *Memory {
	c := *m
	return &c
}

// WordAlign rounds addr down to the enclosing word-aligned address.
func WordAlign(addr int64) int64 {
	return addr &^ (WordSize - 1)
}

// WordSet tracks a set of word-aligned memory addresses, used to record
// which words a program load or an execution has touched.
type WordSet map[int64]struct{}

// NewWordSet creates an empty word set.
func NewWordSet() WordSet {
	return make(WordSet)
}

// Touch marks every word covered by an n-byte access at addr. An
// unaligned word access marks both words it straddles.
func (s WordSet) Touch(addr, n int64) {
	if n <= 0 {
		return
	}
	first := WordAlign(addr)
	last := WordAlign(addr + n - 1)
	for a := first; a <= last; a += WordSize {
		s[a] = struct{}{}
	}
}

// Addrs returns the touched word addresses in ascending order.
func (s WordSet) Addrs() []int64 {
	addrs := make([]int64, 0, len(s))
	for a := range s {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}

// AccessKind classifies a memory access.
type AccessKind uint8

// Memory access kinds.
const (
	AccessFetch AccessKind = iota // instruction fetch
	AccessLoad                    // data read
	AccessStore                   // data write
)

// String returns the access kind name.
func (k AccessKind) String() string {
	switch k {
	case AccessFetch:
		return "fetch"
	case AccessLoad:
		return "load"
	case AccessStore:
		return "store"
	default:
		return fmt.Sprintf("AccessKind(%d)", uint8(k))
	}
}

// MemAccess records a single memory access performed during execution.
type MemAccess struct {
	Kind  AccessKind // fetch, load or store
	Addr  int64      // byte address of the access
	Size  int64      // access width in bytes
	Value uint64     // value loaded or stored (0 for fetches)
}
