// Package trace provides eager Y86-64 execution tracing and replay.
//
// A program is executed to completion up front; every architectural
// state the machine passes through is serialized into a Trace. All
// later inspection, stepping and rewinding happens by replaying trace
// entries, never by re-executing the program.
package trace

import (
	"fmt"

	"github.com/Reed2006/PJ-Y86-64-Simulator/emu"
	"github.com/Reed2006/PJ-Y86-64-Simulator/insts"
)

// WordDelta records the value of one word-aligned memory word after a
// step.
type WordDelta struct {
	// Addr is the word-aligned byte address.
	Addr int64
	// Value is the word's little-endian value after the step.
	Value uint64
}

// Entry is one serialized machine state. Entry 0 is the state before
// any instruction runs; entry i is the state after i steps.
type Entry struct {
	// PC is the program counter.
	PC int64

	// Status is the processor status.
	Status emu.Status

	// Regs holds the register file contents.
	Regs [insts.NumRegs]uint64

	// CC holds the condition codes.
	CC emu.CC

	// MemDelta lists the memory words the step changed, in ascending
	// address order. For entry 0 it lists the words the loader
	// populated, so replaying deltas over zeroed memory reproduces
	// every state.
	MemDelta []WordDelta

	// Accesses lists the memory accesses of the step that produced
	// this entry: the instruction fetch first, then data accesses in
	// execution order. Entry 0 and fetch-fault entries carry none.
	Accesses []emu.MemAccess
}

// Trace is a complete serialized execution.
type Trace struct {
	// Entries holds the machine states in execution order.
	Entries []Entry

	// LimitHit reports that the run was cut off at the step limit, in
	// which case the final entry's HLT status is forced rather than
	// the result of a halt instruction.
	LimitHit bool
}

// Len returns the number of entries.
func (t *Trace) Len() int {
	return len(t.Entries)
}

// At returns the entry at index i.
func (t *Trace) At(i int) *Entry {
	return &t.Entries[i]
}

// Last returns the final entry.
func (t *Trace) Last() *Entry {
	return &t.Entries[len(t.Entries)-1]
}

// View replays a trace as a movable cursor over machine states. The
// view owns a private memory image that it keeps synchronized with the
// cursor by applying entry deltas.
type View struct {
	trace *Trace
	pos   int
	mem   *emu.Memory
}

// NewView creates a view positioned at entry 0.
func NewView(t *Trace) *View {
	v := &View{trace: t, mem: emu.NewMemory()}
	v.applyDelta(0)
	return v
}

// Pos returns the cursor position.
func (v *View) Pos() int {
	return v.pos
}

// Len returns the trace length.
func (v *View) Len() int {
	return len(v.trace.Entries)
}

// Entry returns the entry at the cursor.
func (v *View) Entry() *Entry {
	return &v.trace.Entries[v.pos]
}

// Mem returns the replayed memory image at the cursor. The image is
// owned by the view; callers must not modify it.
func (v *View) Mem() *emu.Memory {
	return v.mem
}

// Seek moves the cursor to pos. Forward movement applies the deltas of
// the entries it passes; backward movement rebuilds from entry 0.
func (v *View) Seek(pos int) error {
	if pos < 0 || pos >= len(v.trace.Entries) {
		return fmt.Errorf("trace position %d out of range [0, %d)",
			pos, len(v.trace.Entries))
	}

	if pos < v.pos {
		v.mem = emu.NewMemory()
		v.pos = 0
		v.applyDelta(0)
	}
	for v.pos < pos {
		v.pos++
		v.applyDelta(v.pos)
	}
	return nil
}

// applyDelta applies the memory delta of entry i to the view image.
func (v *View) applyDelta(i int) {
	for _, d := range v.trace.Entries[i].MemDelta {
		// Deltas come from bounds-checked accesses, so the write
		// cannot fail.
		_ = v.mem.WriteWord(d.Addr, d.Value)
	}
}
