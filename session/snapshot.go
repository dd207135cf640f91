package session

import (
	"time"

	"github.com/rs/xid"

	"github.com/Reed2006/PJ-Y86-64-Simulator/emu"
	"github.com/Reed2006/PJ-Y86-64-Simulator/insts"
)

// Snapshot is a deep copy of the machine state at one replayed step,
// kept for history navigation. Snapshots are created as the session
// steps and never mutated afterwards; restoring one moves the replay
// cursor back to the step it was taken at.
type Snapshot struct {
	// ID identifies the snapshot across the session.
	ID string

	// Time is the wall-clock time the step was replayed.
	Time time.Time

	// Cycle is the replay cursor position the snapshot was taken at.
	Cycle uint64

	// PC is the program counter.
	PC int64

	// Status is the machine status.
	Status emu.Status

	// Regs holds the register file contents.
	Regs [insts.NumRegs]uint64

	// CC holds the condition codes.
	CC emu.CC

	// Mem is a full copy of the memory image.
	Mem []byte

	// Label is the disassembled instruction at PC, or "" when the
	// bytes there do not decode.
	Label string
}

// snapshotNow deep-copies the given state into a fresh snapshot.
func snapshotNow(cycle uint64, pc int64, status emu.Status,
	regs [insts.NumRegs]uint64, cc emu.CC, mem *emu.Memory, label string,
) *Snapshot {
	memCopy := make([]byte, mem.Size())
	copy(memCopy, mem.Image())

	return &Snapshot{
		ID:     xid.New().String(),
		Time:   time.Now(),
		Cycle:  cycle,
		PC:     pc,
		Status: status,
		Regs:   regs,
		CC:     cc,
		Mem:    memCopy,
		Label:  label,
	}
}
