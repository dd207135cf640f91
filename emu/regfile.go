// Package emu provides functional Y86-64 emulation.
package emu

import "github.com/Reed2006/PJ-Y86-64-Simulator/insts"

// RegFile represents the Y86-64 register file.
// It contains fifteen 64-bit general-purpose registers, %rax through
// %r14, and the condition codes set by the integer operations.
type RegFile struct {
	// R holds the general-purpose registers, indexed by register
	// specifier. The RNone sentinel (0xF) has no slot.
	R [insts.NumRegs]uint64

	// CC holds the condition codes.
	CC CC
}

// CC represents the Y86-64 condition codes.
type CC struct {
	// ZF is the zero flag.
	ZF bool
	// SF is the sign flag.
	SF bool
	// OF is the overflow flag.
	OF bool
}

// Read reads a register value. The RNone sentinel and out-of-range
// specifiers read as 0.
func (r *RegFile) Read(reg insts.Reg) uint64 {
	if reg >= insts.NumRegs {
		return 0
	}
	return r.R[reg]
}

// Write writes a value to a register. Writes to the RNone sentinel and
// out-of-range specifiers are ignored.
func (r *RegFile) Write(reg insts.Reg, value uint64) {
	if reg >= insts.NumRegs {
		return
	}
	r.R[reg] = value
}
