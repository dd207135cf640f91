// Package emu provides functional Y86-64 emulation.
package emu

import (
	"fmt"

	"github.com/Reed2006/PJ-Y86-64-Simulator/insts"
)

// Status represents the Y86-64 processor status.
type Status uint8

// Y86-64 status codes. The machine executes only while in StatAOK;
// every other status stops it.
const (
	StatAOK Status = 1 // executing normally
	StatHLT Status = 2 // halt instruction executed
	StatADR Status = 3 // invalid memory address
	StatINS Status = 4 // invalid instruction
)

// String returns the conventional Y86-64 status name.
func (s Status) String() string {
	switch s {
	case StatAOK:
		return "AOK"
	case StatHLT:
		return "HLT"
	case StatADR:
		return "ADR"
	case StatINS:
		return "INS"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// Halted reports whether the status stops execution.
func (s Status) Halted() bool {
	return s != StatAOK
}

// Machine holds the complete architectural state of a Y86-64 processor:
// program counter, status, register file with condition codes, main
// memory, and the count of instructions completed so far.
type Machine struct {
	// PC is the program counter. It may hold any value; an invalid
	// PC surfaces as StatADR on the next fetch.
	PC int64

	// Status is the processor status.
	Status Status

	// Regs is the register file, including the condition codes.
	Regs RegFile

	// Mem is the main memory.
	Mem *Memory

	// Cycle counts completed instructions.
	Cycle uint64
}

// NewMachine creates a machine in the Y86-64 initial state: all
// registers zero except the stack pointer at the top of memory, ZF
// set, every other flag clear, status AOK, and the PC at the given
// entry address.
func NewMachine(entry int64) *Machine {
	m := &Machine{
		PC:     entry,
		Status: StatAOK,
		Mem:    NewMemory(),
	}
	m.Regs.Write(insts.RSP, MemSize)
	m.Regs.CC.ZF = true
	return m
}
