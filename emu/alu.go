// Package emu provides functional Y86-64 emulation.
package emu

import "github.com/Reed2006/PJ-Y86-64-Simulator/insts"

// ALU implements the Y86-64 integer operations.
type ALU struct {
	regFile *RegFile
}

// NewALU creates a new ALU connected to the given register file.
func NewALU(regFile *RegFile) *ALU {
	return &ALU{regFile: regFile}
}

// Op performs an OPq instruction: rb = rb op ra. All operations are
// 64-bit two's-complement and set ZF/SF/OF from the result. Returns
// the result.
func (a *ALU) Op(fn insts.ALUFunc, ra, rb insts.Reg) uint64 {
	valA := a.regFile.Read(ra)
	valB := a.regFile.Read(rb)

	var result uint64
	switch fn {
	case insts.ALUAdd:
		result = valB + valA
		a.setAddFlags(valA, valB, result)
	case insts.ALUSub:
		result = valB - valA
		a.setSubFlags(valA, valB, result)
	case insts.ALUAnd:
		result = valB & valA
		a.setLogicFlags(result)
	case insts.ALUXor:
		result = valB ^ valA
		a.setLogicFlags(result)
	}

	a.regFile.Write(rb, result)
	return result
}

// setAddFlags sets ZF/SF/OF for addition.
func (a *ALU) setAddFlags(valA, valB, result uint64) {
	cc := &a.regFile.CC

	// ZF: set if the result is zero
	cc.ZF = result == 0

	// SF: set if the result is negative (MSB is 1)
	cc.SF = (result >> 63) == 1

	// OF: set on signed overflow
	// Overflow occurs when adding two operands of the same sign
	// gives a result of the opposite sign.
	aSign := valA >> 63
	bSign := valB >> 63
	resultSign := result >> 63
	cc.OF = (aSign == bSign) && (aSign != resultSign)
}

// setSubFlags sets ZF/SF/OF for subtraction (result = valB - valA).
func (a *ALU) setSubFlags(valA, valB, result uint64) {
	cc := &a.regFile.CC

	// ZF: set if the result is zero
	cc.ZF = result == 0

	// SF: set if the result is negative
	cc.SF = (result >> 63) == 1

	// OF: set on signed overflow
	// Overflow occurs when the operands differ in sign and the
	// result's sign differs from the minuend's.
	aSign := valA >> 63
	bSign := valB >> 63
	resultSign := result >> 63
	cc.OF = (aSign != bSign) && (bSign != resultSign)
}

// setLogicFlags sets ZF/SF for the logical operations (OF is cleared).
func (a *ALU) setLogicFlags(result uint64) {
	cc := &a.regFile.CC
	cc.ZF = result == 0
	cc.SF = (result >> 63) == 1
	cc.OF = false
}
