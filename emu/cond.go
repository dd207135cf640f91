// Package emu provides functional Y86-64 emulation.
package emu

import "github.com/Reed2006/PJ-Y86-64-Simulator/insts"

// Check evaluates a Y86-64 condition code against the condition codes.
// Both the conditional moves and the conditional jumps use the same
// seven conditions.
func (cc CC) Check(cond insts.Cond) bool {
	switch cond {
	case insts.CondAlways:
		// Unconditional
		return true
	case insts.CondLE:
		// Less or equal: (SF != OF) || ZF
		return (cc.SF != cc.OF) || cc.ZF
	case insts.CondL:
		// Less: SF != OF
		return cc.SF != cc.OF
	case insts.CondE:
		// Equal: ZF == 1
		return cc.ZF
	case insts.CondNE:
		// Not equal: ZF == 0
		return !cc.ZF
	case insts.CondGE:
		// Greater or equal: SF == OF
		return cc.SF == cc.OF
	case insts.CondG:
		// Greater: !ZF && SF == OF
		return !cc.ZF && (cc.SF == cc.OF)
	default:
		return false
	}
}
