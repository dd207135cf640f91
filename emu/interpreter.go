// Package emu provides functional Y86-64 emulation.
package emu

import (
	"errors"

	"github.com/Reed2006/PJ-Y86-64-Simulator/insts"
)

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Inst is the decoded instruction, or nil if the fetch itself
	// faulted.
	Inst *insts.Instruction

	// Accesses lists the data memory accesses the instruction
	// performed, in execution order.
	Accesses []MemAccess

	// Err describes the fault when the step left the machine in
	// StatADR or StatINS.
	Err error
}

// Interpreter executes Y86-64 instructions against a Machine.
//
// The interpreter holds no architectural state of its own: all state
// lives in the Machine, so the same interpreter can drive any number
// of machines.
type Interpreter struct {
	decoder *insts.Decoder
}

// NewInterpreter creates a new Y86-64 interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{decoder: insts.NewDecoder()}
}

// Step fetches, decodes and executes a single instruction, advancing
// the machine's architectural state.
//
// A machine whose status is not StatAOK is left untouched. On an
// address or instruction fault the status changes to StatADR or
// StatINS and the PC stays at the faulting instruction. Successful
// steps, including the halt instruction, increment the cycle counter.
func (in *Interpreter) Step(m *Machine) StepResult {
	if m.Status != StatAOK {
		return StepResult{}
	}

	inst, err := in.decoder.Decode(m.Mem.Image(), m.PC)
	if err != nil {
		m.Status = faultStatus(err)
		return StepResult{Err: err}
	}

	res := StepResult{Inst: inst}
	in.execute(m, inst, &res)

	if m.Status == StatAOK || m.Status == StatHLT {
		m.Cycle++
	}
	return res
}

// faultStatus maps a decode or memory error to the machine status it
// raises.
func faultStatus(err error) Status {
	switch {
	case errors.Is(err, insts.ErrBadInstruction):
		return StatINS
	case errors.Is(err, insts.ErrBadAddress), errors.Is(err, ErrAddress):
		return StatADR
	default:
		return StatINS
	}
}

// execute dispatches and executes a decoded instruction.
func (in *Interpreter) execute(m *Machine, inst *insts.Instruction, res *StepResult) {
	switch inst.ICode {
	case insts.IHalt:
		m.Status = StatHLT
		m.PC += inst.Size
	case insts.INop:
		m.PC += inst.Size
	case insts.IRRMov:
		in.executeCMov(m, inst)
	case insts.IIRMov:
		m.Regs.Write(inst.RB, inst.Imm)
		m.PC += inst.Size
	case insts.IRMMov:
		in.executeRMMov(m, inst, res)
	case insts.IMRMov:
		in.executeMRMov(m, inst, res)
	case insts.IOpq:
		alu := NewALU(&m.Regs)
		alu.Op(inst.ALU(), inst.RA, inst.RB)
		m.PC += inst.Size
	case insts.IJXX:
		in.executeJump(m, inst)
	case insts.ICall:
		in.executeCall(m, inst, res)
	case insts.IRet:
		in.executeRet(m, inst, res)
	case insts.IPush:
		in.executePush(m, inst, res)
	case insts.IPop:
		in.executePop(m, inst, res)
	}
}

// executeCMov executes rrmovq and the conditional moves. The move
// happens only when the condition holds; the PC advances either way.
func (in *Interpreter) executeCMov(m *Machine, inst *insts.Instruction) {
	if m.Regs.CC.Check(inst.Cond()) {
		m.Regs.Write(inst.RB, m.Regs.Read(inst.RA))
	}
	m.PC += inst.Size
}

// executeRMMov executes rmmovq: mem[rb + D] = ra.
func (in *Interpreter) executeRMMov(m *Machine, inst *insts.Instruction, res *StepResult) {
	addr := int64(m.Regs.Read(inst.RB)) + int64(inst.Imm)
	value := m.Regs.Read(inst.RA)

	if err := m.Mem.WriteWord(addr, value); err != nil {
		in.fault(m, res, err)
		return
	}

	res.Accesses = append(res.Accesses, MemAccess{
		Kind: AccessStore, Addr: addr, Size: WordSize, Value: value,
	})
	m.PC += inst.Size
}

// executeMRMov executes mrmovq: ra = mem[rb + D].
func (in *Interpreter) executeMRMov(m *Machine, inst *insts.Instruction, res *StepResult) {
	addr := int64(m.Regs.Read(inst.RB)) + int64(inst.Imm)

	value, err := m.Mem.ReadWord(addr)
	if err != nil {
		in.fault(m, res, err)
		return
	}

	m.Regs.Write(inst.RA, value)
	res.Accesses = append(res.Accesses, MemAccess{
		Kind: AccessLoad, Addr: addr, Size: WordSize, Value: value,
	})
	m.PC += inst.Size
}

// executeJump executes jmp and the conditional jumps. The target is
// written to the PC unvalidated; a bad target surfaces as StatADR on
// the next fetch.
func (in *Interpreter) executeJump(m *Machine, inst *insts.Instruction) {
	if m.Regs.CC.Check(inst.Cond()) {
		m.PC = int64(inst.Imm)
		return
	}
	m.PC += inst.Size
}

// executeCall executes call: push the return address, then jump. If
// the push faults, neither the stack pointer nor the PC changes.
func (in *Interpreter) executeCall(m *Machine, inst *insts.Instruction, res *StepResult) {
	retAddr := uint64(m.PC + inst.Size)
	newSP := int64(m.Regs.Read(insts.RSP)) - WordSize

	if err := m.Mem.WriteWord(newSP, retAddr); err != nil {
		in.fault(m, res, err)
		return
	}

	m.Regs.Write(insts.RSP, uint64(newSP))
	res.Accesses = append(res.Accesses, MemAccess{
		Kind: AccessStore, Addr: newSP, Size: WordSize, Value: retAddr,
	})
	m.PC = int64(inst.Imm)
}

// executeRet executes ret: pop the return address into the PC, also
// unvalidated.
func (in *Interpreter) executeRet(m *Machine, inst *insts.Instruction, res *StepResult) {
	sp := int64(m.Regs.Read(insts.RSP))

	retAddr, err := m.Mem.ReadWord(sp)
	if err != nil {
		in.fault(m, res, err)
		return
	}

	m.Regs.Write(insts.RSP, uint64(sp+WordSize))
	res.Accesses = append(res.Accesses, MemAccess{
		Kind: AccessLoad, Addr: sp, Size: WordSize, Value: retAddr,
	})
	m.PC = int64(retAddr)
}

// executePush executes pushq. The pushed value is read before the
// stack pointer moves, so pushq %rsp pushes the old stack pointer.
func (in *Interpreter) executePush(m *Machine, inst *insts.Instruction, res *StepResult) {
	value := m.Regs.Read(inst.RA)
	newSP := int64(m.Regs.Read(insts.RSP)) - WordSize

	if err := m.Mem.WriteWord(newSP, value); err != nil {
		in.fault(m, res, err)
		return
	}

	m.Regs.Write(insts.RSP, uint64(newSP))
	res.Accesses = append(res.Accesses, MemAccess{
		Kind: AccessStore, Addr: newSP, Size: WordSize, Value: value,
	})
	m.PC += inst.Size
}

// executePop executes popq. The stack pointer is incremented before
// the destination register is written, so popq %rsp leaves the loaded
// value in %rsp.
func (in *Interpreter) executePop(m *Machine, inst *insts.Instruction, res *StepResult) {
	sp := int64(m.Regs.Read(insts.RSP))

	value, err := m.Mem.ReadWord(sp)
	if err != nil {
		in.fault(m, res, err)
		return
	}

	m.Regs.Write(insts.RSP, uint64(sp+WordSize))
	m.Regs.Write(inst.RA, value)
	res.Accesses = append(res.Accesses, MemAccess{
		Kind: AccessLoad, Addr: sp, Size: WordSize, Value: value,
	})
	m.PC += inst.Size
}

// fault records a data-access fault: the status changes, and the PC
// stays at the faulting instruction.
func (in *Interpreter) fault(m *Machine, res *StepResult, err error) {
	m.Status = faultStatus(err)
	res.Err = err
}
