// Package insts provides Y86-64 instruction definitions and decoding.
package insts

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ICode represents a Y86-64 instruction class, the high nibble of the
// opcode byte.
type ICode uint8

// Y86-64 instruction classes.
const (
	IHalt  ICode = 0x0 // halt
	INop   ICode = 0x1 // nop
	IRRMov ICode = 0x2 // rrmovq / cmovXX (ifun selects the condition)
	IIRMov ICode = 0x3 // irmovq
	IRMMov ICode = 0x4 // rmmovq
	IMRMov ICode = 0x5 // mrmovq
	IOpq   ICode = 0x6 // addq/subq/andq/xorq (ifun selects the function)
	IJXX   ICode = 0x7 // jmp/jXX (ifun selects the condition)
	ICall  ICode = 0x8 // call
	IRet   ICode = 0x9 // ret
	IPush  ICode = 0xA // pushq
	IPop   ICode = 0xB // popq
)

// Reg represents a 4-bit Y86-64 register specifier.
type Reg uint8

// Y86-64 register specifiers. RNone (0xF) is not a register: it is the
// sentinel placed in instruction fields whose operand is absent.
const (
	RAX Reg = 0x0
	RCX Reg = 0x1
	RDX Reg = 0x2
	RBX Reg = 0x3
	RSP Reg = 0x4
	RBP Reg = 0x5
	RSI Reg = 0x6
	RDI Reg = 0x7
	R8  Reg = 0x8
	R9  Reg = 0x9
	R10 Reg = 0xA
	R11 Reg = 0xB
	R12 Reg = 0xC
	R13 Reg = 0xD
	R14 Reg = 0xE

	RNone Reg = 0xF
)

// NumRegs is the number of addressable registers (RNone excluded).
const NumRegs = 15

// Cond represents a Y86-64 condition code, the ifun of rrmovq/cmovXX
// and jmp/jXX instructions.
type Cond uint8

// Y86-64 condition codes.
const (
	CondAlways Cond = 0x0 // unconditional
	CondLE     Cond = 0x1 // less or equal (SF != OF || ZF)
	CondL      Cond = 0x2 // less (SF != OF)
	CondE      Cond = 0x3 // equal (ZF)
	CondNE     Cond = 0x4 // not equal (!ZF)
	CondGE     Cond = 0x5 // greater or equal (SF == OF)
	CondG      Cond = 0x6 // greater (!ZF && SF == OF)
)

// ALUFunc represents a Y86-64 integer operation, the ifun of OPq
// instructions.
type ALUFunc uint8

// Y86-64 integer operations.
const (
	ALUAdd ALUFunc = 0x0 // addq
	ALUSub ALUFunc = 0x1 // subq
	ALUAnd ALUFunc = 0x2 // andq
	ALUXor ALUFunc = 0x3 // xorq
)

// Decoding errors. ErrBadAddress reports a fetch that runs outside the
// memory image (the machine-level ADR condition); ErrBadInstruction
// reports an unknown icode/ifun or an ill-formed register field (INS).
var (
	ErrBadAddress     = errors.New("instruction fetch outside memory")
	ErrBadInstruction = errors.New("invalid instruction")
)

// Instruction represents a decoded Y86-64 instruction.
type Instruction struct {
	ICode ICode // instruction class
	IFun  uint8 // function sub-code (condition or ALU function)

	RA Reg // first register field (RNone when absent)
	RB Reg // second register field (RNone when absent)

	// Imm holds the 8-byte little-endian constant word: the irmovq
	// value, the rmmovq/mrmovq displacement, or the jXX/call target.
	Imm uint64

	// Size is the encoded length in bytes (1, 2, 9 or 10).
	Size int64
}

// Cond returns the instruction's condition code. Meaningful only for
// IRRMov and IJXX.
func (i *Instruction) Cond() Cond {
	return Cond(i.IFun)
}

// ALU returns the instruction's integer operation. Meaningful only for
// IOpq.
func (i *Instruction) ALU() ALUFunc {
	return ALUFunc(i.IFun)
}

// Conditional reports whether the instruction is an rrmovq carrying a
// non-trivial condition (a cmovXX).
func (i *Instruction) Conditional() bool {
	return i.ICode == IRRMov && Cond(i.IFun) != CondAlways
}

// EncodedSize returns the encoding length in bytes for an instruction
// class, or 0 if the class is unknown.
func EncodedSize(icode ICode) int64 {
	switch icode {
	case IHalt, INop, IRet:
		return 1
	case IRRMov, IOpq, IPush, IPop:
		return 2
	case IJXX, ICall:
		return 9
	case IIRMov, IRMMov, IMRMov:
		return 10
	default:
		return 0
	}
}

// Decoder decodes Y86-64 object code into instructions.
type Decoder struct{}

// NewDecoder creates a new Y86-64 instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes the instruction at pc within the given memory image.
// All bytes of the encoding must lie inside the image or the decode
// fails with ErrBadAddress. Unknown classes, out-of-range function
// codes, and register fields that violate the encoding (a required
// register absent, or a register present where the encoding demands
// the RNone sentinel) fail with ErrBadInstruction.
func (d *Decoder) Decode(image []byte, pc int64) (*Instruction, error) {
	if pc < 0 || pc >= int64(len(image)) {
		return nil, fmt.Errorf("%w: pc=%#x", ErrBadAddress, pc)
	}

	opcode := image[pc]
	inst := &Instruction{
		ICode: ICode(opcode >> 4),
		IFun:  opcode & 0xF,
		RA:    RNone,
		RB:    RNone,
	}

	inst.Size = EncodedSize(inst.ICode)
	if inst.Size == 0 {
		return nil, fmt.Errorf("%w: opcode %#02x at pc=%#x", ErrBadInstruction, opcode, pc)
	}
	if pc+inst.Size > int64(len(image)) {
		return nil, fmt.Errorf("%w: %d-byte encoding at pc=%#x runs past memory",
			ErrBadAddress, inst.Size, pc)
	}

	if err := d.checkIFun(inst); err != nil {
		return nil, fmt.Errorf("%w at pc=%#x", err, pc)
	}

	// Register specifier byte, where the encoding carries one.
	switch inst.ICode {
	case IRRMov, IIRMov, IRMMov, IMRMov, IOpq, IPush, IPop:
		regs := image[pc+1]
		inst.RA = Reg(regs >> 4)
		inst.RB = Reg(regs & 0xF)
		if err := d.checkRegs(inst); err != nil {
			return nil, fmt.Errorf("%w at pc=%#x", err, pc)
		}
	}

	// Constant word, where the encoding carries one.
	switch inst.ICode {
	case IIRMov, IRMMov, IMRMov:
		inst.Imm = binary.LittleEndian.Uint64(image[pc+2 : pc+10])
	case IJXX, ICall:
		inst.Imm = binary.LittleEndian.Uint64(image[pc+1 : pc+9])
	}

	return inst, nil
}

// checkIFun validates the function sub-code against the instruction class.
func (d *Decoder) checkIFun(inst *Instruction) error {
	switch inst.ICode {
	case IRRMov, IJXX:
		if Cond(inst.IFun) > CondG {
			return fmt.Errorf("%w: condition code %#x", ErrBadInstruction, inst.IFun)
		}
	case IOpq:
		if ALUFunc(inst.IFun) > ALUXor {
			return fmt.Errorf("%w: ALU function %#x", ErrBadInstruction, inst.IFun)
		}
	default:
		if inst.IFun != 0 {
			return fmt.Errorf("%w: nonzero ifun %#x for icode %#x",
				ErrBadInstruction, inst.IFun, uint8(inst.ICode))
		}
	}
	return nil
}

// checkRegs validates the register specifier byte against the encoding.
func (d *Decoder) checkRegs(inst *Instruction) error {
	switch inst.ICode {
	case IRRMov, IOpq, IRMMov, IMRMov:
		if inst.RA == RNone || inst.RB == RNone {
			return fmt.Errorf("%w: missing register operand", ErrBadInstruction)
		}
	case IIRMov:
		if inst.RA != RNone || inst.RB == RNone {
			return fmt.Errorf("%w: bad irmovq register byte", ErrBadInstruction)
		}
	case IPush, IPop:
		if inst.RA == RNone || inst.RB != RNone {
			return fmt.Errorf("%w: bad stack-op register byte", ErrBadInstruction)
		}
	}
	return nil
}
