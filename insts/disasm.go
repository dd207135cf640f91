// Package insts provides Y86-64 instruction definitions and decoding.
package insts

import "fmt"

// regNames maps register specifiers to their assembly names.
var regNames = [NumRegs]string{
	"%rax", "%rcx", "%rdx", "%rbx", "%rsp", "%rbp", "%rsi", "%rdi",
	"%r8", "%r9", "%r10", "%r11", "%r12", "%r13", "%r14",
}

// RegName returns the assembly name of a register specifier, or "none"
// for the RNone sentinel.
func RegName(r Reg) string {
	if int(r) < len(regNames) {
		return regNames[r]
	}
	return "none"
}

// RegByName resolves an assembly register name, with or without the
// leading '%', to its specifier.
func RegByName(name string) (Reg, bool) {
	if len(name) > 0 && name[0] == '%' {
		name = name[1:]
	}
	for i, n := range regNames {
		if n[1:] == name {
			return Reg(i), true
		}
	}
	return RNone, false
}

// condSuffixes maps condition codes to mnemonic suffixes.
var condSuffixes = [...]string{"", "le", "l", "e", "ne", "ge", "g"}

// aluNames maps ALU functions to OPq mnemonics.
var aluNames = [...]string{"addq", "subq", "andq", "xorq"}

// Mnemonic returns the instruction's assembly mnemonic, resolving
// cmovXX, jXX and OPq variants from the function sub-code.
func (i *Instruction) Mnemonic() string {
	switch i.ICode {
	case IHalt:
		return "halt"
	case INop:
		return "nop"
	case IRRMov:
		if i.Cond() == CondAlways {
			return "rrmovq"
		}
		return "cmov" + condSuffix(i.Cond())
	case IIRMov:
		return "irmovq"
	case IRMMov:
		return "rmmovq"
	case IMRMov:
		return "mrmovq"
	case IOpq:
		if int(i.ALU()) < len(aluNames) {
			return aluNames[i.ALU()]
		}
		return fmt.Sprintf("opq(%#x)", i.IFun)
	case IJXX:
		if i.Cond() == CondAlways {
			return "jmp"
		}
		return "j" + condSuffix(i.Cond())
	case ICall:
		return "call"
	case IRet:
		return "ret"
	case IPush:
		return "pushq"
	case IPop:
		return "popq"
	default:
		return fmt.Sprintf("unknown(%#x)", uint8(i.ICode))
	}
}

func condSuffix(c Cond) string {
	if int(c) < len(condSuffixes) {
		return condSuffixes[c]
	}
	return fmt.Sprintf("cc(%#x)", uint8(c))
}

// String renders the instruction in Y86-64 assembly syntax. Immediate
// values and displacements print as signed decimal, jump and call
// targets as hexadecimal addresses.
func (i *Instruction) String() string {
	m := i.Mnemonic()
	switch i.ICode {
	case IRRMov, IOpq:
		return fmt.Sprintf("%s %s, %s", m, RegName(i.RA), RegName(i.RB))
	case IIRMov:
		return fmt.Sprintf("%s $%d, %s", m, int64(i.Imm), RegName(i.RB))
	case IRMMov:
		return fmt.Sprintf("%s %s, %d(%s)", m, RegName(i.RA), int64(i.Imm), RegName(i.RB))
	case IMRMov:
		return fmt.Sprintf("%s %d(%s), %s", m, int64(i.Imm), RegName(i.RB), RegName(i.RA))
	case IJXX, ICall:
		return fmt.Sprintf("%s 0x%x", m, i.Imm)
	case IPush, IPop:
		return fmt.Sprintf("%s %s", m, RegName(i.RA))
	default:
		return m
	}
}
