// Package insts provides Y86-64 instruction definitions and decoding.
//
// This package implements decoding of Y86-64 object code into structured
// instruction representations. It supports the full sequential instruction
// set:
//   - halt, nop
//   - rrmovq and the conditional moves (cmovle, cmovl, cmove, cmovne, cmovge, cmovg)
//   - irmovq, rmmovq, mrmovq
//   - Integer operations: addq, subq, andq, xorq
//   - Jumps: jmp, jle, jl, je, jne, jge, jg
//   - call, ret, pushq, popq
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst, err := decoder.Decode(image, 0x014) // e.g. addq %rsi, %rdi
//	fmt.Printf("ICode: %v, RA: %v, RB: %v\n", inst.ICode, inst.RA, inst.RB)
package insts
