package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Reed2006/PJ-Y86-64-Simulator/emu"
	"github.com/Reed2006/PJ-Y86-64-Simulator/insts"
)

var _ = Describe("ALU", func() {
	var (
		rf  *emu.RegFile
		alu *emu.ALU
	)

	BeforeEach(func() {
		rf = &emu.RegFile{}
		alu = emu.NewALU(rf)
	})

	// op runs rb = rb fn ra with the given operand values and returns
	// the result.
	op := func(fn insts.ALUFunc, a, b uint64) uint64 {
		rf.Write(insts.RAX, a)
		rf.Write(insts.RBX, b)
		return alu.Op(fn, insts.RAX, insts.RBX)
	}

	Describe("addq", func() {
		It("should add and write the destination register", func() {
			result := op(insts.ALUAdd, 3, 2)

			Expect(result).To(Equal(uint64(5)))
			Expect(rf.Read(insts.RBX)).To(Equal(uint64(5)))
			Expect(rf.Read(insts.RAX)).To(Equal(uint64(3)))
			Expect(rf.CC).To(Equal(emu.CC{}))
		})

		It("should wrap around on unsigned overflow", func() {
			result := op(insts.ALUAdd, 1, 0xFFFFFFFFFFFFFFFF)

			Expect(result).To(Equal(uint64(0)))
			Expect(rf.CC.ZF).To(BeTrue())
			Expect(rf.CC.OF).To(BeFalse())
		})

		It("should set OF when two positives give a negative", func() {
			result := op(insts.ALUAdd, 1, 0x7FFFFFFFFFFFFFFF)

			Expect(result).To(Equal(uint64(0x8000000000000000)))
			Expect(rf.CC.SF).To(BeTrue())
			Expect(rf.CC.OF).To(BeTrue())
			Expect(rf.CC.ZF).To(BeFalse())
		})

		It("should set OF when two negatives give a non-negative", func() {
			result := op(insts.ALUAdd, 0x8000000000000000, 0x8000000000000000)

			Expect(result).To(Equal(uint64(0)))
			Expect(rf.CC.ZF).To(BeTrue())
			Expect(rf.CC.SF).To(BeFalse())
			Expect(rf.CC.OF).To(BeTrue())
		})

		It("should not set OF when operand signs differ", func() {
			op(insts.ALUAdd, 0xFFFFFFFFFFFFFFFF, 5) // 5 + (-1)

			Expect(rf.CC.OF).To(BeFalse())
			Expect(rf.CC.SF).To(BeFalse())
		})
	})

	Describe("subq", func() {
		It("should compute rb - ra", func() {
			result := op(insts.ALUSub, 3, 5)

			Expect(result).To(Equal(uint64(2)))
			Expect(rf.CC).To(Equal(emu.CC{}))
		})

		It("should set SF on a negative result", func() {
			result := op(insts.ALUSub, 5, 3) // 3 - 5

			Expect(int64(result)).To(Equal(int64(-2)))
			Expect(rf.CC.SF).To(BeTrue())
			Expect(rf.CC.OF).To(BeFalse())
		})

		It("should set ZF when the operands are equal", func() {
			op(insts.ALUSub, 7, 7)

			Expect(rf.CC.ZF).To(BeTrue())
			Expect(rf.CC.SF).To(BeFalse())
		})

		It("should set OF when min-int minus a positive wraps", func() {
			result := op(insts.ALUSub, 1, 0x8000000000000000)

			Expect(result).To(Equal(uint64(0x7FFFFFFFFFFFFFFF)))
			Expect(rf.CC.SF).To(BeFalse())
			Expect(rf.CC.OF).To(BeTrue())
		})

		It("should set OF when max-int minus a negative wraps", func() {
			result := op(insts.ALUSub, 0xFFFFFFFFFFFFFFFF, 0x7FFFFFFFFFFFFFFF)

			Expect(result).To(Equal(uint64(0x8000000000000000)))
			Expect(rf.CC.SF).To(BeTrue())
			Expect(rf.CC.OF).To(BeTrue())
		})

		It("should never set OF when operand signs match", func() {
			op(insts.ALUSub, 0x8000000000000001, 0x8000000000000000)

			Expect(rf.CC.SF).To(BeTrue()) // result -1
			Expect(rf.CC.OF).To(BeFalse())
		})
	})

	Describe("andq", func() {
		It("should AND and clear OF", func() {
			rf.CC.OF = true

			result := op(insts.ALUAnd, 0x0F, 0xF0)

			Expect(result).To(Equal(uint64(0)))
			Expect(rf.CC.ZF).To(BeTrue())
			Expect(rf.CC.OF).To(BeFalse())
		})

		It("should set SF from the result's sign bit", func() {
			op(insts.ALUAnd, 0x8000000000000000, 0xFFFFFFFFFFFFFFFF)

			Expect(rf.CC.SF).To(BeTrue())
			Expect(rf.CC.ZF).To(BeFalse())
		})
	})

	Describe("xorq", func() {
		It("should XOR and clear OF", func() {
			rf.CC.OF = true

			result := op(insts.ALUXor, 0xFF00, 0x0FF0)

			Expect(result).To(Equal(uint64(0xF0F0)))
			Expect(rf.CC.OF).To(BeFalse())
			Expect(rf.CC.ZF).To(BeFalse())
		})

		It("should zero a register XORed with itself", func() {
			rf.Write(insts.RCX, 0x1234)

			alu.Op(insts.ALUXor, insts.RCX, insts.RCX)

			Expect(rf.Read(insts.RCX)).To(Equal(uint64(0)))
			Expect(rf.CC.ZF).To(BeTrue())
		})
	})
})
