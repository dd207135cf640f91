package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Reed2006/PJ-Y86-64-Simulator/insts"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	Describe("One-byte instructions", func() {
		// halt -> 0x00
		It("should decode halt", func() {
			inst, err := decoder.Decode([]byte{0x00}, 0)

			Expect(err).ToNot(HaveOccurred())
			Expect(inst.ICode).To(Equal(insts.IHalt))
			Expect(inst.IFun).To(Equal(uint8(0)))
			Expect(inst.Size).To(Equal(int64(1)))
		})

		// nop -> 0x10
		It("should decode nop", func() {
			inst, err := decoder.Decode([]byte{0x10}, 0)

			Expect(err).ToNot(HaveOccurred())
			Expect(inst.ICode).To(Equal(insts.INop))
			Expect(inst.Size).To(Equal(int64(1)))
		})

		// ret -> 0x90
		It("should decode ret", func() {
			inst, err := decoder.Decode([]byte{0x90}, 0)

			Expect(err).ToNot(HaveOccurred())
			Expect(inst.ICode).To(Equal(insts.IRet))
			Expect(inst.Size).To(Equal(int64(1)))
		})
	})

	Describe("Register moves", func() {
		// rrmovq %rax, %rdx -> 0x20 0x02
		It("should decode rrmovq %rax, %rdx", func() {
			inst, err := decoder.Decode([]byte{0x20, 0x02}, 0)

			Expect(err).ToNot(HaveOccurred())
			Expect(inst.ICode).To(Equal(insts.IRRMov))
			Expect(inst.Cond()).To(Equal(insts.CondAlways))
			Expect(inst.RA).To(Equal(insts.RAX))
			Expect(inst.RB).To(Equal(insts.RDX))
			Expect(inst.Size).To(Equal(int64(2)))
			Expect(inst.Conditional()).To(BeFalse())
		})

		// cmovle %rsp, %rbp -> 0x21 0x45
		It("should decode cmovle %rsp, %rbp", func() {
			inst, err := decoder.Decode([]byte{0x21, 0x45}, 0)

			Expect(err).ToNot(HaveOccurred())
			Expect(inst.ICode).To(Equal(insts.IRRMov))
			Expect(inst.Cond()).To(Equal(insts.CondLE))
			Expect(inst.RA).To(Equal(insts.RSP))
			Expect(inst.RB).To(Equal(insts.RBP))
			Expect(inst.Conditional()).To(BeTrue())
		})

		// cmovne %rsi, %rdi -> 0x24 0x67
		It("should decode cmovne %rsi, %rdi", func() {
			inst, err := decoder.Decode([]byte{0x24, 0x67}, 0)

			Expect(err).ToNot(HaveOccurred())
			Expect(inst.Cond()).To(Equal(insts.CondNE))
			Expect(inst.RA).To(Equal(insts.RSI))
			Expect(inst.RB).To(Equal(insts.RDI))
		})

		// cmovg %r8, %r14 -> 0x26 0x8E
		It("should decode cmovg %r8, %r14", func() {
			inst, err := decoder.Decode([]byte{0x26, 0x8E}, 0)

			Expect(err).ToNot(HaveOccurred())
			Expect(inst.Cond()).To(Equal(insts.CondG))
			Expect(inst.RA).To(Equal(insts.R8))
			Expect(inst.RB).To(Equal(insts.R14))
		})
	})

	Describe("Immediate move", func() {
		// irmovq $0x100, %rsp -> 0x30 0xF4 00 01 00 00 00 00 00 00
		It("should decode irmovq $0x100, %rsp", func() {
			code := []byte{0x30, 0xF4, 0x00, 0x01, 0, 0, 0, 0, 0, 0}
			inst, err := decoder.Decode(code, 0)

			Expect(err).ToNot(HaveOccurred())
			Expect(inst.ICode).To(Equal(insts.IIRMov))
			Expect(inst.RA).To(Equal(insts.RNone))
			Expect(inst.RB).To(Equal(insts.RSP))
			Expect(inst.Imm).To(Equal(uint64(0x100)))
			Expect(inst.Size).To(Equal(int64(10)))
		})

		// irmovq $-1, %rax -> 0x30 0xF0 FF FF FF FF FF FF FF FF
		It("should decode irmovq $-1, %rax", func() {
			code := []byte{0x30, 0xF0, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
			inst, err := decoder.Decode(code, 0)

			Expect(err).ToNot(HaveOccurred())
			Expect(inst.RB).To(Equal(insts.RAX))
			Expect(int64(inst.Imm)).To(Equal(int64(-1)))
		})
	})

	Describe("Memory moves", func() {
		// rmmovq %rsi, 16(%rdx) -> 0x40 0x62 10 00 00 00 00 00 00 00
		It("should decode rmmovq %rsi, 16(%rdx)", func() {
			code := []byte{0x40, 0x62, 0x10, 0, 0, 0, 0, 0, 0, 0}
			inst, err := decoder.Decode(code, 0)

			Expect(err).ToNot(HaveOccurred())
			Expect(inst.ICode).To(Equal(insts.IRMMov))
			Expect(inst.RA).To(Equal(insts.RSI))
			Expect(inst.RB).To(Equal(insts.RDX))
			Expect(inst.Imm).To(Equal(uint64(16)))
			Expect(inst.Size).To(Equal(int64(10)))
		})

		// mrmovq 8(%rbp), %rcx -> 0x50 0x15 08 00 00 00 00 00 00 00
		It("should decode mrmovq 8(%rbp), %rcx", func() {
			code := []byte{0x50, 0x15, 0x08, 0, 0, 0, 0, 0, 0, 0}
			inst, err := decoder.Decode(code, 0)

			Expect(err).ToNot(HaveOccurred())
			Expect(inst.ICode).To(Equal(insts.IMRMov))
			Expect(inst.RA).To(Equal(insts.RCX))
			Expect(inst.RB).To(Equal(insts.RBP))
			Expect(inst.Imm).To(Equal(uint64(8)))
		})
	})

	Describe("Integer operations", func() {
		// addq %rsi, %rdi -> 0x60 0x67
		It("should decode addq %rsi, %rdi", func() {
			inst, err := decoder.Decode([]byte{0x60, 0x67}, 0)

			Expect(err).ToNot(HaveOccurred())
			Expect(inst.ICode).To(Equal(insts.IOpq))
			Expect(inst.ALU()).To(Equal(insts.ALUAdd))
			Expect(inst.RA).To(Equal(insts.RSI))
			Expect(inst.RB).To(Equal(insts.RDI))
		})

		// subq %rsi, %rdi -> 0x61 0x67
		It("should decode subq %rsi, %rdi", func() {
			inst, err := decoder.Decode([]byte{0x61, 0x67}, 0)

			Expect(err).ToNot(HaveOccurred())
			Expect(inst.ALU()).To(Equal(insts.ALUSub))
		})

		// andq %rax, %rbx -> 0x62 0x03
		It("should decode andq %rax, %rbx", func() {
			inst, err := decoder.Decode([]byte{0x62, 0x03}, 0)

			Expect(err).ToNot(HaveOccurred())
			Expect(inst.ALU()).To(Equal(insts.ALUAnd))
			Expect(inst.RA).To(Equal(insts.RAX))
			Expect(inst.RB).To(Equal(insts.RBX))
		})

		// xorq %rcx, %rcx -> 0x63 0x11
		It("should decode xorq %rcx, %rcx", func() {
			inst, err := decoder.Decode([]byte{0x63, 0x11}, 0)

			Expect(err).ToNot(HaveOccurred())
			Expect(inst.ALU()).To(Equal(insts.ALUXor))
			Expect(inst.RA).To(Equal(insts.RCX))
			Expect(inst.RB).To(Equal(insts.RCX))
		})
	})

	Describe("Jumps and calls", func() {
		// jmp 0x28 -> 0x70 28 00 00 00 00 00 00 00
		It("should decode jmp 0x28", func() {
			code := []byte{0x70, 0x28, 0, 0, 0, 0, 0, 0, 0}
			inst, err := decoder.Decode(code, 0)

			Expect(err).ToNot(HaveOccurred())
			Expect(inst.ICode).To(Equal(insts.IJXX))
			Expect(inst.Cond()).To(Equal(insts.CondAlways))
			Expect(inst.Imm).To(Equal(uint64(0x28)))
			Expect(inst.Size).To(Equal(int64(9)))
		})

		// jne 0x28 -> 0x74 28 00 00 00 00 00 00 00
		It("should decode jne 0x28", func() {
			code := []byte{0x74, 0x28, 0, 0, 0, 0, 0, 0, 0}
			inst, err := decoder.Decode(code, 0)

			Expect(err).ToNot(HaveOccurred())
			Expect(inst.Cond()).To(Equal(insts.CondNE))
			Expect(inst.Imm).To(Equal(uint64(0x28)))
		})

		// call 0x40 -> 0x80 40 00 00 00 00 00 00 00
		It("should decode call 0x40", func() {
			code := []byte{0x80, 0x40, 0, 0, 0, 0, 0, 0, 0}
			inst, err := decoder.Decode(code, 0)

			Expect(err).ToNot(HaveOccurred())
			Expect(inst.ICode).To(Equal(insts.ICall))
			Expect(inst.Imm).To(Equal(uint64(0x40)))
			Expect(inst.Size).To(Equal(int64(9)))
		})
	})

	Describe("Stack operations", func() {
		// pushq %rdi -> 0xA0 0x7F
		It("should decode pushq %rdi", func() {
			inst, err := decoder.Decode([]byte{0xA0, 0x7F}, 0)

			Expect(err).ToNot(HaveOccurred())
			Expect(inst.ICode).To(Equal(insts.IPush))
			Expect(inst.RA).To(Equal(insts.RDI))
			Expect(inst.RB).To(Equal(insts.RNone))
		})

		// popq %rax -> 0xB0 0x0F
		It("should decode popq %rax", func() {
			inst, err := decoder.Decode([]byte{0xB0, 0x0F}, 0)

			Expect(err).ToNot(HaveOccurred())
			Expect(inst.ICode).To(Equal(insts.IPop))
			Expect(inst.RA).To(Equal(insts.RAX))
			Expect(inst.RB).To(Equal(insts.RNone))
		})
	})

	Describe("Decoding at a non-zero PC", func() {
		It("should decode the instruction at the given offset", func() {
			// nop; addq %rax, %rcx
			code := []byte{0x10, 0x60, 0x01}
			inst, err := decoder.Decode(code, 1)

			Expect(err).ToNot(HaveOccurred())
			Expect(inst.ICode).To(Equal(insts.IOpq))
			Expect(inst.RA).To(Equal(insts.RAX))
			Expect(inst.RB).To(Equal(insts.RCX))
		})
	})

	Describe("Address faults", func() {
		It("should fail when the PC is outside memory", func() {
			_, err := decoder.Decode([]byte{0x00}, 1)

			Expect(err).To(MatchError(insts.ErrBadAddress))
		})

		It("should fail when the PC is negative", func() {
			_, err := decoder.Decode([]byte{0x00}, -1)

			Expect(err).To(MatchError(insts.ErrBadAddress))
		})

		It("should fail when the encoding runs past memory", func() {
			// irmovq truncated after 4 bytes
			_, err := decoder.Decode([]byte{0x30, 0xF0, 0x01, 0x02}, 0)

			Expect(err).To(MatchError(insts.ErrBadAddress))
		})

		It("should fail when a jump target word is truncated", func() {
			_, err := decoder.Decode([]byte{0x70, 0x28, 0x00}, 0)

			Expect(err).To(MatchError(insts.ErrBadAddress))
		})
	})

	Describe("Instruction faults", func() {
		It("should reject an unknown instruction class", func() {
			_, err := decoder.Decode([]byte{0xC0, 0x00}, 0)

			Expect(err).To(MatchError(insts.ErrBadInstruction))
		})

		It("should reject halt with a nonzero function code", func() {
			_, err := decoder.Decode([]byte{0x01}, 0)

			Expect(err).To(MatchError(insts.ErrBadInstruction))
		})

		It("should reject an out-of-range ALU function", func() {
			_, err := decoder.Decode([]byte{0x64, 0x01}, 0)

			Expect(err).To(MatchError(insts.ErrBadInstruction))
		})

		It("should reject an out-of-range jump condition", func() {
			code := []byte{0x77, 0, 0, 0, 0, 0, 0, 0, 0}
			_, err := decoder.Decode(code, 0)

			Expect(err).To(MatchError(insts.ErrBadInstruction))
		})

		It("should reject rrmovq with a missing register", func() {
			_, err := decoder.Decode([]byte{0x20, 0xF2}, 0)

			Expect(err).To(MatchError(insts.ErrBadInstruction))
		})

		It("should reject irmovq without the RNone marker", func() {
			code := []byte{0x30, 0x04, 0, 0, 0, 0, 0, 0, 0, 0}
			_, err := decoder.Decode(code, 0)

			Expect(err).To(MatchError(insts.ErrBadInstruction))
		})

		It("should reject pushq with a second register", func() {
			_, err := decoder.Decode([]byte{0xA0, 0x70}, 0)

			Expect(err).To(MatchError(insts.ErrBadInstruction))
		})

		It("should reject popq with a missing register", func() {
			_, err := decoder.Decode([]byte{0xB0, 0xFF}, 0)

			Expect(err).To(MatchError(insts.ErrBadInstruction))
		})
	})
})
