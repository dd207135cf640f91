package emu_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Reed2006/PJ-Y86-64-Simulator/emu"
)

var _ = Describe("Memory", func() {
	var mem *emu.Memory

	BeforeEach(func() {
		mem = emu.NewMemory()
	})

	Describe("Word access", func() {
		It("should read back written words", func() {
			Expect(mem.WriteWord(0x100, 0xDEADBEEFCAFEF00D)).To(Succeed())

			word, err := mem.ReadWord(0x100)
			Expect(err).ToNot(HaveOccurred())
			Expect(word).To(Equal(uint64(0xDEADBEEFCAFEF00D)))
		})

		It("should store words little-endian", func() {
			Expect(mem.WriteWord(0x10, 0x0807060504030201)).To(Succeed())

			b, err := mem.ByteAt(0x10)
			Expect(err).ToNot(HaveOccurred())
			Expect(b).To(Equal(byte(0x01)))

			b, err = mem.ByteAt(0x17)
			Expect(err).ToNot(HaveOccurred())
			Expect(b).To(Equal(byte(0x08)))
		})

		It("should allow unaligned word access", func() {
			Expect(mem.WriteWord(0x103, 0x1122334455667788)).To(Succeed())

			word, err := mem.ReadWord(0x103)
			Expect(err).ToNot(HaveOccurred())
			Expect(word).To(Equal(uint64(0x1122334455667788)))
		})

		It("should allow a word access touching the last byte", func() {
			Expect(mem.WriteWord(emu.MemSize-8, 0x42)).To(Succeed())

			word, err := mem.ReadWord(emu.MemSize - 8)
			Expect(err).ToNot(HaveOccurred())
			Expect(word).To(Equal(uint64(0x42)))
		})
	})

	Describe("Bounds checking", func() {
		It("should reject a word access running past the end", func() {
			err := mem.WriteWord(emu.MemSize-7, 1)
			Expect(err).To(MatchError(emu.ErrAddress))

			_, err = mem.ReadWord(emu.MemSize - 7)
			Expect(err).To(MatchError(emu.ErrAddress))
		})

		It("should reject negative addresses", func() {
			_, err := mem.ReadWord(-1)
			Expect(err).To(MatchError(emu.ErrAddress))

			err = mem.SetByte(-1, 0)
			Expect(err).To(MatchError(emu.ErrAddress))
		})

		It("should reject addresses at or past the end", func() {
			_, err := mem.ByteAt(emu.MemSize)
			Expect(err).To(MatchError(emu.ErrAddress))
		})

		It("should reject a load spilling past the end", func() {
			err := mem.Load(emu.MemSize-2, []byte{1, 2, 3})
			Expect(err).To(MatchError(emu.ErrAddress))
		})

		It("should reject addresses near the int64 limit", func() {
			// addr+n would wrap around; the check must not overflow.
			_, err := mem.ReadWord(math.MaxInt64 - 7)
			Expect(err).To(MatchError(emu.ErrAddress))

			err = mem.WriteWord(math.MaxInt64, 1)
			Expect(err).To(MatchError(emu.ErrAddress))
		})
	})

	Describe("Load", func() {
		It("should copy bytes at the given address", func() {
			Expect(mem.Load(0x20, []byte{0xAA, 0xBB, 0xCC})).To(Succeed())

			b, err := mem.ByteAt(0x21)
			Expect(err).ToNot(HaveOccurred())
			Expect(b).To(Equal(byte(0xBB)))
		})
	})

	Describe("Clone", func() {
		It("should produce an independent copy", func() {
			Expect(mem.WriteWord(0x40, 7)).To(Succeed())

			clone := mem.Clone()
			Expect(clone.WriteWord(0x40, 9)).To(Succeed())

			orig, err := mem.ReadWord(0x40)
			Expect(err).ToNot(HaveOccurred())
			Expect(orig).To(Equal(uint64(7)))

			copied, err := clone.ReadWord(0x40)
			Expect(err).ToNot(HaveOccurred())
			Expect(copied).To(Equal(uint64(9)))
		})
	})
})

var _ = Describe("WordSet", func() {
	It("should align touched addresses to words", func() {
		s := emu.NewWordSet()

		s.Touch(0x13, 1)

		Expect(s.Addrs()).To(Equal([]int64{0x10}))
	})

	It("should mark both words of a straddling access", func() {
		s := emu.NewWordSet()

		s.Touch(0x14, 8)

		Expect(s.Addrs()).To(Equal([]int64{0x10, 0x18}))
	})

	It("should return addresses in ascending order", func() {
		s := emu.NewWordSet()

		s.Touch(0x100, 8)
		s.Touch(0x0, 8)
		s.Touch(0x58, 8)

		Expect(s.Addrs()).To(Equal([]int64{0x0, 0x58, 0x100}))
	})

	It("should ignore empty touches", func() {
		s := emu.NewWordSet()

		s.Touch(0x10, 0)

		Expect(s.Addrs()).To(BeEmpty())
	})
})
