package cache_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Reed2006/PJ-Y86-64-Simulator/emu"
	"github.com/Reed2006/PJ-Y86-64-Simulator/timing/cache"
)

var _ = Describe("Profile", func() {
	config := cache.Config{Size: 64, Associativity: 2, BlockSize: 16}

	It("should split fetches and data accesses", func() {
		accesses := []emu.MemAccess{
			{Kind: emu.AccessFetch, Addr: 0x00, Size: 10},
			{Kind: emu.AccessLoad, Addr: 0x100, Size: 8},
			{Kind: emu.AccessStore, Addr: 0x100, Size: 8, Value: 42},
		}

		report, err := cache.Profile(config, accesses)

		Expect(err).ToNot(HaveOccurred())
		Expect(report.Fetch.Misses).To(Equal(uint64(1)))
		Expect(report.Fetch.Hits).To(BeZero())
		Expect(report.Data.Misses).To(Equal(uint64(1)))
		Expect(report.Data.Hits).To(Equal(uint64(1)))
		Expect(report.Data.Writes).To(Equal(uint64(1)))
	})

	It("should touch both lines of a straddling fetch", func() {
		// 10-byte fetch at 0x0c spans lines 0x00 and 0x10.
		accesses := []emu.MemAccess{
			{Kind: emu.AccessFetch, Addr: 0x0c, Size: 10},
		}

		report, err := cache.Profile(config, accesses)

		Expect(err).ToNot(HaveOccurred())
		Expect(report.Fetch.Misses).To(Equal(uint64(2)))
	})

	It("should hit on a straight-line instruction stream", func() {
		// Sixteen 1-byte fetches through one line: 1 miss, 15 hits.
		var accesses []emu.MemAccess
		for addr := int64(0); addr < 16; addr++ {
			accesses = append(accesses, emu.MemAccess{
				Kind: emu.AccessFetch, Addr: addr, Size: 1,
			})
		}

		report, err := cache.Profile(config, accesses)

		Expect(err).ToNot(HaveOccurred())
		Expect(report.Fetch.Misses).To(Equal(uint64(1)))
		Expect(report.Fetch.Hits).To(Equal(uint64(15)))
		Expect(report.Fetch.HitRate()).To(BeNumerically("~", 15.0/16.0, 1e-9))
	})

	It("should reject a bad geometry", func() {
		_, err := cache.Profile(cache.Config{Size: 100, Associativity: 3, BlockSize: 7}, nil)

		Expect(err).To(HaveOccurred())
	})

	It("should render a readable report", func() {
		report, err := cache.Profile(config, []emu.MemAccess{
			{Kind: emu.AccessFetch, Addr: 0, Size: 1},
		})
		Expect(err).ToNot(HaveOccurred())

		text := report.String()
		Expect(text).To(ContainSubstring("cache profile"))
		Expect(strings.Count(text, "\n")).To(Equal(3))
		Expect(text).To(ContainSubstring("fetch"))
		Expect(text).To(ContainSubstring("data"))
	})
})
