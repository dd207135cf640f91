package cache

import (
	"fmt"
	"strings"

	"github.com/Reed2006/PJ-Y86-64-Simulator/emu"
)

// Report summarizes the cache behavior of one run, with instruction
// fetches and data accesses modeled by separate caches.
type Report struct {
	// Config is the geometry both caches were modeled with.
	Config Config

	// Fetch holds the instruction-cache counters.
	Fetch Statistics

	// Data holds the data-cache counters.
	Data Statistics
}

// String renders the report as a human-readable table.
func (r Report) String() string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "cache profile (%d B, %d-way, %d B lines)\n",
		r.Config.Size, r.Config.Associativity, r.Config.BlockSize)
	writeStats(b, "fetch", r.Fetch)
	writeStats(b, "data", r.Data)
	return b.String()
}

func writeStats(b *strings.Builder, name string, s Statistics) {
	fmt.Fprintf(b, "  %-5s  accesses %6d  hits %6d  misses %6d  hit rate %5.1f%%",
		name, s.Hits+s.Misses, s.Hits, s.Misses, s.HitRate()*100)
	fmt.Fprintf(b, "  evictions %4d  writebacks %4d\n", s.Evictions, s.Writebacks)
}

// Profiler replays recorded memory accesses through modeled caches.
type Profiler struct {
	config Config
	icache *Cache
	dcache *Cache
}

// NewProfiler creates a profiler over the given memory image. The
// image serves as the shared backing store of both caches; profiling
// writes through to it, so pass a copy if the image must survive.
func NewProfiler(config Config, mem *emu.Memory) *Profiler {
	backing := NewMemoryBacking(mem)
	return &Profiler{
		config: config,
		icache: New(config, backing),
		dcache: New(config, backing),
	}
}

// Replay feeds one recorded access to the modeled caches.
func (p *Profiler) Replay(a emu.MemAccess) {
	switch a.Kind {
	case emu.AccessFetch:
		// A fetch spanning a line boundary touches both lines.
		first := p.icache.blockAlign(uint64(a.Addr))
		last := p.icache.blockAlign(uint64(a.Addr + a.Size - 1))
		for addr := first; addr <= last; addr += uint64(p.config.BlockSize) {
			p.icache.Read(addr, p.config.BlockSize)
		}
	case emu.AccessLoad:
		p.dcache.Read(uint64(a.Addr), int(a.Size))
	case emu.AccessStore:
		p.dcache.Write(uint64(a.Addr), int(a.Size), a.Value)
	}
}

// Report returns the counters accumulated so far.
func (p *Profiler) Report() Report {
	return Report{
		Config: p.config,
		Fetch:  p.icache.Stats(),
		Data:   p.dcache.Stats(),
	}
}

// Profile replays a full recorded access stream over a zeroed backing
// image and returns the resulting report.
func Profile(config Config, accesses []emu.MemAccess) (Report, error) {
	if err := config.Validate(); err != nil {
		return Report{}, fmt.Errorf("invalid cache config: %w", err)
	}

	p := NewProfiler(config, emu.NewMemory())
	for _, a := range accesses {
		p.Replay(a)
	}
	return p.Report(), nil
}
