// Package trace provides eager Y86-64 execution tracing and replay.
package trace

import (
	"fmt"

	"github.com/Reed2006/PJ-Y86-64-Simulator/emu"
	"github.com/Reed2006/PJ-Y86-64-Simulator/loader"
)

// DefaultStepLimit bounds the number of instructions a single run may
// execute. Runs that reach it are cut off with a forced halt so that a
// looping program still yields a finite, replayable trace.
const DefaultStepLimit = 10000

// Runner executes a program eagerly, recording every architectural
// state the machine passes through.
type Runner struct {
	interp *emu.Interpreter
	limit  int
}

// RunnerOption is a functional option for configuring the Runner.
type RunnerOption func(*Runner)

// WithStepLimit overrides the default step limit.
func WithStepLimit(n int) RunnerOption {
	return func(r *Runner) {
		r.limit = n
	}
}

// NewRunner creates a new Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		interp: emu.NewInterpreter(),
		limit:  DefaultStepLimit,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes prog on a fresh machine until it halts, faults, or hits
// the step limit, and returns the complete trace.
func (r *Runner) Run(prog *loader.Program) (*Trace, error) {
	m := emu.NewMachine(prog.Entry)
	touched := emu.NewWordSet()
	if err := prog.LoadInto(m.Mem, touched); err != nil {
		return nil, fmt.Errorf("failed to place program in memory: %w", err)
	}

	t := &Trace{}
	t.Entries = append(t.Entries, makeEntry(m, deltasFor(m.Mem, touched), nil))

	for steps := 0; m.Status == emu.StatAOK; steps++ {
		if steps >= r.limit {
			// Cut the run off. Nothing executed, so the state is the
			// previous entry's with the status forced to HLT.
			m.Status = emu.StatHLT
			t.LimitHit = true
			t.Entries = append(t.Entries, makeEntry(m, nil, nil))
			break
		}

		prePC := m.PC
		res := r.interp.Step(m)

		var accesses []emu.MemAccess
		var deltas []WordDelta
		if res.Inst != nil {
			accesses = make([]emu.MemAccess, 0, 1+len(res.Accesses))
			accesses = append(accesses, emu.MemAccess{
				Kind: emu.AccessFetch, Addr: prePC, Size: res.Inst.Size,
			})
			accesses = append(accesses, res.Accesses...)
			deltas = storeDeltas(m.Mem, res.Accesses)
		}

		t.Entries = append(t.Entries, makeEntry(m, deltas, accesses))
	}

	return t, nil
}

// makeEntry serializes the machine's current architectural state.
func makeEntry(m *emu.Machine, deltas []WordDelta, accesses []emu.MemAccess) Entry {
	return Entry{
		PC:       m.PC,
		Status:   m.Status,
		Regs:     m.Regs.R,
		CC:       m.Regs.CC,
		MemDelta: deltas,
		Accesses: accesses,
	}
}

// deltasFor reads the current values of a set of touched words.
func deltasFor(mem *emu.Memory, touched emu.WordSet) []WordDelta {
	addrs := touched.Addrs()
	if len(addrs) == 0 {
		return nil
	}
	deltas := make([]WordDelta, 0, len(addrs))
	for _, addr := range addrs {
		value, err := mem.ReadWord(addr)
		if err != nil {
			// Touched words come from bounds-checked accesses.
			continue
		}
		deltas = append(deltas, WordDelta{Addr: addr, Value: value})
	}
	return deltas
}

// storeDeltas serializes the post-step values of the words the step's
// stores covered.
func storeDeltas(mem *emu.Memory, accesses []emu.MemAccess) []WordDelta {
	touched := emu.NewWordSet()
	for _, a := range accesses {
		if a.Kind == emu.AccessStore {
			touched.Touch(a.Addr, a.Size)
		}
	}
	return deltasFor(mem, touched)
}
