package session

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Reed2006/PJ-Y86-64-Simulator/emu"
	"github.com/Reed2006/PJ-Y86-64-Simulator/insts"
	"github.com/Reed2006/PJ-Y86-64-Simulator/loader"
	"github.com/Reed2006/PJ-Y86-64-Simulator/logger"
	"github.com/Reed2006/PJ-Y86-64-Simulator/trace"
)

// Session errors.
var (
	// ErrNotLoaded reports an operation that needs a loaded program.
	ErrNotLoaded = errors.New("no program loaded")
	// ErrUnknownSnapshot reports a snapshot lookup miss.
	ErrUnknownSnapshot = errors.New("unknown snapshot")
	// ErrNoBreakpoint reports a breakpoint lookup miss.
	ErrNoBreakpoint = errors.New("no breakpoint at address")
)

// State is the controller's replay state.
type State uint8

// Controller states.
const (
	// StateUnloaded means no program is loaded.
	StateUnloaded State = iota
	// StateLoaded means a trace is computed and the cursor is at
	// entry 0.
	StateLoaded
	// StateAdvancing means the cursor can still move forward.
	StateAdvancing
	// StateHalted means the cursor is at the final entry or the
	// machine left the running status.
	StateHalted
	// StateBreakpointPaused means a breakpoint fired during replay.
	StateBreakpointPaused
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoaded:
		return "loaded"
	case StateAdvancing:
		return "advancing"
	case StateHalted:
		return "halted"
	case StateBreakpointPaused:
		return "breakpoint"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Controller owns one debugging session: it loads programs, runs them
// eagerly to a complete trace, and replays that trace as the visible
// machine state. Stepping never re-executes instructions.
//
// The controller is the sole owner and mutator of the session's state;
// all operations run synchronously on the calling goroutine.
type Controller struct {
	log     *logger.Log
	runner  *trace.Runner
	decoder *insts.Decoder

	trc  *trace.Trace
	view *trace.View

	// status is the presented machine status. It tracks the cursor's
	// entry except while a breakpoint pause forces it to StatHLT.
	status     emu.Status
	trueStatus emu.Status
	bpPaused   bool
	running    bool

	snapshots []*Snapshot
	snapByID  map[string]*Snapshot

	breakpoints map[int64]*Breakpoint
}

// New creates an empty session.
func New() *Controller {
	return &Controller{
		log:         logger.New(0),
		runner:      trace.NewRunner(),
		decoder:     insts.NewDecoder(),
		snapByID:    make(map[string]*Snapshot),
		breakpoints: make(map[int64]*Breakpoint),
	}
}

// Log returns the session log.
func (c *Controller) Log() *logger.Log {
	return c.log
}

// State returns the controller's replay state.
func (c *Controller) State() State {
	switch {
	case c.trc == nil:
		return StateUnloaded
	case c.bpPaused:
		return StateBreakpointPaused
	case !c.advancing():
		return StateHalted
	case c.view.Pos() == 0:
		return StateLoaded
	default:
		return StateAdvancing
	}
}

// advancing reports whether the cursor can move forward: the current
// entry ran normally and more entries remain.
func (c *Controller) advancing() bool {
	return c.trc != nil && !c.bpPaused &&
		c.status == emu.StatAOK && c.view.Pos() < c.view.Len()-1
}

// LoadProgram parses object code text, executes it eagerly to a
// complete trace, and positions the replay cursor at the initial
// state. The previous trace and snapshot history are discarded;
// breakpoints persist across loads.
func (c *Controller) LoadProgram(text string) error {
	prog, err := loader.Parse(strings.NewReader(text))
	if err != nil {
		c.log.Errorf("loader", "load failed: %v", err)
		return fmt.Errorf("load failed: %w", err)
	}

	trc, err := c.runner.Run(prog)
	if err != nil {
		c.log.Errorf("loader", "run failed: %v", err)
		return fmt.Errorf("run failed: %w", err)
	}

	c.trc = trc
	c.view = trace.NewView(trc)
	c.status = c.view.Entry().Status
	c.trueStatus = c.status
	c.bpPaused = false
	c.running = false
	c.snapshots = nil
	c.snapByID = make(map[string]*Snapshot)

	c.log.Infof("loader", "loaded %d bytes at entry %#x, %d steps recorded",
		prog.Size(), prog.Entry, trc.Len()-1)
	if trc.LimitHit {
		c.log.Warnf("loader", "run cut off at the %d-step limit", trace.DefaultStepLimit)
	}
	return nil
}

// Step replays the next trace entry as the current machine state,
// records a snapshot, and consults the breakpoints at the new program
// counter. It reports whether the session can still advance; a fired
// breakpoint reports false even when trace entries remain.
func (c *Controller) Step() bool {
	if !c.advancing() {
		return false
	}

	// The seek cannot fail: advancing() guarantees the target is in
	// range.
	_ = c.view.Seek(c.view.Pos() + 1)
	entry := c.view.Entry()
	c.status = entry.Status

	snap := snapshotNow(uint64(c.view.Pos()), entry.PC, c.status,
		entry.Regs, entry.CC, c.view.Mem(), c.label(entry.PC))
	c.snapshots = append(c.snapshots, snap)
	c.snapByID[snap.ID] = snap

	if bp, ok := c.breakpoints[entry.PC]; ok {
		regs := &emu.RegFile{R: entry.Regs, CC: entry.CC}
		if bp.fires(entry.PC, regs) {
			bp.HitCount++
			c.trueStatus = c.status
			c.status = emu.StatHLT
			c.bpPaused = true
			c.running = false
			c.log.Infof("breakpoint", "hit at %#x (count %d)", bp.Addr, bp.HitCount)
			return false
		}
	}

	return c.advancing()
}

// ContinueFromBreakpoint clears a breakpoint pause, restoring the
// machine status the pause overrode. It reports whether replay can
// resume.
func (c *Controller) ContinueFromBreakpoint() bool {
	if !c.bpPaused {
		return false
	}
	c.bpPaused = false
	c.status = c.trueStatus
	return c.advancing()
}

// StartRun begins run mode: subsequent RunTick calls advance the
// session one step each until it stops advancing or Pause is called.
func (c *Controller) StartRun() {
	c.running = c.advancing()
}

// Pause leaves run mode at a step boundary. The current state stays
// fully consistent; no partial step is observable.
func (c *Controller) Pause() {
	c.running = false
}

// Running reports whether the session is in run mode.
func (c *Controller) Running() bool {
	return c.running
}

// RunTick advances one step if the session is in run mode, reporting
// whether another tick should follow. Run cadence is the caller's:
// the engine performs no scheduling of its own.
func (c *Controller) RunTick() bool {
	if !c.running {
		return false
	}
	if !c.Step() {
		c.running = false
		return false
	}
	return true
}

// RestoreSnapshot relocates the current machine state and replay
// cursor to a previously captured snapshot.
func (c *Controller) RestoreSnapshot(id string) error {
	snap, ok := c.snapByID[id]
	if !ok {
		c.log.Errorf("session", "no snapshot %q", id)
		return fmt.Errorf("%w: %q", ErrUnknownSnapshot, id)
	}

	if err := c.view.Seek(int(snap.Cycle)); err != nil {
		return fmt.Errorf("failed to restore snapshot %q: %w", id, err)
	}
	c.status = c.view.Entry().Status
	c.trueStatus = c.status
	c.bpPaused = false
	c.running = false

	c.log.Infof("session", "restored snapshot %s (cycle %d)", id, snap.Cycle)
	return nil
}

// Reset discards the trace, the replay cursor and the snapshot
// history, returning the session to the unloaded state. Breakpoints
// persist, hit counts included; removing them takes an explicit call.
func (c *Controller) Reset() {
	c.trc = nil
	c.view = nil
	c.status = emu.StatAOK
	c.trueStatus = emu.StatAOK
	c.bpPaused = false
	c.running = false
	c.snapshots = nil
	c.snapByID = make(map[string]*Snapshot)

	c.log.Infof("session", "session reset")
}

// AddBreakpoint sets a breakpoint at addr, replacing any breakpoint
// already keyed there. An empty condText fires unconditionally; a
// malformed condText creates the breakpoint inert and logs a warning.
func (c *Controller) AddBreakpoint(addr int64, condText string) *Breakpoint {
	bp := newBreakpoint(addr, condText)
	if bp.CondErr != nil {
		c.log.Warnf("breakpoint", "condition %q never fires: %v", condText, bp.CondErr)
	}
	c.breakpoints[addr] = bp
	return bp
}

// RemoveBreakpoint deletes the breakpoint at addr.
func (c *Controller) RemoveBreakpoint(addr int64) error {
	if _, ok := c.breakpoints[addr]; !ok {
		c.log.Errorf("breakpoint", "no breakpoint at %#x", addr)
		return fmt.Errorf("%w: %#x", ErrNoBreakpoint, addr)
	}
	delete(c.breakpoints, addr)
	return nil
}

// RemoveAllBreakpoints deletes every breakpoint.
func (c *Controller) RemoveAllBreakpoints() {
	c.breakpoints = make(map[int64]*Breakpoint)
}

// ToggleBreakpoint flips the enabled flag of the breakpoint at addr
// and returns the new setting.
func (c *Controller) ToggleBreakpoint(addr int64) (bool, error) {
	bp, ok := c.breakpoints[addr]
	if !ok {
		c.log.Errorf("breakpoint", "no breakpoint at %#x", addr)
		return false, fmt.Errorf("%w: %#x", ErrNoBreakpoint, addr)
	}
	bp.Enabled = !bp.Enabled
	return bp.Enabled, nil
}

// Breakpoints returns copies of the current breakpoints in address
// order.
func (c *Controller) Breakpoints() []Breakpoint {
	bps := make([]Breakpoint, 0, len(c.breakpoints))
	for _, bp := range c.breakpoints {
		bps = append(bps, *bp)
	}
	sort.Slice(bps, func(i, j int) bool { return bps[i].Addr < bps[j].Addr })
	return bps
}

// PC returns the current program counter, or 0 when unloaded.
func (c *Controller) PC() int64 {
	if c.trc == nil {
		return 0
	}
	return c.view.Entry().PC
}

// Status returns the presented machine status. While a breakpoint
// pause is active this is StatHLT regardless of the underlying entry.
func (c *Controller) Status() emu.Status {
	if c.trc == nil {
		return emu.StatAOK
	}
	return c.status
}

// Cycle returns the replay cursor position: the number of steps
// applied so far.
func (c *Controller) Cycle() uint64 {
	if c.trc == nil {
		return 0
	}
	return uint64(c.view.Pos())
}

// Register returns the current value of a register.
func (c *Controller) Register(r insts.Reg) uint64 {
	if c.trc == nil || r >= insts.NumRegs {
		return 0
	}
	return c.view.Entry().Regs[r]
}

// Registers returns the current register file contents.
func (c *Controller) Registers() [insts.NumRegs]uint64 {
	if c.trc == nil {
		return [insts.NumRegs]uint64{}
	}
	return c.view.Entry().Regs
}

// Flags returns the current condition codes.
func (c *Controller) Flags() emu.CC {
	if c.trc == nil {
		return emu.CC{ZF: true}
	}
	return c.view.Entry().CC
}

// MemoryWord reads the 8-byte word at addr from the replayed memory.
func (c *Controller) MemoryWord(addr int64) (uint64, error) {
	if c.trc == nil {
		return 0, ErrNotLoaded
	}
	return c.view.Mem().ReadWord(addr)
}

// MemoryByte reads the byte at addr from the replayed memory.
func (c *Controller) MemoryByte(addr int64) (byte, error) {
	if c.trc == nil {
		return 0, ErrNotLoaded
	}
	return c.view.Mem().ByteAt(addr)
}

// MemoryCopy returns a copy of the replayed memory image.
func (c *Controller) MemoryCopy() []byte {
	if c.trc == nil {
		return make([]byte, emu.MemSize)
	}
	img := c.view.Mem().Image()
	cp := make([]byte, len(img))
	copy(cp, img)
	return cp
}

// Trace returns the loaded trace, or nil when unloaded.
func (c *Controller) Trace() *trace.Trace {
	return c.trc
}

// History returns the snapshot journal, oldest first.
func (c *Controller) History() []*Snapshot {
	h := make([]*Snapshot, len(c.snapshots))
	copy(h, c.snapshots)
	return h
}

// Snapshot returns the snapshot with the given identifier.
func (c *Controller) Snapshot(id string) (*Snapshot, error) {
	snap, ok := c.snapByID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSnapshot, id)
	}
	return snap, nil
}

// Accesses returns every memory access of the loaded run in execution
// order: the instruction fetches and the data loads and stores. This
// is the input stream for cache profiling.
func (c *Controller) Accesses() []emu.MemAccess {
	if c.trc == nil {
		return nil
	}
	var accesses []emu.MemAccess
	for i := range c.trc.Entries {
		accesses = append(accesses, c.trc.Entries[i].Accesses...)
	}
	return accesses
}

// label disassembles the instruction at pc in the replayed memory,
// returning "" when the bytes there do not decode.
func (c *Controller) label(pc int64) string {
	inst, err := c.decoder.Decode(c.view.Mem().Image(), pc)
	if err != nil {
		return ""
	}
	return inst.String()
}
