// Package session provides the interactive Y86-64 debugging session: a
// replay cursor over an eagerly computed trace, with breakpoints,
// per-step snapshots, and history export.
package session

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/xid"

	"github.com/Reed2006/PJ-Y86-64-Simulator/emu"
	"github.com/Reed2006/PJ-Y86-64-Simulator/insts"
)

// ErrBadCondition reports a breakpoint condition that does not parse.
var ErrBadCondition = errors.New("malformed breakpoint condition")

// CompareOp is a comparison operator in a breakpoint condition.
type CompareOp uint8

// Comparison operators.
const (
	CmpEQ CompareOp = iota // ==
	CmpNE                  // !=
	CmpGT                  // >
	CmpLT                  // <
	CmpGE                  // >=
	CmpLE                  // <=
)

// compareOps maps operator spellings to operators. Two-character
// spellings must sort before their one-character prefixes.
var compareOps = []struct {
	text string
	op   CompareOp
}{
	{"==", CmpEQ},
	{"!=", CmpNE},
	{">=", CmpGE},
	{"<=", CmpLE},
	{">", CmpGT},
	{"<", CmpLT},
}

// String returns the operator spelling.
func (op CompareOp) String() string {
	for _, c := range compareOps {
		if c.op == op {
			return c.text
		}
	}
	return fmt.Sprintf("CompareOp(%d)", uint8(op))
}

// Compare applies the operator under signed 64-bit semantics.
func (op CompareOp) Compare(a, b int64) bool {
	switch op {
	case CmpEQ:
		return a == b
	case CmpNE:
		return a != b
	case CmpGT:
		return a > b
	case CmpLT:
		return a < b
	case CmpGE:
		return a >= b
	case CmpLE:
		return a <= b
	default:
		return false
	}
}

// Condition is a typed breakpoint condition: one register compared to
// a literal. It is built once when the breakpoint is created and
// evaluated without reparsing.
type Condition struct {
	// Reg is the register under comparison.
	Reg insts.Reg
	// Op is the comparison operator.
	Op CompareOp
	// Literal is the right-hand side, compared signed.
	Literal int64
}

// ParseCondition parses condition text of the form
// "<register> <op> <literal>", e.g. "rax == 10" or "%rsp >= 0x7f00".
// The register may carry a leading '%'; the literal accepts decimal
// and prefixed hex/octal/binary.
func ParseCondition(text string) (*Condition, error) {
	for _, c := range compareOps {
		i := strings.Index(text, c.text)
		if i < 0 {
			continue
		}

		regName := strings.TrimSpace(text[:i])
		litText := strings.TrimSpace(text[i+len(c.text):])

		reg, ok := insts.RegByName(regName)
		if !ok {
			return nil, fmt.Errorf("%w: unknown register %q", ErrBadCondition, regName)
		}
		lit, err := strconv.ParseInt(litText, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad literal %q", ErrBadCondition, litText)
		}

		return &Condition{Reg: reg, Op: c.op, Literal: lit}, nil
	}
	return nil, fmt.Errorf("%w: no comparison operator in %q", ErrBadCondition, text)
}

// Eval evaluates the condition against a register file.
func (c *Condition) Eval(regs *emu.RegFile) bool {
	return c.Op.Compare(int64(regs.Read(c.Reg)), c.Literal)
}

// String renders the condition in its source form.
func (c *Condition) String() string {
	return fmt.Sprintf("%s %s %d", insts.RegName(c.Reg), c.Op, c.Literal)
}

// Breakpoint pauses replay when the program counter reaches its
// address. At most one breakpoint exists per address.
type Breakpoint struct {
	// ID identifies the breakpoint across the session.
	ID string

	// Addr is the program counter value the breakpoint watches.
	Addr int64

	// Enabled gates the breakpoint without removing it.
	Enabled bool

	// Cond is the optional firing condition. A nil Cond fires
	// unconditionally.
	Cond *Condition

	// CondErr records a condition that failed to parse. A breakpoint
	// with a non-nil CondErr never fires.
	CondErr error

	// HitCount counts the times the breakpoint has fired.
	HitCount int
}

// newBreakpoint builds a breakpoint, parsing the condition text if any.
// A malformed condition leaves the breakpoint inert rather than
// failing its creation.
func newBreakpoint(addr int64, condText string) *Breakpoint {
	bp := &Breakpoint{
		ID:      xid.New().String(),
		Addr:    addr,
		Enabled: true,
	}
	if condText = strings.TrimSpace(condText); condText != "" {
		bp.Cond, bp.CondErr = ParseCondition(condText)
	}
	return bp
}

// fires reports whether the breakpoint fires at the given program
// counter and register state. It does not touch the hit counter.
func (bp *Breakpoint) fires(pc int64, regs *emu.RegFile) bool {
	if !bp.Enabled || bp.Addr != pc || bp.CondErr != nil {
		return false
	}
	return bp.Cond == nil || bp.Cond.Eval(regs)
}
