package session

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nsf/jsondiff"

	"github.com/Reed2006/PJ-Y86-64-Simulator/insts"
)

// FlagsRecord is the exported form of the condition codes.
type FlagsRecord struct {
	ZF bool `json:"zf"`
	SF bool `json:"sf"`
	OF bool `json:"of"`
}

// HistoryRecord is the exported form of one snapshot. Memory is
// deliberately excluded: the history document records the visible
// register-level execution, not the full image.
type HistoryRecord struct {
	// Cycle is the replay cursor position.
	Cycle uint64 `json:"cycle"`

	// PC is the program counter as zero-padded hex.
	PC string `json:"pc"`

	// Instruction is the disassembled instruction at PC, or "".
	Instruction string `json:"instruction"`

	// Status is the machine status name.
	Status string `json:"status"`

	// Timestamp is the snapshot wall-clock time in RFC 3339 form.
	Timestamp string `json:"timestamp"`

	// Registers maps register names to 16-digit zero-padded hex
	// values.
	Registers map[string]string `json:"registers"`

	// Flags holds the condition codes.
	Flags FlagsRecord `json:"flags"`
}

// record converts a snapshot to its exported form.
func record(snap *Snapshot) HistoryRecord {
	regs := make(map[string]string, insts.NumRegs)
	for i, v := range snap.Regs {
		name := strings.TrimPrefix(insts.RegName(insts.Reg(i)), "%")
		regs[name] = fmt.Sprintf("%016x", v)
	}

	return HistoryRecord{
		Cycle:       snap.Cycle,
		PC:          fmt.Sprintf("0x%04x", snap.PC),
		Instruction: snap.Label,
		Status:      snap.Status.String(),
		Timestamp:   snap.Time.Format(time.RFC3339),
		Registers:   regs,
		Flags:       FlagsRecord{ZF: snap.CC.ZF, SF: snap.CC.SF, OF: snap.CC.OF},
	}
}

// HistoryRecords returns the snapshot journal in exported form.
func (c *Controller) HistoryRecords() []HistoryRecord {
	records := make([]HistoryRecord, len(c.snapshots))
	for i, snap := range c.snapshots {
		records[i] = record(snap)
	}
	return records
}

// ExportHistory serializes the snapshot journal as an indented JSON
// document.
func (c *Controller) ExportHistory() ([]byte, error) {
	data, err := json.MarshalIndent(c.HistoryRecords(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize history: %w", err)
	}
	return data, nil
}

// WriteHistory writes the exported history document to w.
func (c *Controller) WriteHistory(w io.Writer) error {
	data, err := c.ExportHistory()
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}

// CompareSnapshots renders the difference between two snapshots'
// exported records (timestamps excluded, so identical machine states
// compare equal regardless of when they were captured). It returns
// "" when the records match.
func (c *Controller) CompareSnapshots(aID, bID string) (string, error) {
	a, err := c.Snapshot(aID)
	if err != nil {
		c.log.Errorf("session", "compare: %v", err)
		return "", err
	}
	b, err := c.Snapshot(bID)
	if err != nil {
		c.log.Errorf("session", "compare: %v", err)
		return "", err
	}

	ra, rb := record(a), record(b)
	ra.Timestamp, rb.Timestamp = "", ""

	aJSON, err := json.Marshal(ra)
	if err != nil {
		return "", fmt.Errorf("failed to serialize snapshot %q: %w", aID, err)
	}
	bJSON, err := json.Marshal(rb)
	if err != nil {
		return "", fmt.Errorf("failed to serialize snapshot %q: %w", bID, err)
	}

	opts := jsondiff.DefaultConsoleOptions()
	diff, rendered := jsondiff.Compare(aJSON, bJSON, &opts)
	if diff == jsondiff.FullMatch {
		return "", nil
	}
	return rendered, nil
}
