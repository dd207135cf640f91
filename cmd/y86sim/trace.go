package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Reed2006/PJ-Y86-64-Simulator/insts"
	"github.com/Reed2006/PJ-Y86-64-Simulator/loader"
	"github.com/Reed2006/PJ-Y86-64-Simulator/trace"
)

func newTraceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trace <file.yo>",
		Short: "Dump every recorded trace entry of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			prog, err := loader.Parse(strings.NewReader(string(text)))
			if err != nil {
				return err
			}

			t, err := trace.NewRunner().Run(prog)
			if err != nil {
				return err
			}

			dumpTrace(cmd, t)
			if t.LimitHit {
				cmd.Println("run cut off at the step limit")
			}
			return nil
		},
	}
}

// dumpTrace prints one line per entry: the instruction each step
// executed and the memory words it changed.
func dumpTrace(cmd *cobra.Command, t *trace.Trace) {
	decoder := insts.NewDecoder()
	view := trace.NewView(t)

	for i := 0; i < t.Len(); i++ {
		// The seek cannot fail inside the trace bounds.
		_ = view.Seek(i)
		e := view.Entry()

		label := ""
		if inst, err := decoder.Decode(view.Mem().Image(), e.PC); err == nil {
			label = inst.String()
		}

		cmd.Printf("%4d  pc=%#06x  %-4s  %-24s", i, e.PC, e.Status, label)
		for _, d := range e.MemDelta {
			cmd.Printf("  M[%#06x]=%#x", d.Addr, d.Value)
		}
		cmd.Println()
	}
}
