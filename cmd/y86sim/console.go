package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/Reed2006/PJ-Y86-64-Simulator/insts"
	"github.com/Reed2006/PJ-Y86-64-Simulator/session"
	"github.com/Reed2006/PJ-Y86-64-Simulator/timing/cache"
)

func newConsoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "console [file.yo]",
		Short: "Interactive debugging console",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := session.New()
			c.Log().SetEcho(cmd.ErrOrStderr())

			if len(args) == 1 {
				text, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", args[0], err)
				}
				if err := c.LoadProgram(string(text)); err != nil {
					return err
				}
			}

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "y86> ",
				HistoryFile:     filepathHistory(),
				InterruptPrompt: "^C",
			})
			if err != nil {
				return fmt.Errorf("failed to start readline: %w", err)
			}
			defer func() { _ = rl.Close() }()

			console := &console{c: c, cmd: cmd}
			for {
				line, err := rl.Readline()
				if err != nil { // io.EOF or interrupt
					return nil
				}
				if quit := console.dispatch(strings.Fields(strings.TrimSpace(line))); quit {
					return nil
				}
			}
		},
	}
}

func filepathHistory() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + "/.y86sim_history"
}

// console dispatches one REPL command per line against a session.
type console struct {
	c   *session.Controller
	cmd *cobra.Command
}

// dispatch runs one command. It reports whether the REPL should quit.
func (co *console) dispatch(fields []string) bool {
	if len(fields) == 0 {
		return false
	}
	args := fields[1:]

	switch fields[0] {
	case "quit", "exit", "q":
		return true
	case "help", "h":
		co.help()
	case "load":
		co.load(args)
	case "step", "s":
		co.step(args)
	case "run", "r":
		co.run()
	case "continue", "c":
		co.cont()
	case "reset":
		co.c.Reset()
	case "regs":
		printFinalState(co.cmd, co.c)
	case "mem", "m":
		co.mem(args)
	case "break", "b":
		co.breakCmd(args)
	case "delete", "d":
		co.deleteCmd(args)
	case "toggle", "t":
		co.toggle(args)
	case "breaks":
		co.breaks()
	case "snapshots":
		co.snapshots()
	case "restore":
		co.restore(args)
	case "compare":
		co.compare(args)
	case "export":
		co.export(args)
	case "profile":
		co.profile()
	case "log":
		co.c.Log().Tail(co.cmd.OutOrStdout(), 10)
	default:
		co.cmd.Printf("unknown command %q; try help\n", fields[0])
	}
	return false
}

func (co *console) help() {
	co.cmd.Print(`commands:
  load <file.yo>         load a program (replaces the current trace)
  step [n] | s           replay n steps (default 1)
  run | r                replay until halt, fault or breakpoint
  continue | c           resume from a breakpoint pause
  reset                  discard the trace and history
  regs                   print registers, flags and status
  mem <addr> [words]     print memory words
  break <addr> [cond]    set a breakpoint, e.g. break 0x28 rax == 10
  delete <addr>|all      remove a breakpoint (or all of them)
  toggle <addr>          enable/disable a breakpoint
  breaks                 list breakpoints
  snapshots              list replay snapshots
  restore <id>           rewind to a snapshot
  compare <id> <id>      diff two snapshots
  export <path>          write the replayed history as JSON
  profile                modeled cache behavior of the loaded run
  log                    show recent engine log entries
  quit | q               leave the console
`)
}

func (co *console) load(args []string) {
	if len(args) != 1 {
		co.cmd.Println("usage: load <file.yo>")
		return
	}
	text, err := os.ReadFile(args[0])
	if err != nil {
		co.cmd.Printf("failed to read %s: %v\n", args[0], err)
		return
	}
	if err := co.c.LoadProgram(string(text)); err != nil {
		return // already logged and echoed
	}
	co.status()
}

func (co *console) step(args []string) {
	n := 1
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			co.cmd.Println("usage: step [n]")
			return
		}
		n = v
	}
	for i := 0; i < n; i++ {
		if co.c.State() == session.StateUnloaded {
			co.cmd.Println("no program loaded")
			return
		}
		if !co.c.Step() {
			break
		}
	}
	co.status()
}

func (co *console) run() {
	co.c.StartRun()
	for co.c.RunTick() {
	}
	co.status()
}

func (co *console) cont() {
	if !co.c.ContinueFromBreakpoint() {
		co.cmd.Println("not paused at a breakpoint")
		return
	}
	co.run()
}

// status prints the one-line state summary shown after movement.
func (co *console) status() {
	c := co.c
	if c.State() == session.StateUnloaded {
		co.cmd.Println("unloaded")
		return
	}
	label := ""
	if inst, err := insts.NewDecoder().Decode(c.MemoryCopy(), c.PC()); err == nil {
		label = "  " + inst.String()
	}
	co.cmd.Printf("[%s] cycle %d  pc=%#06x  %s  %s%s\n",
		c.State(), c.Cycle(), c.PC(), c.Status(), formatFlags(c.Flags()), label)
}

func (co *console) mem(args []string) {
	if len(args) < 1 || len(args) > 2 {
		co.cmd.Println("usage: mem <addr> [words]")
		return
	}
	addr, err := strconv.ParseInt(args[0], 0, 64)
	if err != nil {
		co.cmd.Printf("bad address %q\n", args[0])
		return
	}
	words := int64(1)
	if len(args) == 2 {
		words, err = strconv.ParseInt(args[1], 0, 64)
		if err != nil || words < 1 {
			co.cmd.Println("usage: mem <addr> [words]")
			return
		}
	}

	for i := int64(0); i < words; i++ {
		a := addr + i*8
		value, err := co.c.MemoryWord(a)
		if err != nil {
			co.cmd.Printf("%v\n", err)
			return
		}
		co.cmd.Printf("M[%#06x] = %016x\n", a, value)
	}
}

func (co *console) breakCmd(args []string) {
	if len(args) < 1 {
		co.cmd.Println("usage: break <addr> [condition]")
		return
	}
	addr, err := strconv.ParseInt(args[0], 0, 64)
	if err != nil {
		co.cmd.Printf("bad address %q\n", args[0])
		return
	}

	bp := co.c.AddBreakpoint(addr, strings.Join(args[1:], " "))
	if bp.CondErr != nil {
		co.cmd.Printf("breakpoint at %#x set but inert: %v\n", bp.Addr, bp.CondErr)
		return
	}
	co.cmd.Printf("breakpoint at %#x\n", bp.Addr)
}

func (co *console) deleteCmd(args []string) {
	if len(args) != 1 {
		co.cmd.Println("usage: delete <addr>|all")
		return
	}
	if args[0] == "all" {
		co.c.RemoveAllBreakpoints()
		return
	}
	addr, err := strconv.ParseInt(args[0], 0, 64)
	if err != nil {
		co.cmd.Printf("bad address %q\n", args[0])
		return
	}
	if err := co.c.RemoveBreakpoint(addr); err != nil {
		co.cmd.Printf("%v\n", err)
	}
}

func (co *console) toggle(args []string) {
	if len(args) != 1 {
		co.cmd.Println("usage: toggle <addr>")
		return
	}
	addr, err := strconv.ParseInt(args[0], 0, 64)
	if err != nil {
		co.cmd.Printf("bad address %q\n", args[0])
		return
	}
	enabled, err := co.c.ToggleBreakpoint(addr)
	if err != nil {
		co.cmd.Printf("%v\n", err)
		return
	}
	co.cmd.Printf("breakpoint at %#x %s\n", addr, map[bool]string{true: "enabled", false: "disabled"}[enabled])
}

func (co *console) breaks() {
	bps := co.c.Breakpoints()
	if len(bps) == 0 {
		co.cmd.Println("no breakpoints")
		return
	}
	for _, bp := range bps {
		state := "enabled"
		if !bp.Enabled {
			state = "disabled"
		}
		cond := ""
		if bp.Cond != nil {
			cond = "  if " + bp.Cond.String()
		}
		if bp.CondErr != nil {
			cond = "  (inert: " + bp.CondErr.Error() + ")"
		}
		co.cmd.Printf("%#06x  %s  hits %d%s\n", bp.Addr, state, bp.HitCount, cond)
	}
}

func (co *console) snapshots() {
	history := co.c.History()
	if len(history) == 0 {
		co.cmd.Println("no snapshots")
		return
	}
	for _, snap := range history {
		co.cmd.Printf("%s  cycle %4d  pc=%#06x  %-4s  %s\n",
			snap.ID, snap.Cycle, snap.PC, snap.Status, snap.Label)
	}
}

func (co *console) restore(args []string) {
	if len(args) != 1 {
		co.cmd.Println("usage: restore <id>")
		return
	}
	if err := co.c.RestoreSnapshot(args[0]); err != nil {
		return // already logged and echoed
	}
	co.status()
}

func (co *console) compare(args []string) {
	if len(args) != 2 {
		co.cmd.Println("usage: compare <id> <id>")
		return
	}
	diff, err := co.c.CompareSnapshots(args[0], args[1])
	if err != nil {
		return // already logged and echoed
	}
	if diff == "" {
		co.cmd.Println("snapshots match")
		return
	}
	co.cmd.Println(diff)
}

func (co *console) export(args []string) {
	if len(args) != 1 {
		co.cmd.Println("usage: export <path>")
		return
	}
	f, err := os.Create(args[0])
	if err != nil {
		co.cmd.Printf("failed to create %s: %v\n", args[0], err)
		return
	}
	defer func() { _ = f.Close() }()
	if err := co.c.WriteHistory(f); err != nil {
		co.cmd.Printf("%v\n", err)
		return
	}
	co.cmd.Printf("history written to %s\n", args[0])
}

func (co *console) profile() {
	if co.c.State() == session.StateUnloaded {
		co.cmd.Println("no program loaded")
		return
	}
	report, err := cache.Profile(cache.DefaultConfig(), co.c.Accesses())
	if err != nil {
		co.cmd.Printf("%v\n", err)
		return
	}
	co.cmd.Print(report.String())
}
