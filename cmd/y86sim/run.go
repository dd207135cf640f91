package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Reed2006/PJ-Y86-64-Simulator/emu"
	"github.com/Reed2006/PJ-Y86-64-Simulator/insts"
	"github.com/Reed2006/PJ-Y86-64-Simulator/session"
	"github.com/Reed2006/PJ-Y86-64-Simulator/timing/cache"
)

func newRunCmd() *cobra.Command {
	var (
		exportPath   string
		cacheProfile bool
		cacheConfig  string
	)

	cmd := &cobra.Command{
		Use:   "run <file.yo>",
		Short: "Execute a program and print its final state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadSession(args[0])
			if err != nil {
				return err
			}

			for c.Step() {
			}

			printFinalState(cmd, c)

			if exportPath != "" {
				f, err := os.Create(exportPath)
				if err != nil {
					return fmt.Errorf("failed to create export file: %w", err)
				}
				defer func() { _ = f.Close() }()
				if err := c.WriteHistory(f); err != nil {
					return err
				}
				cmd.Printf("history written to %s\n", exportPath)
			}

			if cacheProfile {
				config := cache.DefaultConfig()
				if cacheConfig != "" {
					config, err = cache.LoadConfig(cacheConfig)
					if err != nil {
						return err
					}
				}
				report, err := cache.Profile(config, c.Accesses())
				if err != nil {
					return err
				}
				cmd.Print(report.String())
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&exportPath, "export", "", "write the replayed history as JSON to this path")
	cmd.Flags().BoolVar(&cacheProfile, "cache-profile", false, "report modeled cache behavior for the run")
	cmd.Flags().StringVar(&cacheConfig, "cache-config", "", "path to a cache geometry JSON file")

	return cmd
}

// loadSession reads an object code file into a fresh session.
func loadSession(path string) (*session.Controller, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	c := session.New()
	if err := c.LoadProgram(string(text)); err != nil {
		return nil, err
	}
	return c, nil
}

// printFinalState prints the machine state at the session's cursor.
func printFinalState(cmd *cobra.Command, c *session.Controller) {
	cmd.Printf("status %s after %d steps, pc=%#x\n", c.Status(), c.Cycle(), c.PC())

	regs := c.Registers()
	for i, v := range regs {
		name := strings.TrimPrefix(insts.RegName(insts.Reg(i)), "%")
		cmd.Printf("%-4s %016x", name, v)
		if i%3 == 2 {
			cmd.Println()
		} else {
			cmd.Print("   ")
		}
	}
	cmd.Println()

	cc := c.Flags()
	cmd.Printf("ZF=%t SF=%t OF=%t\n", cc.ZF, cc.SF, cc.OF)
}

// formatFlags renders the condition codes compactly.
func formatFlags(cc emu.CC) string {
	return fmt.Sprintf("ZF=%t SF=%t OF=%t", cc.ZF, cc.SF, cc.OF)
}
