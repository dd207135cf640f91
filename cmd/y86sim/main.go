// Package main provides the y86sim command line interface: batch
// execution, trace dumps, history export and an interactive debugging
// console over the Y86-64 simulation engine.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "y86sim",
		Short: "Y86-64 instruction-level simulator",
		Long: "y86sim loads textual Y86-64 object code, executes it eagerly to a\n" +
			"complete trace, and replays that trace for inspection: batch runs,\n" +
			"trace dumps, history export, and an interactive console with\n" +
			"breakpoints and snapshots.",
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newTraceCmd())
	rootCmd.AddCommand(newConsoleCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
