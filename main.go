// Package main provides the entry point for y86sim.
// y86sim is an instruction-level Y86-64 simulator with a replayable
// trace, breakpoints and snapshot history.
//
// For the full CLI, use: go run ./cmd/y86sim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("y86sim - Y86-64 instruction-level simulator")
	fmt.Println("")
	fmt.Println("Usage: y86sim <command> [options] <program.yo>")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  run        Execute a program and print its final state")
	fmt.Println("  trace      Dump every recorded trace entry of a run")
	fmt.Println("  console    Interactive debugging console")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/y86sim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/y86sim' instead.")
	}
}
