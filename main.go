// Package main provides the entry point for mipsim.
// mipsim is a cycle-accurate 5-stage MIPS pipeline simulator built on
// Akita.
//
// For the full CLI, use: go run ./cmd/mipsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("mipsim - MIPS 5-Stage Pipeline Simulator")
	fmt.Println("Built on the Akita simulation framework")
	fmt.Println("")
	fmt.Println("Usage: mipsim [options] <program.hex>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config       Path to simulation configuration JSON file")
	fmt.Println("  -no-forwarding  Disable the forwarding paths")
	fmt.Println("  -no-stalls    Disable hazard detection (ideal pipeline)")
	fmt.Println("  -predictor    Branch prediction mode")
	fmt.Println("  -penalty      Misprediction penalty in cycles")
	fmt.Println("  -json         Print the final snapshot as JSON")
	fmt.Println("  -v            Verbose output with per-cycle tracing")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/mipsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/mipsim' instead.")
	}
}
