// Package main provides the entry point for mipsim.
// mipsim is a cycle-accurate 5-stage MIPS pipeline simulator.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/tebeka/atexit"

	"github.com/openlabun/mipsim/loader"
	"github.com/openlabun/mipsim/timing/core"
	"github.com/openlabun/mipsim/timing/pipeline"
	"github.com/openlabun/mipsim/timing/runner"
)

var (
	configPath    = flag.String("config", "", "Path to simulation configuration JSON file")
	noForwarding  = flag.Bool("no-forwarding", false, "Disable the forwarding paths")
	noStalls      = flag.Bool("no-stalls", false, "Disable hazard detection (ideal pipeline)")
	predictorMode = flag.String("predictor", "", "Branch prediction mode: none, static-taken, static-not-taken, state-machine")
	penalty       = flag.Int("penalty", -1, "Misprediction penalty in cycles")
	jsonOut       = flag.Bool("json", false, "Print the final snapshot as JSON")
	verbose       = flag.Bool("v", false, "Verbose output with per-cycle tracing")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: mipsim [options] <program.hex>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		atexit.Exit(1)
	}
	programPath := flag.Arg(0)

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(
		os.Stderr, &slog.HandlerOptions{Level: level}))

	config := core.DefaultConfig()
	if *configPath != "" {
		var err error
		config, err = core.LoadConfig(*configPath)
		if err != nil {
			fail("Error loading config: %v", err)
		}
	}

	// Individual flags override the config file.
	if *noForwarding {
		config.ForwardingEnabled = false
	}
	if *noStalls {
		config.StallsEnabled = false
	}
	if *predictorMode != "" {
		config.BranchPredictionMode = *predictorMode
	}
	if *penalty >= 0 {
		config.MispredictPenalty = *penalty
	}

	words, err := loader.LoadFile(programPath)
	if err != nil {
		fail("Error loading program: %v", err)
	}

	c, err := core.NewCore(config)
	if err != nil {
		fail("Error creating core: %v", err)
	}
	if err := c.SubmitProgram(words); err != nil {
		fail("Error submitting program: %v", err)
	}

	r := runner.NewBuilder().
		WithCore(c).
		WithLogger(log).
		Build("Runner")

	if err := r.Run(); err != nil {
		fail("Simulation failed: %v", err)
	}

	snapshot, err := c.Snapshot()
	if err != nil {
		fail("Error reading final state: %v", err)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snapshot); err != nil {
			fail("Error encoding snapshot: %v", err)
		}
		atexit.Exit(0)
	}

	report(programPath, snapshot, c.Finished())
	atexit.Exit(0)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	atexit.Exit(1)
}

// report prints the timing summary.
func report(programPath string, s *pipeline.Snapshot, finished bool) {
	stats := s.Stats

	totalCycles := stats.Cycles
	if totalCycles == 0 {
		totalCycles = 1 // Avoid division by zero
	}

	fmt.Printf("\n")
	fmt.Printf("Program: %s\n", programPath)
	if !finished {
		fmt.Printf("Stopped at the misprediction threshold.\n")
	}
	fmt.Printf("Total Instructions: %d\n", stats.Instructions)
	fmt.Printf("Total Cycles: %d\n", stats.Cycles)
	fmt.Printf("Estimated Cycles (static): %d\n", s.EstimatedCycles)
	fmt.Printf("CPI: %.2f\n", stats.CPI())
	fmt.Printf("\n")
	fmt.Printf("Breakdown:\n")
	fmt.Printf("  Data stalls:    %4d cycles (%5.1f%%)\n",
		stats.DataStallCycles,
		100.0*float64(stats.DataStallCycles)/float64(totalCycles))
	fmt.Printf("  Control stalls: %4d cycles (%5.1f%%)\n",
		stats.ControlStallCycles,
		100.0*float64(stats.ControlStallCycles)/float64(totalCycles))
	fmt.Printf("\n")
	fmt.Printf("Branches:\n")
	fmt.Printf("  Resolved:       %d\n", stats.Branches)
	fmt.Printf("  Mispredicted:   %d\n", stats.BranchMisses)
	fmt.Printf("  Accuracy:       %.1f%%\n", 100.0*stats.PredictionAccuracy())
	fmt.Printf("  Predictor:      %s (%s)\n", s.PredictionMode, s.PredictorCounter)
	fmt.Printf("  Flushed:        %d instructions\n", stats.Flushes)
}
