package core

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/openlabun/mipsim/emu"
	"github.com/openlabun/mipsim/timing/pipeline"
)

// Initial prediction names for the state-machine predictor.
const (
	InitialTaken    = "taken"
	InitialNotTaken = "not-taken"
)

// Config holds the simulation parameters. All fields take effect at
// cycle zero; changing the configuration of a running core restarts
// the simulation.
type Config struct {
	// ForwardingEnabled enables the EX->EX and MEM->EX forwarding
	// paths.
	ForwardingEnabled bool `json:"forwarding_enabled"`

	// StallsEnabled enables hazard detection and stall insertion.
	// Disabling it yields an ideal pipeline with no hazard handling.
	StallsEnabled bool `json:"stalls_enabled"`

	// BranchPredictionMode selects the predictor: "none",
	// "static-taken", "static-not-taken" or "state-machine".
	BranchPredictionMode string `json:"branch_prediction_mode"`

	// StateMachineInitialPrediction is the initial direction of the
	// 2-bit counter in state-machine mode: "taken" or "not-taken".
	StateMachineInitialPrediction string `json:"state_machine_initial_prediction"`

	// MissThreshold pauses the simulation once this many branch
	// mispredictions accumulate. Zero disables the threshold.
	MissThreshold uint64 `json:"miss_threshold"`

	// MispredictPenalty is the stall cycle count charged per
	// misprediction.
	MispredictPenalty int `json:"mispredict_penalty"`

	// MemorySize is the data memory size in bytes.
	MemorySize uint32 `json:"memory_size"`
}

// DefaultConfig returns the default simulation parameters: forwarding
// and stalls on, prediction off.
func DefaultConfig() Config {
	return Config{
		ForwardingEnabled:             true,
		StallsEnabled:                 true,
		BranchPredictionMode:          pipeline.PredictNone.String(),
		StateMachineInitialPrediction: InitialNotTaken,
		MissThreshold:                 0,
		MispredictPenalty:             pipeline.DefaultMispredictPenalty,
		MemorySize:                    emu.DefaultMemorySize,
	}
}

// LoadConfig reads a configuration from a JSON file, with defaults for
// absent fields.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if _, err := pipeline.ParsePredictionMode(c.BranchPredictionMode); err != nil {
		return err
	}

	switch c.StateMachineInitialPrediction {
	case InitialTaken, InitialNotTaken:
	default:
		return fmt.Errorf(
			"unknown initial prediction %q: want %q or %q",
			c.StateMachineInitialPrediction, InitialTaken, InitialNotTaken)
	}

	if c.MispredictPenalty < 0 {
		return fmt.Errorf(
			"mispredict penalty must not be negative, got %d",
			c.MispredictPenalty)
	}

	if c.MemorySize == 0 {
		return fmt.Errorf("memory size must be positive")
	}
	if c.MemorySize%4 != 0 {
		return fmt.Errorf(
			"memory size must be a multiple of 4, got %d", c.MemorySize)
	}

	return nil
}

// predictionMode returns the parsed prediction mode. Validate must
// have accepted the config first.
func (c Config) predictionMode() pipeline.PredictionMode {
	mode, err := pipeline.ParsePredictionMode(c.BranchPredictionMode)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return mode
}

// initialTaken returns the initial predictor direction as a bool.
func (c Config) initialTaken() bool {
	return c.StateMachineInitialPrediction == InitialTaken
}
