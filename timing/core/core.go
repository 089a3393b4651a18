// Package core exposes the pipeline through a serialized command
// interface: submit a program, step forward or backward, pause,
// resume, reconfigure and observe snapshots.
package core

import (
	"errors"
	"fmt"
	"sync"

	"github.com/openlabun/mipsim/emu"
	"github.com/openlabun/mipsim/insts"
	"github.com/openlabun/mipsim/timing/pipeline"
)

// ErrNoProgram is returned by operations that need a submitted
// program.
var ErrNoProgram = errors.New("no program submitted")

// Core owns the simulation state and serializes every command with an
// internal lock, so it is safe for concurrent use. Snapshots returned
// from commands are deep copies and never alias live state.
//
// Backward stepping replays the deterministic simulation from cycle
// zero rather than keeping per-cycle undo state.
type Core struct {
	mu sync.Mutex

	config  Config
	decoder *insts.Decoder

	words   []uint32
	program []*insts.Instruction

	regs *emu.RegFile
	mem  *emu.Memory
	pipe *pipeline.Pipeline

	paused bool
}

// NewCore creates a core with the given configuration. No program is
// loaded; SubmitProgram must run before any stepping.
func NewCore(config Config) (*Core, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Core{
		config:  config,
		decoder: insts.NewDecoder(),
		paused:  true,
	}, nil
}

// Config returns the current configuration.
func (c *Core) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config
}

// SubmitProgram replaces the loaded program with the given instruction
// words and restarts the simulation at cycle zero, paused.
func (c *Core) SubmitProgram(words []uint32) error {
	if len(words) == 0 {
		return fmt.Errorf("program is empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.words = append([]uint32(nil), words...)
	c.program = make([]*insts.Instruction, len(words))
	for i, word := range words {
		c.program[i] = c.decoder.Decode(word, uint32(i)*4, i)
	}

	c.rebuild()
	c.paused = true
	return nil
}

// Configure replaces the configuration. If a program is loaded the
// simulation restarts at cycle zero under the new parameters, paused.
func (c *Core) Configure(config Config) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.config = config
	if c.program != nil {
		c.rebuild()
		c.paused = true
	}
	return nil
}

// Reset restarts the simulation at cycle zero, keeping the program and
// configuration. The core comes back paused.
func (c *Core) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pipe == nil {
		return ErrNoProgram
	}
	c.rebuild()
	c.paused = true
	return nil
}

// Pause stops automatic advancement. Explicit steps still work.
func (c *Core) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = true
}

// Resume allows automatic advancement again.
func (c *Core) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = false
}

// Paused reports whether automatic advancement is stopped.
func (c *Core) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// Finished reports whether the loaded program has run to completion.
// A core without a program reports true.
func (c *Core) Finished() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pipe == nil {
		return true
	}
	return c.pipe.Finished()
}

// Cycle returns the current cycle number.
func (c *Core) Cycle() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pipe == nil {
		return 0
	}
	return c.pipe.Cycle()
}

// Snapshot returns the current observable state.
func (c *Core) Snapshot() (*pipeline.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pipe == nil {
		return nil, ErrNoProgram
	}
	return c.pipe.Snapshot(), nil
}

// StepForward advances the simulation one cycle and returns the
// resulting snapshot. Stepping a finished simulation is a no-op. If
// the configured miss threshold is reached the core pauses itself.
func (c *Core) StepForward() (*pipeline.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pipe == nil {
		return nil, ErrNoProgram
	}

	c.pipe.Tick()
	c.checkMissThreshold()
	return c.pipe.Snapshot(), nil
}

// StepBackward rewinds the simulation one cycle and returns the
// resulting snapshot. The previous state is reconstructed by replaying
// from cycle zero, which the deterministic model makes exact. Stepping
// backward at cycle zero is a no-op.
func (c *Core) StepBackward() (*pipeline.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pipe == nil {
		return nil, ErrNoProgram
	}

	cycle := c.pipe.Cycle()
	if cycle == 0 {
		return c.pipe.Snapshot(), nil
	}

	c.rebuild()
	for c.pipe.Cycle() < cycle-1 {
		if !c.pipe.Tick() {
			break
		}
	}
	return c.pipe.Snapshot(), nil
}

// rebuild constructs a fresh pipeline over fresh architectural state
// from the current program and configuration. Callers hold the lock.
func (c *Core) rebuild() {
	c.mem = emu.NewMemoryWithSize(c.config.MemorySize)
	c.regs = emu.NewRegFile()
	c.regs.Reset(c.mem.Size())

	predictor := pipeline.NewBranchPredictor(
		c.config.predictionMode(), c.config.initialTaken())

	c.pipe = pipeline.NewPipeline(
		c.program, c.regs, c.mem,
		pipeline.WithForwarding(c.config.ForwardingEnabled),
		pipeline.WithStalls(c.config.StallsEnabled),
		pipeline.WithPredictor(predictor),
		pipeline.WithMispredictPenalty(c.config.MispredictPenalty),
	)
}

// checkMissThreshold pauses the core once the configured number of
// branch mispredictions accumulates. Callers hold the lock.
func (c *Core) checkMissThreshold() {
	if c.config.MissThreshold == 0 {
		return
	}
	if c.pipe.Stats().BranchMisses >= c.config.MissThreshold {
		c.paused = true
	}
}
