// Package runner paces a simulation core on an event-driven engine.
// Each engine tick advances the pipeline by one cycle, so the
// simulation can share an engine with other timed components.
package runner

import (
	"log/slog"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/openlabun/mipsim/timing/core"
)

// Runner is the ticking component that drives a core.
type Runner struct {
	*sim.TickingComponent

	core *core.Core
	log  *slog.Logger
}

// Builder builds runners.
type Builder struct {
	engine sim.Engine
	freq   sim.Freq
	core   *core.Core
	log    *slog.Logger
}

// NewBuilder creates a builder with a 1 GHz default frequency.
func NewBuilder() Builder {
	return Builder{freq: 1 * sim.GHz}
}

// WithEngine sets the engine. Without one the builder creates a
// serial engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the tick frequency.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithCore sets the simulation core to drive.
func (b Builder) WithCore(c *core.Core) Builder {
	b.core = c
	return b
}

// WithLogger sets the logger for per-cycle tracing.
func (b Builder) WithLogger(log *slog.Logger) Builder {
	b.log = log
	return b
}

// Build creates a runner.
func (b Builder) Build(name string) *Runner {
	if b.core == nil {
		panic("runner: a core is required")
	}
	if b.engine == nil {
		b.engine = sim.NewSerialEngine()
	}
	if b.log == nil {
		b.log = slog.Default()
	}

	r := &Runner{core: b.core, log: b.log}
	r.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, r)
	return r
}

// Tick advances the core one pipeline cycle. It stops making progress
// when the core finishes, pauses, or pauses itself at its miss
// threshold.
func (r *Runner) Tick() (madeProgress bool) {
	if r.core.Paused() || r.core.Finished() {
		return false
	}

	snapshot, err := r.core.StepForward()
	if err != nil {
		r.log.Error("step failed", "err", err)
		return false
	}

	r.log.Debug("cycle",
		"cycle", snapshot.Cycle,
		"retired", snapshot.Stats.Instructions,
		"data_stall", snapshot.DataStallRemaining,
		"control_stall", snapshot.ControlStallRemaining,
	)
	return true
}

// Run resumes the core and runs the engine until the core finishes or
// pauses.
func (r *Runner) Run() error {
	r.core.Resume()
	r.TickNow()
	return r.Engine.Run()
}
