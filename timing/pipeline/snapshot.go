package pipeline

import "github.com/openlabun/mipsim/insts"

// Snapshot is an immutable copy of the observable simulation state at
// the end of a cycle. Register and memory contents are deep-copied, so
// a snapshot stays valid while the pipeline keeps ticking. The struct
// marshals to JSON for external consumers.
type Snapshot struct {
	Cycle           uint64 `json:"cycle"`
	EstimatedCycles uint64 `json:"estimated_cycles"`
	Finished        bool   `json:"finished"`

	Instructions []InstructionState `json:"instructions"`

	// Remaining stall counters. Both zero on a normally advancing
	// cycle.
	DataStallRemaining    int `json:"data_stall_remaining"`
	ControlStallRemaining int `json:"control_stall_remaining"`

	Forwards []ForwardingState `json:"forwards"`

	Registers [32]uint32 `json:"registers"`
	Memory    []byte     `json:"memory"`

	PredictionMode   string `json:"prediction_mode"`
	PredictorCounter string `json:"predictor_counter"`

	Stats Statistics `json:"stats"`
}

// InstructionState is one program entry's position and hazard
// classification.
type InstructionState struct {
	Index int    `json:"index"`
	PC    uint32 `json:"pc"`
	Raw   uint32 `json:"raw"`
	Op    string `json:"op"`
	Stage string `json:"stage"`

	Hazard      string `json:"hazard"`
	Producer    int    `json:"producer"`
	Reason      string `json:"reason,omitempty"`
	CanForward  bool   `json:"can_forward"`
	StallCycles int    `json:"stall_cycles"`
}

// ForwardingState is one forwarding path in display form.
type ForwardingState struct {
	Producer int    `json:"producer"`
	Consumer int    `json:"consumer"`
	Path     string `json:"path"`
	Register string `json:"register"`
}

// Snapshot captures the current observable state.
func (p *Pipeline) Snapshot() *Snapshot {
	s := &Snapshot{
		Cycle:                 p.cycle,
		EstimatedCycles:       p.EstimatedCycles(),
		Finished:              p.Finished(),
		Instructions:          make([]InstructionState, len(p.program)),
		DataStallRemaining:    p.dataStall,
		ControlStallRemaining: p.mispredictStall,
		Registers:             p.regs.R,
		Memory:                p.mem.Bytes(),
		PredictionMode:        p.predictor.Mode().String(),
		PredictorCounter:      p.predictor.Counter().String(),
		Stats:                 p.stats,
	}

	for i, inst := range p.program {
		hazard := p.hazards[i]
		s.Instructions[i] = InstructionState{
			Index:       i,
			PC:          inst.PC,
			Raw:         inst.Raw,
			Op:          inst.Op.String(),
			Stage:       p.stages[i].String(),
			Hazard:      hazard.Type.String(),
			Producer:    hazard.Producer,
			Reason:      hazard.Reason,
			CanForward:  hazard.CanForward,
			StallCycles: hazard.StallCycles,
		}
	}

	s.Forwards = make([]ForwardingState, len(p.forwards))
	for i, fwd := range p.forwards {
		s.Forwards[i] = ForwardingState{
			Producer: fwd.Producer,
			Consumer: fwd.Consumer,
			Path:     fwd.Path.String(),
			Register: insts.RegName(fwd.Register),
		}
	}

	return s
}
