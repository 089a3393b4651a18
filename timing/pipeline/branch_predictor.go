package pipeline

import "fmt"

// PredictionMode selects the branch prediction policy.
type PredictionMode uint8

// Prediction modes.
const (
	// PredictNone predicts not-taken unconditionally (prediction
	// disabled).
	PredictNone PredictionMode = iota
	// PredictStaticTaken always predicts taken.
	PredictStaticTaken
	// PredictStaticNotTaken always predicts not-taken.
	PredictStaticNotTaken
	// PredictStateMachine uses a single global 2-bit saturating
	// counter shared by all branches.
	PredictStateMachine
)

var predictionModeNames = map[PredictionMode]string{
	PredictNone:           "none",
	PredictStaticTaken:    "static-taken",
	PredictStaticNotTaken: "static-not-taken",
	PredictStateMachine:   "state-machine",
}

// String returns the mode name.
func (m PredictionMode) String() string {
	if name, ok := predictionModeNames[m]; ok {
		return name
	}
	return "none"
}

// ParsePredictionMode parses a mode name as used in configuration.
func ParsePredictionMode(s string) (PredictionMode, error) {
	for mode, name := range predictionModeNames {
		if name == s {
			return mode, nil
		}
	}
	return PredictNone, fmt.Errorf("unknown branch prediction mode %q", s)
}

// CounterState is a state of the 2-bit saturating counter.
type CounterState uint8

// Saturating counter states, ordered from strongly-not-taken to
// strongly-taken so that +1/-1 transitions walk the state machine.
const (
	StronglyNotTaken CounterState = iota
	WeaklyNotTaken
	WeaklyTaken
	StronglyTaken
)

var counterStateNames = map[CounterState]string{
	StronglyNotTaken: "strongly-not-taken",
	WeaklyNotTaken:   "weakly-not-taken",
	WeaklyTaken:      "weakly-taken",
	StronglyTaken:    "strongly-taken",
}

// String returns the counter state name.
func (s CounterState) String() string {
	if name, ok := counterStateNames[s]; ok {
		return name
	}
	return "strongly-not-taken"
}

// Taken reports whether the state predicts taken.
func (s CounterState) Taken() bool {
	return s >= WeaklyTaken
}

// BranchPredictor predicts conditional branch outcomes. In
// state-machine mode it keeps one global 2-bit saturating counter, a
// deliberate simplification over per-address history tables.
type BranchPredictor struct {
	mode    PredictionMode
	counter CounterState
	initial CounterState
}

// NewBranchPredictor creates a predictor in the given mode. In
// state-machine mode initialTaken selects the initial counter state:
// strongly-taken when true, strongly-not-taken otherwise.
func NewBranchPredictor(mode PredictionMode, initialTaken bool) *BranchPredictor {
	initial := StronglyNotTaken
	if initialTaken {
		initial = StronglyTaken
	}
	return &BranchPredictor{
		mode:    mode,
		counter: initial,
		initial: initial,
	}
}

// Mode returns the prediction mode.
func (bp *BranchPredictor) Mode() PredictionMode {
	return bp.mode
}

// Counter returns the current saturating counter state. Meaningful
// only in state-machine mode.
func (bp *BranchPredictor) Counter() CounterState {
	return bp.counter
}

// Predict returns the predicted direction for a conditional branch.
func (bp *BranchPredictor) Predict() bool {
	switch bp.mode {
	case PredictStaticTaken:
		return true
	case PredictStateMachine:
		return bp.counter.Taken()
	default:
		// PredictNone and PredictStaticNotTaken.
		return false
	}
}

// Update trains the predictor with a resolved branch outcome. On
// actual-taken the counter advances one step toward strongly-taken; on
// actual-not-taken one step toward strongly-not-taken, saturating at
// the extremes.
func (bp *BranchPredictor) Update(taken bool) {
	if bp.mode != PredictStateMachine {
		return
	}

	if taken {
		if bp.counter < StronglyTaken {
			bp.counter++
		}
	} else {
		if bp.counter > StronglyNotTaken {
			bp.counter--
		}
	}
}

// Reset restores the counter to its configured initial state.
func (bp *BranchPredictor) Reset() {
	bp.counter = bp.initial
}
