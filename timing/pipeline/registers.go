// Package pipeline provides the 5-stage MIPS pipeline model for
// cycle-accurate timing simulation.
package pipeline

import "github.com/openlabun/mipsim/insts"

// Stage identifies the pipeline stage an instruction occupies.
type Stage uint8

// Pipeline stages in order. StageNone means the instruction has not
// been fetched (or was flushed); StageDone means it has retired.
const (
	StageNone Stage = iota
	StageIF
	StageID
	StageEX
	StageMEM
	StageWB
	StageDone
)

var stageNames = map[Stage]string{
	StageNone: "-",
	StageIF:   "IF",
	StageID:   "ID",
	StageEX:   "EX",
	StageMEM:  "MEM",
	StageWB:   "WB",
	StageDone: "done",
}

// String returns the stage name.
func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "-"
}

// InFlight reports whether the stage is one of IF through WB.
func (s Stage) InFlight() bool {
	return s >= StageIF && s <= StageWB
}

// Latch holds one instruction's payload as it crosses stage
// boundaries. Fields accumulate: the fetch PC after IF, operand values
// after ID, the computed result and branch outcome after EX, the
// loaded value after MEM. The latch is owned exclusively by the
// pipeline and is cleared on completion or flush.
type Latch struct {
	// Valid indicates the latch holds an in-flight instruction.
	Valid bool

	// PC is the byte address the instruction was fetched from.
	PC uint32

	// Inst is the decoded instruction.
	Inst *insts.Instruction

	// Operand values read from the register file in Decode. These are
	// recorded for inspection; Execute re-derives operand values so
	// that forwarded results are honored.
	RsValue uint32
	RtValue uint32

	// ALUResult holds the computed result: the ALU output, the
	// effective address for loads and stores, or the return address
	// for JAL.
	ALUResult uint32

	// StoreValue is the value a store writes in Memory.
	StoreValue uint32

	// MemData is the value a load read in Memory.
	MemData uint32

	// Branch resolution, filled in Execute.
	BranchTaken  bool
	BranchTarget uint32

	// Branch prediction, captured in Decode for comparison in Execute.
	PredictedTaken  bool
	PredictedTarget uint32

	// StallCharged marks that this instruction's precomputed stall
	// requirement has already armed the data-stall counter, so it is
	// not charged again when the instruction re-enters Decode.
	StallCharged bool
}

// Clear resets the latch to its empty state.
func (l *Latch) Clear() {
	*l = Latch{}
}
