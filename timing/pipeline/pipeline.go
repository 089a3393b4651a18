package pipeline

import (
	"fmt"

	"github.com/openlabun/mipsim/emu"
	"github.com/openlabun/mipsim/insts"
)

// DefaultMispredictPenalty is the number of stall cycles charged when a
// branch resolves against its prediction.
const DefaultMispredictPenalty = 2

// Statistics accumulates execution counters over a run.
type Statistics struct {
	// Cycles is the number of cycles simulated so far.
	Cycles uint64 `json:"cycles"`

	// Instructions is the number of retired instructions.
	Instructions uint64 `json:"instructions"`

	// DataStallCycles counts cycles spent waiting on data hazards.
	DataStallCycles uint64 `json:"data_stall_cycles"`

	// ControlStallCycles counts cycles spent recovering from branch
	// mispredictions.
	ControlStallCycles uint64 `json:"control_stall_cycles"`

	// Branches is the number of resolved conditional branches.
	Branches uint64 `json:"branches"`

	// BranchMisses is the number of mispredicted conditional branches.
	BranchMisses uint64 `json:"branch_misses"`

	// Flushes is the number of wrong-path instructions squashed out of
	// Fetch or Decode.
	Flushes uint64 `json:"flushes"`
}

// CPI returns the cycles-per-instruction ratio, or 0 before any
// instruction retires.
func (s Statistics) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// PredictionAccuracy returns the fraction of conditional branches that
// resolved in the predicted direction, or 1 before any branch resolves.
func (s Statistics) PredictionAccuracy() float64 {
	if s.Branches == 0 {
		return 1
	}
	return 1 - float64(s.BranchMisses)/float64(s.Branches)
}

// Pipeline is the 5-stage in-order MIPS pipeline. One call to Tick
// advances the machine by one cycle; stages are processed in reverse
// order (Writeback first, Fetch last) so each instruction moves at most
// one stage per cycle.
//
// The pipeline is not safe for concurrent use. The owning core
// serializes all access.
type Pipeline struct {
	program  []*insts.Instruction
	hazards  []HazardRecord
	forwards []ForwardingRecord

	regs *emu.RegFile
	mem  *emu.Memory

	execUnit  *ExecuteUnit
	memUnit   *MemoryUnit
	wbUnit    *WritebackUnit
	predictor *BranchPredictor

	forwardingEnabled bool
	stallsEnabled     bool
	mispredictPenalty int

	// Per-instruction occupancy. stages[i] is the stage instruction i
	// worked in the current cycle; latches[i] is its accumulated payload.
	latches []Latch
	stages  []Stage

	// cursor is the speculative fetch PC. It runs ahead of execution and
	// is corrected when a branch or jump resolves.
	cursor uint32

	cycle uint64
	stats Statistics

	// Remaining stall cycles. While either counter is positive only the
	// Memory and Writeback stages advance. The misprediction counter
	// takes precedence over the data counter.
	dataStall       int
	mispredictStall int
}

// PipelineOption configures a Pipeline at construction.
type PipelineOption func(*Pipeline)

// WithForwarding enables or disables the forwarding paths. Disabling
// forwarding lengthens data-hazard stalls per the stall policy.
func WithForwarding(enabled bool) PipelineOption {
	return func(p *Pipeline) {
		p.forwardingEnabled = enabled
	}
}

// WithStalls enables or disables hazard detection entirely. With
// stalls disabled the pipeline runs in ideal mode: no hazards are
// detected and no stall cycles are charged.
func WithStalls(enabled bool) PipelineOption {
	return func(p *Pipeline) {
		p.stallsEnabled = enabled
	}
}

// WithPredictor sets the branch predictor.
func WithPredictor(bp *BranchPredictor) PipelineOption {
	return func(p *Pipeline) {
		p.predictor = bp
	}
}

// WithMispredictPenalty overrides the misprediction stall count.
func WithMispredictPenalty(cycles int) PipelineOption {
	return func(p *Pipeline) {
		p.mispredictPenalty = cycles
	}
}

// NewPipeline creates a pipeline over the given program and
// architectural state. By default forwarding and stalls are enabled,
// branch prediction is off and the misprediction penalty is
// DefaultMispredictPenalty.
func NewPipeline(
	program []*insts.Instruction,
	regs *emu.RegFile,
	mem *emu.Memory,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		program:           program,
		regs:              regs,
		mem:               mem,
		forwardingEnabled: true,
		stallsEnabled:     true,
		mispredictPenalty: DefaultMispredictPenalty,
		predictor:         NewBranchPredictor(PredictNone, false),
		execUnit:          NewExecuteUnit(),
		latches:           make([]Latch, len(program)),
		stages:            make([]Stage, len(program)),
	}
	p.memUnit = NewMemoryUnit(mem)
	p.wbUnit = NewWritebackUnit(regs)

	for _, opt := range opts {
		opt(p)
	}

	detector := NewHazardDetector(p.forwardingEnabled, p.stallsEnabled)
	p.hazards, p.forwards = detector.Analyze(program)

	return p
}

// Cycle returns the number of cycles simulated so far.
func (p *Pipeline) Cycle() uint64 {
	return p.cycle
}

// Stats returns the accumulated execution counters.
func (p *Pipeline) Stats() Statistics {
	return p.stats
}

// Program returns the decoded program.
func (p *Pipeline) Program() []*insts.Instruction {
	return p.program
}

// Hazards returns the static per-instruction hazard records.
func (p *Pipeline) Hazards() []HazardRecord {
	return p.hazards
}

// Forwards returns the static forwarding records.
func (p *Pipeline) Forwards() []ForwardingRecord {
	return p.forwards
}

// Predictor returns the branch predictor.
func (p *Pipeline) Predictor() *BranchPredictor {
	return p.predictor
}

// EstimatedCycles returns the statically predicted total cycle count:
// one cycle per instruction, four cycles of fill, and every
// precomputed data-hazard stall. Branch effects are not included; the
// estimate is exact for straight-line programs.
func (p *Pipeline) EstimatedCycles() uint64 {
	total := uint64(len(p.program)) + 4
	for _, h := range p.hazards {
		total += uint64(h.StallCycles)
	}
	return total
}

// Finished reports whether the program has run to completion: the
// fetch cursor is past the program and no instruction remains before
// Writeback. The last instruction's Writeback has already committed
// when this becomes true.
func (p *Pipeline) Finished() bool {
	if int(p.cursor/4) < len(p.program) {
		return false
	}
	for _, s := range p.stages {
		if s >= StageIF && s <= StageMEM {
			return false
		}
	}
	return true
}

// Reset returns the pipeline to cycle zero: all latches cleared, the
// fetch cursor at address zero, counters zeroed, registers and memory
// reinitialized and the predictor restored to its initial state.
func (p *Pipeline) Reset() {
	for i := range p.latches {
		p.latches[i].Clear()
		p.stages[i] = StageNone
	}
	p.cursor = 0
	p.cycle = 0
	p.dataStall = 0
	p.mispredictStall = 0
	p.stats = Statistics{}
	p.predictor.Reset()
	p.regs.Reset(p.mem.Size())
	p.mem.Reset()
}

// Tick advances the pipeline by one cycle. It returns false once the
// program has finished and no further progress is possible.
func (p *Pipeline) Tick() bool {
	if p.Finished() {
		return false
	}

	p.cycle++

	if p.mispredictStall > 0 || p.dataStall > 0 {
		p.tickStalled()
	} else {
		p.stepWriteback()
		p.stepMemory()
		p.stepExecute()
		p.stepDecode()
		p.stepFetch()
	}

	p.stats.Cycles = p.cycle
	return true
}

// tickStalled advances one stall cycle. Only instructions already past
// Execute keep moving; Fetch, Decode and Execute hold.
func (p *Pipeline) tickStalled() {
	p.stepWriteback()
	p.stepMemory()

	if p.mispredictStall > 0 {
		p.mispredictStall--
		p.stats.ControlStallCycles++
	} else {
		p.dataStall--
		p.stats.DataStallCycles++
	}
}

// stepWriteback retires the previous cycle's Writeback occupant and
// promotes the Memory occupant into Writeback, committing its result.
func (p *Pipeline) stepWriteback() {
	if i := p.indexInStage(StageWB); i >= 0 {
		p.stages[i] = StageDone
	}

	i := p.indexInStage(StageMEM)
	if i < 0 {
		return
	}
	p.stages[i] = StageWB
	p.wbUnit.Commit(&p.latches[i])
	p.stats.Instructions++
}

// stepMemory promotes the Execute occupant into Memory and performs
// its data memory access.
func (p *Pipeline) stepMemory() {
	i := p.indexInStage(StageEX)
	if i < 0 {
		return
	}
	p.stages[i] = StageMEM
	p.memUnit.Access(&p.latches[i])
}

// stepExecute promotes the Decode occupant into Execute, computes its
// result and resolves control flow.
func (p *Pipeline) stepExecute() {
	i := p.indexInStage(StageID)
	if i < 0 {
		return
	}
	p.stages[i] = StageEX

	latch := &p.latches[i]
	rsVal, rtVal := p.operandValues(i)
	p.execUnit.Execute(latch, rsVal, rtVal)

	inst := latch.Inst
	switch {
	case inst.IsBranch():
		p.resolveBranch(latch)
	case inst.IsJump():
		// Jumps redirect unconditionally. Younger wrong-path
		// instructions flush; fetch restarts at the target this cycle.
		p.cursor = latch.BranchTarget
		p.flushYounger()
	}
}

// operandValues resolves instruction i's source operands at Execute
// time. Values come from the register file, which the earlier
// Writeback step of this cycle has already updated; with forwarding
// enabled, a producer currently in Memory overrides the stale register
// value. The nearer of two overlapping producers wins.
func (p *Pipeline) operandValues(i int) (rsVal, rtVal uint32) {
	inst := p.program[i]
	rsVal = p.regs.ReadReg(inst.Rs)
	rtVal = p.regs.ReadReg(inst.Rt)

	if !p.forwardingEnabled {
		return rsVal, rtVal
	}

	for distance := maxLookback; distance >= 1; distance-- {
		j := i - distance
		if j < 0 || p.stages[j] != StageMEM {
			continue
		}
		producer := p.program[j]

		value := p.latches[j].ALUResult
		if producer.IsLoad() {
			// The Memory step of this cycle already ran, so the loaded
			// value is available to forward.
			value = p.latches[j].MemData
		}

		if inst.UsesRs && producer.WritesReg(inst.Rs) {
			rsVal = value
		}
		if inst.UsesRt && producer.WritesReg(inst.Rt) {
			rtVal = value
		}
	}

	return rsVal, rtVal
}

// resolveBranch compares the Execute-stage branch outcome against the
// Decode-stage prediction, trains the predictor, and on a mispredict
// corrects the fetch cursor, flushes wrong-path instructions and arms
// the misprediction stall.
func (p *Pipeline) resolveBranch(latch *Latch) {
	p.stats.Branches++
	p.predictor.Update(latch.BranchTaken)

	if latch.BranchTaken == latch.PredictedTaken {
		return
	}

	p.stats.BranchMisses++
	p.mispredictStall = p.mispredictPenalty
	// A misprediction supersedes any pending data stall; the stalled
	// instruction is on the wrong path and is about to flush.
	p.dataStall = 0

	next := latch.Inst.PC + 4
	if latch.BranchTaken {
		next = latch.BranchTarget
	}
	p.cursor = next
	p.flushYounger()
}

// flushYounger squashes every instruction still in Fetch or Decode.
// Those are exactly the instructions younger than the Execute-stage
// occupant that triggered the flush.
func (p *Pipeline) flushYounger() {
	for i := range p.stages {
		if p.stages[i] == StageIF || p.stages[i] == StageID {
			p.stages[i] = StageNone
			p.latches[i].Clear()
			p.stats.Flushes++
		}
	}
}

// stepDecode promotes the Fetch occupant into Decode: it reads the
// register file for display, consults the branch predictor, and arms
// the precomputed data-hazard stall.
func (p *Pipeline) stepDecode() {
	i := p.indexInStage(StageIF)
	if i < 0 {
		return
	}
	p.stages[i] = StageID

	latch := &p.latches[i]
	inst := latch.Inst
	latch.RsValue = p.regs.ReadReg(inst.Rs)
	latch.RtValue = p.regs.ReadReg(inst.Rt)

	if inst.IsBranch() {
		latch.PredictedTaken = p.predictor.Predict()
		latch.PredictedTarget = inst.Target
		if latch.PredictedTaken {
			// Speculative redirect; Execute corrects it on a mispredict.
			p.cursor = inst.Target
		}
	}

	if stall := p.hazards[i].StallCycles; stall > 0 && !latch.StallCharged {
		p.dataStall = stall
		latch.StallCharged = true
	}
}

// stepFetch fetches the instruction at the cursor. Fetch holds while a
// stall is pending, past the end of the program, and while the target
// slot is still in flight from a previous loop iteration.
func (p *Pipeline) stepFetch() {
	if p.dataStall > 0 || p.mispredictStall > 0 {
		return
	}

	idx := int(p.cursor / 4)
	if idx >= len(p.program) {
		return
	}
	if p.stages[idx].InFlight() {
		return
	}

	p.latches[idx] = Latch{Valid: true, PC: p.cursor, Inst: p.program[idx]}
	p.stages[idx] = StageIF
	p.cursor += 4
}

// indexInStage returns the index of the instruction occupying the
// given stage, or -1. The in-order pipeline admits at most one
// occupant per stage; a second one means latch bookkeeping is corrupt.
func (p *Pipeline) indexInStage(s Stage) int {
	found := -1
	for i, stage := range p.stages {
		if stage != s {
			continue
		}
		if found >= 0 {
			panic(fmt.Sprintf(
				"pipeline: instructions %d and %d both occupy %v", found, i, s))
		}
		found = i
	}
	return found
}
