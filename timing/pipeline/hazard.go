package pipeline

import (
	"fmt"

	"github.com/openlabun/mipsim/insts"
)

// HazardType classifies the dominant hazard recorded for an
// instruction.
type HazardType uint8

// Hazard types.
const (
	// HazardNone means no hazard was detected.
	HazardNone HazardType = iota
	// HazardRAW is a read-after-write dependency on an in-flight
	// producer.
	HazardRAW
	// HazardWAW is a write-after-write conflict. It never needs stalls
	// in this in-order, single-register-file pipeline; writes reach
	// the register file in program order at Writeback.
	HazardWAW
	// HazardControl marks conditional branches and jumps, which may
	// redirect the fetch cursor.
	HazardControl
)

var hazardTypeNames = map[HazardType]string{
	HazardNone:    "none",
	HazardRAW:     "RAW",
	HazardWAW:     "WAW",
	HazardControl: "control",
}

// String returns the hazard type name.
func (t HazardType) String() string {
	if name, ok := hazardTypeNames[t]; ok {
		return name
	}
	return "none"
}

// ForwardPath names a producer-to-consumer forwarding stage pair.
type ForwardPath uint8

// Forwarding paths.
const (
	// ForwardEXToEX forwards the producer's Execute result into the
	// consumer's Execute (producer one instruction ahead).
	ForwardEXToEX ForwardPath = iota
	// ForwardMEMToEX forwards the producer's Memory-stage result into
	// the consumer's Execute (producer two ahead, or a load one ahead
	// after its load-use stall).
	ForwardMEMToEX
)

// String returns the path name.
func (p ForwardPath) String() string {
	if p == ForwardEXToEX {
		return "EX->EX"
	}
	return "MEM->EX"
}

// HazardRecord is the per-instruction hazard classification.
type HazardRecord struct {
	// Type is the dominant hazard class.
	Type HazardType
	// Producer is the program index of the conflicting earlier
	// instruction, or -1.
	Producer int
	// Reason is a human-readable rationale for display.
	Reason string
	// CanForward reports whether forwarding resolves (or shortens) the
	// hazard.
	CanForward bool
	// StallCycles is the number of stall cycles the instruction must
	// wait in Decode before entering Execute.
	StallCycles int
}

// ForwardingRecord names one producer-to-consumer register value path.
// Records are derived for display and audit; the cycle stepper
// re-derives forwarded values procedurally while executing, so the two
// cannot drift apart.
type ForwardingRecord struct {
	Producer int
	Consumer int
	Path     ForwardPath
	Register uint8
}

// Stall-cycle table for RAW hazards. The numbers assume the fixed
// 5-stage pipeline depth and its two forwarding paths; a deeper
// pipeline would need this table re-derived.
const (
	stallLoadUseForwarding = 1 // load producer, distance 1, forwarding on
	stallALUAdjacent       = 2 // distance 1, no forwarding
	stallALUGap            = 1 // distance 2, no forwarding
)

// maxLookback is how many preceding instructions can still conflict
// with a new one before their results are committed. It matches the
// pipeline depth: a producer three or more instructions ahead has
// written back before the consumer reads.
const maxLookback = 2

// HazardDetector computes per-instruction hazard records from static
// program distances. The in-order, fixed-depth pipeline makes
// producer/consumer timing deterministic ahead of execution, so the
// analysis runs once per submitted program or configuration change.
type HazardDetector struct {
	forwardingEnabled bool
	stallsEnabled     bool
}

// NewHazardDetector creates a hazard detector with the given policy.
// Disabling stalls disables hazard detection entirely (an "ideal
// pipeline" mode). Disabling forwarding while keeping stalls forces
// every potential-forwarding case into its no-forwarding stall count.
func NewHazardDetector(forwardingEnabled, stallsEnabled bool) *HazardDetector {
	return &HazardDetector{
		forwardingEnabled: forwardingEnabled,
		stallsEnabled:     stallsEnabled,
	}
}

// Analyze classifies every instruction in the program and derives the
// forwarding records for hazards forwarding can resolve.
func (h *HazardDetector) Analyze(
	program []*insts.Instruction,
) ([]HazardRecord, []ForwardingRecord) {
	records := make([]HazardRecord, len(program))
	var forwards []ForwardingRecord

	for i := range records {
		records[i] = HazardRecord{Type: HazardNone, Producer: -1}
	}

	if !h.stallsEnabled {
		return records, forwards
	}

	for i, inst := range program {
		records[i] = h.classify(program, i)

		if records[i].Type == HazardRAW && records[i].CanForward {
			forwards = append(forwards, h.forwardingFor(program, i)...)
		}

		if records[i].Type == HazardNone && (inst.IsBranch() || inst.IsJump()) {
			records[i] = HazardRecord{
				Type:     HazardControl,
				Producer: -1,
				Reason:   fmt.Sprintf("%s may redirect the fetch cursor", inst.Op),
			}
		}
	}

	return records, forwards
}

// classify examines the instructions up to maxLookback positions ahead
// of instruction i and produces its hazard record. When multiple
// producers create conflicting requirements, the maximum stall wins.
func (h *HazardDetector) classify(
	program []*insts.Instruction,
	i int,
) HazardRecord {
	inst := program[i]
	record := HazardRecord{Type: HazardNone, Producer: -1}

	for distance := 1; distance <= maxLookback; distance++ {
		j := i - distance
		if j < 0 {
			break
		}
		producer := program[j]

		reg, raw := readAfterWrite(producer, inst)
		if raw {
			stall, canForward := h.rawStall(producer, distance)
			if record.Type != HazardRAW || stall > record.StallCycles {
				record = HazardRecord{
					Type:       HazardRAW,
					Producer:   j,
					CanForward: canForward,
					StallCycles: maxInt(
						stall, record.StallCycles),
					Reason: fmt.Sprintf(
						"%s reads %s written by %s at index %d",
						inst.Op, insts.RegName(reg), producer.Op, j),
				}
			}
			continue
		}

		if record.Type == HazardNone &&
			inst.Dest != insts.DestNone && inst.Dest != insts.RegZero &&
			producer.WritesReg(inst.Dest) {
			record = HazardRecord{
				Type:     HazardWAW,
				Producer: j,
				Reason: fmt.Sprintf(
					"%s and %s at index %d both write %s",
					inst.Op, producer.Op, j, insts.RegName(inst.Dest)),
			}
		}
	}

	return record
}

// readAfterWrite reports whether consumer reads a register producer
// writes, returning the first such register.
func readAfterWrite(
	producer, consumer *insts.Instruction,
) (uint8, bool) {
	if producer.Dest == insts.DestNone {
		return 0, false
	}
	if consumer.ReadsReg(producer.Dest) {
		return producer.Dest, true
	}
	return 0, false
}

// rawStall returns the stall count and forwardability for a RAW hazard
// with the given producer at the given distance, per the policy table:
//
//	producer  distance  forwarding  stall
//	load      1         on          1     (data ready only after MEM)
//	load      1         off         2     (generic adjacent rule)
//	ALU       1         on          0     (forward EX->EX)
//	ALU       1         off         2     (wait for Writeback)
//	any       2         on          0     (forward MEM->EX)
//	any       2         off         1     (wait one extra cycle)
func (h *HazardDetector) rawStall(
	producer *insts.Instruction,
	distance int,
) (stall int, canForward bool) {
	if h.forwardingEnabled {
		if producer.IsLoad() && distance == 1 {
			return stallLoadUseForwarding, true
		}
		return 0, true
	}

	if distance == 1 {
		return stallALUAdjacent, false
	}
	return stallALUGap, false
}

// forwardingFor derives the forwarding records for instruction i's RAW
// hazards against each reachable producer.
func (h *HazardDetector) forwardingFor(
	program []*insts.Instruction,
	i int,
) []ForwardingRecord {
	inst := program[i]
	var records []ForwardingRecord

	for distance := 1; distance <= maxLookback; distance++ {
		j := i - distance
		if j < 0 {
			break
		}
		producer := program[j]

		reg, raw := readAfterWrite(producer, inst)
		if !raw {
			continue
		}

		path := ForwardEXToEX
		if distance == 2 || producer.IsLoad() {
			// A distance-2 producer, or a load after its load-use
			// stall, delivers its value out of the Memory stage.
			path = ForwardMEMToEX
		}

		records = append(records, ForwardingRecord{
			Producer: j,
			Consumer: i,
			Path:     path,
			Register: reg,
		})
	}

	return records
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
