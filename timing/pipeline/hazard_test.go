package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/openlabun/mipsim/insts"
	"github.com/openlabun/mipsim/timing/pipeline"
)

// decodeProgram decodes words at consecutive addresses from zero.
func decodeProgram(words ...uint32) []*insts.Instruction {
	decoder := insts.NewDecoder()
	program := make([]*insts.Instruction, len(words))
	for i, word := range words {
		program[i] = decoder.Decode(word, uint32(i)*4, i)
	}
	return program
}

var _ = Describe("HazardDetector", func() {
	Context("with forwarding and stalls enabled", func() {
		var detector *pipeline.HazardDetector

		BeforeEach(func() {
			detector = pipeline.NewHazardDetector(true, true)
		})

		It("should charge one stall for a load-use pair", func() {
			// LW $t1, 0($t0); ADD $t2, $t1, $t1
			program := decodeProgram(0x8D090000, 0x01295020)

			records, forwards := detector.Analyze(program)

			Expect(records[1].Type).To(Equal(pipeline.HazardRAW))
			Expect(records[1].Producer).To(Equal(0))
			Expect(records[1].CanForward).To(BeTrue())
			Expect(records[1].StallCycles).To(Equal(1))

			Expect(forwards).To(HaveLen(1))
			Expect(forwards[0].Path).To(Equal(pipeline.ForwardMEMToEX))
			Expect(forwards[0].Register).To(Equal(uint8(9)))
		})

		It("should forward an adjacent ALU result with no stall", func() {
			// ADDI $t0, $zero, 1; ADDI $t1, $t0, 1
			program := decodeProgram(0x20080001, 0x21090001)

			records, forwards := detector.Analyze(program)

			Expect(records[1].Type).To(Equal(pipeline.HazardRAW))
			Expect(records[1].StallCycles).To(Equal(0))
			Expect(records[1].CanForward).To(BeTrue())

			Expect(forwards).To(HaveLen(1))
			Expect(forwards[0].Path).To(Equal(pipeline.ForwardEXToEX))
		})

		It("should forward a distance-2 producer out of Memory", func() {
			// ADDI $t0, $zero, 1; NOP; ADDI $t1, $t0, 1
			program := decodeProgram(0x20080001, 0x00000000, 0x21090001)

			records, forwards := detector.Analyze(program)

			Expect(records[2].Type).To(Equal(pipeline.HazardRAW))
			Expect(records[2].Producer).To(Equal(0))
			Expect(records[2].StallCycles).To(Equal(0))

			Expect(forwards).To(HaveLen(1))
			Expect(forwards[0].Path).To(Equal(pipeline.ForwardMEMToEX))
		})

		It("should not see a hazard past the lookback window", func() {
			// Producer three slots ahead has written back already.
			program := decodeProgram(
				0x20080001, 0x00000000, 0x00000000, 0x21090001)

			records, _ := detector.Analyze(program)

			Expect(records[3].Type).To(Equal(pipeline.HazardNone))
		})

		It("should record a WAW conflict with no stalls", func() {
			// ADDI $t0, $zero, 1; ADDI $t0, $zero, 2 (no RAW between them)
			program := decodeProgram(0x20080001, 0x20080002)

			records, _ := detector.Analyze(program)

			Expect(records[1].Type).To(Equal(pipeline.HazardWAW))
			Expect(records[1].Producer).To(Equal(0))
			Expect(records[1].StallCycles).To(Equal(0))
		})

		It("should prefer RAW over WAW when both apply", func() {
			// ADDI $t0, $zero, 1; ADDI $t0, $t0, 1 reads and rewrites $t0
			program := decodeProgram(0x20080001, 0x21080001)

			records, _ := detector.Analyze(program)

			Expect(records[1].Type).To(Equal(pipeline.HazardRAW))
		})

		It("should mark hazard-free control flow as a control hazard", func() {
			// ADDI $t0, $zero, 1; NOP; NOP; BEQ $t0, $zero, +1
			program := decodeProgram(
				0x20080001, 0x00000000, 0x00000000, 0x11000001)

			records, _ := detector.Analyze(program)

			Expect(records[3].Type).To(Equal(pipeline.HazardControl))
			Expect(records[3].StallCycles).To(Equal(0))
		})

		It("should not see hazards through register 0", func() {
			// NOP writes register 0; ADD $t2, $zero, $zero reads it
			program := decodeProgram(0x00000000, 0x00005020)

			records, _ := detector.Analyze(program)

			Expect(records[1].Type).To(Equal(pipeline.HazardNone))
		})
	})

	Context("with forwarding disabled", func() {
		var detector *pipeline.HazardDetector

		BeforeEach(func() {
			detector = pipeline.NewHazardDetector(false, true)
		})

		It("should charge two stalls for an adjacent producer", func() {
			program := decodeProgram(0x20080001, 0x21090001)

			records, forwards := detector.Analyze(program)

			Expect(records[1].StallCycles).To(Equal(2))
			Expect(records[1].CanForward).To(BeFalse())
			Expect(forwards).To(BeEmpty())
		})

		It("should charge one stall for a distance-2 producer", func() {
			program := decodeProgram(0x20080001, 0x00000000, 0x21090001)

			records, _ := detector.Analyze(program)

			Expect(records[2].StallCycles).To(Equal(1))
		})

		It("should take the maximum stall over both producers", func() {
			// Both the adjacent and the distance-2 instruction feed the
			// consumer; the adjacent producer's two stalls dominate.
			program := decodeProgram(0x20080001, 0x20090002, 0x01095020)

			records, _ := detector.Analyze(program)

			Expect(records[2].Type).To(Equal(pipeline.HazardRAW))
			Expect(records[2].StallCycles).To(Equal(2))
		})
	})

	Context("with stalls disabled", func() {
		It("should detect nothing", func() {
			detector := pipeline.NewHazardDetector(true, false)
			program := decodeProgram(0x8D090000, 0x01295020)

			records, forwards := detector.Analyze(program)

			Expect(records[1].Type).To(Equal(pipeline.HazardNone))
			Expect(forwards).To(BeEmpty())
		})
	})
})
