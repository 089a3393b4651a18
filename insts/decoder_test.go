package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/openlabun/mipsim/insts"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	Describe("R-type", func() {
		// ADD $t2, $t0, $t1 -> 0x01095020
		It("should decode ADD $t2, $t0, $t1", func() {
			inst := decoder.Decode(0x01095020, 0, 0)

			Expect(inst.Op).To(Equal(insts.OpADD))
			Expect(inst.Kind).To(Equal(insts.KindRALU))
			Expect(inst.Rs).To(Equal(uint8(8)))
			Expect(inst.Rt).To(Equal(uint8(9)))
			Expect(inst.Rd).To(Equal(uint8(10)))
			Expect(inst.Dest).To(Equal(uint8(10)))
			Expect(inst.UsesRs).To(BeTrue())
			Expect(inst.UsesRt).To(BeTrue())
		})

		// SLL $t0, $t1, 2 -> 0x00094080
		It("should decode SLL with its shift amount", func() {
			inst := decoder.Decode(0x00094080, 0, 0)

			Expect(inst.Op).To(Equal(insts.OpSLL))
			Expect(inst.Shamt).To(Equal(uint8(2)))
			Expect(inst.Dest).To(Equal(uint8(8)))
			Expect(inst.UsesRs).To(BeFalse())
			Expect(inst.UsesRt).To(BeTrue())
		})

		// JR $ra -> 0x03E00008
		It("should decode JR as a register jump with no destination", func() {
			inst := decoder.Decode(0x03E00008, 0, 0)

			Expect(inst.Op).To(Equal(insts.OpJR))
			Expect(inst.Kind).To(Equal(insts.KindJumpRegister))
			Expect(inst.Rs).To(Equal(uint8(31)))
			Expect(inst.UsesRs).To(BeTrue())
			Expect(inst.UsesRt).To(BeFalse())
			Expect(inst.Dest).To(Equal(insts.DestNone))
		})

		It("should decode the canonical NOP as SLL to register 0", func() {
			inst := decoder.Decode(0x00000000, 0, 0)

			Expect(inst.Op).To(Equal(insts.OpSLL))
			Expect(inst.WritesReg(0)).To(BeFalse())
		})
	})

	Describe("I-type", func() {
		// ADDI $t0, $zero, 5 -> 0x20080005
		It("should decode ADDI with a positive immediate", func() {
			inst := decoder.Decode(0x20080005, 0, 0)

			Expect(inst.Op).To(Equal(insts.OpADDI))
			Expect(inst.Kind).To(Equal(insts.KindIALU))
			Expect(inst.Dest).To(Equal(uint8(8)))
			Expect(inst.Imm).To(Equal(int32(5)))
		})

		// ADDI $t0, $t0, -1 -> 0x2108FFFF
		It("should sign-extend arithmetic immediates", func() {
			inst := decoder.Decode(0x2108FFFF, 0, 0)

			Expect(inst.Imm).To(Equal(int32(-1)))
		})

		// ORI $t0, $t0, 0xFFFF -> 0x3508FFFF
		It("should zero-extend logical immediates", func() {
			inst := decoder.Decode(0x3508FFFF, 0, 0)

			Expect(inst.Op).To(Equal(insts.OpORI))
			Expect(inst.Imm).To(Equal(int32(0xFFFF)))
		})

		// LUI $t0, 0x1234 -> 0x3C081234
		It("should decode LUI with no source registers", func() {
			inst := decoder.Decode(0x3C081234, 0, 0)

			Expect(inst.Op).To(Equal(insts.OpLUI))
			Expect(inst.UsesRs).To(BeFalse())
			Expect(inst.UsesRt).To(BeFalse())
			Expect(inst.Imm).To(Equal(int32(0x1234)))
		})
	})

	Describe("loads and stores", func() {
		// LW $t1, 4($t0) -> 0x8D090004
		It("should decode LW with its base and offset", func() {
			inst := decoder.Decode(0x8D090004, 0, 0)

			Expect(inst.Op).To(Equal(insts.OpLW))
			Expect(inst.Kind).To(Equal(insts.KindLoad))
			Expect(inst.Rs).To(Equal(uint8(8)))
			Expect(inst.Dest).To(Equal(uint8(9)))
			Expect(inst.Imm).To(Equal(int32(4)))
		})

		// SW $t1, 8($t0) -> 0xAD090008
		It("should decode SW reading both base and value", func() {
			inst := decoder.Decode(0xAD090008, 0, 0)

			Expect(inst.Op).To(Equal(insts.OpSW))
			Expect(inst.Kind).To(Equal(insts.KindStore))
			Expect(inst.UsesRs).To(BeTrue())
			Expect(inst.UsesRt).To(BeTrue())
			Expect(inst.Dest).To(Equal(insts.DestNone))
		})
	})

	Describe("control flow", func() {
		// BEQ $t0, $t1, +3 at pc 8 -> 0x11090003
		It("should compute the branch target from pc and immediate", func() {
			inst := decoder.Decode(0x11090003, 8, 2)

			Expect(inst.Op).To(Equal(insts.OpBEQ))
			Expect(inst.Kind).To(Equal(insts.KindBranch))
			Expect(inst.Target).To(Equal(uint32(8 + 4 + 3*4)))
		})

		// BNE $t0, $zero, -2 at pc 8 -> 0x1500FFFE
		It("should compute backward branch targets", func() {
			inst := decoder.Decode(0x1500FFFE, 8, 2)

			Expect(inst.Op).To(Equal(insts.OpBNE))
			Expect(inst.Target).To(Equal(uint32(4)))
		})

		// J 0x10 at pc 0 -> 0x08000004
		It("should decode J with its absolute target", func() {
			inst := decoder.Decode(0x08000004, 0, 0)

			Expect(inst.Op).To(Equal(insts.OpJ))
			Expect(inst.Kind).To(Equal(insts.KindJump))
			Expect(inst.Target).To(Equal(uint32(0x10)))
			Expect(inst.Dest).To(Equal(insts.DestNone))
		})

		// JAL 0x10 at pc 0 -> 0x0C000004
		It("should decode JAL writing the return address register", func() {
			inst := decoder.Decode(0x0C000004, 0, 0)

			Expect(inst.Op).To(Equal(insts.OpJAL))
			Expect(inst.Dest).To(Equal(insts.RegRA))
		})
	})

	Describe("unsupported encodings", func() {
		It("should decode an unknown opcode as an unsupported no-op", func() {
			inst := decoder.Decode(0xFC000000, 0, 0)

			Expect(inst.Op).To(Equal(insts.OpUnknown))
			Expect(inst.Kind).To(Equal(insts.KindUnsupported))
			Expect(inst.Dest).To(Equal(insts.DestNone))
		})

		It("should decode an unknown function code as unsupported", func() {
			// R-type with funct 0x3F
			inst := decoder.Decode(0x0000003F, 0, 0)

			Expect(inst.Kind).To(Equal(insts.KindUnsupported))
		})
	})
})
