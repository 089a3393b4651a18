package insts

// MIPS field masks and shifts. The opcode occupies the top 6 bits;
// register fields and the function code sit at fixed positions below it.
const (
	opcodeShift = 26
	rsShift     = 21
	rtShift     = 16
	rdShift     = 11
	shamtShift  = 6
	regMask     = 0x1F
	functMask   = 0x3F
	imm16Mask   = 0xFFFF
	target26    = 0x03FFFFFF
)

// Primary opcode values for the supported subset.
const (
	opcodeRType = 0x00
	opcodeJ     = 0x02
	opcodeJAL   = 0x03
	opcodeBEQ   = 0x04
	opcodeBNE   = 0x05
	opcodeADDI  = 0x08
	opcodeADDIU = 0x09
	opcodeSLTI  = 0x0A
	opcodeSLTIU = 0x0B
	opcodeANDI  = 0x0C
	opcodeORI   = 0x0D
	opcodeXORI  = 0x0E
	opcodeLUI   = 0x0F
	opcodeLB    = 0x20
	opcodeLH    = 0x21
	opcodeLW    = 0x23
	opcodeLBU   = 0x24
	opcodeLHU   = 0x25
	opcodeSB    = 0x28
	opcodeSH    = 0x29
	opcodeSW    = 0x2B
)

// Function codes for R-type instructions.
const (
	functSLL  = 0x00
	functSRL  = 0x02
	functSRA  = 0x03
	functJR   = 0x08
	functADD  = 0x20
	functADDU = 0x21
	functSUB  = 0x22
	functSUBU = 0x23
	functAND  = 0x24
	functOR   = 0x25
	functXOR  = 0x26
	functNOR  = 0x27
	functSLT  = 0x2A
	functSLTU = 0x2B
)

// Instruction is the decoded, immutable form of a 32-bit MIPS word.
// It is created once per submitted program entry and never mutated.
type Instruction struct {
	Raw   uint32 // original 32-bit encoding
	PC    uint32 // byte address the word was fetched from
	Index int    // position in the submitted program

	Op   Op
	Kind Kind

	// Register fields as encoded. Which of them are architecturally
	// meaningful depends on Kind; use Dest, UsesRs and UsesRt.
	Rs    uint8
	Rt    uint8
	Rd    uint8
	Shamt uint8

	// Dest is the resolved destination register (Rd for R-type, Rt for
	// immediate forms and loads, register 31 for JAL), or DestNone.
	Dest uint8

	// UsesRs and UsesRt report whether the operand position is actually
	// read. Rt is a source only for R-type, store and branch forms.
	UsesRs bool
	UsesRt bool

	// Imm is the immediate operand: sign-extended for arithmetic,
	// comparison and memory offsets, zero-extended for ANDI/ORI/XORI.
	Imm int32

	// Target is the branch or jump target byte address, computable at
	// decode time for BEQ/BNE/J/JAL. JR resolves its target in Execute.
	Target uint32
}

// IsLoad reports whether the instruction reads data memory.
func (i *Instruction) IsLoad() bool { return i.Kind == KindLoad }

// IsStore reports whether the instruction writes data memory.
func (i *Instruction) IsStore() bool { return i.Kind == KindStore }

// IsBranch reports whether the instruction is a conditional branch.
func (i *Instruction) IsBranch() bool { return i.Kind == KindBranch }

// IsJump reports whether the instruction is an unconditional jump,
// including JR.
func (i *Instruction) IsJump() bool {
	return i.Kind == KindJump || i.Kind == KindJumpRegister
}

// WritesReg reports whether the instruction writes the given register.
// Writes to register 0 never count: the zero register is immutable.
func (i *Instruction) WritesReg(reg uint8) bool {
	return reg != RegZero && i.Dest == reg
}

// ReadsReg reports whether the instruction reads the given register
// through an operand position it actually uses.
func (i *Instruction) ReadsReg(reg uint8) bool {
	if reg == RegZero {
		return false
	}
	if i.UsesRs && i.Rs == reg {
		return true
	}
	if i.UsesRt && i.Rt == reg {
		return true
	}
	return false
}

// Decoder decodes MIPS machine words into instructions.
type Decoder struct{}

// NewDecoder creates a new MIPS instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit MIPS word fetched from the given byte address
// at the given program index. Unrecognized encodings decode to
// KindUnsupported so they can flow through the pipeline as no-ops
// instead of aborting the simulation.
func (d *Decoder) Decode(word uint32, pc uint32, index int) *Instruction {
	inst := &Instruction{
		Raw:   word,
		PC:    pc,
		Index: index,
		Op:    OpUnknown,
		Kind:  KindUnsupported,
		Rs:    uint8((word >> rsShift) & regMask),
		Rt:    uint8((word >> rtShift) & regMask),
		Rd:    uint8((word >> rdShift) & regMask),
		Shamt: uint8((word >> shamtShift) & regMask),
		Dest:  DestNone,
	}

	opcode := word >> opcodeShift
	switch opcode {
	case opcodeRType:
		d.decodeRType(word, inst)
	case opcodeJ, opcodeJAL:
		d.decodeJump(word, opcode, pc, inst)
	case opcodeBEQ, opcodeBNE:
		d.decodeBranch(word, opcode, pc, inst)
	default:
		d.decodeIType(word, opcode, inst)
	}

	return inst
}

// decodeRType decodes instructions with a zero primary opcode, using
// the function field to select the operation.
func (d *Decoder) decodeRType(word uint32, inst *Instruction) {
	funct := word & functMask

	switch funct {
	case functADD, functADDU, functSUB, functSUBU,
		functAND, functOR, functXOR, functNOR, functSLT, functSLTU:
		inst.Kind = KindRALU
		inst.Dest = inst.Rd
		inst.UsesRs = true
		inst.UsesRt = true
	case functSLL, functSRL, functSRA:
		// Shifts take their amount from the shamt field and read only Rt.
		inst.Kind = KindRALU
		inst.Dest = inst.Rd
		inst.UsesRt = true
	case functJR:
		inst.Kind = KindJumpRegister
		inst.UsesRs = true
	default:
		return
	}

	switch funct {
	case functSLL:
		inst.Op = OpSLL
	case functSRL:
		inst.Op = OpSRL
	case functSRA:
		inst.Op = OpSRA
	case functJR:
		inst.Op = OpJR
	case functADD:
		inst.Op = OpADD
	case functADDU:
		inst.Op = OpADDU
	case functSUB:
		inst.Op = OpSUB
	case functSUBU:
		inst.Op = OpSUBU
	case functAND:
		inst.Op = OpAND
	case functOR:
		inst.Op = OpOR
	case functXOR:
		inst.Op = OpXOR
	case functNOR:
		inst.Op = OpNOR
	case functSLT:
		inst.Op = OpSLT
	case functSLTU:
		inst.Op = OpSLTU
	}

	// SLL $zero, $zero, 0 is the canonical NOP; it decodes as a regular
	// shift whose destination is register 0, so writeback drops it.
}

// decodeJump decodes J and JAL. The target concatenates the top 4 bits
// of pc+4 with the 26-bit field shifted left by 2.
func (d *Decoder) decodeJump(word, opcode, pc uint32, inst *Instruction) {
	inst.Kind = KindJump
	inst.Target = ((pc + 4) & 0xF0000000) | ((word & target26) << 2)

	if opcode == opcodeJAL {
		inst.Op = OpJAL
		inst.Dest = RegRA
	} else {
		inst.Op = OpJ
	}
}

// decodeBranch decodes BEQ and BNE. The target is pc+4 plus the
// sign-extended immediate shifted left by 2.
func (d *Decoder) decodeBranch(word, opcode, pc uint32, inst *Instruction) {
	inst.Kind = KindBranch
	inst.UsesRs = true
	inst.UsesRt = true
	inst.Imm = int32(int16(word & imm16Mask))
	inst.Target = uint32(int32(pc+4) + inst.Imm<<2)

	if opcode == opcodeBEQ {
		inst.Op = OpBEQ
	} else {
		inst.Op = OpBNE
	}
}

// decodeIType decodes immediate ALU operations, loads and stores.
func (d *Decoder) decodeIType(word, opcode uint32, inst *Instruction) {
	signExtended := int32(int16(word & imm16Mask))
	zeroExtended := int32(word & imm16Mask)

	switch opcode {
	case opcodeADDI, opcodeADDIU, opcodeSLTI, opcodeSLTIU:
		inst.Kind = KindIALU
		inst.Dest = inst.Rt
		inst.UsesRs = true
		inst.Imm = signExtended
	case opcodeANDI, opcodeORI, opcodeXORI:
		// Logical immediates zero-extend.
		inst.Kind = KindIALU
		inst.Dest = inst.Rt
		inst.UsesRs = true
		inst.Imm = zeroExtended
	case opcodeLUI:
		inst.Kind = KindIALU
		inst.Dest = inst.Rt
		inst.Imm = zeroExtended
	case opcodeLB, opcodeLH, opcodeLW, opcodeLBU, opcodeLHU:
		inst.Kind = KindLoad
		inst.Dest = inst.Rt
		inst.UsesRs = true
		inst.Imm = signExtended
	case opcodeSB, opcodeSH, opcodeSW:
		inst.Kind = KindStore
		inst.UsesRs = true
		inst.UsesRt = true
		inst.Imm = signExtended
	default:
		return
	}

	switch opcode {
	case opcodeADDI:
		inst.Op = OpADDI
	case opcodeADDIU:
		inst.Op = OpADDIU
	case opcodeSLTI:
		inst.Op = OpSLTI
	case opcodeSLTIU:
		inst.Op = OpSLTIU
	case opcodeANDI:
		inst.Op = OpANDI
	case opcodeORI:
		inst.Op = OpORI
	case opcodeXORI:
		inst.Op = OpXORI
	case opcodeLUI:
		inst.Op = OpLUI
	case opcodeLB:
		inst.Op = OpLB
	case opcodeLH:
		inst.Op = OpLH
	case opcodeLW:
		inst.Op = OpLW
	case opcodeLBU:
		inst.Op = OpLBU
	case opcodeLHU:
		inst.Op = OpLHU
	case opcodeSB:
		inst.Op = OpSB
	case opcodeSH:
		inst.Op = OpSH
	case opcodeSW:
		inst.Op = OpSW
	}
}
