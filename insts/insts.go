// Package insts provides MIPS instruction definitions and decoding.
//
// This package implements decoding of 32-bit MIPS machine words into
// structured instruction representations. It supports:
//   - R-type ALU operations: ADD, ADDU, SUB, SUBU, AND, OR, XOR, NOR,
//     SLT, SLTU, SLL, SRL, SRA
//   - Immediate ALU operations: ADDI, ADDIU, SLTI, SLTIU, ANDI, ORI,
//     XORI, LUI
//   - Loads and stores: LB, LH, LW, LBU, LHU, SB, SH, SW
//   - Control flow: BEQ, BNE, J, JAL, JR
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x20080005, 0x0, 0) // ADDI $t0, $zero, 5
//	fmt.Printf("Op: %v, Rt: %d, Imm: %d\n", inst.Op, inst.Rt, inst.Imm)
package insts

// Op represents a MIPS opcode.
type Op uint16

// MIPS opcodes.
const (
	OpUnknown Op = iota
	OpADD
	OpADDU
	OpSUB
	OpSUBU
	OpAND
	OpOR
	OpXOR
	OpNOR
	OpSLT
	OpSLTU
	OpSLL
	OpSRL
	OpSRA
	OpJR
	OpJ
	OpJAL
	OpBEQ
	OpBNE
	OpADDI
	OpADDIU
	OpSLTI
	OpSLTIU
	OpANDI
	OpORI
	OpXORI
	OpLUI
	OpLB
	OpLH
	OpLW
	OpLBU
	OpLHU
	OpSB
	OpSH
	OpSW
)

var opNames = map[Op]string{
	OpUnknown: "unknown",
	OpADD:     "add",
	OpADDU:    "addu",
	OpSUB:     "sub",
	OpSUBU:    "subu",
	OpAND:     "and",
	OpOR:      "or",
	OpXOR:     "xor",
	OpNOR:     "nor",
	OpSLT:     "slt",
	OpSLTU:    "sltu",
	OpSLL:     "sll",
	OpSRL:     "srl",
	OpSRA:     "sra",
	OpJR:      "jr",
	OpJ:       "j",
	OpJAL:     "jal",
	OpBEQ:     "beq",
	OpBNE:     "bne",
	OpADDI:    "addi",
	OpADDIU:   "addiu",
	OpSLTI:    "slti",
	OpSLTIU:   "sltiu",
	OpANDI:    "andi",
	OpORI:     "ori",
	OpXORI:    "xori",
	OpLUI:     "lui",
	OpLB:      "lb",
	OpLH:      "lh",
	OpLW:      "lw",
	OpLBU:     "lbu",
	OpLHU:     "lhu",
	OpSB:      "sb",
	OpSH:      "sh",
	OpSW:      "sw",
}

// String returns the assembly mnemonic for the opcode.
func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "unknown"
}

// Kind classifies an instruction into one of the closed set of
// operation classes the pipeline distinguishes. Using a closed variant
// keeps illegal combinations (e.g. a conditional branch carrying a
// jump-register target) unrepresentable.
type Kind uint8

// Instruction kinds.
const (
	KindUnsupported  Kind = iota // unrecognized encoding, flows as a no-op
	KindRALU                     // R-type ALU operation
	KindIALU                     // I-type ALU operation with immediate
	KindLoad                     // memory load (LB/LH/LW/LBU/LHU)
	KindStore                    // memory store (SB/SH/SW)
	KindBranch                   // conditional branch (BEQ/BNE)
	KindJump                     // unconditional jump (J/JAL)
	KindJumpRegister             // register-indirect jump (JR)
)

var kindNames = map[Kind]string{
	KindUnsupported:  "unsupported",
	KindRALU:         "r-alu",
	KindIALU:         "i-alu",
	KindLoad:         "load",
	KindStore:        "store",
	KindBranch:       "branch",
	KindJump:         "jump",
	KindJumpRegister: "jump-register",
}

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unsupported"
}

// DestNone marks an instruction that writes no register.
const DestNone uint8 = 0xFF

// Conventional MIPS register numbers.
const (
	RegZero uint8 = 0  // hard-wired zero
	RegSP   uint8 = 29 // stack pointer
	RegRA   uint8 = 31 // return address (written by JAL)
)

var regNames = [32]string{
	"$zero", "$at", "$v0", "$v1", "$a0", "$a1", "$a2", "$a3",
	"$t0", "$t1", "$t2", "$t3", "$t4", "$t5", "$t6", "$t7",
	"$s0", "$s1", "$s2", "$s3", "$s4", "$s5", "$s6", "$s7",
	"$t8", "$t9", "$k0", "$k1", "$gp", "$sp", "$fp", "$ra",
}

// RegName returns the conventional assembly name for a register number.
func RegName(reg uint8) string {
	if reg >= 32 {
		return "$?"
	}
	return regNames[reg]
}
