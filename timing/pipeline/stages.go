package pipeline

import (
	"fmt"

	"github.com/openlabun/mipsim/emu"
	"github.com/openlabun/mipsim/insts"
)

// ExecuteUnit performs the Execute-stage work: ALU operations, branch
// resolution and effective address calculation.
type ExecuteUnit struct{}

// NewExecuteUnit creates an execute unit.
func NewExecuteUnit() *ExecuteUnit {
	return &ExecuteUnit{}
}

// Execute computes the instruction's result from the given operand
// values and fills the latch: ALUResult (or the effective address, or
// the JAL return address), StoreValue, and the resolved branch outcome.
func (u *ExecuteUnit) Execute(latch *Latch, rsVal, rtVal uint32) {
	inst := latch.Inst

	switch inst.Kind {
	case insts.KindRALU:
		latch.ALUResult = u.aluRType(inst, rsVal, rtVal)
	case insts.KindIALU:
		latch.ALUResult = u.aluIType(inst, rsVal)
	case insts.KindLoad:
		latch.ALUResult = rsVal + uint32(inst.Imm)
	case insts.KindStore:
		latch.ALUResult = rsVal + uint32(inst.Imm)
		latch.StoreValue = rtVal
	case insts.KindBranch:
		latch.BranchTaken = u.branchTaken(inst, rsVal, rtVal)
		latch.BranchTarget = inst.Target
	case insts.KindJump:
		latch.BranchTaken = true
		latch.BranchTarget = inst.Target
		if inst.Op == insts.OpJAL {
			latch.ALUResult = inst.PC + 4
		}
	case insts.KindJumpRegister:
		latch.BranchTaken = true
		latch.BranchTarget = rsVal
	case insts.KindUnsupported:
		// Unrecognized encodings flow through as no-ops.
	default:
		panic(fmt.Sprintf("execute: unhandled instruction kind %v", inst.Kind))
	}
}

// aluRType evaluates an R-type ALU operation. Overflow on ADD/SUB is
// not trapped; the signed and unsigned variants compute the same bits.
func (u *ExecuteUnit) aluRType(
	inst *insts.Instruction,
	rsVal, rtVal uint32,
) uint32 {
	switch inst.Op {
	case insts.OpADD, insts.OpADDU:
		return rsVal + rtVal
	case insts.OpSUB, insts.OpSUBU:
		return rsVal - rtVal
	case insts.OpAND:
		return rsVal & rtVal
	case insts.OpOR:
		return rsVal | rtVal
	case insts.OpXOR:
		return rsVal ^ rtVal
	case insts.OpNOR:
		return ^(rsVal | rtVal)
	case insts.OpSLT:
		if int32(rsVal) < int32(rtVal) {
			return 1
		}
		return 0
	case insts.OpSLTU:
		if rsVal < rtVal {
			return 1
		}
		return 0
	case insts.OpSLL:
		return rtVal << inst.Shamt
	case insts.OpSRL:
		return rtVal >> inst.Shamt
	case insts.OpSRA:
		return uint32(int32(rtVal) >> inst.Shamt)
	default:
		panic(fmt.Sprintf("execute: unhandled R-type op %v", inst.Op))
	}
}

// aluIType evaluates an immediate ALU operation. The decoder already
// applied the proper sign or zero extension to Imm.
func (u *ExecuteUnit) aluIType(
	inst *insts.Instruction,
	rsVal uint32,
) uint32 {
	switch inst.Op {
	case insts.OpADDI, insts.OpADDIU:
		return rsVal + uint32(inst.Imm)
	case insts.OpSLTI:
		if int32(rsVal) < inst.Imm {
			return 1
		}
		return 0
	case insts.OpSLTIU:
		if rsVal < uint32(inst.Imm) {
			return 1
		}
		return 0
	case insts.OpANDI:
		return rsVal & uint32(inst.Imm)
	case insts.OpORI:
		return rsVal | uint32(inst.Imm)
	case insts.OpXORI:
		return rsVal ^ uint32(inst.Imm)
	case insts.OpLUI:
		return uint32(inst.Imm) << 16
	default:
		panic(fmt.Sprintf("execute: unhandled I-type op %v", inst.Op))
	}
}

// branchTaken resolves a conditional branch direction.
func (u *ExecuteUnit) branchTaken(
	inst *insts.Instruction,
	rsVal, rtVal uint32,
) bool {
	if inst.Op == insts.OpBEQ {
		return rsVal == rtVal
	}
	return rsVal != rtVal
}

// MemoryUnit performs the Memory-stage work: data memory loads and
// stores at the effective address computed in Execute.
type MemoryUnit struct {
	mem *emu.Memory
}

// NewMemoryUnit creates a memory unit over the given data memory.
func NewMemoryUnit(mem *emu.Memory) *MemoryUnit {
	return &MemoryUnit{mem: mem}
}

// Access performs the instruction's memory access, if any. Loads fill
// latch.MemData with the properly extended value; stores write
// latch.StoreValue. Non-memory instructions pass through untouched.
func (u *MemoryUnit) Access(latch *Latch) {
	inst := latch.Inst
	addr := latch.ALUResult

	switch inst.Op {
	case insts.OpLB:
		latch.MemData = uint32(int32(int8(u.mem.Read8(addr))))
	case insts.OpLBU:
		latch.MemData = uint32(u.mem.Read8(addr))
	case insts.OpLH:
		latch.MemData = uint32(int32(int16(u.mem.Read16(addr))))
	case insts.OpLHU:
		latch.MemData = uint32(u.mem.Read16(addr))
	case insts.OpLW:
		latch.MemData = u.mem.Read32(addr)
	case insts.OpSB:
		u.mem.Write8(addr, uint8(latch.StoreValue))
	case insts.OpSH:
		u.mem.Write16(addr, uint16(latch.StoreValue))
	case insts.OpSW:
		u.mem.Write32(addr, latch.StoreValue)
	}
}

// WritebackUnit performs the Writeback-stage work: committing results
// to the register file.
type WritebackUnit struct {
	regs *emu.RegFile
}

// NewWritebackUnit creates a writeback unit over the given register
// file.
func NewWritebackUnit(regs *emu.RegFile) *WritebackUnit {
	return &WritebackUnit{regs: regs}
}

// Commit writes the instruction's result to its destination register.
// Loads commit MemData, everything else commits ALUResult. Instructions
// without a destination commit nothing.
func (u *WritebackUnit) Commit(latch *Latch) {
	inst := latch.Inst
	if inst.Dest == insts.DestNone {
		return
	}

	value := latch.ALUResult
	if inst.IsLoad() {
		value = latch.MemData
	}
	u.regs.WriteReg(inst.Dest, value)
}
