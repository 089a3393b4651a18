// Package emu provides the architectural state of the simulated
// machine: the general-purpose register file and the data memory.
package emu

import "github.com/openlabun/mipsim/insts"

// DefaultStackPointer is the initial value of $sp. It equals the
// default data memory size, so the stack grows downward from the top
// of the modeled memory.
const DefaultStackPointer uint32 = DefaultMemorySize

// RegFile represents the MIPS register file: 32 general-purpose
// registers with register 0 hard-wired to zero.
type RegFile struct {
	// R holds general-purpose registers $0-$31. R[0] always reads as
	// zero; writes to it are dropped.
	R [32]uint32
}

// NewRegFile creates a register file with all registers zero except
// the stack pointer.
func NewRegFile() *RegFile {
	r := &RegFile{}
	r.Reset(DefaultStackPointer)
	return r
}

// ReadReg reads a register value. Register 0 returns 0. Register
// numbers >= 32 (e.g. the DestNone sentinel) also return 0.
func (r *RegFile) ReadReg(reg uint8) uint32 {
	if reg == 0 || reg >= 32 {
		return 0
	}
	return r.R[reg]
}

// WriteReg writes a value to a register. Writes to register 0 and to
// register numbers >= 32 are ignored.
func (r *RegFile) WriteReg(reg uint8, value uint32) {
	if reg == 0 || reg >= 32 {
		return
	}
	r.R[reg] = value
}

// Reset zeroes every register and sets $sp to the given value.
func (r *RegFile) Reset(sp uint32) {
	r.R = [32]uint32{}
	r.R[insts.RegSP] = sp
}
