package emu

// DefaultMemorySize is the default data memory size in bytes.
const DefaultMemorySize = 4096

// Memory is the byte-addressable data memory of the simulated machine.
// Words are stored big-endian, following the classic MIPS convention.
//
// Accesses outside the configured bounds are treated as logical
// faults with a deterministic policy: reads return zero and writes are
// dropped. The pipeline must keep advancing other in-flight
// instructions, so no error surfaces mid-simulation.
type Memory struct {
	data []byte
}

// NewMemory creates a memory of the default size, zero-initialized.
func NewMemory() *Memory {
	return NewMemoryWithSize(DefaultMemorySize)
}

// NewMemoryWithSize creates a zero-initialized memory of the given
// size in bytes.
func NewMemoryWithSize(size uint32) *Memory {
	return &Memory{data: make([]byte, size)}
}

// Size returns the memory size in bytes.
func (m *Memory) Size() uint32 {
	return uint32(len(m.data))
}

// Reset zeroes the entire memory.
func (m *Memory) Reset() {
	for i := range m.data {
		m.data[i] = 0
	}
}

// inBounds reports whether [addr, addr+size) lies inside memory.
func (m *Memory) inBounds(addr uint32, size uint32) bool {
	return uint64(addr)+uint64(size) <= uint64(len(m.data))
}

// Read8 reads a byte. Out-of-bounds reads return zero.
func (m *Memory) Read8(addr uint32) uint8 {
	if !m.inBounds(addr, 1) {
		return 0
	}
	return m.data[addr]
}

// Read16 reads a big-endian halfword. Out-of-bounds reads return zero.
func (m *Memory) Read16(addr uint32) uint16 {
	if !m.inBounds(addr, 2) {
		return 0
	}
	return uint16(m.data[addr])<<8 | uint16(m.data[addr+1])
}

// Read32 reads a big-endian word. Out-of-bounds reads return zero.
func (m *Memory) Read32(addr uint32) uint32 {
	if !m.inBounds(addr, 4) {
		return 0
	}
	return uint32(m.data[addr])<<24 | uint32(m.data[addr+1])<<16 |
		uint32(m.data[addr+2])<<8 | uint32(m.data[addr+3])
}

// Write8 writes a byte. Out-of-bounds writes are dropped.
func (m *Memory) Write8(addr uint32, value uint8) {
	if !m.inBounds(addr, 1) {
		return
	}
	m.data[addr] = value
}

// Write16 writes a big-endian halfword. Out-of-bounds writes are
// dropped.
func (m *Memory) Write16(addr uint32, value uint16) {
	if !m.inBounds(addr, 2) {
		return
	}
	m.data[addr] = uint8(value >> 8)
	m.data[addr+1] = uint8(value)
}

// Write32 writes a big-endian word. Out-of-bounds writes are dropped.
func (m *Memory) Write32(addr uint32, value uint32) {
	if !m.inBounds(addr, 4) {
		return
	}
	m.data[addr] = uint8(value >> 24)
	m.data[addr+1] = uint8(value >> 16)
	m.data[addr+2] = uint8(value >> 8)
	m.data[addr+3] = uint8(value)
}

// Bytes returns a copy of the memory contents, for snapshots.
func (m *Memory) Bytes() []byte {
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out
}
