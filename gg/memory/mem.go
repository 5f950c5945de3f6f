package memory

import (
	"log/slog"

	"github.com/valerio/gogg/gg/addr"
	"github.com/valerio/gogg/gg/bit"
)

// Size is the size of the whole address space.
const Size = 0x10000

type memRegion uint8

const (
	regionROM memRegion = iota
	regionVRAM
	regionExtRAM
	regionWRAM
	regionEcho
	regionOAM
	regionUnused
	regionIO
	regionHRAM
)

// MMU allows access to all memory mapped I/O and data/registers.
// Bank switching is not supported: the two ROM banks are fixed and read-only from the CPU.
type MMU struct {
	memory    []byte
	regionMap [256]memRegion
}

// New creates a new memory unit with every byte set to zero.
// Equivalent to turning on the machine without a cartridge in.
func New() *MMU {
	mmu := &MMU{
		memory: make([]byte, Size),
	}
	initRegionMap(mmu)
	return mmu
}

// NewWithROM creates a memory unit and loads the given cartridge image into it.
func NewWithROM(rom []byte) *MMU {
	mmu := New()
	mmu.LoadROM(rom)
	return mmu
}

func initRegionMap(m *MMU) {
	for i := 0x00; i <= 0x7F; i++ {
		m.regionMap[i] = regionROM
	}
	for i := 0x80; i <= 0x9F; i++ {
		m.regionMap[i] = regionVRAM
	}
	for i := 0xA0; i <= 0xBF; i++ {
		m.regionMap[i] = regionExtRAM
	}
	for i := 0xC0; i <= 0xDF; i++ {
		m.regionMap[i] = regionWRAM
	}
	for i := 0xE0; i <= 0xFD; i++ {
		m.regionMap[i] = regionEcho
	}
	// 0xFE page holds OAM up to 0xFE9F, the rest is unusable
	m.regionMap[0xFE] = regionOAM
	m.regionMap[0xFF] = regionIO
}

func (m *MMU) region(address uint16) memRegion {
	r := m.regionMap[bit.High(address)]
	switch {
	case r == regionOAM && address > addr.OAMEnd:
		return regionUnused
	case r == regionIO && address >= 0xFF80:
		return regionHRAM
	}
	return r
}

// LoadROM copies a cartridge image into the two fixed ROM banks.
// Images larger than 32KB are truncated. Returns the number of bytes copied.
func (m *MMU) LoadROM(data []byte) int {
	n := copy(m.memory[:addr.ROMEnd], data)
	if n < len(data) {
		slog.Debug("ROM truncated to fixed banks", "size", len(data), "loaded", n)
	}
	return n
}

// Read returns the byte at the given address.
func (m *MMU) Read(address uint16) byte {
	return m.memory[address]
}

// Read16 returns the little-endian word at address, address+1.
// The second byte wraps around to 0x0000 when address is 0xFFFF.
func (m *MMU) Read16(address uint16) uint16 {
	low := m.memory[address]
	high := m.memory[address+1]
	return bit.Combine(high, low)
}

// Write stores a byte at the given address.
// Writes to ROM are dropped, writes to work RAM or its echo update both copies.
func (m *MMU) Write(address uint16, value byte) {
	switch m.region(address) {
	case regionROM:
		return
	case regionWRAM:
		m.memory[address] = value
		if address < addr.WRAMMirrorEnd {
			m.memory[address+addr.EchoOffset] = value
		}
	case regionEcho:
		m.memory[address] = value
		m.memory[address-addr.EchoOffset] = value
	default:
		m.memory[address] = value
	}
}

// Write16 stores a little-endian word as two independent byte writes.
func (m *MMU) Write16(address uint16, value uint16) {
	m.Write(address, bit.Low(value))
	m.Write(address+1, bit.High(value))
}

// Snapshot returns a copy of the whole address space.
func (m *MMU) Snapshot() []byte {
	out := make([]byte, len(m.memory))
	copy(out, m.memory)
	return out
}

// ReadRange copies length bytes starting at start, wrapping at the end of the address space.
func (m *MMU) ReadRange(start uint16, length int) []byte {
	out := make([]byte, length)
	for i := range out {
		out[i] = m.memory[start+uint16(i)]
	}
	return out
}
