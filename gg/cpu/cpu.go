package cpu

import (
	"fmt"
	"strings"

	"github.com/valerio/gogg/gg/addr"
	"github.com/valerio/gogg/gg/bit"
	"github.com/valerio/gogg/gg/video"
)

// Memory is the address space as seen by the CPU.
type Memory interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
	Read16(address uint16) uint16
	Write16(address uint16, value uint16)
}

// PixelProcessor is advanced by the cycles of every retired instruction.
type PixelProcessor interface {
	Advance(cycles int) video.Mode
}

// Hook observes instruction boundaries. A debugger implements it to pause
// execution or inspect state between two instructions.
type Hook interface {
	BeforeStep(c *CPU)
	AfterStep(c *CPU, cycles int)
}

// NoHook is the detached hook, it does nothing.
type NoHook struct{}

func (NoHook) BeforeStep(*CPU)     {}
func (NoHook) AfterStep(*CPU, int) {}

// Flag is one of the 4 possible flags used in the flag register (high part of AF)
type Flag uint8

const (
	zeroFlag      Flag = 0x80
	subFlag       Flag = 0x40
	halfCarryFlag Flag = 0x20
	carryFlag     Flag = 0x10
)

// CPU is the main struct holding LR35902 state
type CPU struct {
	af Pair
	bc Pair
	de Pair
	hl Pair
	sp uint16
	ip uint16

	interruptsEnabled bool
	currentOpcode     uint16
	cycles            uint64

	mem Memory
}

// New returns a CPU with every register cleared.
// When the image mapped at the cartridge entry point starts with JP 0x00xx
// (bytes 0xC3 0x00), execution starts at the word stored at 0x0102.
func New(mem Memory) *CPU {
	c := &CPU{mem: mem}

	if mem.Read16(addr.EntryPoint) == 0x00C3 {
		c.ip = mem.Read16(addr.EntryTarget)
	}

	return c
}

// Step fetches, decodes and executes a single instruction.
// Returns the amount of cycles that execution has taken.
func (c *CPU) Step() int {
	opcode := c.mem.Read(c.ip)
	c.ip++
	c.currentOpcode = uint16(opcode)

	instr := &instructions[opcode]
	if instr.exec == nil {
		panic(fmt.Sprintf("illegal opcode 0x%02X at 0x%04X", opcode, c.ip-1))
	}

	cycles := instr.Cycles + instr.exec(c)
	if cycles <= 0 {
		panic(fmt.Sprintf("opcode 0x%02X at 0x%04X did not advance the clock", opcode, c.ip-1))
	}

	c.cycles += uint64(cycles)
	return cycles
}

// Tick runs one instruction and advances the pixel processor by its cost.
// hook.AfterStep runs even when the instruction panics, with zero cycles.
func (c *CPU) Tick(gpu PixelProcessor, hook Hook) (cycles int) {
	hook.BeforeStep(c)
	defer func() { hook.AfterStep(c, cycles) }()

	cycles = c.Step()
	gpu.Advance(cycles)
	return cycles
}

// Execute runs the fetch-execute-advance loop forever.
func (c *CPU) Execute(gpu PixelProcessor, hook Hook) {
	if hook == nil {
		hook = NoHook{}
	}
	for {
		c.Tick(gpu, hook)
	}
}

// readImmediate returns the byte pointed by IP and moves past it.
// This value is known as immediate ('n' in mnemonics).
func (c *CPU) readImmediate() uint8 {
	n := c.mem.Read(c.ip)
	c.ip++
	return n
}

// readImmediateWord returns the little endian word pointed by IP and moves past it ('nn').
func (c *CPU) readImmediateWord() uint16 {
	nn := c.mem.Read16(c.ip)
	c.ip += 2
	return nn
}

// readSignedImmediate returns the byte pointed by IP as a signed offset ('e').
func (c *CPU) readSignedImmediate() int8 {
	return int8(c.readImmediate())
}

func (c *CPU) a() uint8 {
	return c.af.High()
}

func (c *CPU) setA(value uint8) {
	c.af.SetHigh(value)
}

func (c *CPU) f() uint8 {
	return c.af.Low()
}

// setF writes the flag register. The low nibble is always zero.
func (c *CPU) setF(value uint8) {
	c.af.SetLow(value & 0xF0)
}

func (c *CPU) setAF(value uint16) {
	c.af.Set(value & 0xFFF0)
}

func (c *CPU) setFlag(flag Flag) {
	c.setF(c.f() | uint8(flag))
}

func (c *CPU) resetFlag(flag Flag) {
	c.setF(c.f() &^ uint8(flag))
}

func (c *CPU) isSetFlag(flag Flag) bool {
	return c.f()&uint8(flag) != 0
}

// flagToBit will return 1 if the passed flag is set, 0 otherwise
func (c *CPU) flagToBit(flag Flag) uint8 {
	if c.isSetFlag(flag) {
		return 1
	}

	return 0
}

func (c *CPU) setFlagToCondition(flag Flag, condition bool) {
	if !condition {
		c.resetFlag(flag)
		return
	}

	c.setFlag(flag)
}

// setFlags recomputes the whole flag register.
func (c *CPU) setFlags(zero, sub, halfCarry, carry bool) {
	var f uint8
	if zero {
		f |= uint8(zeroFlag)
	}
	if sub {
		f |= uint8(subFlag)
	}
	if halfCarry {
		f |= uint8(halfCarryFlag)
	}
	if carry {
		f |= uint8(carryFlag)
	}
	c.setF(f)
}

// get8 reads an 8 bit operand, [HL] goes through memory.
func (c *CPU) get8(r reg8) uint8 {
	switch r {
	case regB:
		return c.bc.High()
	case regC:
		return c.bc.Low()
	case regD:
		return c.de.High()
	case regE:
		return c.de.Low()
	case regH:
		return c.hl.High()
	case regL:
		return c.hl.Low()
	case regHLPtr:
		return c.mem.Read(c.hl.Get())
	default:
		return c.af.High()
	}
}

// set8 writes an 8 bit operand, [HL] goes through memory.
func (c *CPU) set8(r reg8, value uint8) {
	switch r {
	case regB:
		c.bc.SetHigh(value)
	case regC:
		c.bc.SetLow(value)
	case regD:
		c.de.SetHigh(value)
	case regE:
		c.de.SetLow(value)
	case regH:
		c.hl.SetHigh(value)
	case regL:
		c.hl.SetLow(value)
	case regHLPtr:
		c.mem.Write(c.hl.Get(), value)
	default:
		c.af.SetHigh(value)
	}
}

// Registers returns a copy of the register file.
func (c *CPU) Registers() Registers {
	return Registers{AF: c.af, BC: c.bc, DE: c.de, HL: c.hl, SP: c.sp, IP: c.ip}
}

// PC returns the instruction pointer.
func (c *CPU) PC() uint16 { return c.ip }

// InterruptsEnabled reports the state of the interrupt master enable flag.
func (c *CPU) InterruptsEnabled() bool { return c.interruptsEnabled }

// Cycles returns the amount of cycles executed since creation.
func (c *CPU) Cycles() uint64 { return c.cycles }

// Opcode returns the last fetched opcode. Extended opcodes carry the 0xCB
// prefix in the high byte.
func (c *CPU) Opcode() uint16 { return c.currentOpcode }

// RegisterNames lists every name accepted by Register and SetRegister.
var RegisterNames = []string{"A", "F", "AF", "B", "C", "BC", "D", "E", "DE", "H", "L", "HL", "SP", "IP"}

// Register reads a register by name (case insensitive). 8 bit registers are
// returned zero extended. PC is accepted as an alias of IP.
func (c *CPU) Register(name string) (uint16, bool) {
	switch strings.ToUpper(name) {
	case "A":
		return uint16(c.af.High()), true
	case "F":
		return uint16(c.af.Low()), true
	case "AF":
		return c.af.Get(), true
	case "B":
		return uint16(c.bc.High()), true
	case "C":
		return uint16(c.bc.Low()), true
	case "BC":
		return c.bc.Get(), true
	case "D":
		return uint16(c.de.High()), true
	case "E":
		return uint16(c.de.Low()), true
	case "DE":
		return c.de.Get(), true
	case "H":
		return uint16(c.hl.High()), true
	case "L":
		return uint16(c.hl.Low()), true
	case "HL":
		return c.hl.Get(), true
	case "SP":
		return c.sp, true
	case "IP", "PC":
		return c.ip, true
	}
	return 0, false
}

// SetRegister writes a register by name (case insensitive). Values written to
// 8 bit registers are truncated and the low nibble of F is always cleared.
func (c *CPU) SetRegister(name string, value uint16) bool {
	low := bit.Low(value)

	switch strings.ToUpper(name) {
	case "A":
		c.af.SetHigh(low)
	case "F":
		c.setF(low)
	case "AF":
		c.setAF(value)
	case "B":
		c.bc.SetHigh(low)
	case "C":
		c.bc.SetLow(low)
	case "BC":
		c.bc.Set(value)
	case "D":
		c.de.SetHigh(low)
	case "E":
		c.de.SetLow(low)
	case "DE":
		c.de.Set(value)
	case "H":
		c.hl.SetHigh(low)
	case "L":
		c.hl.SetLow(low)
	case "HL":
		c.hl.Set(value)
	case "SP":
		c.sp = value
	case "IP", "PC":
		c.ip = value
	default:
		return false
	}
	return true
}

// FlagString returns a human-readable representation of the flag register
func (c *CPU) FlagString() string {
	flags := []byte("----")
	if c.isSetFlag(zeroFlag) {
		flags[0] = 'Z'
	}
	if c.isSetFlag(subFlag) {
		flags[1] = 'N'
	}
	if c.isSetFlag(halfCarryFlag) {
		flags[2] = 'H'
	}
	if c.isSetFlag(carryFlag) {
		flags[3] = 'C'
	}
	return string(flags)
}
