package cpu

import (
	"fmt"

	"github.com/valerio/gogg/gg/bit"
)

// Extended opcodes are decoded from their bits instead of a table:
//
//	bits 7-6: category (0 rotate/shift, 1 BIT, 2 RES, 3 SET)
//	bits 5-3: rotate/shift kind, or bit index
//	bits 2-0: operand (B C D E H L [HL] A)
const (
	cbShift = iota
	cbBit
	cbRes
	cbSet
)

var cbShiftNames = [...]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL"}

var cbShifts = [...]func(*CPU, uint8) uint8{
	(*CPU).rlc, (*CPU).rrc, (*CPU).rl, (*CPU).rr,
	(*CPU).sla, (*CPU).sra, (*CPU).swap, (*CPU).srl,
}

// execCB runs the extended instruction op and returns the cycles it takes
// on top of the prefix.
func (c *CPU) execCB(op uint8) int {
	c.currentOpcode = bit.Combine(0xCB, op)

	r := reg8(op & 7)
	n := (op >> 3) & 7
	value := c.get8(r)

	switch op >> 6 {
	case cbShift:
		c.set8(r, cbShifts[n](c, value))
	case cbBit:
		c.bit(n, value)
	case cbRes:
		c.set8(r, bit.Reset(n, value))
	case cbSet:
		c.set8(r, bit.Set(n, value))
	}

	return instructions[PrefixCB].Cycles + cbExtraCycles(op)
}

// cbExtraCycles is the memory access cost of an [HL] operand.
// BIT only reads it, the others read and write it back.
func cbExtraCycles(op uint8) int {
	if reg8(op&7) != regHLPtr {
		return 0
	}
	if op>>6 == cbBit {
		return 4
	}
	return 8
}

// CBCycles returns the full cost of the instruction 0xCB op, prefix included.
func CBCycles(op uint8) int {
	return instructions[0xCB].Cycles + instructions[PrefixCB].Cycles + cbExtraCycles(op)
}

// CBMnemonic returns the assembly for the instruction 0xCB op.
func CBMnemonic(op uint8) string {
	r := reg8(op & 7)
	n := (op >> 3) & 7

	switch op >> 6 {
	case cbShift:
		return cbShiftNames[n] + " " + r.String()
	case cbBit:
		return fmt.Sprintf("BIT %d, %s", n, r)
	case cbRes:
		return fmt.Sprintf("RES %d, %s", n, r)
	default:
		return fmt.Sprintf("SET %d, %s", n, r)
	}
}
