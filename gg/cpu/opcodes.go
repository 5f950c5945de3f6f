package cpu

// PrefixCB is the lookup index of the 0xCB prefixed instruction family.
const PrefixCB = 0x100

// Operand describes how the bytes following an opcode are interpreted.
type Operand uint8

const (
	OperandNone Operand = iota
	// OperandImm8 is an unsigned byte ('n').
	OperandImm8
	// OperandImm16 is a little endian word ('nn').
	OperandImm16
	// OperandRelative is a signed offset from the next instruction, shown as the target address.
	OperandRelative
	// OperandSigned8 is a signed byte added to SP.
	OperandSigned8
	// OperandHigh8 is the low byte of an address in the 0xFF00 page.
	OperandHigh8
	// OperandExtended is the second byte of a 0xCB prefixed instruction.
	OperandExtended
)

// Instruction describes an opcode. Mnemonic holds a format verb for the operand, if any.
type Instruction struct {
	Mnemonic string
	Length   int
	Cycles   int
	Operand  Operand
	// exec runs the instruction and returns the cycles spent on top of Cycles,
	// for taken branches and extended instructions.
	exec func(c *CPU) int
}

// Legal reports whether the opcode is part of the instruction set.
func (i Instruction) Legal() bool {
	return i.exec != nil
}

// Lookup returns the descriptor for an opcode, or for the extended family at PrefixCB.
func Lookup(op int) Instruction {
	if op < 0 || op > PrefixCB {
		return Instruction{}
	}
	return instructions[op]
}

// Length returns the size in bytes of an opcode, PrefixCB gives the size of the second byte.
func Length(op int) int {
	return Lookup(op).Length
}

// Cycles returns the base cost of an opcode. Conditional branches cost more when taken.
func Cycles(op int) int {
	return Lookup(op).Cycles
}

var instructions [PrefixCB + 1]Instruction

func init() {
	instructions = [PrefixCB + 1]Instruction{
		0x00: {"NOP", 1, 4, OperandNone, nop},
		0x01: {"LD BC, 0x%04X", 3, 12, OperandImm16, func(c *CPU) int { c.bc.Set(c.readImmediateWord()); return 0 }},
		0x02: {"LD [BC], A", 1, 8, OperandNone, func(c *CPU) int { c.mem.Write(c.bc.Get(), c.a()); return 0 }},
		0x03: {"INC BC", 1, 8, OperandNone, func(c *CPU) int { c.bc.Set(c.bc.Get() + 1); return 0 }},
		0x07: {"RLCA", 1, 4, OperandNone, func(c *CPU) int { c.setA(c.rlc(c.a())); c.resetFlag(zeroFlag); return 0 }},
		0x08: {"LD [0x%04X], SP", 3, 20, OperandImm16, func(c *CPU) int { c.mem.Write16(c.readImmediateWord(), c.sp); return 0 }},
		0x09: {"ADD HL, BC", 1, 8, OperandNone, func(c *CPU) int { c.addToHL(c.bc.Get()); return 0 }},
		0x0A: {"LD A, [BC]", 1, 8, OperandNone, func(c *CPU) int { c.setA(c.mem.Read(c.bc.Get())); return 0 }},
		0x0B: {"DEC BC", 1, 8, OperandNone, func(c *CPU) int { c.bc.Set(c.bc.Get() - 1); return 0 }},
		0x0F: {"RRCA", 1, 4, OperandNone, func(c *CPU) int { c.setA(c.rrc(c.a())); c.resetFlag(zeroFlag); return 0 }},

		// STOP is followed by a padding byte.
		0x10: {"STOP", 2, 4, OperandNone, func(c *CPU) int { c.ip++; return 0 }},
		0x11: {"LD DE, 0x%04X", 3, 12, OperandImm16, func(c *CPU) int { c.de.Set(c.readImmediateWord()); return 0 }},
		0x12: {"LD [DE], A", 1, 8, OperandNone, func(c *CPU) int { c.mem.Write(c.de.Get(), c.a()); return 0 }},
		0x13: {"INC DE", 1, 8, OperandNone, func(c *CPU) int { c.de.Set(c.de.Get() + 1); return 0 }},
		0x17: {"RLA", 1, 4, OperandNone, func(c *CPU) int { c.setA(c.rl(c.a())); c.resetFlag(zeroFlag); return 0 }},
		0x18: {"JR 0x%04X", 2, 12, OperandRelative, func(c *CPU) int { c.jr(); return 0 }},
		0x19: {"ADD HL, DE", 1, 8, OperandNone, func(c *CPU) int { c.addToHL(c.de.Get()); return 0 }},
		0x1A: {"LD A, [DE]", 1, 8, OperandNone, func(c *CPU) int { c.setA(c.mem.Read(c.de.Get())); return 0 }},
		0x1B: {"DEC DE", 1, 8, OperandNone, func(c *CPU) int { c.de.Set(c.de.Get() - 1); return 0 }},
		0x1F: {"RRA", 1, 4, OperandNone, func(c *CPU) int { c.setA(c.rr(c.a())); c.resetFlag(zeroFlag); return 0 }},

		0x20: {"JR NZ, 0x%04X", 2, 8, OperandRelative, jrIf(condNZ)},
		0x21: {"LD HL, 0x%04X", 3, 12, OperandImm16, func(c *CPU) int { c.hl.Set(c.readImmediateWord()); return 0 }},
		0x22: {"LD [HL+], A", 1, 8, OperandNone, func(c *CPU) int { c.mem.Write(c.hl.Get(), c.a()); c.hl.Set(c.hl.Get() + 1); return 0 }},
		0x23: {"INC HL", 1, 8, OperandNone, func(c *CPU) int { c.hl.Set(c.hl.Get() + 1); return 0 }},
		0x27: {"DAA", 1, 4, OperandNone, func(c *CPU) int { c.daa(); return 0 }},
		0x28: {"JR Z, 0x%04X", 2, 8, OperandRelative, jrIf(condZ)},
		0x29: {"ADD HL, HL", 1, 8, OperandNone, func(c *CPU) int { c.addToHL(c.hl.Get()); return 0 }},
		0x2A: {"LD A, [HL+]", 1, 8, OperandNone, func(c *CPU) int { c.setA(c.mem.Read(c.hl.Get())); c.hl.Set(c.hl.Get() + 1); return 0 }},
		0x2B: {"DEC HL", 1, 8, OperandNone, func(c *CPU) int { c.hl.Set(c.hl.Get() - 1); return 0 }},
		0x2F: {"CPL", 1, 4, OperandNone, func(c *CPU) int { c.cpl(); return 0 }},

		0x30: {"JR NC, 0x%04X", 2, 8, OperandRelative, jrIf(condNC)},
		0x31: {"LD SP, 0x%04X", 3, 12, OperandImm16, func(c *CPU) int { c.sp = c.readImmediateWord(); return 0 }},
		0x32: {"LD [HL-], A", 1, 8, OperandNone, func(c *CPU) int { c.mem.Write(c.hl.Get(), c.a()); c.hl.Set(c.hl.Get() - 1); return 0 }},
		0x33: {"INC SP", 1, 8, OperandNone, func(c *CPU) int { c.sp++; return 0 }},
		0x37: {"SCF", 1, 4, OperandNone, func(c *CPU) int { c.scf(); return 0 }},
		0x38: {"JR C, 0x%04X", 2, 8, OperandRelative, jrIf(condC)},
		0x39: {"ADD HL, SP", 1, 8, OperandNone, func(c *CPU) int { c.addToHL(c.sp); return 0 }},
		0x3A: {"LD A, [HL-]", 1, 8, OperandNone, func(c *CPU) int { c.setA(c.mem.Read(c.hl.Get())); c.hl.Set(c.hl.Get() - 1); return 0 }},
		0x3B: {"DEC SP", 1, 8, OperandNone, func(c *CPU) int { c.sp--; return 0 }},
		0x3F: {"CCF", 1, 4, OperandNone, func(c *CPU) int { c.ccf(); return 0 }},

		// no interrupt is ever raised, so HALT has nothing to wait for.
		0x76: {"HALT", 1, 4, OperandNone, nop},

		0xC0: {"RET NZ", 1, 8, OperandNone, retIf(condNZ)},
		0xC1: {"POP BC", 1, 12, OperandNone, func(c *CPU) int { c.bc.Set(c.popStack()); return 0 }},
		0xC2: {"JP NZ, 0x%04X", 3, 12, OperandImm16, jpIf(condNZ)},
		0xC3: {"JP 0x%04X", 3, 16, OperandImm16, func(c *CPU) int { c.jp(); return 0 }},
		0xC4: {"CALL NZ, 0x%04X", 3, 12, OperandImm16, callIf(condNZ)},
		0xC5: {"PUSH BC", 1, 16, OperandNone, func(c *CPU) int { c.pushStack(c.bc.Get()); return 0 }},
		0xC6: {"ADD A, 0x%02X", 2, 8, OperandImm8, func(c *CPU) int { c.addToA(c.readImmediate(), 0); return 0 }},
		0xC7: {"RST 0x00", 1, 16, OperandNone, rst(0x00)},
		0xC8: {"RET Z", 1, 8, OperandNone, retIf(condZ)},
		0xC9: {"RET", 1, 16, OperandNone, func(c *CPU) int { c.ret(); return 0 }},
		0xCA: {"JP Z, 0x%04X", 3, 12, OperandImm16, jpIf(condZ)},
		0xCB: {"PREFIX CB", 1, 4, OperandExtended, func(c *CPU) int { return c.execCB(c.readImmediate()) }},
		0xCC: {"CALL Z, 0x%04X", 3, 12, OperandImm16, callIf(condZ)},
		0xCD: {"CALL 0x%04X", 3, 24, OperandImm16, func(c *CPU) int { c.call(); return 0 }},
		0xCE: {"ADC A, 0x%02X", 2, 8, OperandImm8, func(c *CPU) int { c.addToA(c.readImmediate(), c.flagToBit(carryFlag)); return 0 }},
		0xCF: {"RST 0x08", 1, 16, OperandNone, rst(0x08)},

		0xD0: {"RET NC", 1, 8, OperandNone, retIf(condNC)},
		0xD1: {"POP DE", 1, 12, OperandNone, func(c *CPU) int { c.de.Set(c.popStack()); return 0 }},
		0xD2: {"JP NC, 0x%04X", 3, 12, OperandImm16, jpIf(condNC)},
		0xD4: {"CALL NC, 0x%04X", 3, 12, OperandImm16, callIf(condNC)},
		0xD5: {"PUSH DE", 1, 16, OperandNone, func(c *CPU) int { c.pushStack(c.de.Get()); return 0 }},
		0xD6: {"SUB A, 0x%02X", 2, 8, OperandImm8, func(c *CPU) int { c.setA(c.sub(c.readImmediate(), 0)); return 0 }},
		0xD7: {"RST 0x10", 1, 16, OperandNone, rst(0x10)},
		0xD8: {"RET C", 1, 8, OperandNone, retIf(condC)},
		0xD9: {"RETI", 1, 16, OperandNone, func(c *CPU) int { c.ret(); c.interruptsEnabled = true; return 0 }},
		0xDA: {"JP C, 0x%04X", 3, 12, OperandImm16, jpIf(condC)},
		0xDC: {"CALL C, 0x%04X", 3, 12, OperandImm16, callIf(condC)},
		0xDE: {"SBC A, 0x%02X", 2, 8, OperandImm8, func(c *CPU) int { c.setA(c.sub(c.readImmediate(), c.flagToBit(carryFlag))); return 0 }},
		0xDF: {"RST 0x18", 1, 16, OperandNone, rst(0x18)},

		0xE0: {"LDH [0xFF%02X], A", 2, 12, OperandHigh8, func(c *CPU) int { c.mem.Write(0xFF00|uint16(c.readImmediate()), c.a()); return 0 }},
		0xE1: {"POP HL", 1, 12, OperandNone, func(c *CPU) int { c.hl.Set(c.popStack()); return 0 }},
		0xE2: {"LD [0xFF00+C], A", 1, 8, OperandNone, func(c *CPU) int { c.mem.Write(0xFF00|uint16(c.bc.Low()), c.a()); return 0 }},
		0xE5: {"PUSH HL", 1, 16, OperandNone, func(c *CPU) int { c.pushStack(c.hl.Get()); return 0 }},
		0xE6: {"AND A, 0x%02X", 2, 8, OperandImm8, func(c *CPU) int { c.and(c.readImmediate()); return 0 }},
		0xE7: {"RST 0x20", 1, 16, OperandNone, rst(0x20)},
		0xE8: {"ADD SP, %d", 2, 16, OperandSigned8, func(c *CPU) int { c.sp = c.addSignedToSP(c.readSignedImmediate()); return 0 }},
		0xE9: {"JP HL", 1, 4, OperandNone, func(c *CPU) int { c.ip = c.hl.Get(); return 0 }},
		0xEA: {"LD [0x%04X], A", 3, 16, OperandImm16, func(c *CPU) int { c.mem.Write(c.readImmediateWord(), c.a()); return 0 }},
		0xEE: {"XOR A, 0x%02X", 2, 8, OperandImm8, func(c *CPU) int { c.xor(c.readImmediate()); return 0 }},
		0xEF: {"RST 0x28", 1, 16, OperandNone, rst(0x28)},

		0xF0: {"LDH A, [0xFF%02X]", 2, 12, OperandHigh8, func(c *CPU) int { c.setA(c.mem.Read(0xFF00 | uint16(c.readImmediate()))); return 0 }},
		0xF1: {"POP AF", 1, 12, OperandNone, func(c *CPU) int { c.setAF(c.popStack()); return 0 }},
		0xF2: {"LD A, [0xFF00+C]", 1, 8, OperandNone, func(c *CPU) int { c.setA(c.mem.Read(0xFF00 | uint16(c.bc.Low()))); return 0 }},
		0xF3: {"DI", 1, 4, OperandNone, func(c *CPU) int { c.interruptsEnabled = false; return 0 }},
		0xF5: {"PUSH AF", 1, 16, OperandNone, func(c *CPU) int { c.pushStack(c.af.Get()); return 0 }},
		0xF6: {"OR A, 0x%02X", 2, 8, OperandImm8, func(c *CPU) int { c.or(c.readImmediate()); return 0 }},
		0xF7: {"RST 0x30", 1, 16, OperandNone, rst(0x30)},
		0xF8: {"LD HL, SP%+d", 2, 12, OperandSigned8, func(c *CPU) int { c.hl.Set(c.addSignedToSP(c.readSignedImmediate())); return 0 }},
		0xF9: {"LD SP, HL", 1, 8, OperandNone, func(c *CPU) int { c.sp = c.hl.Get(); return 0 }},
		0xFA: {"LD A, [0x%04X]", 3, 16, OperandImm16, func(c *CPU) int { c.setA(c.mem.Read(c.readImmediateWord())); return 0 }},
		0xFB: {"EI", 1, 4, OperandNone, func(c *CPU) int { c.interruptsEnabled = true; return 0 }},
		0xFE: {"CP A, 0x%02X", 2, 8, OperandImm8, func(c *CPU) int { c.sub(c.readImmediate(), 0); return 0 }},
		0xFF: {"RST 0x38", 1, 16, OperandNone, rst(0x38)},

		// second byte of the extended family, the extra cost of [HL] operands is added at run time.
		PrefixCB: {"CB", 1, 4, OperandNone, nop},
	}

	// INC r, DEC r, LD r, n live in columns 4, 5 and 6 of the first quarter.
	for r := regB; r <= regA; r++ {
		op := int(r) << 3
		cost := 4
		if r == regHLPtr {
			cost = 12
		}
		instructions[op|0x04] = Instruction{"INC " + r.String(), 1, cost, OperandNone, incReg(r)}
		instructions[op|0x05] = Instruction{"DEC " + r.String(), 1, cost, OperandNone, decReg(r)}

		cost = 8
		if r == regHLPtr {
			cost = 12
		}
		instructions[op|0x06] = Instruction{"LD " + r.String() + ", 0x%02X", 2, cost, OperandImm8, loadImmediate(r)}
	}

	// LD r, r' covers 0x40-0x7F, with HALT in place of LD [HL], [HL].
	for op := 0x40; op <= 0x7F; op++ {
		if op == 0x76 {
			continue
		}
		dst, src := reg8(op>>3&7), reg8(op&7)
		cost := 4
		if dst == regHLPtr || src == regHLPtr {
			cost = 8
		}
		instructions[op] = Instruction{"LD " + dst.String() + ", " + src.String(), 1, cost, OperandNone, load(dst, src)}
	}

	// 8 bit arithmetic on A covers 0x80-0xBF.
	for op := 0x80; op <= 0xBF; op++ {
		kind, src := aluOp(op>>3&7), reg8(op&7)
		cost := 4
		if src == regHLPtr {
			cost = 8
		}
		instructions[op] = Instruction{aluNames[kind] + " A, " + src.String(), 1, cost, OperandNone, aluReg(kind, src)}
	}

	for _, op := range illegalOpcodes {
		instructions[op] = Instruction{Mnemonic: "ILLEGAL", Length: 1}
	}
}

// illegalOpcodes are not decoded by the hardware and stop execution.
var illegalOpcodes = []int{0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD}

func nop(*CPU) int {
	return 0
}

func incReg(r reg8) func(*CPU) int {
	return func(c *CPU) int {
		c.set8(r, c.inc(c.get8(r)))
		return 0
	}
}

func decReg(r reg8) func(*CPU) int {
	return func(c *CPU) int {
		c.set8(r, c.dec(c.get8(r)))
		return 0
	}
}

func loadImmediate(r reg8) func(*CPU) int {
	return func(c *CPU) int {
		c.set8(r, c.readImmediate())
		return 0
	}
}

func load(dst, src reg8) func(*CPU) int {
	return func(c *CPU) int {
		c.set8(dst, c.get8(src))
		return 0
	}
}

type aluOp uint8

const (
	aluADD aluOp = iota
	aluADC
	aluSUB
	aluSBC
	aluAND
	aluXOR
	aluOR
	aluCP
)

var aluNames = [...]string{"ADD", "ADC", "SUB", "SBC", "AND", "XOR", "OR", "CP"}

func (c *CPU) alu(kind aluOp, value uint8) {
	switch kind {
	case aluADD:
		c.addToA(value, 0)
	case aluADC:
		c.addToA(value, c.flagToBit(carryFlag))
	case aluSUB:
		c.setA(c.sub(value, 0))
	case aluSBC:
		c.setA(c.sub(value, c.flagToBit(carryFlag)))
	case aluAND:
		c.and(value)
	case aluXOR:
		c.xor(value)
	case aluOR:
		c.or(value)
	case aluCP:
		c.sub(value, 0)
	}
}

func aluReg(kind aluOp, src reg8) func(*CPU) int {
	return func(c *CPU) int {
		c.alu(kind, c.get8(src))
		return 0
	}
}

func jrIf(cond condition) func(*CPU) int {
	return func(c *CPU) int {
		if !c.check(cond) {
			c.ip++
			return 0
		}
		c.jr()
		return 4
	}
}

func jpIf(cond condition) func(*CPU) int {
	return func(c *CPU) int {
		if !c.check(cond) {
			c.ip += 2
			return 0
		}
		c.jp()
		return 4
	}
}

func callIf(cond condition) func(*CPU) int {
	return func(c *CPU) int {
		if !c.check(cond) {
			c.ip += 2
			return 0
		}
		c.call()
		return 12
	}
}

func retIf(cond condition) func(*CPU) int {
	return func(c *CPU) int {
		if !c.check(cond) {
			return 0
		}
		c.ret()
		return 12
	}
}

func rst(target uint16) func(*CPU) int {
	return func(c *CPU) int {
		c.rst(target)
		return 0
	}
}
