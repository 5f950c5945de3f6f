package cpu

func (c *CPU) pushStack(value uint16) {
	c.sp -= 2
	c.mem.Write16(c.sp, value)
}

func (c *CPU) popStack() uint16 {
	value := c.mem.Read16(c.sp)
	c.sp += 2
	return value
}

func (c *CPU) inc(value uint8) uint8 {
	result := value + 1

	c.setFlagToCondition(zeroFlag, result == 0)
	c.setFlagToCondition(halfCarryFlag, value&0xF == 0xF)
	c.resetFlag(subFlag)

	return result
}

func (c *CPU) dec(value uint8) uint8 {
	result := value - 1

	c.setFlagToCondition(zeroFlag, result == 0)
	c.setFlagToCondition(halfCarryFlag, value&0xF == 0)
	c.setFlag(subFlag)

	return result
}

// addToA adds value and carry to A. ADD passes a zero carry, ADC the carry flag.
func (c *CPU) addToA(value, carry uint8) {
	a := c.a()
	sum := uint16(a) + uint16(value) + uint16(carry)
	halfCarry := (a&0xF)+(value&0xF)+carry > 0xF

	c.setA(uint8(sum))
	c.setFlags(uint8(sum) == 0, false, halfCarry, sum > 0xFF)
}

// sub computes A - value - carry, sets the flags and returns the result without storing it.
// CP uses the result only for the flags.
func (c *CPU) sub(value, carry uint8) uint8 {
	a := c.a()
	diff := int(a) - int(value) - int(carry)
	halfCarry := int(a&0xF)-int(value&0xF)-int(carry) < 0

	c.setFlags(uint8(diff) == 0, true, halfCarry, diff < 0)
	return uint8(diff)
}

func (c *CPU) and(value uint8) {
	result := c.a() & value
	c.setA(result)
	c.setFlags(result == 0, false, true, false)
}

func (c *CPU) or(value uint8) {
	result := c.a() | value
	c.setA(result)
	c.setFlags(result == 0, false, false, false)
}

func (c *CPU) xor(value uint8) {
	result := c.a() ^ value
	c.setA(result)
	c.setFlags(result == 0, false, false, false)
}

// addToHL adds a 16 bit value to HL. The zero flag is left untouched.
func (c *CPU) addToHL(value uint16) {
	hl := c.hl.Get()
	sum := uint32(hl) + uint32(value)

	c.setFlagToCondition(halfCarryFlag, (hl&0xFFF)+(value&0xFFF) > 0xFFF)
	c.setFlagToCondition(carryFlag, sum > 0xFFFF)
	c.resetFlag(subFlag)

	c.hl.Set(uint16(sum))
}

// addSignedToSP returns SP + e, with carries computed on the low byte as an unsigned add.
// Shared by ADD SP, e and LD HL, SP+e.
func (c *CPU) addSignedToSP(e int8) uint16 {
	offset := uint16(int16(e))
	result := c.sp + offset

	halfCarry := (c.sp&0xF)+(offset&0xF) > 0xF
	carry := (c.sp&0xFF)+(offset&0xFF) > 0xFF
	c.setFlags(false, false, halfCarry, carry)

	return result
}

func (c *CPU) rlc(value uint8) uint8 {
	carry := value >> 7
	result := value<<1 | carry
	c.setFlags(result == 0, false, false, carry == 1)
	return result
}

func (c *CPU) rrc(value uint8) uint8 {
	carry := value & 1
	result := value>>1 | carry<<7
	c.setFlags(result == 0, false, false, carry == 1)
	return result
}

func (c *CPU) rl(value uint8) uint8 {
	result := value<<1 | c.flagToBit(carryFlag)
	c.setFlags(result == 0, false, false, value > 0x7F)
	return result
}

func (c *CPU) rr(value uint8) uint8 {
	result := value>>1 | c.flagToBit(carryFlag)<<7
	c.setFlags(result == 0, false, false, value&1 == 1)
	return result
}

func (c *CPU) sla(value uint8) uint8 {
	result := value << 1
	c.setFlags(result == 0, false, false, value > 0x7F)
	return result
}

// sra shifts right keeping the sign bit.
func (c *CPU) sra(value uint8) uint8 {
	result := value>>1 | value&0x80
	c.setFlags(result == 0, false, false, value&1 == 1)
	return result
}

func (c *CPU) srl(value uint8) uint8 {
	result := value >> 1
	c.setFlags(result == 0, false, false, value&1 == 1)
	return result
}

func (c *CPU) swap(value uint8) uint8 {
	result := value<<4 | value>>4
	c.setFlags(result == 0, false, false, false)
	return result
}

// bit tests bit n of value, carry is preserved.
func (c *CPU) bit(n uint8, value uint8) {
	c.setFlagToCondition(zeroFlag, value&(1<<n) == 0)
	c.resetFlag(subFlag)
	c.setFlag(halfCarryFlag)
}

func (c *CPU) cpl() {
	c.setA(^c.a())
	c.setFlag(subFlag)
	c.setFlag(halfCarryFlag)
}

func (c *CPU) scf() {
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlag(carryFlag)
}

func (c *CPU) ccf() {
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, !c.isSetFlag(carryFlag))
}

// condition is one of the four branch conditions encoded in bits 3-4.
type condition uint8

const (
	condNZ condition = iota
	condZ
	condNC
	condC
)

func (c *CPU) check(cond condition) bool {
	switch cond {
	case condNZ:
		return !c.isSetFlag(zeroFlag)
	case condZ:
		return c.isSetFlag(zeroFlag)
	case condNC:
		return !c.isSetFlag(carryFlag)
	default:
		return c.isSetFlag(carryFlag)
	}
}

// jr reads a signed offset and jumps relative to the next instruction.
func (c *CPU) jr() {
	offset := c.readSignedImmediate()
	c.ip = uint16(int32(c.ip) + int32(offset))
}

// jp reads an absolute address and jumps to it.
func (c *CPU) jp() {
	c.ip = c.readImmediateWord()
}

func (c *CPU) call() {
	target := c.readImmediateWord()
	c.pushStack(c.ip)
	c.ip = target
}

func (c *CPU) ret() {
	c.ip = c.popStack()
}

func (c *CPU) rst(target uint16) {
	c.pushStack(c.ip)
	c.ip = target
}
