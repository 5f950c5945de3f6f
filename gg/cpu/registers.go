package cpu

// Pair is a 16 bit register made of two 8 bit halves sharing the same storage.
// The high half is the first register of the pair name (B in BC, A in AF).
type Pair uint16

// Get returns the whole 16 bit value.
func (p Pair) Get() uint16 {
	return uint16(p)
}

// Set replaces the whole 16 bit value.
func (p *Pair) Set(value uint16) {
	*p = Pair(value)
}

// High returns the most significant byte.
func (p Pair) High() uint8 {
	return uint8(p >> 8)
}

// Low returns the least significant byte.
func (p Pair) Low() uint8 {
	return uint8(p & 0xFF)
}

// SetHigh replaces the most significant byte, leaving the low one untouched.
func (p *Pair) SetHigh(high uint8) {
	*p = Pair(uint16(*p)&0x00FF | uint16(high)<<8)
}

// SetLow replaces the least significant byte, leaving the high one untouched.
func (p *Pair) SetLow(low uint8) {
	*p = Pair(uint16(*p)&0xFF00 | uint16(low))
}

// Registers is a copy of the register file, used for inspection.
type Registers struct {
	AF, BC, DE, HL Pair
	SP, IP         uint16
}

// reg8 identifies an 8 bit operand using the encoding found in the low three
// bits of most register-to-register opcodes.
type reg8 uint8

const (
	regB reg8 = iota
	regC
	regD
	regE
	regH
	regL
	regHLPtr
	regA
)

var reg8Names = [...]string{"B", "C", "D", "E", "H", "L", "[HL]", "A"}

func (r reg8) String() string {
	return reg8Names[r&7]
}
