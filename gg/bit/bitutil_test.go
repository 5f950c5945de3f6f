package bit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombine(t *testing.T) {
	tests := []struct {
		high, low uint8
		expected  uint16
	}{
		{0xAB, 0xCD, 0xABCD},
		{0x00, 0x00, 0x0000},
		{0xFF, 0xFF, 0xFFFF},
		{0x12, 0x34, 0x1234},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Combine(tt.high, tt.low))
		assert.Equal(t, tt.high, High(tt.expected))
		assert.Equal(t, tt.low, Low(tt.expected))
	}
}

func TestSetReset(t *testing.T) {
	testCases := []struct {
		desc  string
		index uint8
		in    uint8
		set   uint8
		reset uint8
	}{
		{desc: "bit 0 on zero", index: 0, in: 0x00, set: 0x01, reset: 0x00},
		{desc: "bit 7 on full", index: 7, in: 0xFF, set: 0xFF, reset: 0x7F},
		{desc: "bit 3 mixed", index: 3, in: 0xA5, set: 0xAD, reset: 0xA5},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			assert.Equal(t, tC.set, Set(tC.index, tC.in))
			assert.Equal(t, tC.reset, Reset(tC.index, tC.in))
			assert.True(t, IsSet(tC.index, Set(tC.index, tC.in)))
			assert.False(t, IsSet(tC.index, Reset(tC.index, tC.in)))
			assert.Equal(t, uint8(1), Value(tC.index, Set(tC.index, tC.in)))
		})
	}
}

func TestSwapNibbles(t *testing.T) {
	assert.Equal(t, uint8(0x21), SwapNibbles(0x12))
	assert.Equal(t, uint8(0x0F), SwapNibbles(0xF0))
	assert.Equal(t, uint8(0x00), SwapNibbles(0x00))
}

func TestExtractBits(t *testing.T) {
	assert.Equal(t, uint8(0b101), ExtractBits(0b11010110, 6, 4))
	assert.Equal(t, uint8(0b11), ExtractBits(0b11000000, 7, 6))
	assert.Equal(t, uint8(0b111), ExtractBits(0b00111000, 5, 3))
}
