package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPair_halves(t *testing.T) {
	p := Pair(0xABCD)

	assert.Equal(t, uint8(0xAB), p.High())
	assert.Equal(t, uint8(0xCD), p.Low())
	assert.Equal(t, uint16(0xABCD), p.Get())
}

func TestPair_aliasing(t *testing.T) {
	testCases := []struct {
		desc  string
		apply func(p *Pair)
		want  uint16
	}{
		{desc: "set high keeps low", apply: func(p *Pair) { p.SetHigh(0x12) }, want: 0x12CD},
		{desc: "set low keeps high", apply: func(p *Pair) { p.SetLow(0x34) }, want: 0xAB34},
		{desc: "set whole", apply: func(p *Pair) { p.Set(0x1234) }, want: 0x1234},
		{desc: "both halves", apply: func(p *Pair) { p.SetLow(0x01); p.SetHigh(0x02) }, want: 0x0201},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			p := Pair(0xABCD)
			tC.apply(&p)
			assert.Equal(t, tC.want, p.Get())
			assert.Equal(t, uint8(tC.want>>8), p.High())
			assert.Equal(t, uint8(tC.want), p.Low())
		})
	}
}

func TestReg8_String(t *testing.T) {
	assert.Equal(t, "B", regB.String())
	assert.Equal(t, "[HL]", regHLPtr.String())
	assert.Equal(t, "A", regA.String())
}
