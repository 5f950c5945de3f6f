//go:build daa

package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCPU_daa(t *testing.T) {
	testCases := []struct {
		desc  string
		a     uint8
		flags Flag
		want  uint8
		wantF Flag
	}{
		{desc: "after addition", a: 0x3C, want: 0x42},
		{desc: "after addition with half carry", a: 0x40, flags: halfCarryFlag, want: 0x46},
		{desc: "overflow sets carry", a: 0x9A, want: 0x00, wantF: zeroFlag | carryFlag},
		{desc: "after subtraction", a: 0x0F, flags: subFlag | halfCarryFlag, want: 0x09, wantF: subFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			c, _ := newTestCPU(0x27)
			c.setA(tC.a)
			c.setF(uint8(tC.flags))

			c.Step()

			assert.Equal(t, tC.want, c.a())
			assert.Equal(t, uint8(tC.wantF), c.f())
		})
	}
}
