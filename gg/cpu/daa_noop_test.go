//go:build !daa

package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStep_daaLeavesStateUntouched(t *testing.T) {
	c, _ := newTestCPU(0x27)
	c.setA(0x3C)
	c.setF(uint8(halfCarryFlag))

	assert.Equal(t, 4, c.Step())
	assert.Equal(t, uint8(0x3C), c.a())
	assert.Equal(t, uint8(halfCarryFlag), c.f())
}
