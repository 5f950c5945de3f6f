package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valerio/gogg/gg/memory"
)

func TestCPU_stack(t *testing.T) {
	mmu := memory.New()
	cpu := New(mmu)

	cpu.sp = 0xDFF0
	cpu.pushStack(0x0102)

	assert.Equal(t, uint16(0xDFEE), cpu.sp)
	assert.Equal(t, uint8(0x02), mmu.Read(0xDFEE))
	assert.Equal(t, uint8(0x01), mmu.Read(0xDFEF))

	popped := cpu.popStack()

	assert.Equal(t, uint16(0x0102), popped)
	assert.Equal(t, uint16(0xDFF0), cpu.sp)
}

func TestCPU_inc(t *testing.T) {
	cpu := New(memory.New())

	testCases := []struct {
		desc    string
		arg     uint8
		want    uint8
		initial Flag
		flags   Flag
	}{
		{desc: "increases", arg: 0x0A, want: 0x0B},
		{desc: "sets zero flag", arg: 0xFF, want: 0, flags: zeroFlag | halfCarryFlag},
		{desc: "sets half carry flag", arg: 0x0F, want: 0x10, flags: halfCarryFlag},
		{desc: "clears operation flag", arg: 0x01, want: 0x02, initial: subFlag},
		{desc: "preserves carry", arg: 0x01, want: 0x02, initial: carryFlag, flags: carryFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.setF(uint8(tC.initial))
			got := cpu.inc(tC.arg)
			assert.Equal(t, tC.want, got)
			assert.Equal(t, uint8(tC.flags), cpu.f())
		})
	}
}

func TestCPU_dec(t *testing.T) {
	cpu := New(memory.New())

	testCases := []struct {
		desc    string
		arg     uint8
		want    uint8
		initial Flag
		flags   Flag
	}{
		{desc: "decreases", arg: 0x05, want: 0x04, flags: subFlag},
		{desc: "sets zero flag", arg: 0x01, want: 0, flags: zeroFlag | subFlag},
		{desc: "sets half carry flag", arg: 0x10, want: 0x0F, flags: subFlag | halfCarryFlag},
		{desc: "wraps around", arg: 0x00, want: 0xFF, flags: subFlag | halfCarryFlag},
		{desc: "preserves carry", arg: 0x05, want: 0x04, initial: carryFlag, flags: subFlag | carryFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.setF(uint8(tC.initial))
			got := cpu.dec(tC.arg)
			assert.Equal(t, tC.want, got)
			assert.Equal(t, uint8(tC.flags), cpu.f())
		})
	}
}

func TestCPU_addToA(t *testing.T) {
	cpu := New(memory.New())

	testCases := []struct {
		desc  string
		a     uint8
		arg   uint8
		carry uint8
		want  uint8
		flags Flag
	}{
		{desc: "adds", a: 0x01, arg: 0x02, want: 0x03},
		{desc: "half carry", a: 0x0F, arg: 0x01, want: 0x10, flags: halfCarryFlag},
		{desc: "overflow to zero", a: 0x3A, arg: 0xC6, want: 0x00, flags: zeroFlag | halfCarryFlag | carryFlag},
		{desc: "carry without half carry", a: 0xF0, arg: 0x20, want: 0x10, flags: carryFlag},
		{desc: "adds carry in", a: 0xE1, arg: 0x0F, carry: 1, want: 0xF1, flags: halfCarryFlag},
		{desc: "carry in overflows", a: 0xFF, arg: 0x00, carry: 1, want: 0x00, flags: zeroFlag | halfCarryFlag | carryFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.setF(0)
			cpu.setA(tC.a)
			cpu.addToA(tC.arg, tC.carry)
			assert.Equal(t, tC.want, cpu.a())
			assert.Equal(t, uint8(tC.flags), cpu.f())
		})
	}
}

func TestCPU_sub(t *testing.T) {
	cpu := New(memory.New())

	testCases := []struct {
		desc  string
		a     uint8
		arg   uint8
		carry uint8
		want  uint8
		flags Flag
	}{
		{desc: "equal values give zero", a: 0x3E, arg: 0x3E, want: 0x00, flags: zeroFlag | subFlag},
		{desc: "half borrow", a: 0x3E, arg: 0x0F, want: 0x2F, flags: subFlag | halfCarryFlag},
		{desc: "borrow", a: 0x3E, arg: 0x40, want: 0xFE, flags: subFlag | carryFlag},
		{desc: "subtracts carry in", a: 0x3B, arg: 0x2A, carry: 1, want: 0x10, flags: subFlag},
		{desc: "carry in borrows", a: 0x00, arg: 0x00, carry: 1, want: 0xFF, flags: subFlag | halfCarryFlag | carryFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.setF(0)
			cpu.setA(tC.a)
			got := cpu.sub(tC.arg, tC.carry)
			assert.Equal(t, tC.want, got)
			assert.Equal(t, tC.a, cpu.a(), "sub does not store the result")
			assert.Equal(t, uint8(tC.flags), cpu.f())
		})
	}
}

func TestCPU_logic(t *testing.T) {
	cpu := New(memory.New())

	testCases := []struct {
		desc  string
		op    func(uint8)
		a     uint8
		arg   uint8
		want  uint8
		flags Flag
	}{
		{desc: "and", op: cpu.and, a: 0x5A, arg: 0x3F, want: 0x1A, flags: halfCarryFlag},
		{desc: "and zero", op: cpu.and, a: 0x5A, arg: 0x00, want: 0x00, flags: zeroFlag | halfCarryFlag},
		{desc: "or", op: cpu.or, a: 0x5A, arg: 0x03, want: 0x5B},
		{desc: "or zero", op: cpu.or, a: 0x00, arg: 0x00, want: 0x00, flags: zeroFlag},
		{desc: "xor", op: cpu.xor, a: 0xFF, arg: 0x0F, want: 0xF0},
		{desc: "xor self", op: cpu.xor, a: 0x42, arg: 0x42, want: 0x00, flags: zeroFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.setF(uint8(carryFlag | subFlag))
			cpu.setA(tC.a)
			tC.op(tC.arg)
			assert.Equal(t, tC.want, cpu.a())
			assert.Equal(t, uint8(tC.flags), cpu.f())
		})
	}
}

func TestCPU_addToHL(t *testing.T) {
	cpu := New(memory.New())

	testCases := []struct {
		desc    string
		hl      uint16
		arg     uint16
		initial Flag
		want    uint16
		flags   Flag
	}{
		{desc: "adds", hl: 0x0001, arg: 0x0001, want: 0x0002},
		{desc: "half carry from bit 11", hl: 0x8A23, arg: 0x0605, want: 0x9028, flags: halfCarryFlag},
		{desc: "carry from bit 15", hl: 0x8A23, arg: 0x8A23, want: 0x1446, flags: halfCarryFlag | carryFlag},
		{desc: "zero flag untouched", hl: 0x0000, arg: 0x0000, initial: zeroFlag | subFlag, want: 0x0000, flags: zeroFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.setF(uint8(tC.initial))
			cpu.hl.Set(tC.hl)
			cpu.addToHL(tC.arg)
			assert.Equal(t, tC.want, cpu.hl.Get())
			assert.Equal(t, uint8(tC.flags), cpu.f())
		})
	}
}

func TestCPU_addSignedToSP(t *testing.T) {
	cpu := New(memory.New())

	testCases := []struct {
		desc  string
		sp    uint16
		arg   int8
		want  uint16
		flags Flag
	}{
		{desc: "positive offset", sp: 0xFFF0, arg: 2, want: 0xFFF2},
		{desc: "half carry from bit 3", sp: 0xFFF8, arg: 8, want: 0x0000, flags: halfCarryFlag | carryFlag},
		{desc: "carries from the low byte", sp: 0x00FF, arg: 1, want: 0x0100, flags: halfCarryFlag | carryFlag},
		{desc: "negative offset", sp: 0x0000, arg: -1, want: 0xFFFF},
		{desc: "negative offset with carries", sp: 0x0010, arg: -1, want: 0x000F, flags: carryFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.setF(uint8(zeroFlag | subFlag))
			cpu.sp = tC.sp
			got := cpu.addSignedToSP(tC.arg)
			assert.Equal(t, tC.want, got)
			assert.Equal(t, tC.sp, cpu.sp)
			assert.Equal(t, uint8(tC.flags), cpu.f())
		})
	}
}

func TestCPU_rotates(t *testing.T) {
	cpu := New(memory.New())

	testCases := []struct {
		desc    string
		op      func(uint8) uint8
		initial Flag
		arg     uint8
		want    uint8
		flags   Flag
	}{
		{desc: "rlc", op: cpu.rlc, arg: 0x85, want: 0x0B, flags: carryFlag},
		{desc: "rlc zero", op: cpu.rlc, arg: 0x00, want: 0x00, flags: zeroFlag},
		{desc: "rrc", op: cpu.rrc, arg: 0x01, want: 0x80, flags: carryFlag},
		{desc: "rl through carry", op: cpu.rl, initial: carryFlag, arg: 0x80, want: 0x01, flags: carryFlag},
		{desc: "rl without carry", op: cpu.rl, arg: 0x80, want: 0x00, flags: zeroFlag | carryFlag},
		{desc: "rr through carry", op: cpu.rr, initial: carryFlag, arg: 0x02, want: 0x81},
		{desc: "rr to zero", op: cpu.rr, arg: 0x01, want: 0x00, flags: zeroFlag | carryFlag},
		{desc: "sla", op: cpu.sla, arg: 0xFF, want: 0xFE, flags: carryFlag},
		{desc: "sra keeps sign", op: cpu.sra, arg: 0x8A, want: 0xC5},
		{desc: "sra to zero", op: cpu.sra, arg: 0x01, want: 0x00, flags: zeroFlag | carryFlag},
		{desc: "srl", op: cpu.srl, arg: 0xFF, want: 0x7F, flags: carryFlag},
		{desc: "swap", op: cpu.swap, initial: carryFlag, arg: 0xF1, want: 0x1F},
		{desc: "swap zero", op: cpu.swap, arg: 0x00, want: 0x00, flags: zeroFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.setF(uint8(tC.initial | halfCarryFlag | subFlag))
			got := tC.op(tC.arg)
			assert.Equal(t, tC.want, got)
			assert.Equal(t, uint8(tC.flags), cpu.f())
		})
	}
}

func TestCPU_rlcEightTimesIsIdentity(t *testing.T) {
	cpu := New(memory.New())

	for _, value := range []uint8{0x00, 0x01, 0x85, 0xA5, 0xFF} {
		got := value
		for i := 0; i < 8; i++ {
			got = cpu.rlc(got)
		}
		assert.Equal(t, value, got)
	}
}

func TestCPU_bit(t *testing.T) {
	cpu := New(memory.New())

	testCases := []struct {
		desc    string
		n       uint8
		arg     uint8
		initial Flag
		flags   Flag
	}{
		{desc: "bit set", n: 7, arg: 0x80, flags: halfCarryFlag},
		{desc: "bit clear", n: 0, arg: 0xFE, flags: zeroFlag | halfCarryFlag},
		{desc: "preserves carry", n: 3, arg: 0x08, initial: carryFlag | subFlag, flags: halfCarryFlag | carryFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.setF(uint8(tC.initial))
			cpu.bit(tC.n, tC.arg)
			assert.Equal(t, uint8(tC.flags), cpu.f())
		})
	}
}

func TestCPU_carryOperations(t *testing.T) {
	cpu := New(memory.New())

	cpu.setA(0x35)
	cpu.setF(0)
	cpu.cpl()
	assert.Equal(t, uint8(0xCA), cpu.a())
	assert.Equal(t, uint8(subFlag|halfCarryFlag), cpu.f())

	cpu.scf()
	assert.Equal(t, uint8(carryFlag), cpu.f())

	cpu.ccf()
	assert.Equal(t, uint8(0), cpu.f())

	cpu.setF(uint8(zeroFlag))
	cpu.ccf()
	assert.Equal(t, uint8(zeroFlag|carryFlag), cpu.f())
}

func TestCPU_flagRegisterLowNibble(t *testing.T) {
	cpu := New(memory.New())

	cpu.setF(0xFF)
	assert.Equal(t, uint8(0xF0), cpu.f())

	cpu.setAF(0x12FF)
	assert.Equal(t, uint16(0x12F0), cpu.af.Get())
	assert.Equal(t, "ZNHC", cpu.FlagString())

	cpu.setF(uint8(zeroFlag | carryFlag))
	assert.Equal(t, "Z--C", cpu.FlagString())
}
