package debug

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/gogg/gg"
	"github.com/valerio/gogg/gg/memory"
)

// spinROM runs NOP, NOP, NOP, JR 0x0150 forever.
func spinROM() []byte {
	rom := make([]byte, 0x8000)
	copy(rom[0x100:], []byte{0xC3, 0x00, 0x50, 0x01})
	copy(rom[0x150:], []byte{0x00, 0x00, 0x00, 0x18, 0xFB})
	return rom
}

func newAdapter(t *testing.T) (*Adapter, *gg.Machine) {
	t.Helper()
	m := gg.New(spinROM())
	a := New(m.CPU(), m.Memory())
	m.Attach(a)
	return a, m
}

// runInBackground steps the machine on another goroutine until the test ends.
func runInBackground(t *testing.T, a *Adapter, m *gg.Machine) {
	t.Helper()
	var stop atomic.Bool
	done := make(chan struct{})

	go func() {
		defer close(done)
		for !stop.Load() {
			m.Step()
		}
	}()

	t.Cleanup(func() {
		stop.Store(true)
		a.UnsetAllBreakpoints()
		a.SetState(Continue)
		<-done
	})
}

func TestAdapter_registers(t *testing.T) {
	a, _ := newAdapter(t)

	ip, err := a.Register("IP")
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0150), ip)

	require.NoError(t, a.SetRegister("hl", 0xC123))
	h, err := a.Register("H")
	require.NoError(t, err)
	assert.Equal(t, uint16(0xC1), h)

	_, err = a.Register("XY")
	assert.ErrorIs(t, err, ErrUnknownRegister)
	assert.ErrorIs(t, a.SetRegister("XY", 1), ErrUnknownRegister)
}

func TestAdapter_memory(t *testing.T) {
	a, _ := newAdapter(t)

	a.SetAddress8(0xC010, 0x42)
	assert.Equal(t, byte(0x42), a.Address8(0xC010))
	assert.Equal(t, byte(0x42), a.Address8(0xE010))

	a.SetAddress8(0x0150, 0xFF)
	assert.Equal(t, byte(0x00), a.Address8(0x0150), "ROM is read-only")
}

func TestAdapter_breakpoints(t *testing.T) {
	a, _ := newAdapter(t)

	assert.True(t, a.SetBreakpoint(0x0200))
	assert.True(t, a.SetBreakpoint(0x0100))
	assert.True(t, a.SetBreakpoint(0x0150))
	assert.False(t, a.SetBreakpoint(0x0100), "duplicate")

	assert.Equal(t, []uint16{0x0100, 0x0150, 0x0200}, a.Breakpoints())
	assert.True(t, a.IsBreakpoint(0x0150))
	assert.False(t, a.IsBreakpoint(0x0151))

	assert.True(t, a.UnsetBreakpoint(0x0150))
	assert.False(t, a.UnsetBreakpoint(0x0150))
	assert.Equal(t, []uint16{0x0100, 0x0200}, a.Breakpoints())

	a.UnsetAllBreakpoints()
	assert.Empty(t, a.Breakpoints())
}

func TestAdapter_lineMapping(t *testing.T) {
	a, _ := newAdapter(t)

	for _, v := range []uint16{0x0000, 0x0150, 0xFFFF} {
		assert.Equal(t, v, a.AddressToLine(v))
		assert.Equal(t, v, a.LineToAddress(v))
	}
}

func TestAdapter_disassemble(t *testing.T) {
	a, _ := newAdapter(t)

	text, length := a.Disassemble(0x0153)
	assert.Equal(t, "JR 0x0150", text)
	assert.Equal(t, 2, length)

	text, length = a.Disassemble(0x0100)
	// the entry jump is C3 00 50: the operand word is 0x5000, not the 0x0102 target
	assert.Equal(t, "JP 0x5000", text)
	assert.Equal(t, 3, length)
}

func TestAdapter_stepWhileRunning(t *testing.T) {
	a, _ := newAdapter(t)

	assert.Equal(t, Continue, a.State())
	assert.False(t, a.Step())
}

func TestAdapter_breakpointPausesBeforeExecution(t *testing.T) {
	a, m := newAdapter(t)

	hits := make(chan uint16, 4)
	a.OnBreak(func(pc uint16) { hits <- pc })
	a.SetBreakpoint(0x0152)
	runInBackground(t, a, m)

	a.WaitPaused()
	assert.Equal(t, Paused, a.State())
	assert.Equal(t, uint16(0x0152), <-hits)

	snap := a.Snapshot()
	assert.Equal(t, uint16(0x0152), snap.Registers.IP)
	assert.Equal(t, uint64(4+4), snap.Cycles)
	assert.Len(t, snap.Memory, 0x10000)

	require.True(t, a.Step())
	a.WaitPaused()
	ip, _ := a.Register("IP")
	assert.Equal(t, uint16(0x0153), ip)

	require.True(t, a.Step())
	a.WaitPaused()
	ip, _ = a.Register("IP")
	assert.Equal(t, uint16(0x0150), ip)

	a.SetState(Continue)
	a.WaitPaused()
	ip, _ = a.Register("IP")
	assert.Equal(t, uint16(0x0152), ip)
	assert.Greater(t, a.Snapshot().Cycles, snap.Cycles)
}

func TestAdapter_continueFromBreakpoint(t *testing.T) {
	a, m := newAdapter(t)
	a.SetBreakpoint(0x0151)
	runInBackground(t, a, m)

	a.WaitPaused()
	first := a.Snapshot().Cycles

	a.SetState(Continue)
	a.WaitPaused()
	second := a.Snapshot().Cycles

	assert.Equal(t, uint16(0x0151), a.Snapshot().Registers.IP)
	// one full trip around the loop: NOP NOP JR NOP
	assert.Equal(t, first+4+4+12+4, second)
}

func TestAdapter_pause(t *testing.T) {
	a, m := newAdapter(t)
	runInBackground(t, a, m)

	a.SetState(Paused)
	a.WaitPaused()

	before := a.Snapshot().Cycles
	after := a.Snapshot().Cycles
	assert.Equal(t, before, after, "a paused core does not execute")
}

func TestAdapter_frames(t *testing.T) {
	var a *Adapter
	m := gg.New(spinROM(), gg.WithFrameCallback(func() { a.OnFrame() }))
	a = New(m.CPU(), m.Memory())
	m.Attach(a)

	require.NoError(t, m.RunUntilFrame())
	require.NoError(t, m.RunUntilFrame())

	assert.Equal(t, uint64(2), a.Frames())
}

func TestAdapter_frameDrain(t *testing.T) {
	var a *Adapter
	m := gg.New(spinROM(), gg.WithFrameCallback(func() { a.OnFrame() }))
	a = New(m.CPU(), m.Memory())
	m.Attach(a)

	var drained []byte
	a.OnFrameDrain(func(mem *memory.MMU) {
		drained = append(drained, mem.Read(0xC000))
		mem.Write(0xC000, mem.Read(0xC000)+1)
	})

	require.NoError(t, m.RunUntilFrame())
	require.NoError(t, m.RunUntilFrame())
	assert.Equal(t, []byte{0, 1}, drained)
	assert.Equal(t, byte(2), a.Address8(0xC000), "drain ran between instructions and released the lock")

	a.OnFrameDrain(nil)
	require.NoError(t, m.RunUntilFrame())
	assert.Len(t, drained, 2)
	assert.Equal(t, uint64(3), a.Frames())
}

func TestAdapter_usableAfterHalt(t *testing.T) {
	rom := spinROM()
	rom[0x150] = 0xDD
	m := gg.New(rom)
	a := New(m.CPU(), m.Memory())
	m.Attach(a)
	a.SetBreakpoint(0x0200)

	_, err := m.TryStep()
	require.ErrorIs(t, err, gg.ErrHalted)

	done := make(chan struct{})
	go func() {
		defer close(done)
		a.UnsetAllBreakpoints()
		a.SetState(Paused)
		_, _ = a.Register("IP")
		_, _ = m.TryStep()
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("adapter lock still held after the CPU halted")
	}
	assert.Empty(t, a.Breakpoints())
	assert.Equal(t, Paused, a.State())
}
