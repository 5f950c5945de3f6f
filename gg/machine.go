package gg

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/valerio/gogg/gg/cpu"
	"github.com/valerio/gogg/gg/memory"
	"github.com/valerio/gogg/gg/video"
)

// ErrHalted is returned when the CPU stops on an instruction it cannot execute.
var ErrHalted = errors.New("cpu halted")

// Machine wires the address space, the CPU and the GPU together and drives them in lockstep.
type Machine struct {
	cpu *cpu.CPU
	gpu *video.GPU
	mem *memory.MMU

	hook    cpu.Hook
	onFrame []func()

	header     memory.Header
	frames     uint64
	frameReady bool

	// halted is set by the first CPU fault and returned from then on.
	halted error
}

// Option configures a Machine at creation.
type Option func(*Machine)

// WithFrameCallback registers fn to be called every time a frame completes.
// Callbacks run on the emulation goroutine, in registration order.
func WithFrameCallback(fn func()) Option {
	return func(m *Machine) {
		m.onFrame = append(m.onFrame, fn)
	}
}

// New creates a machine with rom loaded in the fixed banks.
func New(rom []byte, opts ...Option) *Machine {
	m := &Machine{hook: cpu.NoHook{}}
	for _, opt := range opts {
		opt(m)
	}

	m.mem = memory.New()
	loaded := m.mem.LoadROM(rom)
	m.header = memory.ParseHeader(rom)

	m.gpu = video.NewGPU(m.mem, m.frameDone)
	m.cpu = cpu.New(m.mem)

	slog.Debug("Machine created",
		"bytes", loaded,
		"title", m.header.Title,
		"bootable", m.header.Bootable,
		"entry", fmt.Sprintf("0x%04X", m.cpu.PC()))

	return m
}

// NewWithFile creates a machine and loads the ROM file at path into it.
func NewWithFile(path string, opts ...Option) (*Machine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ROM: %w", err)
	}

	slog.Info("Loaded ROM", "path", path, "bytes", len(data))

	m := New(data, opts...)
	if !m.header.Bootable {
		slog.Warn("ROM has no JP at the entry point, starting at 0x0000", "path", path)
	}
	return m, nil
}

func (m *Machine) frameDone() {
	m.frames++
	m.frameReady = true
	for _, fn := range m.onFrame {
		fn()
	}
}

// Attach installs a hook observing every instruction, replacing the previous one.
func (m *Machine) Attach(hook cpu.Hook) {
	if hook == nil {
		hook = cpu.NoHook{}
	}
	m.hook = hook
}

// Detach removes the installed hook.
func (m *Machine) Detach() {
	m.hook = cpu.NoHook{}
}

// Step executes a single instruction and advances the GPU by its cost.
// It panics on a CPU fault, and on every call after a machine has halted.
func (m *Machine) Step() int {
	if m.halted != nil {
		panic(m.halted)
	}
	return m.cpu.Tick(m.gpu, m.hook)
}

// recoverHalt turns a CPU fault into an error wrapping ErrHalted and keeps
// it, so that the machine never runs again.
func (m *Machine) recoverHalt(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if m.halted == nil {
		m.halted = fmt.Errorf("%w: %v", ErrHalted, r)
		slog.Error("CPU halted", "error", r, "frames", m.frames)
	}
	*err = m.halted
}

// TryStep is Step with CPU faults returned as an error wrapping ErrHalted.
func (m *Machine) TryStep() (cycles int, err error) {
	if m.halted != nil {
		return 0, m.halted
	}
	defer m.recoverHalt(&err)
	return m.Step(), nil
}

// RunUntilFrame executes instructions until the GPU completes a frame.
// A CPU fault is returned as an error wrapping ErrHalted, here and on every
// later call.
func (m *Machine) RunUntilFrame() (err error) {
	if m.halted != nil {
		return m.halted
	}
	defer m.recoverHalt(&err)

	m.frameReady = false
	for !m.frameReady {
		m.Step()
	}
	return nil
}

// Halted returns the fault that stopped the machine, or nil.
func (m *Machine) Halted() error {
	return m.halted
}

// Run executes instructions forever.
func (m *Machine) Run() {
	m.cpu.Execute(m.gpu, m.hook)
}

// Frame returns the frame buffer the GPU renders into. It is only safe to
// read between steps, hand FrameBuffer.Snapshot to other goroutines.
func (m *Machine) Frame() *video.FrameBuffer {
	return m.gpu.Frame()
}

func (m *Machine) CPU() *cpu.CPU { return m.cpu }

func (m *Machine) GPU() *video.GPU { return m.gpu }

func (m *Machine) Memory() *memory.MMU { return m.mem }

// Header returns the cartridge header parsed at load time.
func (m *Machine) Header() memory.Header { return m.header }

// Frames returns the number of frames completed since creation.
func (m *Machine) Frames() uint64 { return m.frames }
