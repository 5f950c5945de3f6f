package debug

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/valerio/gogg/gg/cpu"
	"github.com/valerio/gogg/gg/memory"
)

// ErrUnknownRegister is returned for register names the CPU does not have.
var ErrUnknownRegister = errors.New("unknown register")

// RunState tells whether the core may execute instructions.
type RunState int

const (
	Continue RunState = iota
	Paused
)

func (s RunState) String() string {
	if s == Paused {
		return "paused"
	}
	return "running"
}

// Adapter exposes the machine state to a debugger running on another goroutine.
//
// The emulation goroutine holds the adapter lock for the whole duration of an
// instruction: BeforeStep acquires it and AfterStep releases it. Every other
// method takes the same lock, so callers only ever observe state between two
// instructions.
type Adapter struct {
	cpu *cpu.CPU
	mem *memory.MMU

	mu   sync.Mutex
	cond *sync.Cond

	state RunState
	// steps is the number of instructions released while paused.
	steps int
	// parked is true while the core waits in BeforeStep.
	parked bool

	breakpoints []uint16
	onBreak     func(pc uint16)

	frames atomic.Uint64
	drain  atomic.Pointer[FrameDrain]
}

// FrameDrain is run by OnFrame at every frame boundary. It runs on the
// emulation goroutine between two instructions, so it may read mem directly
// but must not call back into the adapter.
type FrameDrain func(mem *memory.MMU)

var _ cpu.Hook = (*Adapter)(nil)

// New creates an adapter for c and mem. The core starts in the Continue state.
func New(c *cpu.CPU, mem *memory.MMU) *Adapter {
	a := &Adapter{cpu: c, mem: mem}
	a.cond = sync.NewCond(&a.mu)
	return a
}

// BeforeStep stops on breakpoints and blocks while the adapter is paused.
// It returns with the adapter lock held.
func (a *Adapter) BeforeStep(c *cpu.CPU) {
	a.mu.Lock()

	pc := c.PC()
	if a.state == Continue && a.isBreakpoint(pc) {
		a.state = Paused
		slog.Info("Breakpoint hit", "addr", fmt.Sprintf("0x%04X", pc))
		if a.onBreak != nil {
			a.onBreak(pc)
		}
	}

	for a.state == Paused && a.steps == 0 {
		if !a.parked {
			a.parked = true
			a.cond.Broadcast()
		}
		a.cond.Wait()
	}
	a.parked = false

	if a.state == Paused {
		a.steps--
	}
}

// AfterStep releases the lock taken by BeforeStep.
func (a *Adapter) AfterStep(c *cpu.CPU, cycles int) {
	a.cond.Broadcast()
	a.mu.Unlock()
}

// OnFrame counts completed frames and runs the registered drain. It is meant
// to be registered as a frame callback.
func (a *Adapter) OnFrame() {
	a.frames.Add(1)
	if fn := a.drain.Load(); fn != nil {
		(*fn)(a.mem)
	}
}

// OnFrameDrain registers fn to run once per frame, replacing the previous
// one. A nil fn removes it.
func (a *Adapter) OnFrameDrain(fn FrameDrain) {
	if fn == nil {
		a.drain.Store(nil)
		return
	}
	a.drain.Store(&fn)
}

// Frames returns the number of frames counted by OnFrame.
func (a *Adapter) Frames() uint64 {
	return a.frames.Load()
}

// OnBreak registers fn to be called on the emulation goroutine when a
// breakpoint pauses execution. fn must not call back into the adapter.
func (a *Adapter) OnBreak(fn func(pc uint16)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onBreak = fn
}

func (a *Adapter) State() RunState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// SetState pauses or resumes the core. A paused core stops before its next instruction.
func (a *Adapter) SetState(state RunState) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if state == Continue {
		a.steps = 0
		a.parked = false
	}
	a.state = state
	a.cond.Broadcast()
}

// Step lets a paused core execute one more instruction.
// Returns false when the core is not paused.
func (a *Adapter) Step() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != Paused {
		return false
	}
	a.steps++
	a.cond.Broadcast()
	return true
}

// WaitPaused blocks until the core is parked with no pending steps.
func (a *Adapter) WaitPaused() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for !a.parked || a.steps > 0 {
		a.cond.Wait()
	}
}

// Register reads a register by name, see cpu.RegisterNames.
func (a *Adapter) Register(name string) (uint16, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	value, ok := a.cpu.Register(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownRegister, name)
	}
	return value, nil
}

// SetRegister writes a register by name, 8 bit registers keep the low byte of value.
func (a *Adapter) SetRegister(name string, value uint16) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.cpu.SetRegister(name, value) {
		return fmt.Errorf("%w: %q", ErrUnknownRegister, name)
	}
	return nil
}

// Address8 reads the byte at address.
func (a *Adapter) Address8(address uint16) byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mem.Read(address)
}

// SetAddress8 writes a byte through the memory unit, so ROM stays read-only
// and work RAM writes reach the mirror.
func (a *Adapter) SetAddress8(address uint16, value byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mem.Write(address, value)
}

// SetBreakpoint adds a breakpoint. Returns false if it was already set.
func (a *Adapter) SetBreakpoint(address uint16) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	i, found := slices.BinarySearch(a.breakpoints, address)
	if found {
		return false
	}
	a.breakpoints = slices.Insert(a.breakpoints, i, address)
	return true
}

// UnsetBreakpoint removes a breakpoint. Returns false if it was not set.
func (a *Adapter) UnsetBreakpoint(address uint16) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	i, found := slices.BinarySearch(a.breakpoints, address)
	if !found {
		return false
	}
	a.breakpoints = slices.Delete(a.breakpoints, i, i+1)
	return true
}

func (a *Adapter) UnsetAllBreakpoints() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.breakpoints = nil
}

func (a *Adapter) IsBreakpoint(address uint16) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.isBreakpoint(address)
}

func (a *Adapter) isBreakpoint(address uint16) bool {
	_, found := slices.BinarySearch(a.breakpoints, address)
	return found
}

// Breakpoints returns the breakpoint addresses in ascending order.
func (a *Adapter) Breakpoints() []uint16 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.breakpoints)
}

// AddressToLine maps an address to a source line. There is no symbol
// information, so the mapping is the identity.
func (a *Adapter) AddressToLine(address uint16) uint16 {
	return address
}

// LineToAddress is the inverse of AddressToLine.
func (a *Adapter) LineToAddress(line uint16) uint16 {
	return line
}

// Disassemble decodes the instruction at address.
func (a *Adapter) Disassemble(address uint16) (string, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return cpu.Disassemble(a.mem, address)
}

// Snapshot is a copy of the machine state taken between two instructions.
type Snapshot struct {
	Registers         cpu.Registers
	Flags             string
	InterruptsEnabled bool
	Cycles            uint64
	Opcode            uint16
	Memory            []byte
}

// Snapshot copies registers and memory.
func (a *Adapter) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Capture(a.cpu, a.mem)
}

// Capture copies the state of c and mem. The caller must own the emulation goroutine
// or otherwise guarantee that no instruction is executing.
func Capture(c *cpu.CPU, mem *memory.MMU) Snapshot {
	return Snapshot{
		Registers:         c.Registers(),
		Flags:             c.FlagString(),
		InterruptsEnabled: c.InterruptsEnabled(),
		Cycles:            c.Cycles(),
		Opcode:            c.Opcode(),
		Memory:            mem.Snapshot(),
	}
}
