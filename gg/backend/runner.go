package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/valerio/gogg/gg"
	"github.com/valerio/gogg/gg/debug"
	"github.com/valerio/gogg/gg/input/action"
	"github.com/valerio/gogg/gg/timing"
	"github.com/valerio/gogg/gg/video"
)

// Runner drives a machine and presents its frames on a backend.
//
// Without a debugger the machine runs on the caller's goroutine, one frame per
// backend update. With a debugger attached the machine runs on its own goroutine
// so that a breakpoint can block it while the backend keeps polling input.
type Runner struct {
	machine  *gg.Machine
	backend  Backend
	limiter  timing.Limiter
	debugger *debug.Adapter
	config   Config

	// paused and stepFrame are used without a debugger only.
	paused    bool
	stepFrame bool

	// breakOnFrame pauses the debugger once the current frame completes.
	breakOnFrame atomic.Bool

	last *video.FrameBuffer
}

var _ DebugProvider = (*Runner)(nil)

// NewRunner creates a runner. dbg may be nil; when set it must already be
// attached to m.
func NewRunner(m *gg.Machine, b Backend, limiter timing.Limiter, config Config, dbg *debug.Adapter) *Runner {
	if limiter == nil {
		limiter = timing.NewNoOpLimiter()
	}
	return &Runner{
		machine:  m,
		backend:  b,
		limiter:  limiter,
		debugger: dbg,
		config:   config,
	}
}

// Run initializes the backend and presents frames until the backend quits,
// ctx is cancelled or the CPU halts.
func (r *Runner) Run(ctx context.Context) (err error) {
	r.config.Debug = r
	if err := r.backend.Init(r.config); err != nil {
		return fmt.Errorf("initializing backend: %w", err)
	}
	defer func() {
		if cerr := r.backend.Cleanup(); cerr != nil && err == nil {
			err = fmt.Errorf("cleaning up backend: %w", cerr)
		}
	}()

	if r.debugger != nil {
		err = r.runDetached(ctx)
	} else {
		err = r.runInline(ctx)
	}

	if errors.Is(err, ErrQuit) {
		slog.Info("Quit requested", "frames", r.machine.Frames())
		return nil
	}
	return err
}

func (r *Runner) runInline(ctx context.Context) error {
	for ctx.Err() == nil {
		if !r.paused || r.stepFrame {
			r.stepFrame = false
			if err := r.machine.RunUntilFrame(); err != nil {
				return err
			}
		}

		r.last = r.machine.Frame()
		actions, err := r.backend.Update(r.last)
		if err != nil {
			return fmt.Errorf("updating backend: %w", err)
		}
		if err := r.handle(actions); err != nil {
			return err
		}

		r.limiter.WaitForNextFrame()
	}
	return nil
}

func (r *Runner) runDetached(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	frames := make(chan *video.FrameBuffer, 1)
	halted := make(chan error, 1)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for ctx.Err() == nil {
			if err := r.machine.RunUntilFrame(); err != nil {
				halted <- err
				return
			}
			if r.breakOnFrame.CompareAndSwap(true, false) {
				r.debugger.SetState(debug.Paused)
			}

			// keep only the newest frame
			select {
			case <-frames:
			default:
			}
			frames <- r.machine.Frame().Snapshot()

			r.limiter.WaitForNextFrame()
		}
	}()

	defer func() {
		cancel()
		r.release(done)
	}()

	ticker := time.NewTicker(timing.FrameDuration())
	defer ticker.Stop()

	for {
		var (
			actions []action.Action
			err     error
		)

		select {
		case <-ctx.Done():
			return nil
		case herr := <-halted:
			return herr
		case frame := <-frames:
			r.last = frame
			actions, err = r.backend.Update(frame)
		case <-ticker.C:
			p, ok := r.backend.(Poller)
			if !ok {
				continue
			}
			actions, err = p.Poll()
		}

		if err != nil {
			return fmt.Errorf("updating backend: %w", err)
		}
		if err := r.handle(actions); err != nil {
			return err
		}
	}
}

// release resumes the core until the emulation goroutine notices cancellation.
// It keeps resuming because a debugger console may pause it again meanwhile.
func (r *Runner) release(done <-chan struct{}) {
	r.debugger.UnsetAllBreakpoints()
	for {
		r.debugger.SetState(debug.Continue)
		select {
		case <-done:
			return
		case <-time.After(timing.FrameDuration()):
		}
	}
}

func (r *Runner) handle(actions []action.Action) error {
	for _, act := range actions {
		slog.Debug("Action", "action", act)

		switch act {
		case action.EmulatorQuit:
			return ErrQuit
		case action.EmulatorPauseToggle:
			r.togglePause()
		case action.EmulatorStepInstruction:
			if err := r.stepInstruction(); err != nil {
				return err
			}
		case action.EmulatorStepFrame:
			r.requestFrameStep()
		case action.EmulatorSnapshot:
			debug.TakeSnapshot(r.last)
		}
	}
	return nil
}

func (r *Runner) togglePause() {
	if r.debugger != nil {
		if r.debugger.State() == debug.Paused {
			r.debugger.SetState(debug.Continue)
		} else {
			r.debugger.SetState(debug.Paused)
		}
		return
	}

	r.paused = !r.paused
	if !r.paused {
		r.limiter.Reset()
	}
	slog.Info("Emulation state changed", "state", r.State())
}

// stepInstruction executes one instruction, pausing first if running.
func (r *Runner) stepInstruction() error {
	if r.debugger != nil {
		if !r.debugger.Step() {
			r.debugger.SetState(debug.Paused)
		}
		return nil
	}

	if !r.paused {
		r.paused = true
		return nil
	}
	if _, err := r.machine.TryStep(); err != nil {
		return err
	}
	slog.Debug("Stepped", "pc", fmt.Sprintf("0x%04X", r.machine.CPU().PC()))
	return nil
}

// requestFrameStep runs to the end of the current frame and pauses there.
func (r *Runner) requestFrameStep() {
	if r.debugger != nil {
		r.breakOnFrame.Store(true)
		r.debugger.SetState(debug.Continue)
		return
	}

	r.paused = true
	r.stepFrame = true
}

// State reports whether the core is paused.
func (r *Runner) State() debug.RunState {
	if r.debugger != nil {
		return r.debugger.State()
	}
	if r.paused {
		return debug.Paused
	}
	return debug.Continue
}

// Snapshot copies the machine state for debug panels.
func (r *Runner) Snapshot() debug.Snapshot {
	if r.debugger != nil {
		return r.debugger.Snapshot()
	}
	return debug.Capture(r.machine.CPU(), r.machine.Memory())
}
