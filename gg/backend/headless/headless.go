package headless

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/valerio/gogg/gg/backend"
	"github.com/valerio/gogg/gg/debug"
	"github.com/valerio/gogg/gg/input/action"
	"github.com/valerio/gogg/gg/video"
)

// Backend consumes a fixed budget of frames and writes nothing but optional
// PNG snapshots. It asks the runner to quit once the budget is spent.
type Backend struct {
	scale     int
	budget    int
	presented int
	snapshots SnapshotConfig
	saved     []string
}

// SnapshotConfig selects which frames are kept as PNG files.
type SnapshotConfig struct {
	Enabled   bool
	Interval  int    // every Interval-th frame, plus the last one
	Directory string
	ROMName   string // file name prefix
}

// New creates a backend that quits after budget frames.
func New(budget int, snapshots SnapshotConfig) *Backend {
	return &Backend{budget: budget, snapshots: snapshots}
}

func (h *Backend) Init(config backend.Config) error {
	switch {
	case h.budget <= 0:
		return fmt.Errorf("headless backend needs a positive frame count, got %d", h.budget)
	case h.snapshots.Enabled && h.snapshots.Interval <= 0:
		return fmt.Errorf("invalid snapshot interval %d", h.snapshots.Interval)
	}
	h.scale = config.Scale

	slog.Info("Headless run",
		"title", config.Title,
		"frames", h.budget,
		"snapshot_interval", h.snapshots.Interval,
		"snapshot_dir", h.snapshots.Directory)
	return nil
}

func (h *Backend) Update(frame *video.FrameBuffer) ([]action.Action, error) {
	h.presented++
	last := h.presented >= h.budget

	if h.keep(last) {
		h.save(frame)
	}
	if !last {
		return nil, nil
	}

	slog.Info("Headless run finished", "frames", h.presented, "snapshots", len(h.saved))
	return []action.Action{action.EmulatorQuit}, nil
}

// keep reports whether the frame just presented gets a snapshot.
func (h *Backend) keep(last bool) bool {
	if !h.snapshots.Enabled {
		return false
	}
	return last || h.presented%h.snapshots.Interval == 0
}

func (h *Backend) Cleanup() error {
	return nil
}

// Frames returns the number of frames presented so far.
func (h *Backend) Frames() int {
	return h.presented
}

// Saved returns the paths of the snapshots written so far.
func (h *Backend) Saved() []string {
	return h.saved
}

// CreateSnapshotConfig builds the snapshot settings for a ROM. A zero interval
// disables snapshots; an empty directory means a fresh temporary one.
func CreateSnapshotConfig(interval int, directory, romPath string) (SnapshotConfig, error) {
	if interval <= 0 {
		return SnapshotConfig{Interval: interval}, nil
	}

	var err error
	if directory == "" {
		directory, err = os.MkdirTemp("", "gogg-snapshots-*")
	} else {
		err = os.MkdirAll(directory, 0o755)
	}
	if err != nil {
		return SnapshotConfig{}, fmt.Errorf("creating snapshot directory: %w", err)
	}

	base := filepath.Base(romPath)
	return SnapshotConfig{
		Enabled:   true,
		Interval:  interval,
		Directory: directory,
		ROMName:   strings.TrimSuffix(base, filepath.Ext(base)),
	}, nil
}

func (h *Backend) save(frame *video.FrameBuffer) {
	name := fmt.Sprintf("%s_frame_%d", h.snapshots.ROMName, h.presented)
	path, err := debug.SaveFramePNGToDir(frame, name, h.snapshots.Directory, h.scale)
	if err != nil {
		slog.Error("Saving snapshot failed", "frame", h.presented, "error", err)
		return
	}
	h.saved = append(h.saved, path)
}
