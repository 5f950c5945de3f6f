//go:build !sdl2

package sdl2

import (
	"errors"

	"github.com/valerio/gogg/gg/backend"
	"github.com/valerio/gogg/gg/input/action"
	"github.com/valerio/gogg/gg/video"
)

// ErrUnavailable is returned by the stub built without the sdl2 tag.
var ErrUnavailable = errors.New("SDL2 backend not available - build with -tags sdl2 to enable")

// Backend stub for when SDL2 is not available
type Backend struct{}

func New() *Backend {
	return &Backend{}
}

func (s *Backend) Init(config backend.Config) error {
	return ErrUnavailable
}

func (s *Backend) Update(frame *video.FrameBuffer) ([]action.Action, error) {
	return nil, ErrUnavailable
}

func (s *Backend) Cleanup() error {
	return nil
}
