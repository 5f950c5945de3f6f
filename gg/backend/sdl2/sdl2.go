//go:build sdl2

package sdl2

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/valerio/gogg/gg/backend"
	"github.com/valerio/gogg/gg/input/action"
	"github.com/valerio/gogg/gg/video"
	"github.com/veandco/go-sdl2/sdl"
)

const defaultScale = 3

// Backend presents frames in an SDL2 window.
// Note: building this requires SDL2 development libraries installed.
// Default builds skip this and use a stubbed renderer, see build tags (sdl2)
type Backend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	config   backend.Config
	current  *video.FrameBuffer
	actions  []action.Action
	title    string
}

var (
	_ backend.Backend = (*Backend)(nil)
	_ backend.Poller  = (*Backend)(nil)
)

func New() *Backend {
	return &Backend{}
}

func (s *Backend) Init(config backend.Config) error {
	s.config = config
	if s.config.Scale <= 0 {
		s.config.Scale = defaultScale
	}
	if s.config.Title == "" {
		s.config.Title = "gogg"
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("failed to initialize SDL2: %w", err)
	}

	window, err := sdl.CreateWindow(
		s.config.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(video.FramebufferWidth*s.config.Scale),
		int32(video.FramebufferHeight*s.config.Scale),
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("failed to create window: %w", err)
	}
	s.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	s.renderer = renderer

	// frame buffer pixels are already RGB565
	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_RGB565,
		sdl.TEXTUREACCESS_STREAMING,
		video.FramebufferWidth,
		video.FramebufferHeight,
	)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create texture: %w", err)
	}
	s.texture = texture

	slog.Info("SDL2 backend initialized", "scale", s.config.Scale)
	return nil
}

// Update renders a frame and processes events
func (s *Backend) Update(frame *video.FrameBuffer) ([]action.Action, error) {
	s.current = frame
	return s.Poll()
}

// Poll processes window events and redraws the last frame.
func (s *Backend) Poll() ([]action.Action, error) {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		s.handleEvent(event)
	}

	if s.current != nil {
		if err := s.renderFrame(s.current); err != nil {
			return nil, err
		}
	}
	if title := windowTitle(s.config.Title, s.config.ShowDebug, s.config.Debug); title != s.title {
		s.window.SetTitle(title)
		s.title = title
	}

	actions := s.actions
	s.actions = nil
	return actions, nil
}

func (s *Backend) Cleanup() error {
	slog.Info("Cleaning up SDL2 backend")

	if s.texture != nil {
		s.texture.Destroy()
	}
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	sdl.Quit()

	return nil
}

// keyMapping maps SDL2 keys to actions
var keyMapping = map[sdl.Keycode]action.Action{
	sdl.K_ESCAPE: action.EmulatorQuit,
	sdl.K_q:      action.EmulatorQuit,
	sdl.K_SPACE:  action.EmulatorPauseToggle,
	sdl.K_n:      action.EmulatorStepInstruction,
	sdl.K_f:      action.EmulatorStepFrame,
	sdl.K_F12:    action.EmulatorSnapshot,
	sdl.K_p:      action.EmulatorSnapshot,
	sdl.K_F10:    action.EmulatorDebugToggle,
	sdl.K_d:      action.EmulatorDebugToggle,
}

func (s *Backend) handleEvent(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		s.actions = append(s.actions, action.EmulatorQuit)

	case *sdl.KeyboardEvent:
		// key repeat is ignored
		if e.Type != sdl.KEYDOWN || e.Repeat != 0 {
			return
		}
		act, ok := keyMapping[e.Keysym.Sym]
		if !ok {
			return
		}
		if act == action.EmulatorDebugToggle {
			s.config.ShowDebug = !s.config.ShowDebug
		}
		s.actions = append(s.actions, act)
	}
}

func (s *Backend) renderFrame(frame *video.FrameBuffer) error {
	pixels := frame.ToSlice()
	if err := s.texture.Update(nil, unsafe.Pointer(&pixels[0]), video.FramebufferWidth*2); err != nil {
		return fmt.Errorf("failed to update texture: %w", err)
	}

	s.renderer.SetDrawColor(0, 0, 0, 0xFF)
	s.renderer.Clear()
	s.renderer.Copy(s.texture, nil, nil)
	s.renderer.Present()
	return nil
}
