package terminal

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/gogg/gg/backend"
	"github.com/valerio/gogg/gg/backend/terminal/render"
	"github.com/valerio/gogg/gg/debug"
	"github.com/valerio/gogg/gg/disasm"
	"github.com/valerio/gogg/gg/input/action"
	"github.com/valerio/gogg/gg/video"
)

const (
	width  = video.FramebufferWidth
	height = video.FramebufferHeight

	// two pixel rows per terminal row
	gameAreaHeight = height / 2
	dividerX       = width + 1
	panelX         = dividerX + 2

	registerHeight = 9
	disasmBefore   = 4
	disasmAfter    = 6
	disasmHeight   = disasmBefore + disasmAfter + 1

	minTermWidth  = 40
	minTermHeight = 12
	logCapacity   = 200
)

var shadeColors = [...]tcell.Color{
	tcell.ColorBlack,
	tcell.ColorGray,
	tcell.ColorSilver,
	tcell.ColorWhite,
}

// Backend draws frames in a terminal using tcell half blocks, with optional
// register, disassembly and log panels on the right.
type Backend struct {
	screen    tcell.Screen
	config    backend.Config
	logBuffer *render.LogBuffer
	logLevel  slog.Level
	previous  *slog.Logger
	signals   chan os.Signal
	current   *video.FrameBuffer
}

var (
	_ backend.Backend = (*Backend)(nil)
	_ backend.Poller  = (*Backend)(nil)
)

// New creates a backend drawing on the controlling terminal.
func New() *Backend {
	return &Backend{logLevel: slog.LevelInfo}
}

// NewWithScreen creates a backend drawing on screen, typically a tcell.SimulationScreen.
func NewWithScreen(screen tcell.Screen) *Backend {
	return &Backend{screen: screen, logLevel: slog.LevelInfo}
}

func (t *Backend) Init(config backend.Config) error {
	t.config = config

	if t.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to initialize terminal: %w", err)
		}
		t.screen = screen
	}
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}

	// logs go to the panel, stderr is covered by the screen
	t.logBuffer = render.NewLogBuffer(logCapacity)
	t.previous = slog.Default()
	slog.SetDefault(slog.New(render.NewLogBufferHandler(t.logBuffer, slog.LevelDebug)))

	t.signals = make(chan os.Signal, 1)
	signal.Notify(t.signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	slog.Info("Terminal backend initialized", "title", config.Title)
	return nil
}

// Update draws a new frame and returns the actions typed since the last call.
func (t *Backend) Update(frame *video.FrameBuffer) ([]action.Action, error) {
	t.current = frame
	return t.Poll()
}

// Poll processes input and redraws the last frame.
func (t *Backend) Poll() ([]action.Action, error) {
	actions := t.pollEvents()
	t.render()
	t.screen.Show()
	return actions, nil
}

func (t *Backend) Cleanup() error {
	if t.signals != nil {
		signal.Stop(t.signals)
	}
	if t.screen != nil {
		t.screen.Fini()
	}
	if t.previous != nil {
		slog.SetDefault(t.previous)
		slog.Info("Terminal backend closed")
	}
	return nil
}

func (t *Backend) pollEvents() []action.Action {
	var actions []action.Action

	select {
	case sig := <-t.signals:
		slog.Info("Received signal to stop", "signal", sig)
		actions = append(actions, action.EmulatorQuit)
	default:
	}

	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			if act, ok := mapKey(ev); ok {
				actions = append(actions, act)
				t.handleLocal(act)
				continue
			}
			t.handleLogKeys(ev)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	return actions
}

// keyMapping maps special keys to actions
var keyMapping = map[tcell.Key]action.Action{
	tcell.KeyEscape: action.EmulatorQuit,
	tcell.KeyCtrlC:  action.EmulatorQuit,
	tcell.KeyF10:    action.EmulatorDebugToggle,
	tcell.KeyF12:    action.EmulatorSnapshot,
}

// runeMapping maps printable keys to actions
var runeMapping = map[rune]action.Action{
	'q': action.EmulatorQuit,
	' ': action.EmulatorPauseToggle,
	'n': action.EmulatorStepInstruction,
	'f': action.EmulatorStepFrame,
	'p': action.EmulatorSnapshot,
	'd': action.EmulatorDebugToggle,
}

func mapKey(ev *tcell.EventKey) (action.Action, bool) {
	if ev.Key() == tcell.KeyRune {
		act, ok := runeMapping[ev.Rune()]
		return act, ok
	}
	act, ok := keyMapping[ev.Key()]
	return act, ok
}

func (t *Backend) handleLocal(act action.Action) {
	if act != action.EmulatorDebugToggle {
		return
	}
	t.config.ShowDebug = !t.config.ShowDebug
	if t.config.ShowDebug {
		slog.Info("Debug display enabled")
	} else {
		slog.Info("Debug display disabled")
	}
}

func (t *Backend) handleLogKeys(ev *tcell.EventKey) {
	if ev.Key() != tcell.KeyRune {
		return
	}
	switch ev.Rune() {
	case '+', '=':
		t.changeLogLevel(-4)
	case '-', '_':
		t.changeLogLevel(4)
	}
}

// changeLogLevel moves the panel filter by delta, the distance between slog levels.
func (t *Backend) changeLogLevel(delta slog.Level) {
	level := min(max(t.logLevel+delta, slog.LevelDebug), slog.LevelError)
	if level != t.logLevel {
		slog.Info("Log filter changed", "from", t.logLevel, "to", level)
		t.logLevel = level
	}
}

// ShowDebug reports whether the debug panels are visible.
func (t *Backend) ShowDebug() bool {
	return t.config.ShowDebug
}

// LogLevel returns the minimum level shown in the log panel.
func (t *Backend) LogLevel() slog.Level {
	return t.logLevel
}

func (t *Backend) render() {
	t.screen.Clear()

	termWidth, termHeight := t.screen.Size()
	if termWidth < minTermWidth || termHeight < minTermHeight {
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		t.drawText(0, termHeight/2, termWidth, msg, tcell.StyleDefault.Foreground(tcell.ColorRed))
		return
	}

	t.drawBorders(termWidth, termHeight)
	if t.current != nil {
		t.drawGameBoy(t.current)
	}

	panelWidth := termWidth - panelX
	logsY := 1
	if t.config.ShowDebug && t.config.Debug != nil {
		snap := t.config.Debug.Snapshot()
		t.drawRegisters(snap, t.config.Debug.State(), panelWidth)
		t.drawDisassembly(snap, registerHeight+2, panelWidth)
		logsY = registerHeight + disasmHeight + 4
	}
	t.drawLogs(logsY, panelWidth, termHeight-1)
}

// drawText writes text at (x, y), clipped to maxWidth cells.
func (t *Backend) drawText(x, y, maxWidth int, text string, style tcell.Style) {
	i := 0
	for _, ch := range text {
		if i >= maxWidth {
			return
		}
		t.screen.SetContent(x+i, y, ch, nil, style)
		i++
	}
}

func (t *Backend) drawBorders(termWidth, termHeight int) {
	borderStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	titleStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)

	for y := 0; y < termHeight-1; y++ {
		t.screen.SetContent(dividerX, y, '│', nil, borderStyle)
	}

	title := " gogg "
	if t.config.Title != "" {
		title = fmt.Sprintf(" %s ", t.config.Title)
	}
	t.drawText(1, 0, dividerX-1, title, titleStyle)

	panelWidth := termWidth - panelX
	if t.config.ShowDebug {
		t.drawText(panelX, 0, panelWidth, " CPU Registers ", titleStyle)
		t.drawText(panelX, registerHeight+1, panelWidth, " Disassembly ", titleStyle)
		t.drawText(panelX, registerHeight+disasmHeight+3, panelWidth, t.logTitle(), titleStyle)
	} else {
		t.drawText(panelX, 0, panelWidth, t.logTitle(), titleStyle)
	}

	help := " SPACE=pause/resume N=step F=frame P/F12=snapshot D/F10=debug view +/-=log filter Q=quit "
	t.drawText(0, termHeight-1, termWidth, help, borderStyle)
}

func (t *Backend) logTitle() string {
	return fmt.Sprintf(" Logs [%s] (-/+ filter) ", t.logLevel)
}

func (t *Backend) drawGameBoy(frame *video.FrameBuffer) {
	for y := 0; y < height; y += 2 {
		for x := 0; x < width; x++ {
			top := render.PixelToShade(frame.GetPixel(x, y))
			bottom := render.PixelToShade(frame.GetPixel(x, y+1))

			char, fg, bg := halfBlock(top, bottom)
			t.screen.SetContent(x, y/2+1, char, nil, tcell.StyleDefault.Foreground(fg).Background(bg))
		}
	}
}

func halfBlock(top, bottom int) (rune, tcell.Color, tcell.Color) {
	char := render.GetHalfBlockChar(top, bottom)

	switch char {
	case '█':
		return char, shadeColors[top], tcell.ColorDefault
	case '▄':
		return char, shadeColors[bottom], shadeColors[top]
	default:
		return char, shadeColors[top], shadeColors[bottom]
	}
}

func (t *Backend) drawRegisters(snap debug.Snapshot, state debug.RunState, panelWidth int) {
	regs := snap.Registers
	ime := "OFF"
	if snap.InterruptsEnabled {
		ime = "ON"
	}

	lines := []string{
		fmt.Sprintf("Status: %s", state),
		fmt.Sprintf("A: 0x%02X  F: 0x%02X  %s", regs.AF.High(), regs.AF.Low(), snap.Flags),
		fmt.Sprintf("B: 0x%02X  C: 0x%02X", regs.BC.High(), regs.BC.Low()),
		fmt.Sprintf("D: 0x%02X  E: 0x%02X", regs.DE.High(), regs.DE.Low()),
		fmt.Sprintf("H: 0x%02X  L: 0x%02X", regs.HL.High(), regs.HL.Low()),
		fmt.Sprintf("SP: 0x%04X  IP: 0x%04X", regs.SP, regs.IP),
		fmt.Sprintf("IME: %s", ime),
		fmt.Sprintf("Cycles: %d", snap.Cycles),
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	for i, line := range lines {
		t.drawText(panelX, 1+i, panelWidth, line, style)
	}
}

func (t *Backend) drawDisassembly(snap debug.Snapshot, startY, panelWidth int) {
	pc := snap.Registers.IP
	lines := disasm.Around(disasm.Bytes(snap.Memory), pc, disasmBefore, disasmAfter)

	style := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	currentStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)

	for i, line := range lines {
		if i >= disasmHeight {
			break
		}
		marker, lineStyle := " ", style
		if line.Address == pc {
			marker, lineStyle = "→", currentStyle
		}
		text := fmt.Sprintf("%s 0x%04X: %s", marker, line.Address, line.Instruction)
		t.drawText(panelX, startY+i, panelWidth, text, lineStyle)
	}
}

func (t *Backend) drawLogs(startY, panelWidth, endY int) {
	available := endY - startY
	if available <= 0 || panelWidth <= 0 {
		return
	}

	styles := map[slog.Level]tcell.Style{
		slog.LevelDebug: tcell.StyleDefault.Foreground(tcell.ColorGray),
		slog.LevelInfo:  tcell.StyleDefault.Foreground(tcell.ColorBlue),
		slog.LevelWarn:  tcell.StyleDefault.Foreground(tcell.ColorYellow),
		slog.LevelError: tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true),
	}

	for i, entry := range t.logBuffer.Recent(available, t.logLevel) {
		text := render.FormatLogEntry(entry)
		if len(text) > panelWidth && panelWidth > 3 {
			text = text[:panelWidth-3] + "..."
		}
		t.drawText(panelX, startY+i, panelWidth, text, styles[entry.Level])
	}
}
