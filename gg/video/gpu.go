package video

import (
	"fmt"

	"github.com/valerio/gogg/gg/addr"
	"github.com/valerio/gogg/gg/bit"
)

// Mode is the scanline timing state of the GPU. Values match the STAT mode bits.
type Mode uint8

const (
	HBlank Mode = iota
	VBlank
	OAMSearch
	PixelTransfer
)

var modeNames = [...]string{"H-Blank", "V-Blank", "OAM-Search", "Pixel-Transfer"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// Cycles spent in each mode before its exit action runs.
const (
	oamSearchCycles     = 320
	pixelTransferCycles = 688
	hblankCycles        = 816
	vblankLineCycles    = 1824
)

const (
	visibleLines = FramebufferHeight
	tileColumns  = FramebufferWidth / 8
	spriteCount  = 40
)

// LCDC bits read by the renderer
const (
	bgDisplay    = 0
	bgTileSelect = 3
)

const (
	spriteEntrySize   = 4
	tileSize          = 16
	tileMapWidth      = 32
	spritePatternBase = addr.TileData0
	tilesetSigned     = addr.TileData1
	tilesetUnsigned   = addr.TileData0
	backgroundMapLow  = addr.TileMap0
	backgroundMapHigh = addr.TileMap1
)

// Memory is the part of the address space used by the GPU.
type Memory interface {
	MemoryReader
	Write(addr uint16, value byte)
}

// GPU runs the scanline mode machine and renders lines into its frame buffer.
type GPU struct {
	memory      Memory
	framebuffer *FrameBuffer
	onFrame     func()

	mode      Mode
	modeClock int
	line      uint8
}

// NewGPU returns a GPU in OAM search on line 0.
// onFrame, if not nil, is called every time the last visible line completes.
func NewGPU(memory Memory, onFrame func()) *GPU {
	return &GPU{
		memory:      memory,
		framebuffer: NewFrameBuffer(),
		onFrame:     onFrame,
		mode:        OAMSearch,
	}
}

func threshold(m Mode) int {
	switch m {
	case OAMSearch:
		return oamSearchCycles
	case PixelTransfer:
		return pixelTransferCycles
	case HBlank:
		return hblankCycles
	default:
		return vblankLineCycles
	}
}

// Advance simulates gpu behaviour for a certain amount of clock cycles.
// Returns the mode the GPU is in afterwards.
func (g *GPU) Advance(cycles int) Mode {
	g.modeClock += cycles

	for g.modeClock >= threshold(g.mode) {
		g.modeClock -= threshold(g.mode)

		switch g.mode {
		case OAMSearch:
			g.mode = PixelTransfer
		case PixelTransfer:
			g.mode = HBlank
			g.renderLine()
		case HBlank:
			if g.line == visibleLines-1 {
				g.mode = VBlank
				g.line = 0
				g.memory.Write(addr.LY, g.line)
				if g.onFrame != nil {
					g.onFrame()
				}
			} else {
				g.mode = OAMSearch
				g.line++
				g.memory.Write(addr.LY, g.line)
			}
		case VBlank:
			g.line++
			if g.line >= visibleLines {
				g.line = 0
				g.mode = OAMSearch
			}
			g.memory.Write(addr.LY, g.line)
		}
	}

	return g.mode
}

// renderLine draws the background and the sprites crossing the current line.
func (g *GPU) renderLine() {
	lcdc := g.memory.Read(addr.LCDC)
	line := int(g.line)

	if bit.IsSet(bgDisplay, lcdc) {
		// the same LCDC bit selects both the tile set and the tile map
		tileset, tileMap := tilesetSigned, backgroundMapLow
		if bit.IsSet(bgTileSelect, lcdc) {
			tileset, tileMap = tilesetUnsigned, backgroundMapHigh
		}

		mapRow := tileMap + uint16(line>>3)*tileMapWidth
		for x := 0; x < tileColumns; x++ {
			index := g.memory.Read(mapRow + uint16(x))
			row := FetchTileRow(g.memory, tileset+uint16(index)*tileSize, line&7)
			g.blitLine(row, x*8, line)
		}
	}

	for i := 0; i < spriteCount; i++ {
		entry := addr.OAMStart + uint16(i*spriteEntrySize)
		x := int(g.memory.Read(entry))
		y := int(g.memory.Read(entry + 1))

		if x == 0 && y == 0 {
			// hidden
			continue
		}
		if y > line || y+8 <= line {
			continue
		}

		patternRow := line - y
		if patternRow < 0 || patternRow >= 8 {
			panic(fmt.Sprintf("sprite %d: row %d out of range on line %d", i, patternRow, line))
		}

		index := g.memory.Read(entry + 2)
		row := FetchTileRow(g.memory, spritePatternBase+uint16(index)*tileSize, patternRow)
		g.blitLine(row, x, line)
	}
}

// blitLine draws the 8 pixels of a row starting at x, clipped to the screen.
func (g *GPU) blitLine(row TileRow, x, y int) {
	for i := 0; i < 8; i++ {
		px := x + i
		if px >= FramebufferWidth {
			return
		}
		g.framebuffer.SetPixel(px, y, ColorFromIndex(row.GetPixel(i)))
	}
}

// Frame returns the frame buffer the GPU renders into.
func (g *GPU) Frame() *FrameBuffer { return g.framebuffer }

func (g *GPU) Mode() Mode { return g.mode }

func (g *GPU) SetMode(mode Mode) { g.mode = mode }

func (g *GPU) ModeClock() int { return g.modeClock }

func (g *GPU) SetModeClock(clock int) { g.modeClock = clock }

func (g *GPU) Line() uint8 { return g.line }

// SetLine moves the GPU to another line and updates LY.
func (g *GPU) SetLine(line uint8) {
	g.line = line
	g.memory.Write(addr.LY, line)
}
