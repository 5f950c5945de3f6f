package addr

// cartridge header
const (
	// EntryPoint holds the first instruction executed from a cartridge.
	EntryPoint uint16 = 0x0100
	// EntryTarget holds the jump target when EntryPoint starts with JP nn.
	EntryTarget uint16 = 0x0102
	// Title is the start of the cartridge title in the header.
	Title uint16 = 0x0134
	// TitleEnd is the (exclusive) end of the title field.
	TitleEnd uint16 = 0x0144
)

// memory map
const (
	// ROMEnd is the exclusive end of the two fixed ROM banks.
	ROMEnd uint16 = 0x8000
	// VRAMStart is the start of video RAM.
	VRAMStart uint16 = 0x8000
	// WRAMStart is the start of work RAM.
	WRAMStart uint16 = 0xC000
	// WRAMMirrorEnd is the exclusive end of the part of work RAM that is mirrored.
	WRAMMirrorEnd uint16 = 0xDE00
	// EchoStart is the start of the work RAM mirror.
	EchoStart uint16 = 0xE000
	// EchoEnd is the exclusive end of the work RAM mirror.
	EchoEnd uint16 = 0xFE00
	// EchoOffset is the distance between work RAM and its mirror.
	EchoOffset uint16 = EchoStart - WRAMStart
)

// gpu registers
const (
	// LCD Control register.
	LCDC uint16 = 0xFF40
	// LCDC Y-Coordinate register, written by the GPU.
	LY uint16 = 0xFF44
	// BG Palette register.
	BGP uint16 = 0xFF47
)

// video memory
const (
	// TileData0 is the tile set selected when LCDC bit 3 is set.
	TileData0 uint16 = 0x8000
	// TileData1 is the tile set selected when LCDC bit 3 is clear.
	TileData1 uint16 = 0x8800
	// TileMap0 is the background map selected when LCDC bit 3 is clear.
	TileMap0 uint16 = 0x9800
	// TileMap1 is the background map selected when LCDC bit 3 is set.
	TileMap1 uint16 = 0x9C00
)

// OAM (Object Attribute Memory) - sprite data
const (
	// OAMStart is the start of OAM memory (40 sprites * 4 bytes each)
	OAMStart uint16 = 0xFE00
	// OAMEnd is the end of OAM memory
	OAMEnd uint16 = 0xFE9F
)
