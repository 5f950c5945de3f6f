package video

import "github.com/valerio/gogg/gg/bit"

// TileRow represents one row of a tile pattern (8 pixels), read as a
// little endian word from VRAM.
//
// Each row uses 2 bytes in a bit-plane format:
//
//	Low  (first byte):  bit plane 0 - provides bit 0 of each pixel's color
//	High (second byte): bit plane 1 - provides bit 1 of each pixel's color
//
// Pixels are shifted out from the least significant bit, so bit 0 is drawn
// leftmost:
//
//	Bit:     0 1 2 3 4 5 6 7
//	Pixel:   0 1 2 3 4 5 6 7
//
// Example: bytes $3C and $7E represent a row:
//
//	Low  (0x3C): bits 0..7 = 0 0 1 1 1 1 0 0
//	High (0x7E): bits 0..7 = 0 1 1 1 1 1 1 0
//	            -----------------
//	Colors:                  0 2 3 3 3 3 2 0
type TileRow struct {
	Low  byte
	High byte
}

// NewTileRow splits a pattern word into its two planes.
func NewTileRow(pattern uint16) TileRow {
	return TileRow{Low: bit.Low(pattern), High: bit.High(pattern)}
}

// GetPixel extracts a pixel color index (0-3) from the tile row.
// pixelX should be 0-7, where 0 is the leftmost pixel.
func (t TileRow) GetPixel(pixelX int) uint8 {
	index := uint8(pixelX)
	return bit.Value(index, t.Low) | bit.Value(index, t.High)<<1
}

// MemoryReader interface for reading from memory.
type MemoryReader interface {
	Read(addr uint16) byte
	Read16(addr uint16) uint16
}

// FetchTileRow reads row (0-7) of the tile stored at baseAddr.
func FetchTileRow(memory MemoryReader, baseAddr uint16, row int) TileRow {
	return NewTileRow(memory.Read16(baseAddr + uint16(row*2)))
}
