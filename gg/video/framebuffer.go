package video

const (
	FramebufferWidth  = 160
	FramebufferHeight = 144
)

// ColorFromIndex expands a 2 bit color index into the 16 bit value stored in the frame buffer.
// No palette is applied: index 0 is black, 3 is the brightest.
func ColorFromIndex(index uint8) uint16 {
	c := uint16(index & 3)
	return c<<3 | c<<8 | c<<13
}

// Shade recovers the color index of a pixel written with ColorFromIndex.
func Shade(pixel uint16) uint8 {
	return uint8(pixel>>3) & 3
}

// RGB565 splits a pixel into its 5, 6 and 5 bit components.
func RGB565(pixel uint16) (r, g, b uint8) {
	return uint8(pixel >> 11 & 0x1F), uint8(pixel >> 5 & 0x3F), uint8(pixel & 0x1F)
}

// FrameBuffer holds one 160x144 frame of 16 bit pixels.
type FrameBuffer struct {
	buffer []uint16
}

// NewFrameBuffer creates a black frame buffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{
		buffer: make([]uint16, FramebufferWidth*FramebufferHeight),
	}
}

func (fb *FrameBuffer) GetPixel(x, y int) uint16 {
	return fb.buffer[y*FramebufferWidth+x]
}

func (fb *FrameBuffer) SetPixel(x, y int, color uint16) {
	fb.buffer[y*FramebufferWidth+x] = color
}

// ToSlice exposes the pixels in row-major order.
func (fb *FrameBuffer) ToSlice() []uint16 {
	return fb.buffer
}

// Snapshot returns a copy that is safe to hand to another goroutine.
func (fb *FrameBuffer) Snapshot() *FrameBuffer {
	out := NewFrameBuffer()
	copy(out.buffer, fb.buffer)
	return out
}

func (fb *FrameBuffer) Clear() {
	clear(fb.buffer)
}
