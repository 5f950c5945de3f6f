package render

import "github.com/valerio/gogg/gg/video"

// Brightest is the shade of the lightest pixel.
const Brightest = 3

// PixelToShade maps a frame buffer pixel to its shade, 0 (black) to 3.
func PixelToShade(pixel uint16) int {
	return int(video.Shade(pixel))
}

// GetHalfBlockChar picks the block character drawing two stacked pixels in
// one terminal cell. The top pixel is painted with the foreground unless only
// the bottom one differs from the brightest shade.
func GetHalfBlockChar(topShade, bottomShade int) rune {
	switch {
	case topShade == bottomShade:
		return '█'
	case topShade == Brightest:
		return '▄'
	default:
		return '▀'
	}
}
