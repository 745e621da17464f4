// Package video implements the DMG picture processing unit: the
// scanline/mode state machine, background/window/sprite rasterisation, and
// the 2-bit-per-pixel framebuffer a frontend renders from.
package video

// FramebufferWidth and FramebufferHeight are the DMG's fixed screen
// dimensions; nothing in this package parametrizes over other sizes.
const (
	FramebufferWidth  = 160
	FramebufferHeight = 144
)

// FrameBuffer holds one rendered frame as 2-bit palette indices (0-3), the
// raw output of the pixel pipeline before a frontend maps indices to shades.
type FrameBuffer struct {
	pixels [FramebufferWidth * FramebufferHeight]uint8
}

// NewFrameBuffer returns an all-zero framebuffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

func (fb *FrameBuffer) SetPixel(x, y int, colorIndex uint8) {
	fb.pixels[y*FramebufferWidth+x] = colorIndex & 0x3
}

func (fb *FrameBuffer) GetPixel(x, y int) uint8 {
	return fb.pixels[y*FramebufferWidth+x]
}

// Pixels returns the backing slice in row-major order, for frontends that
// want to copy or iterate the whole frame at once.
func (fb *FrameBuffer) Pixels() []uint8 {
	return fb.pixels[:]
}

// ClearLine zeroes one scanline, used when the LCD is off.
func (fb *FrameBuffer) ClearLine(y int) {
	row := fb.pixels[y*FramebufferWidth : (y+1)*FramebufferWidth]
	for i := range row {
		row[i] = 0
	}
}
