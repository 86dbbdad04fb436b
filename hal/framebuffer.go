package hal

import (
	"image/color"
	"sync"
)

// MemFramebuffer is an RGB565 framebuffer held in memory.
//
// It also satisfies tinygo.org/x/drivers.Displayer through SetPixel, Size and
// Display, so tinyfont can draw into it directly.
type MemFramebuffer struct {
	mu        sync.Mutex
	width     int
	height    int
	stride    int
	buf       []byte
	onPresent func()
}

// NewFramebuffer allocates a width x height RGB565 framebuffer.
func NewFramebuffer(width, height int) *MemFramebuffer {
	stride := width * 2
	return &MemFramebuffer{
		width:  width,
		height: height,
		stride: stride,
		buf:    make([]byte, stride*height),
	}
}

// OnPresent installs a hook called after every Present.
func (f *MemFramebuffer) OnPresent(fn func()) {
	f.mu.Lock()
	f.onPresent = fn
	f.mu.Unlock()
}

func (f *MemFramebuffer) Width() int          { return f.width }
func (f *MemFramebuffer) Height() int         { return f.height }
func (f *MemFramebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *MemFramebuffer) StrideBytes() int    { return f.stride }
func (f *MemFramebuffer) Buffer() []byte      { return f.buf }

func (f *MemFramebuffer) Present() error {
	f.mu.Lock()
	fn := f.onPresent
	f.mu.Unlock()
	if fn != nil {
		fn()
	}
	return nil
}

func (f *MemFramebuffer) ClearRGB(r, g, b uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pixel := rgb565(r, g, b)
	lo := byte(pixel)
	hi := byte(pixel >> 8)
	for i := 0; i < len(f.buf); i += 2 {
		f.buf[i] = lo
		f.buf[i+1] = hi
	}
}

// Size implements drivers.Displayer.
func (f *MemFramebuffer) Size() (x, y int16) {
	return int16(f.width), int16(f.height)
}

// SetPixel implements drivers.Displayer. Out of range pixels are ignored.
func (f *MemFramebuffer) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || int(x) >= f.width || int(y) >= f.height {
		return
	}
	p := rgb565(c.R, c.G, c.B)
	i := int(y)*f.stride + int(x)*2
	f.mu.Lock()
	f.buf[i] = byte(p)
	f.buf[i+1] = byte(p >> 8)
	f.mu.Unlock()
}

// Pixel returns the RGB888 colour at x, y.
func (f *MemFramebuffer) Pixel(x, y int) (r, g, b uint8) {
	i := y*f.stride + x*2
	f.mu.Lock()
	p := uint16(f.buf[i]) | uint16(f.buf[i+1])<<8
	f.mu.Unlock()
	return rgb888From565(p)
}

// Display implements drivers.Displayer.
func (f *MemFramebuffer) Display() error { return f.Present() }

func (f *MemFramebuffer) snapshotRGB565(dst []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(dst, f.buf)
}

type memDisplay struct {
	fb Framebuffer
}

func (d memDisplay) Framebuffer() Framebuffer { return d.fb }

// NewDisplay wraps a framebuffer (possibly nil) as a Display.
func NewDisplay(fb Framebuffer) Display { return memDisplay{fb: fb} }

func rgb565(r, g, b uint8) uint16 {
	rr := uint16(r>>3) & 0x1F
	gg := uint16(g>>2) & 0x3F
	bb := uint16(b>>3) & 0x1F
	return (rr << 11) | (gg << 5) | bb
}

func rgb888From565(p uint16) (r, g, b uint8) {
	rr := (p >> 11) & 0x1F
	gg := (p >> 5) & 0x3F
	bb := p & 0x1F

	r = uint8((rr * 255) / 31)
	g = uint8((gg * 255) / 63)
	b = uint8((bb * 255) / 31)
	return r, g, b
}
