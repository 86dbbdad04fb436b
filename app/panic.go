package app

import (
	"fmt"
	"image/color"
	"strings"

	"tinygo.org/x/drivers"

	"hartos/hal"
	"hartos/internal/fbterm"
	"hartos/kernel"
)

var (
	panicFG = color.RGBA{A: 0xff}
	panicBG = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

func panicLines(info kernel.PanicInfo) []string {
	lines := []string{
		"hartos panic:",
		fmt.Sprintf("task: %d", info.TID),
		fmt.Sprintf("cause: %s pc=%#x", info.Cause, info.PC),
		fmt.Sprintf("panic: %v", info.Value),
	}
	if len(info.Stack) == 0 {
		return append(lines, "stack: unavailable")
	}
	lines = append(lines, "stack:")
	for _, line := range strings.Split(string(info.Stack), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func installPanicHandler(h hal.HAL) {
	kernel.SetPanicHandler(func(info kernel.PanicInfo) {
		lines := panicLines(info)
		if m, ok := h.Console().(mirrorer); ok {
			m.Mirror(nil)
		}
		if l := h.Logger(); l != nil {
			for _, line := range lines {
				l.WriteLineString(line)
			}
		}

		d := displayer(h)
		if d == nil {
			return
		}
		term, err := fbterm.NewWithColors(d, panicFG, panicBG)
		if err != nil {
			return
		}
		_, rows := term.Size()
		for i, line := range lines {
			if i == rows {
				break
			}
			if i > 0 {
				term.Write([]byte{'\n'})
			}
			term.Write([]byte(line))
		}
		_ = term.Flush()
	})
}

// displayer returns the HAL framebuffer as a drivers.Displayer, or nil.
func displayer(h hal.HAL) drivers.Displayer {
	disp := h.Display()
	if disp == nil {
		return nil
	}
	fb := disp.Framebuffer()
	if fb == nil {
		return nil
	}
	if d, ok := fb.(drivers.Displayer); ok {
		return d
	}
	if fb.Format() != hal.PixelFormatRGB565 {
		return nil
	}
	return fbDisplay{fb: fb}
}

// fbDisplay draws into a plain RGB565 framebuffer.
type fbDisplay struct {
	fb hal.Framebuffer
}

func (d fbDisplay) Size() (x, y int16) {
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d fbDisplay) SetPixel(x, y int16, c color.RGBA) {
	buf := d.fb.Buffer()
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= d.fb.Width() || iy < 0 || iy >= d.fb.Height() {
		return
	}
	p := uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)
	off := iy*d.fb.StrideBytes() + ix*2
	if off+1 >= len(buf) {
		return
	}
	buf[off] = byte(p)
	buf[off+1] = byte(p >> 8)
}

func (d fbDisplay) Display() error { return d.fb.Present() }
