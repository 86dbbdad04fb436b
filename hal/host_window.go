//go:build !tinygo && cgo

package hal

import (
	"context"
	"errors"
	"image"

	"hartos/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var errWindowClosed = errors.New("window closed")

// RunWindow opens a desktop window presenting the host framebuffer and
// forwarding typed characters to the console. It blocks until the window
// closes, ctx is done or the machine shuts down.
func RunWindow(ctx context.Context, h *Host) error {
	if h.fb == nil {
		return errors.New("window mode requires a framebuffer")
	}
	g := &hostGame{ctx: ctx, h: h}
	ebiten.SetWindowTitle("hartos (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(h.fb.width*2, h.fb.height*2)
	ebiten.SetTPS(60)
	err := ebiten.RunGame(g)
	if errors.Is(err, errWindowClosed) {
		return nil
	}
	return err
}

type hostGame struct {
	ctx     context.Context
	h       *Host
	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []byte
}

func (g *hostGame) Update() error {
	select {
	case <-g.ctx.Done():
		return errWindowClosed
	case <-g.h.Done():
		return errWindowClosed
	default:
	}
	var in []byte
	for _, r := range ebiten.AppendInputChars(nil) {
		if r < 0x80 {
			in = append(in, byte(r))
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		in = append(in, '\r')
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		in = append(in, 0x7f)
	}
	if len(in) > 0 {
		g.h.console.Feed(in)
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	if g.img == nil || g.img.Bounds().Dx() != fb.width || g.img.Bounds().Dy() != fb.height {
		g.img = image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
		g.scratch = make([]byte, len(fb.buf))
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(fb.width, fb.height)
	}

	fb.snapshotRGB565(g.scratch)

	src := g.scratch
	dst := g.img.Pix
	for i := 0; i+1 < len(src) && i/2*4+3 < len(dst); i += 2 {
		r, gg, b := rgb888From565(uint16(src[i]) | uint16(src[i+1])<<8)
		j := (i / 2) * 4
		dst[j+0] = r
		dst[j+1] = gg
		dst[j+2] = b
		dst[j+3] = 0xFF
	}

	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.fb.width, g.h.fb.height
}
