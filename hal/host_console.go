//go:build !tinygo

package hal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"

	tty "github.com/mattn/go-tty"
)

// ErrInterrupt is returned by PumpConsole when Ctrl-C is typed in raw mode.
var ErrInterrupt = errors.New("console interrupt")

// PumpConsole feeds keyboard input into c until ctx is done.
//
// It puts the controlling terminal into raw mode through go-tty. When there is
// no terminal (pipes, CI) it falls back to reading stdin.
func PumpConsole(ctx context.Context, c *BufferedConsole) error {
	t, err := tty.Open()
	if err != nil {
		return pumpReader(ctx, c, os.Stdin)
	}
	defer t.Close()
	restore, err := t.Raw()
	if err != nil {
		return pumpReader(ctx, c, t.Input())
	}
	defer restore()
	return pumpReader(ctx, c, t.Input())
}

func pumpReader(ctx context.Context, c *BufferedConsole, r io.Reader) error {
	errc := make(chan error, 1)
	go func() {
		buf := make([]byte, 64)
		for {
			n, err := r.Read(buf)
			if i := bytes.IndexByte(buf[:n], 0x03); i >= 0 {
				c.Feed(buf[:i])
				errc <- ErrInterrupt
				return
			}
			if n > 0 {
				c.Feed(buf[:n])
			}
			if err != nil {
				errc <- err
				return
			}
		}
	}()
	select {
	case <-ctx.Done():
		return nil
	case err := <-errc:
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
}
