package app

import (
	"hartos/hal"
	"hartos/kernel/executor"
)

// consoleEcho is an I/O coroutine echoing console input back, with carriage
// returns turned into newlines. It polls and never completes.
func consoleEcho(c hal.Console) executor.Future {
	return executor.FutureFunc(func(cx *executor.Context) executor.State {
		for {
			b, ok := c.Getchar()
			if !ok {
				break
			}
			switch b {
			case '\r':
				b = '\n'
			case 0x7f:
				b = '\b'
			}
			c.Putchar(b)
		}
		cx.Waker().Wake()
		return executor.Suspended
	})
}
