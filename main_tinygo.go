//go:build tinygo && baremetal

package main

import (
	"hartos/app"
	"hartos/hal"
)

func main() {
	_ = app.Run(hal.New())
}
