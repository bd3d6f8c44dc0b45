// Package main starts the Knobicon server.
package main

import (
	"github.com/alecthomas/kong"
)

// CLI defines the knobicon command structure.
type CLI struct {
	Serve  ServeCmd  `cmd:"" default:"withargs" help:"Serve the knob over HTTP (default)"`
	Render RenderCmd `cmd:"" help:"Render one knob frame to an image file"`
}

// main is the entrypoint for the Knobicon server.
func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("knobicon"),
		kong.Description("Rotary knob widget served to the browser."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run())
}
