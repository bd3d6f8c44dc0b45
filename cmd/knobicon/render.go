package main

import (
	"context"
	"fmt"
	"os"

	"github.com/frudas24/knobicon/internal/app"
	"github.com/frudas24/knobicon/internal/config"
)

// RenderCmd draws a single frame offline.
type RenderCmd struct {
	Widget  string  `help:"Widget YAML file" default:"data/widget.yaml" type:"path"`
	Percent float64 `help:"Value to render (0-100); negative keeps the widget file value" default:"-1"`
	Out     string  `help:"Output image path" short:"o" required:"" type:"path"`
	Format  string  `help:"Output format" enum:"png,jpeg" default:"png"`
	Quality int     `help:"JPEG quality (1-100)" default:"80"`
}

// Run renders the widget and writes the image.
func (c *RenderCmd) Run() error {
	if c.Percent > 100 {
		return fmt.Errorf("--percent must be 0-100")
	}
	var percent *float64
	if c.Percent >= 0 {
		percent = &c.Percent
	}
	wcfg, err := config.LoadWidgetFile(c.Widget)
	if err != nil {
		return err
	}
	out, err := app.RenderStill(context.Background(), wcfg, app.StillOptions{
		Percent: percent,
		Format:  c.Format,
		Quality: c.Quality,
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.Out, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", c.Out, err)
	}
	return nil
}
