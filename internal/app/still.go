package app

import (
	"context"
	"fmt"

	"github.com/frudas24/knobicon/internal/assets"
	"github.com/frudas24/knobicon/internal/config"
	"github.com/frudas24/knobicon/internal/widget"
)

// Still image formats produced by RenderStill.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
)

// StillOptions controls an offline render.
type StillOptions struct {
	// Percent overrides the widget file value when set.
	Percent *float64
	Format  string
	Quality int
}

// RenderStill draws one frame of the widget described by wcfg without a server.
func RenderStill(ctx context.Context, wcfg config.Widget, opts StillOptions) ([]byte, error) {
	wopts := wcfg.Options()
	if opts.Percent != nil {
		wopts.Percent = opts.Percent
	}
	w, err := widget.New(wcfg.KnobImage, wcfg.PointerImage, wopts)
	if err != nil {
		return nil, err
	}
	if err := w.Load(ctx, assets.NewFileLoader(wcfg.Dir)); err != nil {
		return nil, err
	}

	switch opts.Format {
	case "", FormatPNG:
		return w.Surface().EncodePNG()
	case FormatJPEG, "jpg":
		return w.Surface().EncodeJPEG(opts.Quality)
	default:
		return nil, fmt.Errorf("unsupported format %q", opts.Format)
	}
}
