package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/frudas24/knobicon/internal/knob"
	"github.com/frudas24/knobicon/internal/widget"
	"gopkg.in/yaml.v3"
)

// Widget describes one knob: its two images and its layout.
type Widget struct {
	KnobImage     string   `yaml:"knob_image"`
	PointerImage  string   `yaml:"pointer_image"`
	Width         int      `yaml:"width"`
	Height        int      `yaml:"height"`
	Percent       *float64 `yaml:"percent"`
	KnobRadius    float64  `yaml:"knob_radius"`
	PointerRadius float64  `yaml:"pointer_radius"`
	CoordMode     string   `yaml:"coord_mode"`

	// Dir is the directory relative image paths resolve against.
	Dir string `yaml:"-"`
}

// LoadWidgetFile reads and validates a YAML widget file.
// Unknown fields and trailing documents are rejected.
func LoadWidgetFile(path string) (Widget, error) {
	if path == "" {
		return Widget{}, errors.New("widget file path is empty")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Widget{}, fmt.Errorf("read widget file: %w", err)
	}

	var w Widget
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&w); err != nil {
		if errors.Is(err, io.EOF) {
			return Widget{}, errors.New("decode widget yaml: file is empty")
		}
		return Widget{}, fmt.Errorf("decode widget yaml: %w", err)
	}
	if err := dec.Decode(&yaml.Node{}); !errors.Is(err, io.EOF) {
		return Widget{}, errors.New("decode widget yaml: unexpected trailing document")
	}

	w.Dir = filepath.Dir(path)
	if err := w.Validate(); err != nil {
		return Widget{}, err
	}
	return w, nil
}

// Validate checks the widget description.
func (w Widget) Validate() error {
	if w.KnobImage == "" {
		return errors.New("knob_image is required")
	}
	if w.PointerImage == "" {
		return errors.New("pointer_image is required")
	}
	if w.Width < 0 || w.Height < 0 {
		return errors.New("width and height must be >= 0")
	}
	if w.KnobRadius < 0 || w.PointerRadius < 0 {
		return errors.New("knob_radius and pointer_radius must be >= 0")
	}
	if w.Percent != nil && (math.IsNaN(*w.Percent) || math.IsInf(*w.Percent, 0)) {
		return fmt.Errorf("percent must be a finite number, got %v", *w.Percent)
	}
	if _, ok := knob.ParseCoordMode(w.CoordMode); !ok {
		return fmt.Errorf("coord_mode must be legacy or scaled, got %q", w.CoordMode)
	}
	return nil
}

// Options converts the description into widget options.
func (w Widget) Options() widget.Options {
	mode, _ := knob.ParseCoordMode(w.CoordMode)
	return widget.Options{
		Width:         w.Width,
		Height:        w.Height,
		Percent:       w.Percent,
		KnobRadius:    w.KnobRadius,
		PointerRadius: w.PointerRadius,
		CoordMode:     mode,
	}
}

// ImagePaths returns the filesystem paths of both images.
func (w Widget) ImagePaths() (string, string) {
	return w.resolve(w.KnobImage), w.resolve(w.PointerImage)
}

// resolve joins a relative path onto Dir.
func (w Widget) resolve(p string) string {
	if filepath.IsAbs(p) || w.Dir == "" {
		return p
	}
	return filepath.Join(w.Dir, p)
}
