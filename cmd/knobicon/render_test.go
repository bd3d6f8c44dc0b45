package main

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// writeSolidPNG writes a single-color PNG to path.
func writeSolidPNG(t *testing.T, path string, size int, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

// TestRenderCmd_WritesPNG verifies the render command writes a decodable frame.
func TestRenderCmd_WritesPNG(t *testing.T) {
	dir := t.TempDir()
	writeSolidPNG(t, filepath.Join(dir, "knob.png"), 40, color.RGBA{B: 255, A: 255})
	writeSolidPNG(t, filepath.Join(dir, "pointer.png"), 8, color.RGBA{R: 255, A: 255})
	widgetFile := filepath.Join(dir, "widget.yaml")
	if err := os.WriteFile(widgetFile, []byte("knob_image: knob.png\npointer_image: pointer.png\n"), 0o600); err != nil {
		t.Fatalf("write widget file: %v", err)
	}

	out := filepath.Join(dir, "out.png")
	cmd := &RenderCmd{Widget: widgetFile, Percent: 30, Out: out, Format: "png", Quality: 80}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 40 {
		t.Fatalf("expected 40x40 frame, got %v", b)
	}
}

// TestRenderCmd_RejectsPercentAbove100 verifies the flag range check.
func TestRenderCmd_RejectsPercentAbove100(t *testing.T) {
	cmd := &RenderCmd{Widget: "unused.yaml", Percent: 101, Out: filepath.Join(t.TempDir(), "x.png")}
	if err := cmd.Run(); err == nil {
		t.Fatalf("expected error")
	}
}
