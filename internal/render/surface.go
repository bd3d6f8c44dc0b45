// Package render draws knob frames onto an RGBA raster surface.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// DefaultJPEGQuality is used when a caller passes an out-of-range quality.
const DefaultJPEGQuality = 80

// Surface is an RGBA drawing surface holding the knob and pointer graphics.
// It implements knob.Canvas.
type Surface struct {
	img           *image.RGBA
	knob          image.Image
	pointer       image.Image
	pointerRadius float64
	scaler        xdraw.Interpolator
}

// NewSurface allocates a transparent surface of the given size.
func NewSurface(width, height int) *Surface {
	return &Surface{
		img:    image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0))),
		scaler: xdraw.BiLinear,
	}
}

// Size returns the intrinsic pixel size.
func (s *Surface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Resize reallocates the pixel buffer; contents are cleared.
func (s *Surface) Resize(width, height int) {
	s.img = image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
}

// SetImages sets the knob and pointer graphics.
func (s *Surface) SetImages(knobImg, pointerImg image.Image) {
	s.knob = knobImg
	s.pointer = pointerImg
}

// SetPointerRadius sets the half-size of the square the pointer is drawn into.
// Non-positive values draw the pointer across the whole surface.
func (s *Surface) SetPointerRadius(r float64) {
	s.pointerRadius = r
}

// Clear erases the surface to transparent.
func (s *Surface) Clear() {
	draw.Draw(s.img, s.img.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

// DrawKnob draws the knob graphic scaled to the surface with no rotation.
func (s *Surface) DrawKnob() {
	if s.knob == nil {
		return
	}
	s.scaler.Scale(s.img, s.img.Bounds(), s.knob, s.knob.Bounds(), draw.Over, nil)
}

// DrawPointer draws the pointer graphic rotated by rotation radians about the surface center.
// Positive rotation is clockwise on screen.
func (s *Surface) DrawPointer(rotation float64) {
	if s.pointer == nil {
		return
	}
	s.scaler.Transform(s.img, s.pointerTransform(rotation), s.pointer, s.pointer.Bounds(), draw.Over, nil)
}

// Image returns the live backing image.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

// Snapshot returns a copy of the current frame.
func (s *Surface) Snapshot() *image.RGBA {
	out := image.NewRGBA(s.img.Bounds())
	copy(out.Pix, s.img.Pix)
	return out
}

// EncodePNG encodes the current frame as PNG.
func (s *Surface) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeJPEG encodes the current frame as JPEG composited over white.
func (s *Surface) EncodeJPEG(quality int) ([]byte, error) {
	return EncodeJPEG(s.img, quality)
}

// EncodeJPEG flattens img onto white and encodes it as JPEG.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	flat := image.NewRGBA(img.Bounds())
	draw.Draw(flat, flat.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), img, img.Bounds().Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// pointerTransform maps pointer-image pixels to surface pixels: scale into a square of side
// 2*pointerRadius, center it, rotate about the surface center.
func (s *Surface) pointerTransform(rotation float64) f64.Aff3 {
	w, h := s.Size()
	cx, cy := float64(w)/2, float64(h)/2

	dstW, dstH := float64(w), float64(h)
	if s.pointerRadius > 0 {
		dstW, dstH = 2*s.pointerRadius, 2*s.pointerRadius
	}
	pb := s.pointer.Bounds()
	kx := dstW / float64(max(pb.Dx(), 1))
	ky := dstH / float64(max(pb.Dy(), 1))
	hx, hy := dstW/2, dstH/2
	ox, oy := float64(pb.Min.X), float64(pb.Min.Y)

	sin, cos := math.Sincos(rotation)
	return f64.Aff3{
		cos * kx, -sin * ky, cx - cos*(hx+kx*ox) + sin*(hy+ky*oy),
		sin * kx, cos * ky, cy - sin*(hx+kx*ox) - cos*(hy+ky*oy),
	}
}
