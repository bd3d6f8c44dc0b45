// Package assets loads and watches the knob and pointer graphics.
package assets

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/webp" // register decoder
)

// Loader resolves an image source into a decoded image.
type Loader interface {
	Load(ctx context.Context, src string) (image.Image, error)
}

// FileLoader decodes images from the filesystem; relative sources resolve against Dir.
type FileLoader struct {
	Dir string
}

// NewFileLoader returns a loader rooted at dir.
func NewFileLoader(dir string) *FileLoader {
	return &FileLoader{Dir: dir}
}

// Path returns the filesystem path for src.
func (l *FileLoader) Path(src string) string {
	if filepath.IsAbs(src) || l.Dir == "" {
		return src
	}
	return filepath.Join(l.Dir, src)
}

// Load opens and decodes src.
func (l *FileLoader) Load(ctx context.Context, src string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := l.Path(src)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
