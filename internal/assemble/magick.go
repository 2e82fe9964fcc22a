package assemble

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/gographics/imagick.v3/imagick"
)

// MagickAssembler joins group files into one multi-page TIFF using the
// ImageMagick Go bindings. Reading files sequentially into a single
// wand appends one page per file, which preserves the requested plane
// order.
type MagickAssembler struct{}

// NewMagickAssembler returns the ImageMagick-backed assembler.
func NewMagickAssembler() *MagickAssembler {
	return &MagickAssembler{}
}

// Assemble reads every member file into one wand and writes the joined
// stack. Either the output file exists afterwards or an error is
// returned; no partial stack is left behind.
func (a *MagickAssembler) Assemble(ctx context.Context, req Request) (Result, error) {
	if len(req.Files) == 0 {
		return Result{}, fmt.Errorf("group %s SP%d: no member files", req.Group.Well, req.Group.Position)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := os.MkdirAll(filepath.Dir(req.Output), 0o755); err != nil {
		return Result{}, fmt.Errorf("create output directory: %w", err)
	}

	imagick.Initialize()
	defer imagick.Terminate()

	mw := imagick.NewMagickWand()
	defer mw.Destroy()

	for _, path := range req.Files {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if err := mw.ReadImage(path); err != nil {
			return Result{}, fmt.Errorf("read %s: %w", path, err)
		}
	}
	if err := mw.SetImageDepth(16); err != nil {
		return Result{}, fmt.Errorf("set bit depth: %w", err)
	}

	if err := mw.WriteImages(req.Output, true); err != nil {
		os.Remove(req.Output)
		return Result{}, fmt.Errorf("write %s: %w", req.Output, err)
	}
	if _, err := os.Stat(req.Output); err != nil {
		return Result{}, fmt.Errorf("assembler completed but output missing: %w", err)
	}

	return Result{Output: req.Output, Planes: len(req.Files)}, nil
}
