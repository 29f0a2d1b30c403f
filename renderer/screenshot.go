package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/draw"
)

const invGamma = 1.0 / 2.2

// Image converts the progressive output into an 8-bit image. Radiance is
// clamped to [0, 1] and gamma corrected.
func (r *Renderer) Image() (*image.RGBA, error) {
	if r.output == nil || !r.output.Allocated() {
		return nil, ErrRendererInvalid
	}

	return toRGBA(r.output.Float32s(), int(r.opts.FrameW), int(r.opts.FrameH)), nil
}

// Screenshot writes the current output to path. The format is selected by
// the file extension and may be png, webp or tga.
func (r *Renderer) Screenshot(path string) error {
	return r.ScreenshotScaled(path, 0, 0)
}

// ScreenshotScaled writes the current output to path after scaling it to
// w x h. A zero dimension keeps the frame size.
func (r *Renderer) ScreenshotScaled(path string, w, h int) error {
	format, err := imageFormat(path)
	if err != nil {
		return err
	}

	im, err := r.Image()
	if err != nil {
		return err
	}
	var out image.Image = im
	if w > 0 && h > 0 && (w != im.Bounds().Dx() || h != im.Bounds().Dy()) {
		scaled := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), im, im.Bounds(), draw.Src, nil)
		out = scaled
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err = encodeImage(f, out, format); err != nil {
		return fmt.Errorf("renderer: could not write %s: %v", path, err)
	}

	r.logger.Noticef("saved %dx%d screenshot to %s", out.Bounds().Dx(), out.Bounds().Dy(), path)
	return nil
}

func imageFormat(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "png", "webp", "tga":
		return ext, nil
	}
	return "", fmt.Errorf("renderer: %q: %w", filepath.Ext(path), ErrUnknownFormat)
}

func encodeImage(w io.Writer, im image.Image, format string) error {
	switch format {
	case "png":
		return png.Encode(w, im)
	case "webp":
		return nativewebp.Encode(w, im, nil)
	case "tga":
		return tga.Encode(w, im)
	}
	return ErrUnknownFormat
}

func toRGBA(pix []float32, w, h int) *image.RGBA {
	im := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			offset := (y*w + x) * 4
			if offset+3 >= len(pix) {
				return im
			}
			im.SetRGBA(x, y, color.RGBA{
				R: toneMap(pix[offset]),
				G: toneMap(pix[offset+1]),
				B: toneMap(pix[offset+2]),
				A: 255,
			})
		}
	}
	return im
}

func toneMap(v float32) uint8 {
	if math.IsNaN(float64(v)) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Pow(float64(v), invGamma)*255 + 0.5)
}
