package ingest

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"

	"mav-playback/models"
	"mav-playback/utils"
)

// ImageReader opens and decodes the four view images of a frame. It can
// convert to 8-bit grayscale and down-scale before handing images to the
// tracking engine.
type ImageReader struct {
	grayscale bool
	scale     float64
}

// NewImageReader builds a reader from the image section of the config.
func NewImageReader(cfg utils.ImageConfig) *ImageReader {
	scale := cfg.Scale
	if scale <= 0 || scale > 1 {
		scale = 1
	}
	return &ImageReader{grayscale: cfg.Grayscale, scale: scale}
}

// Load decodes all four views. The first view that fails to open or decode
// aborts the frame with a decode error naming its path.
func (r *ImageReader) Load(paths [models.NumViews]string) ([models.NumViews]image.Image, error) {
	var out [models.NumViews]image.Image
	for v, p := range paths {
		img, err := r.loadOne(p)
		if err != nil {
			return out, err
		}
		out[v] = img
	}
	return out, nil
}

func (r *ImageReader) loadOne(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, utils.DecodeError(path, fmt.Errorf("open image: %w", err))
	}
	defer f.Close()

	src, format, err := image.Decode(f)
	if err != nil {
		return nil, utils.DecodeError(path, fmt.Errorf("decode image: %w", err))
	}
	if src.Bounds().Empty() {
		return nil, utils.DecodeError(path, fmt.Errorf("empty %s image", format))
	}
	return r.convert(src), nil
}

// convert applies the grayscale and scale settings. Images that already
// match are returned untouched.
func (r *ImageReader) convert(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if r.scale < 1 {
		w = max(1, int(float64(w)*r.scale))
		h = max(1, int(float64(h)*r.scale))
	}
	_, isGray := src.(*image.Gray)
	if (!r.grayscale || isGray) && w == b.Dx() && h == b.Dy() {
		return src
	}

	rect := image.Rect(0, 0, w, h)
	var dst draw.Image
	if r.grayscale {
		dst = image.NewGray(rect)
	} else {
		dst = image.NewRGBA(rect)
	}

	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, rect, src, b.Min, draw.Src)
	} else {
		draw.ApproxBiLinear.Scale(dst, rect, src, b, draw.Src, nil)
	}
	return dst
}
