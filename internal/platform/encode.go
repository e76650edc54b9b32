package platform

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"
)

// EncodeJPEG scales img by opts.Scale and encodes it at opts.Quality.
func EncodeJPEG(img image.Image, opts ScreenshotOptions) ([]byte, error) {
	opts = opts.Normalize()
	src := img
	if opts.Scale < 1 {
		b := img.Bounds()
		w := max(1, int(float64(b.Dx())*opts.Scale))
		h := max(1, int(float64(b.Dy())*opts.Scale))
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		src = dst
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return nil, fmt.Errorf("jpeg encode: %w", err)
	}
	return buf.Bytes(), nil
}
