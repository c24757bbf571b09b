package encoder

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"golang.org/x/image/draw"
)

// WritePoster encodes img as PNG, first scaling it down to width pixels
// wide when width is positive and smaller than the image.
func WritePoster(w io.Writer, img image.Image, width int) error {
	b := img.Bounds()
	if b.Empty() {
		return fmt.Errorf("empty poster image")
	}
	out := img
	if width > 0 && width < b.Dx() {
		height := max(b.Dy()*width/b.Dx(), 1)
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		out = dst
	}
	if err := png.Encode(w, out); err != nil {
		return fmt.Errorf("failed to encode poster: %w", err)
	}
	return nil
}
