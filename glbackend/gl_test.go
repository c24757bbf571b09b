package glbackend

import (
	"image"
	"testing"
)

func TestFlipRows(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 3))
	for y := 0; y < 3; y++ {
		img.Pix[y*img.Stride] = byte(y)
	}
	FlipRows(img)
	for y, want := range []byte{2, 1, 0} {
		if got := img.Pix[y*img.Stride]; got != want {
			t.Errorf("row %d = %d, want %d", y, got, want)
		}
	}
}
