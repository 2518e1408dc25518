package imaging

import (
	"bytes"
	"image"
	"testing"
)

func TestScale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 800, 600))

	half := Scale(src, 0.5)
	if b := half.Bounds(); b.Dx() != 400 || b.Dy() != 300 {
		t.Errorf("half scale: got %dx%d, want 400x300", b.Dx(), b.Dy())
	}

	if same := Scale(src, 1); same != image.Image(src) {
		t.Error("factor 1 should return the source image unchanged")
	}
	if same := Scale(src, 0); same != image.Image(src) {
		t.Error("non-positive factor should return the source image unchanged")
	}

	tiny := Scale(src, 0.0001)
	if b := tiny.Bounds(); b.Dx() < 1 || b.Dy() < 1 {
		t.Errorf("scaled dimensions must stay >= 1, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestEncodePNG(t *testing.T) {
	data, err := EncodePNG(image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("output is not a PNG stream")
	}
}
