package passport

import (
	"context"
	"image/color"
	"os"
	"testing"
)

// Requires the Tesseract runtime and eng traineddata; opt in with
// TESSERACT_TEST=1.
func TestTesseractEngineRecognize(t *testing.T) {
	if os.Getenv("TESSERACT_TEST") != "1" {
		t.Skip("tesseract integration test disabled; set TESSERACT_TEST=1 to enable")
	}
	eng, err := NewTesseractEngine()
	if err != nil {
		t.Fatalf("engine init: %v", err)
	}
	defer eng.Close()

	png := testImagePNG(t, 320, 200, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	for _, mode := range []PageSegMode{SegSingleBlock, SegAuto, SegSingleColumn} {
		if _, err := eng.Recognize(context.Background(), png, mode); err != nil {
			t.Fatalf("recognize mode %d: %v", mode, err)
		}
	}
}
