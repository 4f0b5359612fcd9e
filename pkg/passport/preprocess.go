package passport

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/disintegration/imaging"
)

// minOCRWidth is the smallest width at which Tesseract reads MRZ glyphs
// reliably on phone photos; smaller inputs are upscaled to it.
const minOCRWidth = 1600

// preprocess decodes a raw image and normalizes it for OCR: upscale to at
// least minOCRWidth, per-pixel luminance, contrast stretch around mid-gray,
// then a hard ±20 push away from the midpoint. Returns the result re-encoded
// as PNG for the engine.
func preprocess(raw RawImage) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(raw.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if img.Bounds().Dx() < minOCRWidth {
		img = imaging.Resize(img, minOCRWidth, 0, imaging.Lanczos)
	}
	gray := imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		y := 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
		y = (y-128)*1.5 + 128
		if y < 128 {
			y -= 20
		} else {
			y += 20
		}
		if y < 0 {
			y = 0
		} else if y > 255 {
			y = 255
		}
		v := uint8(y)
		return color.NRGBA{R: v, G: v, B: v, A: 255}
	})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, gray, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode preprocessed image: %w", err)
	}
	return buf.Bytes(), nil
}
