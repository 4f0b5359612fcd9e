package passport

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine implements Engine over a single gosseract client. The
// client (and the trained model it loads) lives from NewTesseractEngine
// until Close, so one handle serves all passes of an extraction.
type TesseractEngine struct {
	client *gosseract.Client
}

// NewTesseractEngine acquires a Tesseract client configured for passport
// pages (English traineddata, interword spaces preserved).
func NewTesseractEngine() (*TesseractEngine, error) {
	client := gosseract.NewClient()
	if err := client.SetLanguage("eng"); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: set language: %v", ErrEngineUnavailable, err)
	}
	if err := client.SetVariable("preserve_interword_spaces", "1"); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: set variable: %v", ErrEngineUnavailable, err)
	}
	return &TesseractEngine{client: client}, nil
}

func (e *TesseractEngine) Recognize(ctx context.Context, png []byte, mode PageSegMode) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := e.client.SetPageSegMode(gosseractMode(mode)); err != nil {
		return "", fmt.Errorf("set page seg mode: %w", err)
	}
	if err := e.client.SetImageFromBytes(png); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	return text, nil
}

// Close releases the client and its loaded model.
func (e *TesseractEngine) Close() error {
	return e.client.Close()
}

func gosseractMode(mode PageSegMode) gosseract.PageSegMode {
	switch mode {
	case SegAuto:
		return gosseract.PSM_AUTO
	case SegSingleColumn:
		return gosseract.PSM_SINGLE_COLUMN
	default:
		return gosseract.PSM_SINGLE_BLOCK
	}
}
