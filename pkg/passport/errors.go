package passport

import "errors"

var (
	// ErrDecode means the input bytes could not be decoded as a raster image.
	ErrDecode = errors.New("image decode failed")
	// ErrEngineUnavailable means the OCR engine failed to initialize or run.
	ErrEngineUnavailable = errors.New("ocr engine unavailable")
	// ErrTextTooSparse means recognized text fell below the usability floor.
	ErrTextTooSparse = errors.New("ocr text too sparse")
	// ErrNoUsableFields means both the MRZ and fallback paths came up empty.
	ErrNoUsableFields = errors.New("no usable passport fields")
)
