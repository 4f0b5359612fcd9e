package passport

import (
	"context"
	"fmt"
	"strings"
)

// Engine is the swappable recognition capability: one preprocessed PNG in,
// raw text out, under a given page-segmentation assumption. Implementations
// own whatever model/worker state recognition needs; Close releases it.
// An Engine is not required to be safe for concurrent use.
type Engine interface {
	Recognize(ctx context.Context, png []byte, mode PageSegMode) (string, error)
	Close() error
}

// passModes are the three segmentation assumptions tried per image. Different
// passport layouts favor different heuristics; the longest output wins.
var passModes = [...]PageSegMode{SegSingleBlock, SegAuto, SegSingleColumn}

// minUsableText is the character floor below which an image is considered
// fundamentally unreadable.
const minUsableText = 50

// bestOCRText runs all segmentation passes and keeps the longest output.
// Length is a crude but order-independent proxy for recognition completeness;
// ties keep the first pass seen so the result stays deterministic.
func bestOCRText(ctx context.Context, eng Engine, png []byte) (string, error) {
	best := ""
	for _, mode := range passModes {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := eng.Recognize(ctx, png, mode)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
		}
		if len(text) > len(best) {
			best = text
		}
	}
	if len(strings.TrimSpace(best)) < minUsableText {
		return "", ErrTextTooSparse
	}
	return best, nil
}
