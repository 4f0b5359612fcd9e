package passport

import "math"

// canonicalFieldCount is the denominator for the confidence score: the seven
// fields a complete record carries.
const canonicalFieldCount = 7

// confidenceFor maps a filled-field count to the 0-100 confidence score.
// This is the only place confidence is computed; the score reflects field
// completeness, not any probability from the OCR engine.
func confidenceFor(filled int) int {
	return int(math.Round(float64(filled) / canonicalFieldCount * 100))
}

// partialPenalty applies the failed-checksum discount: a mismatched check
// digit means at least one character was misread, so the score drops by 20
// points with a floor of 30 (the structure was still parseable).
func partialPenalty(confidence int) int {
	confidence -= 20
	if confidence < 30 {
		confidence = 30
	}
	return confidence
}
