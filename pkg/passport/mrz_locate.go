package passport

import "strings"

// td3LineLen is the fixed width of a TD3 machine-readable line.
const td3LineLen = 44

// LocateMRZLines scans raw OCR text for up to two candidate MRZ lines, in
// document order. A line qualifies when it carries at least two filler
// chevrons, its length sits in a plausible window around 44, and more than
// 70% of it survives restriction to the MRZ character set (tolerates OCR
// noise without accepting prose). Qualifying lines come back normalized to
// exactly 44 characters of [A-Z0-9<].
//
// Finding fewer than two lines is not an error; it signals the free-text
// fallback path.
func LocateMRZLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.Count(line, "<") < 2 {
			continue
		}
		if len(line) < 30 || len(line) > 60 {
			continue
		}
		kept := mrzCharset(strings.ToUpper(line))
		if float64(len(kept)) <= 0.7*float64(len(line)) {
			continue
		}
		out = append(out, normalizeMRZLine(line))
		if len(out) == 2 {
			break
		}
	}
	return out
}

// normalizeMRZLine folds the glyph shapes Tesseract most often trades inside
// MRZ strips, uppercases, drops everything outside the MRZ alphabet, and
// pads/truncates to the TD3 width. Context-aware repair of the surviving
// I/0 ambiguity belongs to the parser, which knows which positions are
// numeric.
func normalizeMRZLine(line string) string {
	folded := strings.Map(func(r rune) rune {
		switch r {
		case '|', 'l', '1', 'I', 'i':
			return 'I'
		case 'O', 'o':
			return '0'
		case ' ', '\t':
			return -1
		default:
			return r
		}
	}, line)
	s := mrzCharset(strings.ToUpper(folded))
	if len(s) > td3LineLen {
		return s[:td3LineLen]
	}
	return s + strings.Repeat("<", td3LineLen-len(s))
}

// mrzCharset strips all characters outside [A-Z0-9<].
func mrzCharset(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '<' {
			return r
		}
		return -1
	}, s)
}
