package passport

import (
	"regexp"
	"strings"
)

// CorrectionTable is the OCR-confusion repair data applied to MRZ fragments
// and free text. The default entries are tuned to the Latin-script,
// largely West-African passports seen in production; other locales can
// supply their own table through WithCorrections without touching the
// pipeline logic.
type CorrectionTable struct {
	// DigitFor repairs a letter misread inside a numeric context.
	DigitFor map[byte]byte
	// LetterFor repairs a digit misread inside an alphabetic context.
	LetterFor map[byte]byte
	// NameRules rehydrate name fragments the OCR tends to drop characters
	// from. Ordered; applied left-to-right.
	NameRules []NameRule
}

// NameRule rewrites a name token matching Pattern.
type NameRule struct {
	Pattern *regexp.Regexp
	Replace string
}

// DefaultCorrections mirrors the confusions observed in the source data.
var DefaultCorrections = &CorrectionTable{
	DigitFor: map[byte]byte{
		'O': '0', 'D': '0', 'Q': '0',
		'I': '1', 'L': '1',
		'S': '5',
		'B': '8',
		'Z': '2',
	},
	LetterFor: map[byte]byte{
		'0': 'O',
		'1': 'I',
		'5': 'S',
		'8': 'B',
		'2': 'Z',
	},
	NameRules: []NameRule{
		// A leading "OA" followed by a consonant is a dropped L ("OLA...").
		{Pattern: regexp.MustCompile(`^OA([BCDFGHJKLMNPQRSTVWXYZ])`), Replace: "OLA$1"},
	},
}

// repairNumeric undoes letter-for-digit confusions in a field that can only
// hold digits (dates, check digits). Filler characters pass through.
func (t *CorrectionTable) repairNumeric(s string) string {
	b := []byte(s)
	for i, c := range b {
		if d, ok := t.DigitFor[c]; ok {
			b[i] = d
		}
	}
	return string(b)
}

// repairAlpha undoes digit-for-letter confusions in a letters-only field
// (nationality, issuing state, names, sex).
func (t *CorrectionTable) repairAlpha(s string) string {
	b := []byte(s)
	for i, c := range b {
		if l, ok := t.LetterFor[c]; ok {
			b[i] = l
		}
	}
	return string(b)
}

// repairAlnum handles mixed fields (the TD3 document number): a confusable
// letter next to a digit is read as the digit, a confusable digit between
// letters is read as the letter.
func (t *CorrectionTable) repairAlnum(s string) string {
	isDigit := func(c byte) bool { return c >= '0' && c <= '9' }
	isAlpha := func(c byte) bool { return c >= 'A' && c <= 'Z' }
	b := []byte(s)
	for i, c := range b {
		var prev, next byte
		if i > 0 {
			prev = b[i-1]
		}
		if i < len(b)-1 {
			next = b[i+1]
		}
		if d, ok := t.DigitFor[c]; ok && (isDigit(prev) || isDigit(next)) {
			b[i] = d
			continue
		}
		if l, ok := t.LetterFor[c]; ok && isAlpha(prev) && isAlpha(next) {
			b[i] = l
		}
	}
	return string(b)
}

// applyNameRules runs the locale-specific rehydration rules over one token.
func (t *CorrectionTable) applyNameRules(token string) string {
	for _, r := range t.NameRules {
		token = r.Pattern.ReplaceAllString(token, r.Replace)
	}
	return token
}

// collapseRuns reduces any run of three or more identical characters to a
// single one; runs that long are recognition corruption, not content.
func collapseRuns(s string) string {
	var sb strings.Builder
	run := 0
	for i := 0; i < len(s); i++ {
		if i > 0 && s[i] == s[i-1] {
			run++
		} else {
			run = 1
		}
		if run < 3 {
			sb.WriteByte(s[i])
		} else if run == 3 {
			// the run is corruption: unwrite the duplicate kept at run==2
			out := sb.String()
			sb.Reset()
			sb.WriteString(out[:len(out)-1])
		}
	}
	return sb.String()
}

// isNoiseToken reports whether a token is pure OCR artifact: too short to be
// a name, or four-plus repeats of one character.
func isNoiseToken(tok string) bool {
	if len(tok) <= 1 {
		return true
	}
	if len(tok) >= 4 {
		same := true
		for i := 1; i < len(tok); i++ {
			if tok[i] != tok[0] {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}
