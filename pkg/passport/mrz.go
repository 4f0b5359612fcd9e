package passport

import (
	"fmt"
	"strconv"
	"strings"
)

// TD3 line-2 field offsets (ICAO Doc 9303 part 4).
const (
	posDocNum      = 0  // 9 chars
	posDocNumCheck = 9
	posNationality = 10 // 3 chars
	posBirth       = 13 // 6 chars
	posBirthCheck  = 19
	posSex         = 20
	posExpiry      = 21 // 6 chars
	posExpiryCheck = 27
	posPersonal    = 28 // 14 chars
	posPersCheck   = 42
	posComposite   = 43
)

// checkWeights is the ICAO 9303 weight cycle for check digits.
var checkWeights = [3]int{7, 3, 1}

// checkDigit computes the weighted mod-10 check digit over s: digits keep
// their value, A-Z map to 10–35, filler counts zero.
func checkDigit(s string) int {
	sum := 0
	for i := 0; i < len(s); i++ {
		v := 0
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			v = int(c - '0')
		case c >= 'A' && c <= 'Z':
			v = int(c-'A') + 10
		}
		sum += v * checkWeights[i%3]
	}
	return sum % 10
}

func digitMatches(field string, digit byte) bool {
	return digit >= '0' && digit <= '9' && checkDigit(field) == int(digit-'0')
}

// ParseTD3 parses two normalized 44-character MRZ lines into typed fields
// and revalidates every ICAO check digit. Before validation the line-2
// positions are repaired per field context, since the locator's confusion
// fold cannot know which positions are numeric.
//
// Outcomes: all check digits match → FullyValid; a mismatch with the
// structural core intact (document number ≥7 chars and surname or a
// six-digit birth date) → PartiallyValid, the fields are still usable;
// anything less → Unparseable, caller should fall back to free text.
func ParseTD3(line1, line2 string, rules *CorrectionTable) ParseResult {
	if rules == nil {
		rules = DefaultCorrections
	}
	line1 = padTD3(line1)
	line2 = repairLine2(padTD3(line2))

	f := MRZFields{
		DocumentType:   stripFiller(line1[0:2]),
		IssuingState:   rules.repairAlpha(stripFiller(line1[2:5])),
		DocumentNumber: stripFiller(line2[posDocNum : posDocNum+9]),
		Nationality:    stripFiller(line2[posNationality : posNationality+3]),
		BirthDate:      line2[posBirth : posBirth+6],
		ExpiryDate:     line2[posExpiry : posExpiry+6],
		PersonalNumber: stripFiller(line2[posPersonal : posPersonal+14]),
	}
	if sex := line2[posSex]; sex == 'M' || sex == 'F' {
		f.Sex = string(sex)
	}
	surRaw, givRaw, _ := strings.Cut(line1[5:], "<<")
	f.Surname = cleanName(surRaw, rules)
	f.GivenNames = cleanName(givRaw, rules)

	docOK := digitMatches(line2[posDocNum:posDocNum+9], line2[posDocNumCheck])
	birthOK := digitMatches(line2[posBirth:posBirth+6], line2[posBirthCheck])
	expiryOK := digitMatches(line2[posExpiry:posExpiry+6], line2[posExpiryCheck])
	persOK := personalCheckOK(line2[posPersonal:posPersonal+14], line2[posPersCheck])
	composite := line2[posDocNum:posDocNumCheck+1] + line2[posBirth:posSex] + line2[posExpiry:posComposite]
	compOK := digitMatches(composite, line2[posComposite])

	if docOK && birthOK && expiryOK && persOK && compOK {
		return ParseResult{Status: ParseFullyValid, Fields: f}
	}
	if len(f.DocumentNumber) >= 7 && (f.Surname != "" || isSixDigits(f.BirthDate)) {
		return ParseResult{
			Status: ParsePartiallyValid,
			Fields: f,
			Reason: checkFailures(docOK, birthOK, expiryOK, persOK, compOK),
		}
	}
	return ParseResult{Status: ParseUnparseable}
}

// foldTable inverts only the substitutions the line normalizer makes
// (1 folded to I, O folded to 0). The full confusion table must not run
// here: it would rewrite characters the normalizer never touched and
// corrupt valid lines (a real B-series document number has to survive
// untouched).
var foldTable = &CorrectionTable{
	DigitFor:  map[byte]byte{'I': '1'},
	LetterFor: map[byte]byte{'0': 'O'},
}

// repairLine2 undoes the normalizer's confusion fold position by position:
// numeric cells map I back to 1, the nationality code maps 0 back to O.
// The mixed document and personal numbers are genuinely ambiguous, so their
// repair is checksum-guided: a field whose check digit already passes is
// left alone.
func repairLine2(line2 string) string {
	b := []byte(line2)
	repair := func(from, to int, f func(string) string) {
		copy(b[from:to], f(string(b[from:to])))
	}
	repair(posDocNumCheck, posDocNumCheck+1, foldTable.repairNumeric)
	repair(posNationality, posNationality+3, foldTable.repairAlpha)
	repair(posBirth, posBirthCheck+1, foldTable.repairNumeric)
	repair(posExpiry, posExpiryCheck+1, foldTable.repairNumeric)
	repair(posPersCheck, posComposite+1, foldTable.repairNumeric)
	if !digitMatches(string(b[posDocNum:posDocNum+9]), b[posDocNumCheck]) {
		repair(posDocNum, posDocNum+9, foldTable.repairAlnum)
	}
	if !personalCheckOK(string(b[posPersonal:posPersonal+14]), b[posPersCheck]) {
		repair(posPersonal, posPersonal+14, foldTable.repairAlnum)
	}
	return string(b)
}

// personalCheckOK validates the optional personal-number field; when the
// field is all filler its check digit may legitimately be '<' or '0'.
func personalCheckOK(personal string, digit byte) bool {
	if stripFiller(personal) == "" {
		return digit == '<' || digit == '0'
	}
	return digitMatches(personal, digit)
}

func checkFailures(docOK, birthOK, expiryOK, persOK, compOK bool) string {
	var bad []string
	for _, c := range []struct {
		ok   bool
		name string
	}{
		{docOK, "document"}, {birthOK, "birth"}, {expiryOK, "expiry"},
		{persOK, "personal"}, {compOK, "composite"},
	} {
		if !c.ok {
			bad = append(bad, c.name)
		}
	}
	return "check digit mismatch: " + strings.Join(bad, ",")
}

// cleanName turns a raw `<`-delimited MRZ name fragment into display form:
// chevrons become spaces, noise tokens are discarded, digit confusions and
// the locale name rules are applied per token.
func cleanName(raw string, rules *CorrectionTable) string {
	raw = strings.Trim(raw, "<")
	var kept []string
	for _, tok := range strings.FieldsFunc(raw, func(r rune) bool { return r == '<' }) {
		tok = rules.repairAlpha(collapseRuns(tok))
		if isNoiseToken(tok) {
			continue
		}
		kept = append(kept, rules.applyNameRules(tok))
	}
	return strings.Join(kept, " ")
}

func padTD3(s string) string {
	if len(s) >= td3LineLen {
		return s[:td3LineLen]
	}
	return s + strings.Repeat("<", td3LineLen-len(s))
}

func stripFiller(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "<", ""))
}

func isSixDigits(s string) bool {
	if len(s) != 6 {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil
}

// mrzDateToISO converts YYMMDD to ISO 8601 using the source's pivot:
// YY ≤ 30 reads as 20YY, otherwise 19YY. The same pivot serves birth and
// expiry dates even though realistic holders would want different ones.
func mrzDateToISO(yymmdd string) (string, bool) {
	if !isSixDigits(yymmdd) {
		return "", false
	}
	yy, _ := strconv.Atoi(yymmdd[0:2])
	year := 1900 + yy
	if yy <= 30 {
		year = 2000 + yy
	}
	return fmt.Sprintf("%04d-%s-%s", year, yymmdd[2:4], yymmdd[4:6]), true
}
