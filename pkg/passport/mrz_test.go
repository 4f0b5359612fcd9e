package passport

import (
	"strconv"
	"strings"
	"testing"
)

// buildTD3 assembles a synthetic valid TD3 pair with correct check digits.
func buildTD3(surname, given, docNum, nationality, birth, sex, expiry string) (string, string) {
	return buildTD3Personal(surname, given, docNum, nationality, birth, sex, expiry, "")
}

func buildTD3Personal(surname, given, docNum, nationality, birth, sex, expiry, personal string) (string, string) {
	digit := func(s string) string { return strconv.Itoa(checkDigit(s)) }
	line1 := padTD3("P<" + nationality + surname + "<<" + strings.ReplaceAll(given, " ", "<"))
	doc9 := padField(docNum, 9)
	pers := padField(personal, 14)
	l2 := doc9 + digit(doc9) + nationality + birth + digit(birth) + sex + expiry + digit(expiry) + pers + digit(pers)
	composite := l2[0:10] + l2[13:20] + l2[21:43]
	return line1, l2 + digit(composite)
}

func padField(s string, n int) string {
	if len(s) >= n {
		return s[:n]
	}
	return s + strings.Repeat("<", n-len(s))
}

func TestCheckDigitKnownValue(t *testing.T) {
	// ICAO Doc 9303 worked example: 740812 -> 2.
	if d := checkDigit("740812"); d != 2 {
		t.Fatalf("checkDigit(740812) = %d, want 2", d)
	}
	if d := checkDigit(strings.Repeat("<", 14)); d != 0 {
		t.Fatalf("filler check digit = %d, want 0", d)
	}
}

func TestParseTD3FullyValid(t *testing.T) {
	l1, l2 := buildTD3("DOE", "JANE", "A12345678", "NGA", "900101", "F", "300101")
	res := ParseTD3(l1, l2, nil)
	if res.Status != ParseFullyValid {
		t.Fatalf("status = %v reason=%q, want FullyValid", res.Status, res.Reason)
	}
	f := res.Fields
	if f.Surname != "DOE" || f.GivenNames != "JANE" {
		t.Errorf("names = %q/%q", f.Surname, f.GivenNames)
	}
	if f.DocumentNumber != "A12345678" {
		t.Errorf("document number = %q", f.DocumentNumber)
	}
	if f.Nationality != "NGA" || f.Sex != "F" {
		t.Errorf("nationality/sex = %q/%q", f.Nationality, f.Sex)
	}
	if f.BirthDate != "900101" || f.ExpiryDate != "300101" {
		t.Errorf("dates = %q/%q", f.BirthDate, f.ExpiryDate)
	}
}

func TestParseTD3RepairsConfusionFold(t *testing.T) {
	// The locator folds 1->I and O->0 uniformly; the parser must undo that
	// per field context before recomputing check digits.
	l1, l2 := buildTD3("DOE", "JANE", "A12345678", "NGA", "900101", "F", "300101")
	folded1 := strings.Map(func(r rune) rune {
		if r == 'O' {
			return '0'
		}
		return r
	}, l1)
	folded2 := strings.Map(func(r rune) rune {
		if r == '1' {
			return 'I'
		}
		return r
	}, l2)
	res := ParseTD3(folded1, folded2, nil)
	if res.Status != ParseFullyValid {
		t.Fatalf("status = %v reason=%q, want FullyValid after repair", res.Status, res.Reason)
	}
	if res.Fields.Surname != "DOE" || res.Fields.DocumentNumber != "A12345678" {
		t.Errorf("repair gave %q/%q", res.Fields.Surname, res.Fields.DocumentNumber)
	}
	if res.Fields.BirthDate != "900101" {
		t.Errorf("birth date = %q", res.Fields.BirthDate)
	}
}

func TestParseTD3ConfusableSeriesUntouched(t *testing.T) {
	// Characters the free-text confusion table also maps (B, S, Z, 8, 5, 2)
	// must survive the parse when the check digits already pass.
	l1, l2 := buildTD3("BELLO", "MUSA", "B87654321", "NGA", "870917", "M", "280915")
	res := ParseTD3(l1, l2, nil)
	if res.Status != ParseFullyValid {
		t.Fatalf("status = %v reason=%q, want FullyValid", res.Status, res.Reason)
	}
	if res.Fields.DocumentNumber != "B87654321" {
		t.Errorf("document number = %q, want B87654321", res.Fields.DocumentNumber)
	}
	if res.Fields.Surname != "BELLO" || res.Fields.BirthDate != "870917" {
		t.Errorf("fields mangled: %+v", res.Fields)
	}
}

func TestParseTD3PersonalNumberSurvivesFold(t *testing.T) {
	// A non-filler personal number containing 1s arrives I-folded from the
	// locator; its body must be repaired with the rest of the line.
	l1, l2 := buildTD3Personal("DOE", "JANE", "A12345678", "NGA", "900101", "F", "300101", "19900101120")
	folded := strings.Map(func(r rune) rune {
		if r == '1' {
			return 'I'
		}
		return r
	}, l2)
	res := ParseTD3(l1, folded, nil)
	if res.Status != ParseFullyValid {
		t.Fatalf("status = %v reason=%q, want FullyValid after repair", res.Status, res.Reason)
	}
	if res.Fields.PersonalNumber != "19900101120" {
		t.Errorf("personal number = %q, want 19900101120", res.Fields.PersonalNumber)
	}
}

func TestParseTD3SingleFlipStillPartial(t *testing.T) {
	l1, l2 := buildTD3("DOE", "JANE", "A12345678", "NGA", "900101", "F", "300101")
	// Flip one expiry digit: its check digit (and the composite) no longer
	// match, but document number and surname survive.
	b := []byte(l2)
	b[posExpiry+5] = '2'
	res := ParseTD3(l1, string(b), nil)
	if res.Status != ParsePartiallyValid {
		t.Fatalf("status = %v, want PartiallyValid", res.Status)
	}
	if res.Reason == "" {
		t.Error("expected a mismatch reason")
	}
	if res.Fields.DocumentNumber != "A12345678" || res.Fields.Surname != "DOE" {
		t.Errorf("structural fields lost: %+v", res.Fields)
	}
}

func TestParseTD3Unparseable(t *testing.T) {
	res := ParseTD3(strings.Repeat("<", 44), strings.Repeat("<", 44), nil)
	if res.Status != ParseUnparseable {
		t.Fatalf("status = %v, want Unparseable", res.Status)
	}
}

func TestParseTD3NameNoise(t *testing.T) {
	// Single-char tokens and 4+ repeats of one character are OCR artifacts.
	l1, l2 := buildTD3("DOE", "JANE<K<XXXX", "A12345678", "NGA", "900101", "F", "300101")
	res := ParseTD3(l1, l2, nil)
	if res.Status == ParseUnparseable {
		t.Fatal("unexpected unparseable")
	}
	if res.Fields.GivenNames != "JANE" {
		t.Errorf("given names = %q, want JANE", res.Fields.GivenNames)
	}
}

func TestMRZDatePivot(t *testing.T) {
	cases := map[string]string{
		"000101": "2000-01-01",
		"300101": "2030-01-01",
		"310101": "1931-01-01",
		"990101": "1999-01-01",
	}
	for in, want := range cases {
		got, ok := mrzDateToISO(in)
		if !ok || got != want {
			t.Errorf("mrzDateToISO(%s) = %q ok=%v, want %q", in, got, ok, want)
		}
	}
	if _, ok := mrzDateToISO("9001<1"); ok {
		t.Error("non-digit date accepted")
	}
}
