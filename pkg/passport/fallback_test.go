package passport

import (
	"strings"
	"testing"
)

func TestFallbackReadableText(t *testing.T) {
	text := strings.Join([]string{
		"FEDERAL REPUBLIC",
		"PASSPORT NO: B87654321",
		"NATIONALITY: NIGERIA",
		"DATE OF BIRTH: 17 SEP 87",
	}, "\n")
	rec, ok := extractFromText(text, nil, nil)
	if !ok {
		t.Fatal("fallback returned no result")
	}
	if rec.PassportNumber != "B87654321" {
		t.Errorf("passport number = %q", rec.PassportNumber)
	}
	if rec.Nationality != "Nigeria" {
		t.Errorf("nationality = %q", rec.Nationality)
	}
	if rec.DateOfBirth != "1987-09-17" {
		t.Errorf("date of birth = %q", rec.DateOfBirth)
	}
	if rec.MRZValid {
		t.Error("fallback result marked mrzValid")
	}
	if rec.Confidence != 43 { // round(3/7*100)
		t.Errorf("confidence = %d, want 43", rec.Confidence)
	}
}

func TestFallbackFloor(t *testing.T) {
	// Fewer than 2 fields: unusable.
	if _, ok := extractFromText("PASSPORT NO: B87654321", nil, nil); ok {
		t.Error("single field accepted")
	}
	// Two fields but neither passport number nor birth date: unusable.
	text := "NATIONALITY: NIGERIA\nSEX: M"
	if rec, ok := extractFromText(text, nil, nil); ok {
		t.Errorf("accepted without anchor fields: %+v", rec)
	}
}

func TestFallbackLabeledNamesAndSex(t *testing.T) {
	text := strings.Join([]string{
		"SURNAME",
		"DOE",
		"GIVEN NAMES",
		"JANE",
		"SEX: F",
		"PASSPORT NO: A12345678",
	}, "\n")
	rec, ok := extractFromText(text, nil, nil)
	if !ok {
		t.Fatal("fallback returned no result")
	}
	if rec.LastName != "DOE" || rec.FirstName != "JANE" {
		t.Errorf("names = %q/%q", rec.LastName, rec.FirstName)
	}
	if rec.Sex != "female" {
		t.Errorf("sex = %q", rec.Sex)
	}
	if rec.PassportNumber != "A12345678" {
		t.Errorf("passport number = %q", rec.PassportNumber)
	}
}

func TestFallbackExpiryYearAlwaysCurrentCentury(t *testing.T) {
	text := "PASSPORT NO: A12345678\nDATE OF EXPIRY: 05 MAR 29"
	rec, ok := extractFromText(text, nil, nil)
	if !ok {
		t.Fatal("fallback returned no result")
	}
	if rec.ExpiryDate != "2029-03-05" {
		t.Errorf("expiry = %q", rec.ExpiryDate)
	}
}

func TestFallbackMRZAdjacentBirthDate(t *testing.T) {
	// The fragment reaches the fallback through the locator, so every 1 is
	// already folded to I; recovery must still read the birth date.
	lines := LocateMRZLines("A123456784NGA9001011F3001019<<<<<<<<<<<<<<08")
	if len(lines) != 1 {
		t.Fatalf("locator returned %d lines, want 1", len(lines))
	}
	if !strings.Contains(lines[0], "I") {
		t.Fatalf("fragment not folded: %q", lines[0])
	}
	text := "NATIONALITY: NIGERIA\nPASSPORT NO: A12345678"
	rec, ok := extractFromText(text, lines, nil)
	if !ok {
		t.Fatal("fallback returned no result")
	}
	if rec.DateOfBirth != "1990-01-01" {
		t.Errorf("date of birth = %q", rec.DateOfBirth)
	}
}

func TestFallbackMonthMisreadings(t *testing.T) {
	// Tesseract swaps 0 for O; the month token gets the alpha repair.
	text := "PASSPORT NO: A12345678\nDATE OF BIRTH: 03 0CT 92"
	rec, ok := extractFromText(text, nil, nil)
	if !ok {
		t.Fatal("fallback returned no result")
	}
	if rec.DateOfBirth != "1992-10-03" {
		t.Errorf("date of birth = %q", rec.DateOfBirth)
	}
}
