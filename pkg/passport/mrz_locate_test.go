package passport

import (
	"strings"
	"testing"
)

func TestLocateMRZLines(t *testing.T) {
	text := strings.Join([]string{
		"FEDERAL REPUBLIC OF NIGERIA",
		"PASSPORT",
		"P<NGADOE<<JANE<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<",
		"A123456784NGA9001011F3001019<<<<<<<<<<<<<<08",
		"some trailing prose that should not qualify at all",
	}, "\n")
	lines := LocateMRZLines(text)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %v", len(lines), lines)
	}
	for i, l := range lines {
		if len(l) != td3LineLen {
			t.Errorf("line %d length = %d, want %d", i, len(l), td3LineLen)
		}
	}
	if !strings.HasPrefix(lines[0], "P<NGAD0E<<JANE") {
		t.Errorf("line 1 not normalized: %q", lines[0])
	}
}

func TestLocateMRZLinesNormalization(t *testing.T) {
	// Spaces stripped, pipe/l/1 folded to I, O folded to 0, junk removed,
	// short line padded with filler.
	in := "p<ngad|oe<< ja l1ne*<<<<<<<<<<<<<<<<"
	lines := LocateMRZLines(in)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	l := lines[0]
	if len(l) != td3LineLen {
		t.Fatalf("length = %d", len(l))
	}
	if strings.ContainsAny(l, " *|l1abcdefghijklmnopqrstuvwxyz") {
		t.Errorf("line not normalized: %q", l)
	}
}

func TestLocateMRZLinesRejectsProse(t *testing.T) {
	text := "this line mentions a < and another < but is ordinary prose, too noisy"
	if lines := LocateMRZLines(text); len(lines) != 0 {
		t.Fatalf("prose accepted as MRZ: %v", lines)
	}
	if lines := LocateMRZLines("no chevrons whatsoever"); len(lines) != 0 {
		t.Fatalf("unexpected lines: %v", lines)
	}
}

func TestLocateMRZLinesKeepsFirstTwo(t *testing.T) {
	mrz := "A123456784NGA9001011F3001019<<<<<<<<<<<<<<08"
	text := strings.Join([]string{mrz, mrz, mrz}, "\n")
	if lines := LocateMRZLines(text); len(lines) != 2 {
		t.Fatalf("got %d lines, want cap of 2", len(lines))
	}
}
