package passport

import "testing"

func TestConfidenceFor(t *testing.T) {
	cases := map[int]int{0: 0, 1: 14, 2: 29, 3: 43, 4: 57, 5: 71, 6: 86, 7: 100}
	for filled, want := range cases {
		if got := confidenceFor(filled); got != want {
			t.Errorf("confidenceFor(%d) = %d, want %d", filled, got, want)
		}
	}
}

func TestPartialPenaltyFloor(t *testing.T) {
	if got := partialPenalty(100); got != 80 {
		t.Errorf("partialPenalty(100) = %d, want 80", got)
	}
	if got := partialPenalty(43); got != 30 {
		t.Errorf("partialPenalty(43) = %d, want floor 30", got)
	}
	if got := partialPenalty(51); got != 31 {
		t.Errorf("partialPenalty(51) = %d, want 31", got)
	}
}
