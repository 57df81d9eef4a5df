package coach

import (
	"testing"

	"github.com/discochess/coach/internal/oracle"
)

func intp(v int) *int { return &v }

func TestScoreString(t *testing.T) {
	tests := []struct {
		name  string
		score Score
		want  string
	}{
		{"positive centipawns", Score{Centipawns: 35}, "0.35"},
		{"negative centipawns", Score{Centipawns: -120}, "-1.20"},
		{"zero", Score{}, "0.00"},
		{"no plus sign", Score{Centipawns: 650}, "6.50"},
		{"white mates", Score{Centipawns: MateScore, Mate: intp(3)}, "#3"},
		{"black mates", Score{Centipawns: -MateScore, Mate: intp(-2)}, "#-2"},
		{"mate on board for white", MateDelivered(true), "#0"},
		{"mate on board for black", MateDelivered(false), "#-0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.score.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScoreSignedSaturation(t *testing.T) {
	tests := []struct {
		name  string
		score Score
		want  int
	}{
		{"plain", Score{Centipawns: 42}, 42},
		{"mate in 1", Score{Mate: intp(1)}, MateScore},
		{"mate in 9", Score{Mate: intp(9)}, MateScore},
		{"mated in 2", Score{Mate: intp(-2)}, -MateScore},
		{"delivered by white", MateDelivered(true), MateScore},
		{"delivered by black", MateDelivered(false), -MateScore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.score.Signed(); got != tt.want {
				t.Errorf("Signed() = %d, want %d", got, tt.want)
			}
		})
	}

	// Different mate distances on the same side must compare equal:
	// shortening a forced mate is never a quality drop.
	if (Score{Mate: intp(1)}).Signed() != (Score{Mate: intp(9)}).Signed() {
		t.Error("mate distances on the same side should saturate to the same value")
	}
}

func TestScoreFromCandidate(t *testing.T) {
	s := scoreFromCandidate(oracle.Candidate{CP: intp(37)})
	if s.Signed() != 37 || s.IsMate() {
		t.Errorf("cp candidate: got %+v", s)
	}

	s = scoreFromCandidate(oracle.Candidate{Mate: intp(-4)})
	if !s.IsMate() || s.Signed() != -MateScore {
		t.Errorf("mate candidate: got %+v", s)
	}
	if s.String() != "#-4" {
		t.Errorf("mate candidate String() = %q, want %q", s.String(), "#-4")
	}
}
