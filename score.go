package coach

import (
	"strconv"

	"github.com/discochess/coach/internal/oracle"
)

// MateScore is the saturating centipawn magnitude assigned to forced mates.
// Mate scores are "more extreme than any finite advantage"; two different
// mate distances are never compared quantitatively, only by sign.
const MateScore = 10000

// Score is a position evaluation from White's perspective.
type Score struct {
	// Centipawns is the evaluation in centipawns. Positive favors White.
	// Ignored for comparison when Mate is set, except to carry the sign
	// of a mate already on the board (distance zero).
	Centipawns int

	// Mate is the forced-mate distance in moves, positive when White
	// mates. Nil when there is no forced mate.
	Mate *int
}

// NewScore builds a Score from optional centipawn and mate components, the
// shape engine lines report evaluations in. A mate overrides the centipawn
// value with the saturating extreme.
func NewScore(cp, mate *int) Score {
	s := Score{}
	if cp != nil {
		s.Centipawns = *cp
	}
	if mate != nil {
		m := *mate
		s.Mate = &m
		if m > 0 {
			s.Centipawns = MateScore
		} else if m < 0 {
			s.Centipawns = -MateScore
		}
	}
	return s
}

// scoreFromCandidate converts an oracle candidate to a Score.
func scoreFromCandidate(c oracle.Candidate) Score {
	return NewScore(c.CP, c.Mate)
}

// MateDelivered is the terminal score after a mating move: mate distance
// zero, sign carried by the saturated centipawn value.
func MateDelivered(byWhite bool) Score {
	zero := 0
	cp := MateScore
	if !byWhite {
		cp = -MateScore
	}
	return Score{Centipawns: cp, Mate: &zero}
}

// Signed returns the comparable signed value: the raw centipawn score, or the
// saturating extreme for a forced mate.
func (s Score) Signed() int {
	if s.Mate != nil {
		switch {
		case *s.Mate > 0:
			return MateScore
		case *s.Mate < 0:
			return -MateScore
		default:
			// Mate on the board; sign was recorded in Centipawns.
			return s.Centipawns
		}
	}
	return s.Centipawns
}

// IsMate reports whether the score is a forced mate.
func (s Score) IsMate() bool {
	return s.Mate != nil
}

// String renders "#N" / "#-N" for mates and the centipawn value divided by
// 100 with two decimals otherwise: "0.35", "-1.20".
func (s Score) String() string {
	if s.Mate != nil {
		if *s.Mate == 0 && s.Centipawns < 0 {
			return "#-0"
		}
		return "#" + strconv.Itoa(*s.Mate)
	}
	return strconv.FormatFloat(float64(s.Centipawns)/100, 'f', 2, 64)
}
