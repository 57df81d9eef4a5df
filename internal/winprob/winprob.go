// Package winprob maps centipawn evaluations to win probabilities.
//
// Raw centipawn differences are not comparable across game phases: a 100cp
// swing near equality matters far more than a 100cp swing in a position that
// is already winning. A logistic transform into probability space linearizes
// practical significance, which is what the drop-based move classifier wants.
package winprob

import "math"

// DefaultScale is the logistic scale constant in centipawns.
const DefaultScale = 110

// Model converts mover-perspective centipawn scores into win probabilities
// via p = 1 / (1 + exp(-cp/scale)).
type Model struct {
	scale float64
}

// New returns a Model with the given scale. Non-positive scales fall back to
// DefaultScale.
func New(scale float64) Model {
	if scale <= 0 {
		scale = DefaultScale
	}
	return Model{scale: scale}
}

// Default returns a Model with DefaultScale.
func Default() Model {
	return New(DefaultScale)
}

// Probability returns the win probability for a mover-perspective centipawn
// score. The result is strictly inside (0,1), monotonic in cp, and 0.5 at 0.
func (m Model) Probability(cp int) float64 {
	p := 1 / (1 + math.Exp(-float64(cp)/m.scale))
	// Guard the open-interval invariant against float underflow at the
	// mate-saturated extremes.
	if p <= 0 {
		return math.SmallestNonzeroFloat64
	}
	if p >= 1 {
		return 1 - 1e-16
	}
	return p
}

// ForMover converts a White-perspective score to the mover's perspective and
// returns its win probability.
func (m Model) ForMover(whiteCP int, whiteToMove bool) float64 {
	if !whiteToMove {
		whiteCP = -whiteCP
	}
	return m.Probability(whiteCP)
}
