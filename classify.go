package coach

import (
	"github.com/discochess/coach/internal/oracle"
	"github.com/discochess/coach/internal/winprob"
)

// Judgment is the full classification of one played move.
type Judgment struct {
	// Label is the drop-based quality label.
	Label Label

	// Drop is the observed quality drop in the active policy's units:
	// centipawns for AbsolutePolicy, probability for WinProbPolicy.
	// Negative means the mover's prospects worsened.
	Drop float64

	// Best reports that the played move equals the first move of the
	// oracle's principal variation.
	Best bool

	// OnlyMove reports that the played move was the top candidate and no
	// alternative came close (the best line dominates the second by more
	// than the blunder threshold).
	OnlyMove bool

	// Miss reports that the gap condition held but the player did not
	// find the top candidate.
	Miss bool
}

// Policy classifies move quality from before/after evaluations. Both
// policies take White-perspective signed scores and handle the mover's
// perspective internally.
type Policy interface {
	// Name returns a short identifier for configuration and logging.
	Name() string

	// Judge returns the quality label for a move played by the given
	// side, plus the underlying drop in the policy's units.
	Judge(before, after int, whiteMover bool) (Label, float64)

	// DecisiveGap reports whether the best candidate dominates the
	// second by more than the blunder threshold, the gap condition for
	// "only move" and "miss" markers.
	DecisiveGap(best, second int, whiteMover bool) bool
}

// AbsolutePolicy classifies by raw centipawn drop: > 300 blunder, > 100
// mistake, > 66 inaccuracy. Simple, but a fixed centipawn swing means very
// different things at equality and in a winning position.
type AbsolutePolicy struct{}

var _ Policy = AbsolutePolicy{}

// Centipawn thresholds for the absolute policy. The decisive gap reuses the
// blunder threshold.
const (
	absBlunder    = 300
	absMistake    = 100
	absInaccuracy = 66
)

func (AbsolutePolicy) Name() string { return "absolute" }

func (AbsolutePolicy) Judge(before, after int, whiteMover bool) (Label, float64) {
	drop := moverCP(after, whiteMover) - moverCP(before, whiteMover)
	switch {
	case drop < -absBlunder:
		return Blunder, float64(drop)
	case drop < -absMistake:
		return Mistake, float64(drop)
	case drop < -absInaccuracy:
		return Inaccuracy, float64(drop)
	}
	return Good, float64(drop)
}

func (AbsolutePolicy) DecisiveGap(best, second int, whiteMover bool) bool {
	return moverCP(best, whiteMover)-moverCP(second, whiteMover) > absBlunder
}

// WinProbPolicy classifies by win-probability drop, which is scale-invariant
// across game phases. This is the preferred policy.
type WinProbPolicy struct {
	model winprob.Model
}

var _ Policy = WinProbPolicy{}

// Probability-drop thresholds. The comparisons are inclusive: a drop of
// exactly 0.22 is a blunder.
const (
	probBlunder    = 0.22
	probMistake    = 0.15
	probInaccuracy = 0.08
)

// NewWinProbPolicy returns a win-probability policy with the given logistic
// scale in centipawns. Non-positive scales use winprob.DefaultScale.
func NewWinProbPolicy(scale float64) WinProbPolicy {
	return WinProbPolicy{model: winprob.New(scale)}
}

// DefaultPolicy returns the win-probability policy with the default scale.
func DefaultPolicy() Policy {
	return NewWinProbPolicy(winprob.DefaultScale)
}

func (WinProbPolicy) Name() string { return "winprob" }

func (p WinProbPolicy) Judge(before, after int, whiteMover bool) (Label, float64) {
	drop := p.model.ForMover(after, whiteMover) - p.model.ForMover(before, whiteMover)
	switch {
	case drop <= -probBlunder:
		return Blunder, drop
	case drop <= -probMistake:
		return Mistake, drop
	case drop <= -probInaccuracy:
		return Inaccuracy, drop
	}
	return Good, drop
}

func (p WinProbPolicy) DecisiveGap(best, second int, whiteMover bool) bool {
	gap := p.model.ForMover(best, whiteMover) - p.model.ForMover(second, whiteMover)
	return gap > probBlunder
}

// moverCP flips a White-perspective score to the mover's perspective.
func moverCP(whiteCP int, whiteMover bool) int {
	if whiteMover {
		return whiteCP
	}
	return -whiteCP
}

// classify combines the policy's drop label with the marker detection
// against the pre-move candidate list. playedUCI is the played move in UCI
// notation; candidates are the pre-move oracle lines, best first.
func classify(p Policy, before, after Score, whiteMover bool, playedUCI string, candidates []oracle.Candidate) Judgment {
	label, drop := p.Judge(before.Signed(), after.Signed(), whiteMover)
	j := Judgment{Label: label, Drop: drop}

	if len(candidates) == 0 || len(candidates[0].Line) == 0 {
		return j
	}
	topMove := candidates[0].Line[0]
	j.Best = playedUCI == topMove

	if len(candidates) > 1 {
		best := scoreFromCandidate(candidates[0]).Signed()
		second := scoreFromCandidate(candidates[1]).Signed()
		if p.DecisiveGap(best, second, whiteMover) {
			if j.Best {
				j.OnlyMove = true
			} else {
				j.Miss = true
			}
		}
	}
	return j
}
