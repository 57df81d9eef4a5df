package winprob

import (
	"math"
	"testing"
)

func TestProbability_Bounds(t *testing.T) {
	m := Default()
	for _, cp := range []int{-100000, -10000, -300, -1, 0, 1, 300, 10000, 100000} {
		p := m.Probability(cp)
		if p <= 0 || p >= 1 {
			t.Errorf("Probability(%d) = %v, want strictly inside (0,1)", cp, p)
		}
	}
}

func TestProbability_Symmetry(t *testing.T) {
	m := Default()
	for _, cp := range []int{0, 1, 50, 110, 300, 1000, 10000} {
		sum := m.Probability(cp) + m.Probability(-cp)
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("Probability(%d)+Probability(%d) = %v, want 1", cp, -cp, sum)
		}
	}
	if p := m.Probability(0); math.Abs(p-0.5) > 1e-12 {
		t.Errorf("Probability(0) = %v, want 0.5", p)
	}
}

func TestProbability_StrictlyIncreasing(t *testing.T) {
	m := Default()
	prev := m.Probability(-2000)
	for cp := -1999; cp <= 2000; cp++ {
		p := m.Probability(cp)
		if p <= prev {
			t.Fatalf("Probability not strictly increasing at cp=%d: %v <= %v", cp, p, prev)
		}
		prev = p
	}
}

func TestForMover(t *testing.T) {
	m := Default()
	// +200 for White is a good position for White to move and a bad one for
	// Black to move.
	white := m.ForMover(200, true)
	black := m.ForMover(200, false)
	if white <= 0.5 {
		t.Errorf("ForMover(200, white) = %v, want > 0.5", white)
	}
	if black >= 0.5 {
		t.Errorf("ForMover(200, black) = %v, want < 0.5", black)
	}
	if math.Abs(white+black-1) > 1e-9 {
		t.Errorf("perspectives should mirror: %v + %v != 1", white, black)
	}
}

func TestNew_BadScale(t *testing.T) {
	m := New(-5)
	if p := m.Probability(DefaultScale); p <= 0.5 {
		t.Errorf("fallback scale model broken: Probability(%d) = %v", DefaultScale, p)
	}
}
