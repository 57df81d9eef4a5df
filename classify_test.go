package coach

import (
	"testing"

	"github.com/discochess/coach/internal/oracle"
)

func TestAbsolutePolicyJudge(t *testing.T) {
	tests := []struct {
		name       string
		before     int
		after      int
		whiteMover bool
		want       Label
	}{
		{"quiet move", 20, 15, true, Good},
		{"boundary not inaccuracy", 0, -66, true, Good},
		{"just past inaccuracy", 0, -67, true, Inaccuracy},
		{"boundary mistake", 0, -101, true, Mistake},
		{"boundary still mistake", 0, -300, true, Mistake},
		{"just past blunder", 0, -301, true, Blunder},
		{"big swing", 62, -350, true, Blunder},
		{"black mover drop", 0, 301, false, Blunder},
		{"black mover quiet", -40, -45, false, Good},
		{"improvement is good", 0, 500, true, Good},
		{"black improvement is good", 0, -500, false, Good},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := AbsolutePolicy{}.Judge(tt.before, tt.after, tt.whiteMover)
			if got != tt.want {
				t.Errorf("Judge(%d, %d, white=%v) = %v, want %v",
					tt.before, tt.after, tt.whiteMover, got, tt.want)
			}
		})
	}
}

func TestAbsolutePolicyDropSign(t *testing.T) {
	_, drop := AbsolutePolicy{}.Judge(100, -250, true)
	if drop != -350 {
		t.Errorf("drop = %v, want -350", drop)
	}
	_, drop = AbsolutePolicy{}.Judge(100, -250, false)
	if drop != 350 {
		t.Errorf("black mover drop = %v, want 350", drop)
	}
}

func TestWinProbPolicyJudge(t *testing.T) {
	p := NewWinProbPolicy(0)

	tests := []struct {
		name       string
		before     int
		after      int
		whiteMover bool
		want       Label
	}{
		{"level shuffle", 10, 0, true, Good},
		{"large probability drop", 0, -110, true, Blunder},
		{"moderate drop", 0, -60, true, Inaccuracy},
		{"throwing away a win", 300, -10000, true, Blunder},
		{"black mover blunder", 0, 110, false, Blunder},
		{"mate kept is good", 10000, 10000, true, Good},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := p.Judge(tt.before, tt.after, tt.whiteMover)
			if got != tt.want {
				t.Errorf("Judge(%d, %d, white=%v) = %v, want %v",
					tt.before, tt.after, tt.whiteMover, got, tt.want)
			}
		})
	}
}

// A fixed centipawn swing should matter near equality but not in a position
// that is already completely winning. This is the reason winprob is the
// default policy.
func TestWinProbPolicyScaleInvariance(t *testing.T) {
	p := NewWinProbPolicy(0)

	atEquality, _ := p.Judge(0, -150, true)
	if atEquality == Good {
		t.Error("150cp drop at equality should be flagged")
	}
	whenWinning, _ := p.Judge(900, 750, true)
	if whenWinning != Good {
		t.Errorf("150cp drop at +9 should stay Good, got %v", whenWinning)
	}
}

func TestLabelMonotonicity(t *testing.T) {
	for _, p := range []Policy{AbsolutePolicy{}, NewWinProbPolicy(0)} {
		prev := Good
		for after := 0; after >= -600; after -= 5 {
			label, _ := p.Judge(0, after, true)
			if label < prev {
				t.Fatalf("%s: label improved from %v to %v as the drop grew (after=%d)",
					p.Name(), prev, label, after)
			}
			prev = label
		}
	}
}

func TestClassifyMarkers(t *testing.T) {
	// Best line wins by far more than the decisive gap.
	cands := []oracle.Candidate{
		{CP: intp(650), Line: []string{"d1h5", "g8f6"}},
		{CP: intp(120), Line: []string{"g1f3"}},
	}

	t.Run("only move", func(t *testing.T) {
		j := classify(AbsolutePolicy{}, Score{Centipawns: 650}, Score{Centipawns: 640}, true, "d1h5", cands)
		if !j.Best || !j.OnlyMove || j.Miss {
			t.Errorf("got %+v, want Best and OnlyMove", j)
		}
	})

	t.Run("miss", func(t *testing.T) {
		j := classify(AbsolutePolicy{}, Score{Centipawns: 650}, Score{Centipawns: 100}, true, "g1f3", cands)
		if j.Best || j.OnlyMove || !j.Miss {
			t.Errorf("got %+v, want Miss only", j)
		}
	})

	t.Run("no gap no markers", func(t *testing.T) {
		near := []oracle.Candidate{
			{CP: intp(50), Line: []string{"e2e4"}},
			{CP: intp(30), Line: []string{"d2d4"}},
		}
		j := classify(AbsolutePolicy{}, Score{Centipawns: 50}, Score{Centipawns: 45}, true, "d2d4", near)
		if j.OnlyMove || j.Miss {
			t.Errorf("got %+v, want no gap markers", j)
		}
		if j.Best {
			t.Error("second-best move should not be marked Best")
		}
	})

	t.Run("single candidate", func(t *testing.T) {
		one := []oracle.Candidate{{CP: intp(400), Line: []string{"e2e4"}}}
		j := classify(AbsolutePolicy{}, Score{Centipawns: 400}, Score{Centipawns: 390}, true, "e2e4", one)
		if !j.Best || j.OnlyMove || j.Miss {
			t.Errorf("got %+v, want Best without gap markers", j)
		}
	})

	t.Run("no candidates", func(t *testing.T) {
		j := classify(AbsolutePolicy{}, Score{}, Score{Centipawns: -400}, true, "e2e4", nil)
		if j.Label != Blunder || j.Best || j.OnlyMove || j.Miss {
			t.Errorf("got %+v, want bare Blunder", j)
		}
	})
}

func TestClassifyBlackPerspectiveGap(t *testing.T) {
	// White-perspective scores: Black's best keeps -500, second best allows
	// -100. For Black that is a decisive gap.
	cands := []oracle.Candidate{
		{CP: intp(-500), Line: []string{"d8h4"}},
		{CP: intp(-100), Line: []string{"b8c6"}},
	}
	j := classify(AbsolutePolicy{}, Score{Centipawns: -500}, Score{Centipawns: -480}, false, "d8h4", cands)
	if !j.OnlyMove {
		t.Errorf("got %+v, want OnlyMove for black", j)
	}
}
