//go:build e2e

package coach

import (
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/discochess/coach/internal/oracle"
	"github.com/discochess/coach/internal/oracle/uciengine"
)

// End-to-end test against a real engine binary. Run with:
//
//	go test -tags e2e .
func TestAnalyzeGameWithRealEngine(t *testing.T) {
	path, err := exec.LookPath("stockfish")
	if err != nil {
		t.Skip("stockfish not found in PATH")
	}

	engine, err := uciengine.New(path)
	if err != nil {
		t.Fatalf("starting engine: %v", err)
	}

	a, err := New(
		WithOracle(engine),
		WithLimit(oracle.Limit{MoveTime: 100 * time.Millisecond}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// Scholar's mate: 3... Nf6 allows Qxf7#. Any engine finds this.
	game := mustGame(t, "e4", "e5", "Qh5", "Nc6", "Bc4", "Nf6", "Qxf7#")

	report, err := a.AnalyzeGame(ctx, game)
	if err != nil {
		t.Fatalf("AnalyzeGame: %v", err)
	}

	if len(report.Plies) != 7 {
		t.Fatalf("plies = %d, want 7", len(report.Plies))
	}

	nf6 := report.Plies[5]
	if nf6.Judgment.Label != Blunder {
		t.Errorf("3... Nf6 judged %v, want Blunder", nf6.Judgment.Label)
	}

	mate := report.Plies[6]
	if mate.Judgment.Label != Good {
		t.Errorf("mating move judged %v, want Good", mate.Judgment.Label)
	}
	if got := mate.After.String(); got != "#0" {
		t.Errorf("final score = %q, want #0", got)
	}

	if !strings.Contains(report.PGN, "[%eval") {
		t.Errorf("PGN has no eval tags:\n%s", report.PGN)
	}
	if len(report.Harvested) == 0 {
		t.Error("expected the position before 3... Nf6 to be harvested")
	}
}
