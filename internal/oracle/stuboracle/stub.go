// Package stuboracle provides a deterministic scripted oracle for testing.
package stuboracle

import (
	"context"
	"fmt"
	"sync"

	"github.com/discochess/coach/internal/oracle"
)

var _ oracle.Oracle = (*Oracle)(nil)

// Oracle replays scripted candidate lists keyed by FEN.
type Oracle struct {
	mu        sync.Mutex
	responses map[string][]oracle.Candidate
	queries   []string
	failAll   bool
	closed    bool
}

// New creates an empty stub oracle.
func New() *Oracle {
	return &Oracle{
		responses: make(map[string][]oracle.Candidate),
	}
}

// Set scripts the response for fen. An explicit empty (non-nil) slice scripts
// an empty analysis.
func (o *Oracle) Set(fen string, candidates []oracle.Candidate) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.responses[fen] = candidates
}

// SetCP scripts a single-candidate response with a centipawn score and an
// optional UCI line.
func (o *Oracle) SetCP(fen string, cp int, line ...string) {
	v := cp
	o.Set(fen, []oracle.Candidate{{CP: &v, Line: line}})
}

// FailAll makes every subsequent Analyze return ErrUnavailable.
func (o *Oracle) FailAll() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failAll = true
}

// Queries returns the FENs analyzed so far, in order.
func (o *Oracle) Queries() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.queries))
	copy(out, o.queries)
	return out
}

// Analyze returns the scripted response for fen, truncated to multiPV. A FEN
// with no script means the stub was set up wrong and reports ErrUnavailable;
// an explicitly scripted empty response reports ErrEmptyAnalysis.
func (o *Oracle) Analyze(ctx context.Context, fen string, limit oracle.Limit, multiPV int) ([]oracle.Candidate, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil, oracle.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o.queries = append(o.queries, fen)
	if o.failAll {
		return nil, oracle.ErrUnavailable
	}

	candidates, ok := o.responses[fen]
	if !ok {
		return nil, fmt.Errorf("%w: no script for fen %q", oracle.ErrUnavailable, fen)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: fen %q", oracle.ErrEmptyAnalysis, fen)
	}
	if multiPV > 0 && len(candidates) > multiPV {
		candidates = candidates[:multiPV]
	}
	out := make([]oracle.Candidate, len(candidates))
	copy(out, candidates)
	return out, nil
}

// Close marks the oracle closed.
func (o *Oracle) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return oracle.ErrClosed
	}
	o.closed = true
	return nil
}
