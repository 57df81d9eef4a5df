// Package oracle defines the position-evaluation oracle contract.
//
// An oracle is a depth- or time-limited search engine queried through a fixed
// request/response shape: given a position and a candidate count, it returns
// up to that many scored principal variations, best-first for the side to
// move, with all scores reported from White's perspective.
package oracle

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for well-defined failure modes.
var (
	// ErrUnavailable indicates the oracle channel itself failed. It is
	// fatal for the session that owns the oracle.
	ErrUnavailable = errors.New("oracle: engine unavailable")

	// ErrEmptyAnalysis indicates the oracle returned zero candidates for a
	// position that has legal moves. It is fatal for the current game.
	ErrEmptyAnalysis = errors.New("oracle: empty analysis")

	// ErrClosed indicates the oracle session has been closed.
	ErrClosed = errors.New("oracle: session closed")
)

// Limit bounds the search effort of a single query. At least one of Depth or
// MoveTime must be set.
type Limit struct {
	// Depth is the search depth in plies. Zero means unlimited by depth.
	Depth int

	// MoveTime bounds the wall-clock search time. Zero means unlimited by
	// time.
	MoveTime time.Duration
}

// Candidate is one scored line from a multi-PV analysis.
type Candidate struct {
	// CP is the centipawn score from White's perspective. Nil when the
	// line ends in a forced mate.
	CP *int

	// Mate is the mate distance in moves, positive when White mates. Nil
	// when there is no forced mate.
	Mate *int

	// Line is the principal variation in UCI notation, possibly empty.
	Line []string
}

// Oracle is a stateful, long-lived evaluation session. Implementations are
// strictly sequential: callers must not issue concurrent Analyze calls on one
// session, and results are consumed in request order.
type Oracle interface {
	// Analyze evaluates fen with the given limit, returning up to multiPV
	// candidates ordered best-first for the side to move.
	Analyze(ctx context.Context, fen string, limit Limit, multiPV int) ([]Candidate, error)

	// Close releases the underlying engine session.
	Close() error
}
