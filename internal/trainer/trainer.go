// Package trainer runs practice sessions over the adaptive position pool:
// draw a position, let the player answer, grade the answer against the
// engine, and feed the outcome back into the pool's difficulty weights.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/notnil/chess"
	"go.uber.org/zap"

	"github.com/discochess/coach"
	"github.com/discochess/coach/internal/fen"
	"github.com/discochess/coach/internal/oracle"
	"github.com/discochess/coach/internal/pool"
)

// ErrIllegalMove indicates the attempted move is not legal in the exercise
// position. The exercise and the pool are left unchanged.
var ErrIllegalMove = errors.New("trainer: illegal move")

// Verdict thresholds on the mover-perspective centipawn drop against the
// engine's best move: within a pawn is fine, within three is a mistake,
// beyond that a blunder.
const (
	mistakeDrop = 100
	blunderDrop = 300
)

// Exercise is one position handed to the player. The clock starts when the
// exercise is created.
type Exercise struct {
	// FEN is the position to solve.
	FEN string

	// WhiteToMove reports whose move it is.
	WhiteToMove bool

	// Eval is the engine evaluation of the position, from White's
	// perspective.
	Eval coach.Score

	// Lines are the engine's top candidate continuations, best first, for
	// display after the attempt.
	Lines []Line

	startedAt time.Time
}

// Line is one engine candidate: its continuation in SAN and its evaluation.
type Line struct {
	SANs  []string
	Score coach.Score
}

// Result grades one attempt.
type Result struct {
	// SAN is the attempted move.
	SAN string

	// Rank is "Top N" when the move matches the first move of the Nth
	// candidate line, empty otherwise.
	Rank string

	// Score is the evaluation after the move, from White's perspective.
	Score coach.Score

	// Drop is the mover-perspective centipawn loss against the best
	// candidate. Zero or positive means nothing was given away.
	Drop int

	// Label grades the drop: Good within a pawn, Mistake within three,
	// Blunder beyond.
	Label coach.Label

	// Solved reports whether the outcome counted as a success in the
	// pool.
	Solved bool

	// Elapsed is the thinking time, measured from Next.
	Elapsed time.Duration
}

// Session draws exercises from a pool and grades attempts against an oracle.
// Not safe for concurrent use: one oracle session, one player.
type Session struct {
	pool   *pool.Pool
	oracle oracle.Oracle
	limit  oracle.Limit
	topN   int
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithLimit sets the search limit for grading queries.
func WithLimit(l oracle.Limit) Option {
	return func(s *Session) { s.limit = l }
}

// WithTopN sets how many candidate lines are requested. Default is 3.
func WithTopN(n int) Option {
	return func(s *Session) { s.topN = n }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithClock overrides the time source. For tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New creates a practice session over the given pool and oracle.
func New(p *pool.Pool, o oracle.Oracle, opts ...Option) *Session {
	s := &Session{
		pool:   p,
		oracle: o,
		topN:   3,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Next draws the next exercise from the pool, weighted by difficulty. A
// malformed stored FEN falls back to the starting position rather than
// aborting the session.
func (s *Session) Next(ctx context.Context) (*Exercise, error) {
	entry, err := s.pool.Sample()
	if err != nil {
		return nil, fmt.Errorf("trainer: sampling pool: %w", err)
	}

	fenStr, ok := fen.Sanitize(entry.FEN)
	if !ok {
		s.logger.Warn("invalid FEN in pool, using starting position",
			zap.String("fen", entry.FEN),
		)
	}

	whiteToMove, err := fen.WhiteToMove(fenStr)
	if err != nil {
		return nil, fmt.Errorf("trainer: %w", err)
	}

	cands, err := s.oracle.Analyze(ctx, fenStr, s.limit, s.topN)
	if err != nil {
		return nil, fmt.Errorf("trainer: evaluating exercise: %w", err)
	}
	if len(cands) == 0 {
		return nil, fmt.Errorf("trainer: exercise position: %w", oracle.ErrEmptyAnalysis)
	}

	ex := &Exercise{
		FEN:         fenStr,
		WhiteToMove: whiteToMove,
		Eval:        coach.NewScore(cands[0].CP, cands[0].Mate),
		startedAt:   s.now(),
	}
	for _, c := range cands {
		line, err := coach.SANLine(fenStr, c.Line, 0)
		if err != nil {
			return nil, fmt.Errorf("trainer: rendering candidate line: %w", err)
		}
		ex.Lines = append(ex.Lines, Line{SANs: line, Score: coach.NewScore(c.CP, c.Mate)})
	}

	s.logger.Debug("exercise drawn",
		zap.String("fen", ex.FEN),
		zap.String("eval", ex.Eval.String()),
	)
	return ex, nil
}

// Attempt grades a move against the exercise's candidate lines, records the
// outcome in the pool, and returns the verdict. Illegal input returns
// ErrIllegalMove with no state change.
func (s *Session) Attempt(ctx context.Context, ex *Exercise, san string) (*Result, error) {
	fenOpt, err := chess.FEN(ex.FEN)
	if err != nil {
		return nil, fmt.Errorf("trainer: %w", err)
	}
	pos := chess.NewGame(fenOpt).Position()

	move, err := chess.AlgebraicNotation{}.Decode(pos, san)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrIllegalMove, san)
	}
	playedUCI := chess.UCINotation{}.Encode(pos, move)

	after, err := s.evaluateAfter(ctx, pos, move)
	if err != nil {
		return nil, err
	}

	res := &Result{
		SAN:     chess.AlgebraicNotation{}.Encode(pos, move),
		Score:   after,
		Rank:    rank(playedUCI, ex.Lines, ex.FEN),
		Elapsed: s.now().Sub(ex.startedAt),
	}

	best := ex.Lines[0].Score.Signed()
	drop := moverCP(after.Signed(), ex.WhiteToMove) - moverCP(best, ex.WhiteToMove)
	if res.Rank == "Top 1" {
		drop = 0
	}
	res.Drop = drop
	switch {
	case drop < -blunderDrop:
		res.Label = coach.Blunder
	case drop < -mistakeDrop:
		res.Label = coach.Mistake
	default:
		res.Label = coach.Good
	}
	res.Solved = res.Label == coach.Good

	if err := s.pool.RecordOutcome(ctx, ex.FEN, res.Solved, res.Elapsed); err != nil {
		if !errors.Is(err, pool.ErrUnknownPosition) {
			return nil, fmt.Errorf("trainer: recording outcome: %w", err)
		}
		// Exercises can outlive their pool entry; still grade them.
		s.logger.Debug("position no longer in pool", zap.String("fen", ex.FEN))
	}

	s.logger.Info("attempt graded",
		zap.String("san", res.SAN),
		zap.String("rank", res.Rank),
		zap.Int("drop", res.Drop),
		zap.String("label", res.Label.String()),
		zap.Bool("solved", res.Solved),
	)
	return res, nil
}

// evaluateAfter scores the position after the move, without consulting the
// oracle when the move ends the game.
func (s *Session) evaluateAfter(ctx context.Context, pos *chess.Position, move *chess.Move) (coach.Score, error) {
	afterPos := pos.Update(move)
	switch afterPos.Status() {
	case chess.Checkmate:
		return coach.MateDelivered(afterPos.Turn() == chess.Black), nil
	case chess.Stalemate:
		return coach.Score{}, nil
	}

	cands, err := s.oracle.Analyze(ctx, afterPos.String(), s.limit, 1)
	if err != nil {
		return coach.Score{}, fmt.Errorf("trainer: evaluating reply: %w", err)
	}
	if len(cands) == 0 {
		return coach.Score{}, nil
	}
	return coach.NewScore(cands[0].CP, cands[0].Mate), nil
}

// rank returns "Top N" when played matches the first move of the Nth
// candidate line.
func rank(playedUCI string, lines []Line, fenStr string) string {
	for i, line := range lines {
		if len(line.SANs) == 0 {
			continue
		}
		if firstUCI(fenStr, line.SANs[0]) == playedUCI {
			return fmt.Sprintf("Top %d", i+1)
		}
	}
	return ""
}

// firstUCI converts the first SAN of a line back to UCI for comparison.
func firstUCI(fenStr, san string) string {
	fenOpt, err := chess.FEN(fenStr)
	if err != nil {
		return ""
	}
	pos := chess.NewGame(fenOpt).Position()
	move, err := chess.AlgebraicNotation{}.Decode(pos, san)
	if err != nil {
		return ""
	}
	return chess.UCINotation{}.Encode(pos, move)
}

// moverCP flips a White-perspective score to the mover's perspective.
func moverCP(whiteCP int, whiteMover bool) int {
	if whiteMover {
		return whiteCP
	}
	return -whiteCP
}
