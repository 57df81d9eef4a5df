// Package coach turns raw engine evaluations into human-facing game
// analysis: per-move quality labels, annotated PGN commentary, and a feed of
// positions worth practicing later.
//
// Example usage:
//
//	engine, err := uciengine.New("stockfish")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	analyzer, err := coach.New(
//	    coach.WithOracle(engine),
//	    coach.WithLimit(oracle.Limit{Depth: 12}),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer analyzer.Close()
//
//	report, err := analyzer.AnalyzeGame(ctx, game)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(report.PGN)
package coach

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/notnil/chess"
	"go.uber.org/zap"

	"github.com/discochess/coach/internal/fen"
	"github.com/discochess/coach/internal/oracle"
	"github.com/discochess/coach/internal/oracle/cachedoracle"
	"github.com/discochess/coach/internal/stats"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrNoOracle indicates no oracle was provided.
	ErrNoOracle = errors.New("coach: no oracle provided")

	// ErrClosed indicates the analyzer has been closed.
	ErrClosed = errors.New("coach: analyzer closed")

	// ErrEmptyGame indicates the game has no moves to analyse.
	ErrEmptyGame = errors.New("coach: game has no moves")
)

// Analyzer evaluates games move by move and produces annotated reports.
// An Analyzer drives a single oracle session and is not safe for concurrent
// use; give each goroutine its own Analyzer and engine.
type Analyzer struct {
	oracle  oracle.Oracle
	policy  Policy
	limit   oracle.Limit
	multiPV int
	harvest HarvestFilter
	stats   stats.Collector
	logger  *zap.Logger
	closed  atomic.Bool
}

// New creates an Analyzer with the given options. An oracle is required.
func New(opts ...Option) (*Analyzer, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	if cfg.oracle == nil {
		return nil, ErrNoOracle
	}
	if cfg.multiPV < 1 {
		cfg.multiPV = 1
	}

	if cfg.cacheSize > 0 {
		cached, err := cachedoracle.New(cfg.oracle, cfg.cacheSize, cfg.stats)
		if err != nil {
			return nil, fmt.Errorf("coach: building eval cache: %w", err)
		}
		cfg.oracle = cached
	}

	a := &Analyzer{
		oracle:  cfg.oracle,
		policy:  cfg.policy,
		limit:   cfg.limit,
		multiPV: cfg.multiPV,
		harvest: cfg.harvest,
		stats:   cfg.stats,
		logger:  cfg.logger,
	}

	a.logger.Debug("analyzer initialized",
		zap.String("policy", a.policy.Name()),
		zap.Int("multiPV", a.multiPV),
	)

	return a, nil
}

// AnalyzeGame evaluates every ply of the game and returns the annotated
// report. The game itself is not modified.
func (a *Analyzer) AnalyzeGame(ctx context.Context, game *chess.Game) (*Report, error) {
	if a.closed.Load() {
		return nil, ErrClosed
	}

	moves := game.Moves()
	if len(moves) == 0 {
		return nil, ErrEmptyGame
	}
	positions := game.Positions()
	comments := game.Comments()

	report := &Report{
		Info:  gameInfo(game),
		Plies: make([]AnnotatedPly, 0, len(moves)),
	}

	// One evaluation per position, reused across the move boundary so each
	// position is queried once.
	before, beforeCands, err := a.evaluate(ctx, positions[0])
	if err != nil {
		return nil, fmt.Errorf("coach: evaluating start position: %w", err)
	}

	for i, move := range moves {
		beforePos := positions[i]
		afterPos := positions[i+1]
		beforeFEN := beforePos.String()
		whiteMover := beforePos.Turn() == chess.White

		after, afterCands, err := a.evaluate(ctx, afterPos)
		if err != nil {
			return nil, fmt.Errorf("coach: evaluating ply %d: %w", i, err)
		}

		playedUCI := chess.UCINotation{}.Encode(beforePos, move)
		j := classify(a.policy, before, after, whiteMover, playedUCI, beforeCands)

		ply, err := a.annotatePly(i, beforeFEN, beforePos, move, before, after, j, beforeCands, plyComment(comments, i))
		if err != nil {
			return nil, err
		}
		report.Plies = append(report.Plies, ply)

		a.stats.IncCounter(stats.MetricPliesAnalyzed, 1)
		if j.Label == Blunder {
			a.stats.IncCounter(stats.MetricBlunders, 1)
		}
		if a.harvest(ply) {
			report.Harvested = append(report.Harvested, HarvestedPosition{
				FEN:      beforeFEN,
				Ply:      i,
				Judgment: j,
			})
			a.stats.IncCounter(stats.MetricHarvested, 1)
			a.logger.Debug("position harvested",
				zap.String("fen", beforeFEN),
				zap.String("label", j.Label.String()),
			)
		}

		before, beforeCands = after, afterCands
	}

	report.PGN = renderPGN(report.Info, report.Plies)
	a.stats.IncCounter(stats.MetricGamesAnalyzed, 1)
	a.logger.Info("game analyzed",
		zap.Int("plies", len(report.Plies)),
		zap.Int("harvested", len(report.Harvested)),
	)
	return report, nil
}

// Close releases the analyzer and its oracle.
// After Close, the analyzer should not be used.
func (a *Analyzer) Close() error {
	if !a.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	if err := a.oracle.Close(); err != nil {
		return fmt.Errorf("coach: closing oracle: %w", err)
	}
	return nil
}

// Policy returns the classification policy in use.
func (a *Analyzer) Policy() Policy {
	return a.policy
}

// evaluate returns the score and candidate lines for a position. Terminal
// positions are scored without consulting the oracle: checkmate saturates in
// favor of the side that delivered it, all other game-over states are level.
func (a *Analyzer) evaluate(ctx context.Context, pos *chess.Position) (Score, []oracle.Candidate, error) {
	switch pos.Status() {
	case chess.Checkmate:
		return MateDelivered(pos.Turn() == chess.Black), nil, nil
	case chess.Stalemate:
		return Score{}, nil, nil
	}

	a.stats.IncCounter(stats.MetricOracleQueries, 1)
	cands, err := a.oracle.Analyze(ctx, pos.String(), a.limit, a.multiPV)
	if err != nil {
		return Score{}, nil, err
	}
	if len(cands) == 0 {
		return Score{}, nil, nil
	}
	return scoreFromCandidate(cands[0]), cands, nil
}

// annotatePly assembles the AnnotatedPly for one move.
func (a *Analyzer) annotatePly(i int, beforeFEN string, beforePos *chess.Position, move *chess.Move, before, after Score, j Judgment, beforeCands []oracle.Candidate, existing string) (AnnotatedPly, error) {
	fullmove, err := fen.FullmoveNumber(beforeFEN)
	if err != nil {
		return AnnotatedPly{}, fmt.Errorf("coach: ply %d: %w", i, err)
	}
	whiteMover := beforePos.Turn() == chess.White

	var pvSANs []string
	if len(beforeCands) > 0 && len(beforeCands[0].Line) > 0 {
		pvSANs, err = SANLine(beforeFEN, beforeCands[0].Line, pvLength)
		if err != nil {
			return AnnotatedPly{}, fmt.Errorf("coach: ply %d: %w", i, err)
		}
	}

	ann := buildAnnotation(j, stripAnnotations(existing), before, after, pvSANs, fullmove, whiteMover)

	return AnnotatedPly{
		Ply:        i,
		Fullmove:   fullmove,
		White:      whiteMover,
		SAN:        chess.AlgebraicNotation{}.Encode(beforePos, move),
		BeforeFEN:  beforeFEN,
		Before:     before,
		After:      after,
		Judgment:   j,
		Annotation: ann,
		BestLine:   pvSANs,
	}, nil
}

// plyComment returns the comment attached to ply i, if any.
func plyComment(comments [][]string, i int) string {
	if i >= len(comments) {
		return ""
	}
	return strings.Join(comments[i], " ")
}

// gameInfo extracts the identifying tag pairs.
func gameInfo(game *chess.Game) GameInfo {
	return GameInfo{
		White:  tagValue(game, "White"),
		Black:  tagValue(game, "Black"),
		Event:  tagValue(game, "Event"),
		Site:   tagValue(game, "Site"),
		Date:   tagValue(game, "Date"),
		Result: tagValue(game, "Result"),
	}
}

func tagValue(game *chess.Game, key string) string {
	tp := game.GetTagPair(key)
	if tp == nil {
		return ""
	}
	return tp.Value
}

// renderPGN writes the annotated game out as PGN. Quality glyphs attach
// directly to the SAN, and a Black move after a comment repeats its move
// number in the "N..." form.
func renderPGN(info GameInfo, plies []AnnotatedPly) string {
	var b strings.Builder
	writeTag(&b, "Event", info.Event)
	writeTag(&b, "Site", info.Site)
	writeTag(&b, "Date", info.Date)
	writeTag(&b, "White", info.White)
	writeTag(&b, "Black", info.Black)
	writeTag(&b, "Result", info.Result)
	b.WriteString("\n")

	needNumber := true
	for i, p := range plies {
		if i > 0 {
			b.WriteString(" ")
		}
		if p.White {
			fmt.Fprintf(&b, "%d. ", p.Fullmove)
		} else if needNumber {
			fmt.Fprintf(&b, "%d... ", p.Fullmove)
		}
		b.WriteString(p.SAN)
		b.WriteString(p.Judgment.Label.Glyph())
		needNumber = false
		if p.Annotation.Comment != "" {
			fmt.Fprintf(&b, " { %s }", p.Annotation.Comment)
			needNumber = true
		}
	}

	result := info.Result
	if result == "" {
		result = "*"
	}
	b.WriteString(" ")
	b.WriteString(result)
	b.WriteString("\n")
	return b.String()
}

func writeTag(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "[%s \"%s\"]\n", key, value)
}
