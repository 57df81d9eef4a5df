// Package pool maintains the adaptive training-position pool.
//
// Every position carries a difficulty statistic, semantically "expected
// seconds to solve correctly". Sampling is weighted by that statistic, so
// positions that took long to solve, or were never solved, resurface
// preferentially. Outcomes feed the statistic back: a success records the
// measured solve time, a failure pins the position at FailedDifficulty so it
// comes around again soon.
package pool

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/discochess/coach/internal/stats"
)

const (
	// DefaultDifficulty seeds freshly harvested positions. High enough
	// that new material surfaces ahead of well-drilled positions.
	DefaultDifficulty = 300.0

	// FailedDifficulty is assigned after a failed attempt, substantially
	// larger than any typical solve time.
	FailedDifficulty = 600.0

	// minDifficulty keeps the statistic strictly positive; it is used
	// directly as a sampling weight.
	minDifficulty = 0.001
)

// Sentinel errors.
var (
	// ErrEmpty indicates the pool has no positions to sample.
	ErrEmpty = errors.New("pool: no positions")

	// ErrUnknownPosition indicates an outcome was recorded for a position
	// not in the pool.
	ErrUnknownPosition = errors.New("pool: unknown position")
)

// Entry is one training position with its difficulty statistic.
type Entry struct {
	FEN        string  `json:"fen"`
	Difficulty float64 `json:"difficulty"`
}

// Pool is the in-session view of the training-position pool. It is read on
// every Sample and rewritten through its Store on every outcome update.
// Single-writer discipline: a mutex guards in-process use; cross-process
// coordination is the store's concern.
type Pool struct {
	mu        sync.Mutex
	store     Store
	entries   []Entry
	index     map[string]int
	src       rand.Source
	logger    *zap.Logger
	collector stats.Collector
}

// Option configures a Pool.
type Option func(*Pool)

// WithSource sets the random source used for weighted draws.
// Deterministic sources make sampling reproducible in tests.
func WithSource(src rand.Source) Option {
	return func(p *Pool) { p.src = src }
}

// WithLogger sets the logger. If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pool) { p.logger = l }
}

// WithStats sets the stats collector. If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return func(p *Pool) { p.collector = c }
}

// New loads the pool from store. A store with no persisted pool yet yields an
// empty pool.
func New(ctx context.Context, store Store, opts ...Option) (*Pool, error) {
	p := &Pool{
		store:     store,
		index:     make(map[string]int),
		logger:    zap.NewNop(),
		collector: stats.NewNoop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	entries, err := store.Load(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("loading pool: %w", err)
	}
	for _, e := range entries {
		if e.FEN == "" {
			continue
		}
		if e.Difficulty < minDifficulty {
			// Corrupt or hand-edited rows must not poison the
			// sampling weights.
			p.logger.Warn("clamping non-positive difficulty",
				zap.String("fen", e.FEN),
				zap.Float64("difficulty", e.Difficulty),
			)
			e.Difficulty = DefaultDifficulty
		}
		if _, dup := p.index[e.FEN]; dup {
			continue
		}
		p.index[e.FEN] = len(p.entries)
		p.entries = append(p.entries, e)
	}

	p.collector.SetGauge(stats.MetricPoolSize, int64(len(p.entries)))
	p.logger.Debug("pool loaded", zap.Int("positions", len(p.entries)))
	return p, nil
}

// Len returns the number of positions in the pool.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Snapshot returns a copy of the pool sorted ascending by difficulty.
func (p *Pool) Snapshot() []Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	sortByDifficulty(out)
	return out
}

// Sample draws one position with probability proportional to its difficulty
// relative to the pool total.
func (p *Pool) Sample() (Entry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.entries) == 0 {
		return Entry{}, ErrEmpty
	}

	weights := make([]float64, len(p.entries))
	for i, e := range p.entries {
		weights[i] = e.Difficulty
	}

	w := sampleuv.NewWeighted(weights, p.src)
	idx, ok := w.Take()
	if !ok {
		return Entry{}, ErrEmpty
	}

	p.collector.IncCounter(stats.MetricSampleDraws, 1)
	return p.entries[idx], nil
}

// Add inserts positions with the default difficulty, skipping FENs already in
// the pool, and persists once at the end.
func (p *Pool) Add(ctx context.Context, fens ...string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	added := 0
	for _, fen := range fens {
		if fen == "" {
			continue
		}
		if _, ok := p.index[fen]; ok {
			continue
		}
		p.index[fen] = len(p.entries)
		p.entries = append(p.entries, Entry{FEN: fen, Difficulty: DefaultDifficulty})
		added++
	}
	if added == 0 {
		return nil
	}

	p.logger.Info("positions added to pool",
		zap.Int("added", added),
		zap.Int("total", len(p.entries)),
	)
	return p.persistLocked(ctx)
}

// RecordOutcome updates the difficulty statistic for fen after an attempt and
// persists the pool. A success records the measured elapsed time; a failure
// records FailedDifficulty regardless of elapsed time.
func (p *Pool) RecordOutcome(ctx context.Context, fen string, solved bool, elapsed time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.index[fen]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPosition, fen)
	}

	if solved {
		seconds := elapsed.Seconds()
		if seconds < minDifficulty {
			seconds = minDifficulty
		}
		p.entries[idx].Difficulty = seconds
		p.collector.ObserveHistogram(stats.MetricSolveSeconds, seconds)
	} else {
		p.entries[idx].Difficulty = FailedDifficulty
	}

	p.logger.Debug("outcome recorded",
		zap.String("fen", fen),
		zap.Bool("solved", solved),
		zap.Float64("difficulty", p.entries[idx].Difficulty),
	)
	return p.persistLocked(ctx)
}

// persistLocked writes the pool through the store, sorted ascending by
// difficulty. The ordering is cosmetic (it makes the persisted file easy to
// eyeball), not load-bearing for sampling.
func (p *Pool) persistLocked(ctx context.Context) error {
	sorted := make([]Entry, len(p.entries))
	copy(sorted, p.entries)
	sortByDifficulty(sorted)

	if err := p.store.Save(ctx, sorted); err != nil {
		return fmt.Errorf("persisting pool: %w", err)
	}
	p.collector.SetGauge(stats.MetricPoolSize, int64(len(p.entries)))
	return nil
}

// Close closes the underlying store.
func (p *Pool) Close() error {
	return p.store.Close()
}

func sortByDifficulty(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Difficulty < entries[j].Difficulty
	})
}
