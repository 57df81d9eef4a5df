package coach

import (
	"go.uber.org/zap"

	"github.com/discochess/coach/internal/oracle"
	"github.com/discochess/coach/internal/stats"
)

// HarvestFilter decides whether the position a move was played from should
// be set aside for training. It sees the whole annotated ply, so it can
// filter by side as well as by verdict.
type HarvestFilter func(AnnotatedPly) bool

// Option configures an Analyzer.
type Option interface {
	apply(*options)
}

// options holds the analyzer configuration.
type options struct {
	oracle    oracle.Oracle
	policy    Policy
	limit     oracle.Limit
	multiPV   int
	harvest   HarvestFilter
	cacheSize int
	stats     stats.Collector
	logger    *zap.Logger
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		policy:  DefaultPolicy(),
		multiPV: 2,
		harvest: func(p AnnotatedPly) bool { return p.Judgment.Label == Blunder },
		stats:   stats.NewNoop(),
		logger:  zap.NewNop(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithOracle sets the evaluation oracle. An oracle is required.
func WithOracle(o oracle.Oracle) Option {
	return optionFunc(func(opts *options) {
		opts.oracle = o
	})
}

// WithPolicy sets the move classification policy.
// If not set, the win-probability policy with the default scale is used.
func WithPolicy(p Policy) Option {
	return optionFunc(func(opts *options) {
		opts.policy = p
	})
}

// WithLimit sets the search limit passed to the oracle on every query.
// If not set, the oracle's own default applies.
func WithLimit(l oracle.Limit) Option {
	return optionFunc(func(opts *options) {
		opts.limit = l
	})
}

// WithMultiPV sets how many candidate lines the oracle is asked for.
// Default is 2, the minimum needed for only-move and miss detection.
func WithMultiPV(n int) Option {
	return optionFunc(func(opts *options) {
		opts.multiPV = n
	})
}

// WithHarvestFilter sets the predicate selecting positions for training.
// If not set, positions preceding a blunder are harvested.
func WithHarvestFilter(f HarvestFilter) Option {
	return optionFunc(func(opts *options) {
		opts.harvest = f
	})
}

// WithEvalCache caches oracle responses in an in-process LRU of the given
// size. Useful when the same openings recur across a batch of games.
func WithEvalCache(size int) Option {
	return optionFunc(func(opts *options) {
		opts.cacheSize = size
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(opts *options) {
		opts.stats = c
	})
}

// WithLogger sets the logger.
// If not set, logging is disabled.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(opts *options) {
		opts.logger = l
	})
}
