// Package cachedoracle memoizes oracle responses.
//
// Repeated analysis passes over the same games, and the training loop's
// habit of revisiting the same pool positions, hit identical (fen, limit,
// multipv) queries often enough that an LRU in front of the engine saves
// real search time.
package cachedoracle

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/discochess/coach/internal/oracle"
	"github.com/discochess/coach/internal/stats"
)

var _ oracle.Oracle = (*Oracle)(nil)

// Oracle wraps another oracle with an LRU keyed by the full query shape.
// Errors are never cached.
type Oracle struct {
	underlying oracle.Oracle
	cache      *lru.Cache[string, []oracle.Candidate]
	collector  stats.Collector
}

// New creates a cached oracle holding up to capacity responses. The collector
// is optional; if nil, a no-op collector is used.
func New(underlying oracle.Oracle, capacity int, collector stats.Collector) (*Oracle, error) {
	cache, err := lru.New[string, []oracle.Candidate](capacity)
	if err != nil {
		return nil, err
	}
	if collector == nil {
		collector = stats.NewNoop()
	}
	return &Oracle{
		underlying: underlying,
		cache:      cache,
		collector:  collector,
	}, nil
}

// Analyze returns a cached response when the identical query was seen before,
// otherwise consults the underlying oracle.
func (o *Oracle) Analyze(ctx context.Context, fen string, limit oracle.Limit, multiPV int) ([]oracle.Candidate, error) {
	key := queryKey(fen, limit, multiPV)

	if cached, ok := o.cache.Get(key); ok {
		o.collector.IncCounter(stats.MetricOracleCacheHits, 1)
		return cached, nil
	}
	o.collector.IncCounter(stats.MetricOracleCacheMisses, 1)

	candidates, err := o.underlying.Analyze(ctx, fen, limit, multiPV)
	if err != nil {
		return nil, err
	}
	o.cache.Add(key, candidates)
	return candidates, nil
}

// Close closes the underlying oracle.
func (o *Oracle) Close() error {
	return o.underlying.Close()
}

// Len returns the number of cached responses.
func (o *Oracle) Len() int {
	return o.cache.Len()
}

func queryKey(fen string, limit oracle.Limit, multiPV int) string {
	return fmt.Sprintf("%s|d%d|t%d|n%d", fen, limit.Depth, limit.MoveTime.Milliseconds(), multiPV)
}
