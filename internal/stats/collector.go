// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the library.
const (
	// Analysis pipeline metrics.
	MetricGamesAnalyzed = "coach_games_analyzed_total"
	MetricPliesAnalyzed = "coach_plies_analyzed_total"
	MetricOracleQueries = "coach_oracle_queries_total"
	MetricBlunders      = "coach_blunders_total"
	MetricHarvested     = "coach_positions_harvested_total"

	// Oracle cache metrics.
	MetricOracleCacheHits   = "coach_oracle_cache_hits_total"
	MetricOracleCacheMisses = "coach_oracle_cache_misses_total"

	// Training pool metrics.
	MetricPoolSize     = "coach_pool_size"
	MetricSampleDraws  = "coach_sample_draws_total"
	MetricSolveSeconds = "coach_solve_seconds"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
