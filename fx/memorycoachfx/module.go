// Package memorycoachfx provides an fx module for an analyzer backed by a
// scripted oracle and an in-memory pool. Useful for testing.
package memorycoachfx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/coach"
	"github.com/discochess/coach/internal/oracle/stuboracle"
	"github.com/discochess/coach/internal/pool"
	"github.com/discochess/coach/internal/pool/mempool"
	"github.com/discochess/coach/internal/stats"
	"github.com/discochess/coach/internal/stats/logger"
)

// Module provides an analyzer over a scripted oracle for testing.
// Requires a *zap.Logger to be provided.
var Module = fx.Module("memorycoach",
	fx.Provide(
		newStatsCollector,
		newStubOracle,
		newMemStore,
		newPool,
		newAnalyzer,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("coach.stats"))
}

func newStubOracle() *stuboracle.Oracle {
	return stuboracle.New()
}

func newMemStore() *mempool.Store {
	return mempool.New()
}

// PoolParams holds dependencies for creating the in-memory pool.
type PoolParams struct {
	fx.In

	Logger    *zap.Logger
	Collector stats.Collector
	Store     *mempool.Store
	Lifecycle fx.Lifecycle
}

func newPool(p PoolParams) (*pool.Pool, error) {
	pl, err := pool.New(context.Background(), p.Store,
		pool.WithLogger(p.Logger.Named("coach.pool")),
		pool.WithStats(p.Collector),
	)
	if err != nil {
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return pl.Close()
		},
	})

	return pl, nil
}

// Params holds dependencies for creating the analyzer.
type Params struct {
	fx.In

	Logger    *zap.Logger
	Collector stats.Collector
	Oracle    *stuboracle.Oracle
	Lifecycle fx.Lifecycle
}

// Result holds the provided analyzer. The scripted *stuboracle.Oracle is
// itself provided for test scripting.
type Result struct {
	fx.Out

	Analyzer *coach.Analyzer
}

func newAnalyzer(p Params) (Result, error) {
	analyzer, err := coach.New(
		coach.WithOracle(p.Oracle),
		coach.WithStats(p.Collector),
		coach.WithLogger(p.Logger.Named("coach")),
	)
	if err != nil {
		return Result{}, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return analyzer.Close()
		},
	})

	return Result{Analyzer: analyzer}, nil
}
