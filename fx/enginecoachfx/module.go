// Package enginecoachfx provides an fx module for an engine-backed analyzer
// with a disk-backed training pool.
package enginecoachfx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/coach"
	"github.com/discochess/coach/internal/codec/zstdcodec"
	"github.com/discochess/coach/internal/oracle"
	"github.com/discochess/coach/internal/oracle/uciengine"
	"github.com/discochess/coach/internal/pool"
	"github.com/discochess/coach/internal/pool/diskpool"
	"github.com/discochess/coach/internal/stats"
	"github.com/discochess/coach/internal/stats/logger"
	"github.com/discochess/coach/internal/trainer"
)

// Config holds configuration for the engine-backed analyzer.
type Config struct {
	// EnginePath is the UCI engine binary to run.
	EnginePath string

	// PoolDir is the directory holding the training pool.
	PoolDir string

	// Limit is the per-position search limit. Zero uses the engine
	// default.
	Limit oracle.Limit

	// CacheSize is the number of oracle responses to cache.
	// Default is 4096.
	CacheSize int
}

// Module provides an engine-backed *coach.Analyzer, a disk-backed
// *pool.Pool, and a *trainer.Session over the two.
// Requires a *zap.Logger and a Config to be provided.
var Module = fx.Module("enginecoach",
	fx.Provide(
		newStatsCollector,
		newPool,
		newAnalyzer,
		newSession,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("coach.stats"))
}

// PoolParams holds dependencies for creating the pool.
type PoolParams struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
	Lifecycle fx.Lifecycle
}

func newPool(p PoolParams) (*pool.Pool, error) {
	store, err := diskpool.New(p.Config.PoolDir, zstdcodec.New())
	if err != nil {
		return nil, err
	}

	pl, err := pool.New(context.Background(), store,
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

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
	Lifecycle fx.Lifecycle
}

// Result holds the provided analyzer.
type Result struct {
	fx.Out

	Analyzer *coach.Analyzer
}

func newAnalyzer(p Params) (Result, error) {
	cacheSize := p.Config.CacheSize
	if cacheSize <= 0 {
		cacheSize = 4096
	}

	engine, err := uciengine.New(p.Config.EnginePath,
		uciengine.WithLogger(p.Logger.Named("coach.oracle")),
	)
	if err != nil {
		return Result{}, err
	}

	analyzer, err := coach.New(
		coach.WithOracle(engine),
		coach.WithLimit(p.Config.Limit),
		coach.WithEvalCache(cacheSize),
		coach.WithStats(p.Collector),
		coach.WithLogger(p.Logger.Named("coach")),
	)
	if err != nil {
		engine.Close()
		return Result{}, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return analyzer.Close()
		},
	})

	return Result{Analyzer: analyzer}, nil
}

// SessionParams holds dependencies for creating the practice session.
// The session runs its own engine so training never contends with analysis.
type SessionParams struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Pool      *pool.Pool
	Lifecycle fx.Lifecycle
}

func newSession(p SessionParams) (*trainer.Session, error) {
	engine, err := uciengine.New(p.Config.EnginePath,
		uciengine.WithLogger(p.Logger.Named("coach.trainer.oracle")),
	)
	if err != nil {
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return engine.Close()
		},
	})

	return trainer.New(p.Pool, engine,
		trainer.WithLimit(p.Config.Limit),
		trainer.WithLogger(p.Logger.Named("coach.trainer")),
	), nil
}
