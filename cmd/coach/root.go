package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/discochess/coach/internal/codec/zstdcodec"
	"github.com/discochess/coach/internal/oracle"
	"github.com/discochess/coach/internal/oracle/uciengine"
	"github.com/discochess/coach/internal/pool"
	"github.com/discochess/coach/internal/pool/diskpool"
)

var (
	// Global flags.
	enginePath string
	depth      int
	moveTime   time.Duration
	poolDir    string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "coach",
	Short: "Annotate chess games and drill the positions you got wrong",
	Long: `Coach analyses games with a UCI engine, grades every move, and writes
the annotated PGN back out. Positions that preceded a blunder land in a
training pool; the train command serves them back weighted by how hard
they have proven to be.

Examples:
  # Annotate a game file
  coach analyze mygames.pgn

  # Practice the harvested positions
  coach train

  # Inspect the training pool
  coach pool stats`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&enginePath, "engine", "e", "stockfish", "path to the UCI engine binary")
	rootCmd.PersistentFlags().IntVar(&depth, "depth", 12, "engine search depth")
	rootCmd.PersistentFlags().DurationVar(&moveTime, "movetime", 0, "engine time per position (overrides depth when set)")
	rootCmd.PersistentFlags().StringVarP(&poolDir, "pool-dir", "p", "./coach-pool", "directory holding the training pool")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// buildLogger returns the v-flag-controlled logger for a command run.
func buildLogger() (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

// searchLimit translates the global engine flags into an oracle limit.
func searchLimit() oracle.Limit {
	if moveTime > 0 {
		return oracle.Limit{MoveTime: moveTime}
	}
	return oracle.Limit{Depth: depth}
}

// newEngine starts the configured UCI engine.
func newEngine(logger *zap.Logger) (*uciengine.Engine, error) {
	return uciengine.New(enginePath, uciengine.WithLogger(logger.Named("coach.oracle")))
}

// openPool opens the on-disk training pool, creating it on first use.
func openPool(cmd *cobra.Command, logger *zap.Logger) (*pool.Pool, error) {
	store, err := diskpool.New(poolDir, zstdcodec.New())
	if err != nil {
		return nil, err
	}
	return pool.New(cmd.Context(), store, pool.WithLogger(logger.Named("coach.pool")))
}
