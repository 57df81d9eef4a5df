package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/notnil/chess"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/discochess/coach"
	"github.com/discochess/coach/internal/oracle"
	statslogger "github.com/discochess/coach/internal/stats/logger"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [PGN file...]",
	Short: "Annotate the games in one or more PGN files",
	Long: `Analyze every game in the given PGN files with the configured engine.

Each input file FILE.pgn produces FILE_analysed.pgn with per-move quality
glyphs, evaluation tags, and suggested lines. Positions that preceded a
blunder are added to the training pool unless --no-harvest is set.

Examples:
  # Annotate one file at depth 16
  coach analyze --depth 16 mygames.pgn

  # Four engines in parallel across a batch
  coach analyze --parallel 4 january.pgn february.pgn`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

var (
	parallel   int
	policyName string
	multiPV    int
	noHarvest  bool
)

func init() {
	analyzeCmd.Flags().IntVar(&parallel, "parallel", 1, "number of engine workers")
	analyzeCmd.Flags().StringVar(&policyName, "policy", "winprob", "classification policy (winprob or absolute)")
	analyzeCmd.Flags().IntVar(&multiPV, "multipv", 2, "candidate lines requested per position")
	analyzeCmd.Flags().BoolVar(&noHarvest, "no-harvest", false, "do not add blunder positions to the training pool")
	rootCmd.AddCommand(analyzeCmd)
}

// job is one game to analyze, keyed for ordered output.
type job struct {
	file  string
	index int
	game  *chess.Game
}

type result struct {
	job       job
	report    *coach.Report
	err       error
	harvested []string
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	logger, err := buildLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	policy, err := pickPolicy(policyName)
	if err != nil {
		return err
	}

	jobs, err := loadGames(args)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return fmt.Errorf("no games found in %s", strings.Join(args, ", "))
	}

	if parallel < 1 {
		parallel = 1
	}
	if parallel > len(jobs) {
		parallel = len(jobs)
	}

	var (
		mu      sync.Mutex
		results []result
	)
	jobCh := make(chan job)

	// Each worker owns its engine process; UCI sessions are strictly
	// sequential.
	g, ctx := errgroup.WithContext(cmd.Context())
	for w := 0; w < parallel; w++ {
		g.Go(func() error {
			engine, err := newEngine(logger)
			if err != nil {
				return fmt.Errorf("starting engine: %w", err)
			}
			analyzer, err := coach.New(
				coach.WithOracle(engine),
				coach.WithPolicy(policy),
				coach.WithLimit(searchLimit()),
				coach.WithMultiPV(multiPV),
				coach.WithEvalCache(4096),
				coach.WithLogger(logger.Named("coach")),
				coach.WithStats(statslogger.New(logger.Named("coach.stats"))),
			)
			if err != nil {
				engine.Close()
				return err
			}
			defer analyzer.Close()

			for j := range jobCh {
				r := result{job: j}
				r.report, r.err = analyzer.AnalyzeGame(ctx, j.game)
				if fatalAnalysisErr(r.err) {
					// The engine session is broken; skipping to the next
					// game would only grind out partial output.
					return fmt.Errorf("analyzing game %d of %s: %w", j.index+1, j.file, r.err)
				}
				if r.err == nil {
					for _, h := range r.report.Harvested {
						r.harvested = append(r.harvested, h.FEN)
					}
				}
				mu.Lock()
				results = append(results, r)
				mu.Unlock()
			}
			return nil
		})
	}

	for _, j := range jobs {
		select {
		case jobCh <- j:
		case <-ctx.Done():
		}
	}
	close(jobCh)

	if err := g.Wait(); err != nil {
		return err
	}

	sort.Slice(results, func(i, k int) bool {
		if results[i].job.file != results[k].job.file {
			return results[i].job.file < results[k].job.file
		}
		return results[i].job.index < results[k].job.index
	})

	var harvested []string
	perFile := make(map[string][]string)
	skipped := 0
	for _, r := range results {
		if r.err != nil {
			// A bad game record or empty analysis skips that game only.
			logger.Warn("game skipped",
				zap.String("file", r.job.file),
				zap.Int("game", r.job.index+1),
				zap.Error(r.err),
			)
			skipped++
			continue
		}
		perFile[r.job.file] = append(perFile[r.job.file], r.report.PGN)
		harvested = append(harvested, r.harvested...)
		printSummary(cmd, r)
	}

	for file, pgns := range perFile {
		out := outputPath(file)
		if err := os.WriteFile(out, []byte(strings.Join(pgns, "\n")), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}
		cmd.Printf("Written %s\n", out)
	}

	if skipped > 0 {
		cmd.Printf("Skipped %d game(s)\n", skipped)
	}

	if !noHarvest && len(harvested) > 0 {
		p, err := openPool(cmd, logger)
		if err != nil {
			return fmt.Errorf("opening pool: %w", err)
		}
		defer p.Close()
		if err := p.Add(cmd.Context(), harvested...); err != nil {
			return fmt.Errorf("adding to pool: %w", err)
		}
		cmd.Printf("Harvested %d position(s) into %s\n", len(harvested), poolDir)
	}

	return nil
}

func printSummary(cmd *cobra.Command, r result) {
	info := r.report.Info
	cmd.Printf("%s vs %s (%s): %d plies, %d inaccuracies, %d mistakes, %d blunders\n",
		orUnknown(info.White), orUnknown(info.Black), info.Result,
		len(r.report.Plies),
		r.report.CountLabel(coach.Inaccuracy),
		r.report.CountLabel(coach.Mistake),
		r.report.CountLabel(coach.Blunder),
	)
}

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}

func pickPolicy(name string) (coach.Policy, error) {
	switch name {
	case "winprob":
		return coach.DefaultPolicy(), nil
	case "absolute":
		return coach.AbsolutePolicy{}, nil
	}
	return nil, fmt.Errorf("unknown policy %q (want winprob or absolute)", name)
}

// loadGames reads every game from every file, in file order.
func loadGames(files []string) ([]job, error) {
	var jobs []job
	for _, file := range files {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", file, err)
		}
		scanner := chess.NewScanner(f)
		idx := 0
		for scanner.Scan() {
			jobs = append(jobs, job{file: file, index: idx, game: scanner.Next()})
			idx++
		}
		f.Close()
	}
	return jobs, nil
}

func outputPath(file string) string {
	ext := filepath.Ext(file)
	return strings.TrimSuffix(file, ext) + "_analysed" + ext
}

// fatalAnalysisErr reports whether an analysis error means the oracle session
// itself is gone, so the run must stop. Everything else (bad game records,
// empty analyses) skips that game only.
func fatalAnalysisErr(err error) bool {
	return errors.Is(err, oracle.ErrUnavailable) || errors.Is(err, oracle.ErrClosed)
}
