package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/discochess/coach/internal/pool/diskpool"
)

var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "Manage the training pool",
}

var poolStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics about the training pool",
	Long: `Display the size of the training pool and the distribution of its
difficulty weights. High quantiles mean positions you keep failing.`,
	RunE: runPoolStats,
}

var poolAddCmd = &cobra.Command{
	Use:   "add [FEN...]",
	Short: "Add positions to the training pool by hand",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPoolAdd,
}

func init() {
	poolCmd.AddCommand(poolStatsCmd)
	poolCmd.AddCommand(poolAddCmd)
	rootCmd.AddCommand(poolCmd)
}

func runPoolStats(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(poolDir); os.IsNotExist(err) {
		return fmt.Errorf("pool directory %q does not exist; run 'coach analyze' first", poolDir)
	}

	logger, err := buildLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	p, err := openPool(cmd, logger)
	if err != nil {
		return fmt.Errorf("opening pool: %w", err)
	}
	defer p.Close()

	entries := p.Snapshot()
	if len(entries) == 0 {
		cmd.Println("The training pool is empty.")
		return nil
	}

	difficulties := make([]float64, len(entries))
	for i, e := range entries {
		difficulties[i] = e.Difficulty
	}
	sort.Float64s(difficulties)

	cmd.Printf("Pool directory: %s\n", poolDir)
	cmd.Printf("Positions:      %d\n", len(entries))
	cmd.Printf("Mean weight:    %.1fs\n", stat.Mean(difficulties, nil))
	cmd.Printf("Median weight:  %.1fs\n", stat.Quantile(0.5, stat.Empirical, difficulties, nil))
	cmd.Printf("90th pct:       %.1fs\n", stat.Quantile(0.9, stat.Empirical, difficulties, nil))
	cmd.Printf("Hardest:        %.1fs\n", difficulties[len(difficulties)-1])

	if m, err := diskpool.ReadManifest(poolDir); err == nil {
		cmd.Printf("Compression:    %s\n", orUnknown(m.Compression))
		cmd.Printf("Updated:        %s\n", m.UpdatedAt.Format("2006-01-02 15:04:05"))
	}

	return nil
}

func runPoolAdd(cmd *cobra.Command, args []string) error {
	logger, err := buildLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	p, err := openPool(cmd, logger)
	if err != nil {
		return fmt.Errorf("opening pool: %w", err)
	}
	defer p.Close()

	before := p.Len()
	if err := p.Add(cmd.Context(), args...); err != nil {
		return fmt.Errorf("adding to pool: %w", err)
	}
	cmd.Printf("Added %d position(s); pool now holds %d.\n", p.Len()-before, p.Len())
	return nil
}
