package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/notnil/chess"
	"github.com/spf13/cobra"

	"github.com/discochess/coach/internal/pool"
	"github.com/discochess/coach/internal/trainer"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Practice positions from the training pool",
	Long: `Drill the positions harvested by 'coach analyze'. Positions are drawn
weighted by difficulty: the longer a position takes to solve, or the more
often it is failed, the more it comes back.

Enter moves in SAN ("Nf3", "Qxe4+"). "skip" draws the next position, "quit"
ends the session.`,
	RunE: runTrain,
}

var rounds int

func init() {
	trainCmd.Flags().IntVar(&rounds, "rounds", 0, "number of positions to practice (0 = until quit)")
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
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

	if p.Len() == 0 {
		cmd.Println("The training pool is empty. Run 'coach analyze' first.")
		return nil
	}

	engine, err := newEngine(logger)
	if err != nil {
		return fmt.Errorf("starting engine: %w", err)
	}

	session := trainer.New(p, engine,
		trainer.WithLimit(searchLimit()),
		trainer.WithLogger(logger.Named("coach.trainer")),
	)
	defer engine.Close()

	input := bufio.NewScanner(cmd.InOrStdin())
	solved, attempted := 0, 0

	for rounds == 0 || attempted < rounds {
		ex, err := session.Next(cmd.Context())
		if err != nil {
			if errors.Is(err, pool.ErrEmpty) {
				break
			}
			return err
		}

		printExercise(cmd, ex)

		res, quit, err := playExercise(cmd, session, ex, input)
		if err != nil {
			return err
		}
		if quit {
			break
		}
		if res == nil {
			continue // skipped
		}

		attempted++
		if res.Solved {
			solved++
		}
		printResult(cmd, ex, res)
	}

	if attempted > 0 {
		cmd.Printf("\nSession over: %d/%d solved.\n", solved, attempted)
	}
	return nil
}

// playExercise prompts until a legal move, a skip, or a quit.
func playExercise(cmd *cobra.Command, session *trainer.Session, ex *trainer.Exercise, input *bufio.Scanner) (*trainer.Result, bool, error) {
	for {
		cmd.Print("Your move: ")
		if !input.Scan() {
			return nil, true, input.Err()
		}
		answer := strings.TrimSpace(input.Text())
		switch answer {
		case "quit", "q":
			return nil, true, nil
		case "skip", "s", "":
			return nil, false, nil
		}

		res, err := session.Attempt(cmd.Context(), ex, answer)
		if err != nil {
			if errors.Is(err, trainer.ErrIllegalMove) {
				cmd.Printf("%s is not legal here.\n", answer)
				continue
			}
			return nil, false, err
		}
		return res, false, nil
	}
}

func printExercise(cmd *cobra.Command, ex *trainer.Exercise) {
	side := "White"
	if !ex.WhiteToMove {
		side = "Black"
	}
	cmd.Printf("\nFEN: %s\n", ex.FEN)
	if board := drawBoard(ex.FEN); board != "" {
		cmd.Print(board)
	}
	cmd.Printf("%s to move.\n", side)
}

func printResult(cmd *cobra.Command, ex *trainer.Exercise, res *trainer.Result) {
	rankText := ""
	if res.Rank != "" {
		rankText = res.Rank + ": "
	}
	cmd.Printf("Your move: %s%s (score=%s) (change=%.2f) %s\n",
		rankText, res.SAN, res.Score, float64(res.Drop)/100, res.Label)

	for i, line := range ex.Lines {
		if len(line.SANs) == 0 {
			continue
		}
		cmd.Printf("Top %d: %s (score=%s) (%s)\n",
			i+1, line.SANs[0], line.Score, strings.Join(line.SANs, " "))
	}
	cmd.Printf("Time: %s\n", res.Elapsed.Round(time.Second))
}

func drawBoard(fenStr string) string {
	fenOpt, err := chess.FEN(fenStr)
	if err != nil {
		return ""
	}
	return chess.NewGame(fenOpt).Position().Board().Draw()
}
