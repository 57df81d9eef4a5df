// Package uciengine implements the oracle contract on top of a UCI engine
// subprocess such as Stockfish.
package uciengine

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/discochess/coach/internal/fen"
	"github.com/discochess/coach/internal/oracle"
)

var _ oracle.Oracle = (*Engine)(nil)

// Engine owns one UCI engine process for its lifetime. It is strictly
// sequential: one Analyze call in flight at a time.
type Engine struct {
	cmd    *exec.Cmd
	stdin  *bufio.Writer
	stdout *bufio.Scanner
	logger *zap.Logger
	closed atomic.Bool
	multi  int // last MultiPV value sent to the engine
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New starts the engine binary at path and completes the UCI handshake.
func New(path string, opts ...Option) (*Engine, error) {
	cmd := exec.Command(path)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdin pipe: %v", oracle.ErrUnavailable, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdout pipe: %v", oracle.ErrUnavailable, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: starting %s: %v", oracle.ErrUnavailable, path, err)
	}

	e := &Engine{
		cmd:    cmd,
		stdin:  bufio.NewWriter(stdin),
		stdout: bufio.NewScanner(stdout),
		logger: zap.NewNop(),
		multi:  1,
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.send("uci"); err != nil {
		return nil, err
	}
	if _, err := e.waitFor("uciok"); err != nil {
		return nil, err
	}
	if err := e.send("isready"); err != nil {
		return nil, err
	}
	if _, err := e.waitFor("readyok"); err != nil {
		return nil, err
	}

	e.logger.Debug("engine started", zap.String("path", path))
	return e, nil
}

// Analyze evaluates fen and returns up to multiPV candidates, scores
// converted from the engine's side-to-move perspective to White's.
func (e *Engine) Analyze(ctx context.Context, fenStr string, limit oracle.Limit, multiPV int) ([]oracle.Candidate, error) {
	if e.closed.Load() {
		return nil, oracle.ErrClosed
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if multiPV < 1 {
		multiPV = 1
	}

	whiteToMove, err := fen.WhiteToMove(fenStr)
	if err != nil {
		return nil, fmt.Errorf("analyzing %q: %w", fenStr, err)
	}

	if multiPV != e.multi {
		if err := e.send(fmt.Sprintf("setoption name MultiPV value %d", multiPV)); err != nil {
			return nil, err
		}
		e.multi = multiPV
	}
	if err := e.send("position fen " + fenStr); err != nil {
		return nil, err
	}
	if err := e.send(goCommand(limit)); err != nil {
		return nil, err
	}

	lines, bestMove, err := e.collectSearch()
	if err != nil {
		return nil, err
	}

	candidates := parseCandidates(lines, multiPV, whiteToMove)
	if len(candidates) == 0 {
		if bestMove == "(none)" || bestMove == "" {
			// Terminal position: no legal moves, nothing to report.
			return nil, nil
		}
		return nil, fmt.Errorf("%w: fen %q", oracle.ErrEmptyAnalysis, fenStr)
	}
	return candidates, nil
}

// Close asks the engine to quit and reaps the process.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return oracle.ErrClosed
	}
	_ = e.send("quit")
	return e.cmd.Wait()
}

func (e *Engine) send(cmd string) error {
	if _, err := e.stdin.WriteString(cmd + "\n"); err != nil {
		return fmt.Errorf("%w: writing %q: %v", oracle.ErrUnavailable, cmd, err)
	}
	if err := e.stdin.Flush(); err != nil {
		return fmt.Errorf("%w: flushing %q: %v", oracle.ErrUnavailable, cmd, err)
	}
	return nil
}

func (e *Engine) waitFor(token string) (string, error) {
	for e.stdout.Scan() {
		line := e.stdout.Text()
		if strings.Contains(line, token) {
			return line, nil
		}
	}
	if err := e.stdout.Err(); err != nil {
		return "", fmt.Errorf("%w: reading engine output: %v", oracle.ErrUnavailable, err)
	}
	return "", fmt.Errorf("%w: engine closed before %q", oracle.ErrUnavailable, token)
}

// collectSearch reads info lines until the bestmove sentinel, returning the
// info lines and the reported best move.
func (e *Engine) collectSearch() ([]string, string, error) {
	var lines []string
	for e.stdout.Scan() {
		line := e.stdout.Text()
		if strings.HasPrefix(line, "info ") {
			lines = append(lines, line)
			continue
		}
		if strings.HasPrefix(line, "bestmove") {
			parts := strings.Fields(line)
			best := ""
			if len(parts) > 1 {
				best = parts[1]
			}
			return lines, best, nil
		}
	}
	if err := e.stdout.Err(); err != nil {
		return nil, "", fmt.Errorf("%w: reading search output: %v", oracle.ErrUnavailable, err)
	}
	return nil, "", fmt.Errorf("%w: engine closed mid-search", oracle.ErrUnavailable)
}

func goCommand(limit oracle.Limit) string {
	var sb strings.Builder
	sb.WriteString("go")
	if limit.Depth > 0 {
		fmt.Fprintf(&sb, " depth %d", limit.Depth)
	}
	if limit.MoveTime > 0 {
		fmt.Fprintf(&sb, " movetime %d", limit.MoveTime.Milliseconds())
	}
	if limit.Depth <= 0 && limit.MoveTime <= 0 {
		// Never issue an unbounded search.
		sb.WriteString(" depth 12")
	}
	return sb.String()
}

// parseCandidates reduces raw info lines to one candidate per multipv slot,
// keeping the last (deepest) report for each slot. Scores are flipped to
// White's perspective when Black is to move.
func parseCandidates(lines []string, multiPV int, whiteToMove bool) []oracle.Candidate {
	slots := make(map[int]oracle.Candidate)
	for _, line := range lines {
		cand, slot, ok := parseInfoLine(line)
		if !ok {
			continue
		}
		if !whiteToMove {
			if cand.CP != nil {
				v := -*cand.CP
				cand.CP = &v
			}
			if cand.Mate != nil {
				v := -*cand.Mate
				cand.Mate = &v
			}
		}
		slots[slot] = cand
	}

	var out []oracle.Candidate
	for i := 1; i <= multiPV; i++ {
		cand, ok := slots[i]
		if !ok {
			break
		}
		out = append(out, cand)
	}
	return out
}

// parseInfoLine extracts the score, pv and multipv slot from one UCI info
// line. Lines without a score (currmove chatter and the like) report ok=false.
func parseInfoLine(line string) (cand oracle.Candidate, slot int, ok bool) {
	slot = 1
	parts := strings.Fields(line)
	for i := 0; i < len(parts); i++ {
		switch parts[i] {
		case "multipv":
			if i+1 < len(parts) {
				if n, err := strconv.Atoi(parts[i+1]); err == nil {
					slot = n
				}
			}
		case "score":
			if i+2 >= len(parts) {
				return oracle.Candidate{}, 0, false
			}
			n, err := strconv.Atoi(parts[i+2])
			if err != nil {
				return oracle.Candidate{}, 0, false
			}
			switch parts[i+1] {
			case "cp":
				cand.CP = &n
			case "mate":
				cand.Mate = &n
			default:
				return oracle.Candidate{}, 0, false
			}
			ok = true
			i += 2
		case "pv":
			cand.Line = parts[i+1:]
			i = len(parts)
		}
	}
	if !ok {
		return oracle.Candidate{}, 0, false
	}
	return cand, slot, true
}
