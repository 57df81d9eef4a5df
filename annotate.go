package coach

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/notnil/chess"
)

// pvLength caps how many plies of the principal variation appear in a
// suggested line.
const pvLength = 8

// Annotation is the rendered commentary for one ply: a NAG for the move
// itself and a comment carrying the evaluation tag, markers, and the
// engine's suggested line.
type Annotation struct {
	Label   Label
	NAG     string
	Comment string
}

// Patterns for text this package itself emits, so re-analysing an already
// annotated game replaces stale commentary instead of stacking new copies on
// top of it. Human prose in comments is left untouched.
var (
	evalTagRE    = regexp.MustCompile(`\s*\[%eval [^\]]*\]`)
	wasBestRE    = regexp.MustCompile(`\s*\S+ was best\.(\s*\([^()]*\))?`)
	transitionRE = regexp.MustCompile(`\s*\([^()]* -> [^()]*\)`)
	markerRE     = regexp.MustCompile(`\s*(Only move|Miss|Best move|Blunder|Mistake|Inaccuracy)\.`)
)

// stripAnnotations removes any commentary a previous run of this package
// left in a comment and collapses the remaining whitespace.
func stripAnnotations(comment string) string {
	s := evalTagRE.ReplaceAllString(comment, "")
	s = wasBestRE.ReplaceAllString(s, "")
	s = transitionRE.ReplaceAllString(s, "")
	s = markerRE.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// markerText renders the judgment's markers and label as sentence prefixes,
// each ending with ". ".
func markerText(j Judgment) string {
	var b strings.Builder
	if j.OnlyMove {
		b.WriteString("Only move. ")
	} else if j.Miss {
		b.WriteString("Miss. ")
	}
	if j.Best {
		b.WriteString("Best move. ")
	}
	if j.Label != Good {
		b.WriteString(j.Label.String())
		b.WriteString(". ")
	}
	return b.String()
}

// buildAnnotation assembles the annotation for one ply. existing is the
// comment already attached to the move, with prior runs stripped by the
// caller. pvSANs is the engine's suggested line in SAN, starting from the
// position before the move; fullmove and whiteToMove describe that position
// for move numbering.
func buildAnnotation(j Judgment, existing string, before, after Score, pvSANs []string, fullmove int, whiteToMove bool) Annotation {
	a := Annotation{Label: j.Label}
	if j.Label != Good {
		a.NAG = j.Label.NAG()
	}

	label := markerText(j)
	switch {
	case label == "" || len(pvSANs) == 0:
		a.Comment = strings.TrimSpace(fmt.Sprintf("%s [%%eval %s]", existing, after))
	case j.Best:
		a.Comment = strings.TrimSpace(fmt.Sprintf("%s %s[%%eval %s]", existing, label, after))
	default:
		variation := formatVariation(pvSANs, fullmove, whiteToMove)
		a.Comment = strings.TrimSpace(fmt.Sprintf("%s (%s -> %s) %s%s was best. [%%eval %s] (%s)",
			existing, before, after, label, pvSANs[0], after, variation))
	}
	return a
}

// SANLine converts a UCI move list into SAN, playing the moves out from the
// given position. The line is capped at max plies when max is positive.
func SANLine(fenStr string, uciMoves []string, max int) ([]string, error) {
	fenOpt, err := chess.FEN(fenStr)
	if err != nil {
		return nil, fmt.Errorf("coach: parse fen %q: %w", fenStr, err)
	}
	pos := chess.NewGame(fenOpt).Position()

	if max > 0 && len(uciMoves) > max {
		uciMoves = uciMoves[:max]
	}
	sans := make([]string, 0, len(uciMoves))
	for _, u := range uciMoves {
		mv, err := chess.UCINotation{}.Decode(pos, u)
		if err != nil {
			return nil, fmt.Errorf("coach: decode move %q: %w", u, err)
		}
		sans = append(sans, chess.AlgebraicNotation{}.Encode(pos, mv))
		pos = pos.Update(mv)
	}
	return sans, nil
}

// formatVariation numbers a SAN line the way game viewers do: White's move
// and Black's reply share one number, and a line starting with a Black move
// opens with "N...".
func formatVariation(sans []string, fullmove int, whiteToMove bool) string {
	if len(sans) == 0 {
		return ""
	}
	var parts []string
	num := fullmove
	idx := 0
	if whiteToMove {
		if len(sans) >= 2 {
			parts = append(parts, fmt.Sprintf("%d. %s %s", num, sans[0], sans[1]))
			idx = 2
		} else {
			parts = append(parts, fmt.Sprintf("%d. %s", num, sans[0]))
			idx = 1
		}
	} else {
		parts = append(parts, fmt.Sprintf("%d... %s", num, sans[0]))
		idx = 1
	}
	for idx < len(sans) {
		num++
		if idx+1 < len(sans) {
			parts = append(parts, fmt.Sprintf("%d. %s %s", num, sans[idx], sans[idx+1]))
			idx += 2
		} else {
			parts = append(parts, fmt.Sprintf("%d. %s", num, sans[idx]))
			idx++
		}
	}
	return strings.Join(parts, " ")
}
