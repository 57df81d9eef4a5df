package coach

// GameInfo carries the identifying tag pairs of an analysed game.
type GameInfo struct {
	White  string
	Black  string
	Event  string
	Site   string
	Date   string
	Result string
}

// AnnotatedPly is the analysis of one played half-move.
type AnnotatedPly struct {
	// Ply is the zero-based half-move index in the game.
	Ply int

	// Fullmove is the move number of the position the move was played
	// from, and White reports whether White played it.
	Fullmove int
	White    bool

	// SAN is the played move, BeforeFEN the position it was played from.
	SAN       string
	BeforeFEN string

	// Before and After are the engine evaluations around the move, from
	// White's perspective.
	Before Score
	After  Score

	Judgment   Judgment
	Annotation Annotation

	// BestLine is the engine's preferred continuation from BeforeFEN,
	// in SAN.
	BestLine []string
}

// HarvestedPosition is a position set aside for later training, typically
// because the game's continuation went badly wrong from it.
type HarvestedPosition struct {
	FEN string

	// Ply indexes the move played from this position in the game.
	Ply int

	// Judgment is the verdict on that move.
	Judgment Judgment
}

// Report is the result of analysing one game.
type Report struct {
	Info GameInfo

	// Plies holds one entry per half-move, in game order.
	Plies []AnnotatedPly

	// Harvested lists positions the harvest filter selected.
	Harvested []HarvestedPosition

	// PGN is the annotated game, ready to write out.
	PGN string
}

// CountLabel returns how many plies carry the given label.
func (r *Report) CountLabel(label Label) int {
	n := 0
	for _, p := range r.Plies {
		if p.Judgment.Label == label {
			n++
		}
	}
	return n
}
