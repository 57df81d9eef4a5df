package coach

// Label is the drop-based quality classification of a move. Larger values are
// worse; the ordering Good < Inaccuracy < Mistake < Blunder is relied on by
// the classifier's monotonicity guarantee.
type Label int

const (
	Good Label = iota
	Inaccuracy
	Mistake
	Blunder
)

// String returns the label's annotation sentence word.
func (l Label) String() string {
	switch l {
	case Good:
		return "Good"
	case Inaccuracy:
		return "Inaccuracy"
	case Mistake:
		return "Mistake"
	case Blunder:
		return "Blunder"
	}
	return "Unknown"
}

// NAG returns the Numeric Annotation Glyph for the label: $2 for a mistake,
// $4 for a blunder, $6 for an inaccuracy (dubious move), empty for a good
// move.
func (l Label) NAG() string {
	switch l {
	case Inaccuracy:
		return "$6"
	case Mistake:
		return "$2"
	case Blunder:
		return "$4"
	}
	return ""
}

// Glyph returns the conventional punctuation for the label: "??" blunder,
// "?" mistake, "?!" inaccuracy, empty for a good move.
func (l Label) Glyph() string {
	switch l {
	case Inaccuracy:
		return "?!"
	case Mistake:
		return "?"
	case Blunder:
		return "??"
	}
	return ""
}
