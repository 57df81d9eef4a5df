// Package fen provides FEN (Forsyth-Edwards Notation) helpers.
package fen

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidFEN indicates the FEN string is malformed.
var ErrInvalidFEN = errors.New("invalid FEN notation")

// Starting is the standard initial position.
const Starting = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Normalize validates fen and returns its first four fields (piece placement,
// side to move, castling rights, en passant square), dropping the halfmove
// clock and fullmove number. Two positions that differ only in the move
// counters normalize to the same string.
func Normalize(fen string) (string, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return "", ErrInvalidFEN
	}
	if !isValidPiecePlacement(parts[0]) {
		return "", ErrInvalidFEN
	}
	if parts[1] != "w" && parts[1] != "b" {
		return "", ErrInvalidFEN
	}
	return strings.Join(parts[:4], " "), nil
}

// Sanitize returns fen unchanged when it is well formed, and the standard
// starting position otherwise. The second return reports whether the input
// was usable.
func Sanitize(fen string) (string, bool) {
	if _, err := Normalize(fen); err != nil {
		return Starting, false
	}
	return fen, true
}

// WhiteToMove reports whether it is White's turn in fen.
func WhiteToMove(fen string) (bool, error) {
	parts := strings.Fields(fen)
	if len(parts) < 2 {
		return false, ErrInvalidFEN
	}
	switch parts[1] {
	case "w":
		return true, nil
	case "b":
		return false, nil
	}
	return false, ErrInvalidFEN
}

// FullmoveNumber returns the fullmove counter (field six). FENs truncated
// before the counter report move one.
func FullmoveNumber(fen string) (int, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return 0, ErrInvalidFEN
	}
	if len(parts) < 6 {
		return 1, nil
	}
	n, err := strconv.Atoi(parts[5])
	if err != nil || n < 1 {
		return 0, ErrInvalidFEN
	}
	return n, nil
}

func isValidPiecePlacement(placement string) bool {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return false
	}

	for _, rank := range ranks {
		squares := 0
		for _, ch := range rank {
			switch {
			case ch >= '1' && ch <= '8':
				squares += int(ch - '0')
			case ch == 'P', ch == 'N', ch == 'B', ch == 'R', ch == 'Q', ch == 'K',
				ch == 'p', ch == 'n', ch == 'b', ch == 'r', ch == 'q', ch == 'k':
				squares++
			default:
				return false
			}
		}
		if squares != 8 {
			return false
		}
	}

	return true
}
