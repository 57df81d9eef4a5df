package fen

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "starting position",
			input: "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
			want:  "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -",
		},
		{
			name:  "position after e4",
			input: "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
			want:  "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3",
		},
		{
			name:  "no castling rights",
			input: "r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w - - 10 20",
			want:  "r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w - -",
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
		{
			name:    "too few fields",
			input:   "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w",
			wantErr: true,
		},
		{
			name:    "invalid side to move",
			input:   "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",
			wantErr: true,
		},
		{
			name:    "wrong rank count",
			input:   "rnbqkbnr/pppppppp/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
			wantErr: true,
		},
		{
			name:    "wrong square count",
			input:   "rnbqkbnr/ppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Normalize() error = %v, wantErr = %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Normalize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	if got, ok := Sanitize("garbage"); !(!ok && got == Starting) {
		t.Errorf("Sanitize(garbage) = %q, %v; want starting position fallback", got, ok)
	}

	valid := "8/8/8/4k3/8/8/4K3/4R3 w - - 0 50"
	if got, ok := Sanitize(valid); !ok || got != valid {
		t.Errorf("Sanitize(%q) = %q, %v; want unchanged", valid, got, ok)
	}
}

func TestWhiteToMove(t *testing.T) {
	if w, err := WhiteToMove(Starting); err != nil || !w {
		t.Errorf("WhiteToMove(starting) = %v, %v; want true", w, err)
	}
	black := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"
	if w, err := WhiteToMove(black); err != nil || w {
		t.Errorf("WhiteToMove(after e4) = %v, %v; want false", w, err)
	}
	if _, err := WhiteToMove("x"); err == nil {
		t.Error("WhiteToMove(x) expected error")
	}
}

func TestFullmoveNumber(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{Starting, 1, false},
		{"r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w - - 10 20", 20, false},
		{"r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R b - -", 1, false},
		{"r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w - - 0 zero", 0, true},
		{"bad", 0, true},
	}
	for _, tt := range tests {
		got, err := FullmoveNumber(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("FullmoveNumber(%q) error = %v, wantErr = %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("FullmoveNumber(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
