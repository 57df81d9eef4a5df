package diskpool

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/discochess/coach/internal/codec"
	"github.com/discochess/coach/internal/codec/gzipcodec"
	"github.com/discochess/coach/internal/pool"
)

func TestLoad_Missing(t *testing.T) {
	s, err := New(t.TempDir(), codec.NewNoop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	if _, err := s.Load(context.Background()); !errors.Is(err, pool.ErrNotFound) {
		t.Errorf("Load() error = %v, want pool.ErrNotFound", err)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name  string
		codec codec.Codec
	}{
		{"noop", codec.NewNoop()},
		{"gzip", gzipcodec.New()},
	} {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			s, err := New(dir, tc.codec)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			defer s.Close()

			want := []pool.Entry{
				{FEN: "8/8/8/4k3/8/8/4K3/4R3 w - - 0 1", Difficulty: 12.5},
				{FEN: "6k1/5ppp/8/8/8/8/5PPP/3R2K1 w - - 0 1", Difficulty: 600},
			}
			ctx := context.Background()
			if err := s.Save(ctx, want); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			got, err := s.Load(ctx)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if len(got) != len(want) {
				t.Fatalf("Load() returned %d entries, want %d", len(got), len(want))
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
				}
			}
		})
	}
}

func TestSave_WritesManifest(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, gzipcodec.New())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	entries := []pool.Entry{{FEN: "8/8/8/4k3/8/8/4K3/4R3 w - - 0 1", Difficulty: 30}}
	if err := s.Save(context.Background(), entries); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	m, err := ReadManifest(dir)
	if err != nil {
		t.Fatalf("ReadManifest() error = %v", err)
	}
	if m.Version != ManifestVersion {
		t.Errorf("manifest version = %d, want %d", m.Version, ManifestVersion)
	}
	if m.Entries != 1 {
		t.Errorf("manifest entries = %d, want 1", m.Entries)
	}
	if m.Compression != "gz" {
		t.Errorf("manifest compression = %q, want gz", m.Compression)
	}

	if _, err := os.Stat(filepath.Join(dir, "pool.jsonl.gz")); err != nil {
		t.Errorf("pool file missing: %v", err)
	}
}

func TestSave_Rewrites(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, codec.NewNoop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.Save(ctx, []pool.Entry{{FEN: "a w - -", Difficulty: 1}, {FEN: "b w - -", Difficulty: 2}}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Save(ctx, []pool.Entry{{FEN: "c w - -", Difficulty: 3}}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 1 || got[0].FEN != "c w - -" {
		t.Errorf("Load() = %+v, want single rewritten entry", got)
	}
}
