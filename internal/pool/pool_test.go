package pool

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"
)

// seeded returns a deterministic random source for reproducible draws.
func seeded() rand.Source {
	return rand.NewPCG(7, 11)
}

type memStore struct {
	entries []Entry
	saved   bool
	saves   int
}

func (s *memStore) Load(ctx context.Context) ([]Entry, error) {
	if !s.saved {
		return nil, ErrNotFound
	}
	return append([]Entry(nil), s.entries...), nil
}

func (s *memStore) Save(ctx context.Context, entries []Entry) error {
	s.entries = append([]Entry(nil), entries...)
	s.saved = true
	s.saves++
	return nil
}

func (s *memStore) Close() error { return nil }

func TestNew_EmptyStore(t *testing.T) {
	p, err := New(context.Background(), &memStore{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if p.Len() != 0 {
		t.Errorf("Len() = %d, want 0", p.Len())
	}
	if _, err := p.Sample(); !errors.Is(err, ErrEmpty) {
		t.Errorf("Sample() error = %v, want ErrEmpty", err)
	}
}

func TestNew_ClampsCorruptDifficulty(t *testing.T) {
	store := &memStore{
		entries: []Entry{
			{FEN: "a w - -", Difficulty: 0},
			{FEN: "b w - -", Difficulty: -3},
			{FEN: "c w - -", Difficulty: 20},
		},
		saved: true,
	}
	p, err := New(context.Background(), store)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for _, e := range p.Snapshot() {
		if e.Difficulty <= 0 {
			t.Errorf("entry %q loaded with non-positive difficulty %v", e.FEN, e.Difficulty)
		}
	}
}

func TestAdd_Uniqueness(t *testing.T) {
	store := &memStore{}
	p, err := New(context.Background(), store)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	if err := p.Add(ctx, "a w - -", "b w - -", "a w - -"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := p.Add(ctx, "b w - -"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if p.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (duplicates collapse)", p.Len())
	}
	// The second Add had nothing new and must not have persisted again.
	if store.saves != 1 {
		t.Errorf("store saves = %d, want 1", store.saves)
	}
}

func TestRecordOutcome_Feedback(t *testing.T) {
	store := &memStore{}
	ctx := context.Background()
	p, err := New(ctx, store)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	fen := "6k1/5ppp/8/8/8/8/5PPP/3R2K1 w - - 0 1"
	if err := p.Add(ctx, fen); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	// Success records exactly the measured time.
	if err := p.RecordOutcome(ctx, fen, true, 42500*time.Millisecond); err != nil {
		t.Fatalf("RecordOutcome() error = %v", err)
	}
	if got := p.Snapshot()[0].Difficulty; got != 42.5 {
		t.Errorf("difficulty after success = %v, want 42.5", got)
	}

	// Failure records the fixed constant regardless of elapsed time.
	if err := p.RecordOutcome(ctx, fen, false, 3*time.Second); err != nil {
		t.Fatalf("RecordOutcome() error = %v", err)
	}
	if got := p.Snapshot()[0].Difficulty; got != FailedDifficulty {
		t.Errorf("difficulty after failure = %v, want %v", got, FailedDifficulty)
	}

	// Zero elapsed time must still leave a strictly positive statistic.
	if err := p.RecordOutcome(ctx, fen, true, 0); err != nil {
		t.Fatalf("RecordOutcome() error = %v", err)
	}
	if got := p.Snapshot()[0].Difficulty; got <= 0 {
		t.Errorf("difficulty after zero-time success = %v, want > 0", got)
	}
}

func TestRecordOutcome_UnknownPosition(t *testing.T) {
	p, err := New(context.Background(), &memStore{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	err = p.RecordOutcome(context.Background(), "nope", true, time.Second)
	if !errors.Is(err, ErrUnknownPosition) {
		t.Errorf("RecordOutcome() error = %v, want ErrUnknownPosition", err)
	}
}

func TestPersist_SortedAscending(t *testing.T) {
	store := &memStore{}
	ctx := context.Background()
	p, err := New(ctx, store)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := p.Add(ctx, "a w - -", "b w - -", "c w - -"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := p.RecordOutcome(ctx, "b w - -", true, 5*time.Second); err != nil {
		t.Fatalf("RecordOutcome() error = %v", err)
	}
	if err := p.RecordOutcome(ctx, "a w - -", false, 0); err != nil {
		t.Fatalf("RecordOutcome() error = %v", err)
	}

	persisted := store.entries
	for i := 1; i < len(persisted); i++ {
		if persisted[i].Difficulty < persisted[i-1].Difficulty {
			t.Fatalf("persisted pool not sorted ascending: %+v", persisted)
		}
	}
	if persisted[0].FEN != "b w - -" {
		t.Errorf("easiest position = %q, want the solved one", persisted[0].FEN)
	}
}

func TestSample_WeightConvergence(t *testing.T) {
	store := &memStore{
		entries: []Entry{
			{FEN: "easy w - -", Difficulty: 10},
			{FEN: "medium w - -", Difficulty: 30},
			{FEN: "hard w - -", Difficulty: 60},
		},
		saved: true,
	}
	p, err := New(context.Background(), store, WithSource(seeded()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	const draws = 50000
	counts := make(map[string]int)
	for i := 0; i < draws; i++ {
		e, err := p.Sample()
		if err != nil {
			t.Fatalf("Sample() error = %v", err)
		}
		counts[e.FEN]++
	}

	total := 10.0 + 30 + 60
	for _, e := range store.entries {
		want := e.Difficulty / total
		got := float64(counts[e.FEN]) / draws
		if math.Abs(got-want) > 0.01 {
			t.Errorf("empirical frequency of %q = %.3f, want %.3f ± 0.01", e.FEN, got, want)
		}
	}
}
