package pool

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrNotFound is returned by Load when no pool has been persisted yet.
var ErrNotFound = errors.New("pool: not found")

// Store persists the training-position pool. The pool is read in full at
// session start and rewritten in full after each outcome update.
type Store interface {
	// Load reads the persisted pool. Returns ErrNotFound when no pool
	// exists yet.
	Load(ctx context.Context) ([]Entry, error)

	// Save rewrites the persisted pool with the given entries.
	Save(ctx context.Context, entries []Entry) error

	// Close releases any resources held by the store.
	Close() error
}

// EncodeEntries renders entries as JSONL, one position per line.
func EncodeEntries(w io.Writer, entries []Entry) error {
	enc := json.NewEncoder(w)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("encoding pool entry: %w", err)
		}
	}
	return nil
}

// DecodeEntries parses JSONL pool data, skipping blank lines.
func DecodeEntries(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("parsing pool entry %q: %w", line, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading pool data: %w", err)
	}
	return entries, nil
}
