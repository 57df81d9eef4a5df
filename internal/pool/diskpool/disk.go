// Package diskpool implements a disk-based pool store.
package diskpool

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/discochess/coach/internal/codec"
	"github.com/discochess/coach/internal/pool"
)

var _ pool.Store = (*Store)(nil)

// Store persists the pool as a JSONL file under a root directory, guarded by
// a file lock so two coach processes sharing one pool do not clobber each
// other's rewrites.
type Store struct {
	root  string
	codec codec.Codec
	lock  *flock.Flock
}

// New creates a disk store rooted at dir. The directory is created if needed.
// The codec handles compression of the pool file.
func New(dir string, c codec.Codec) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating pool directory: %w", err)
	}
	return &Store{
		root:  dir,
		codec: c,
		lock:  flock.New(filepath.Join(dir, "pool.lock")),
	}, nil
}

// Load reads and decompresses the persisted pool.
func (s *Store) Load(ctx context.Context) ([]pool.Entry, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := s.lock.RLock(); err != nil {
		return nil, fmt.Errorf("locking pool: %w", err)
	}
	defer s.lock.Unlock()

	raw, err := os.ReadFile(s.poolPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pool.ErrNotFound
		}
		return nil, fmt.Errorf("reading pool file: %w", err)
	}

	reader, err := s.codec.Reader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("creating decompressor: %w", err)
	}
	defer reader.Close()

	return pool.DecodeEntries(reader)
}

// Save rewrites the pool file atomically (write temp, rename) and refreshes
// the manifest.
func (s *Store) Save(ctx context.Context, entries []pool.Entry) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("locking pool: %w", err)
	}
	defer s.lock.Unlock()

	var buf bytes.Buffer
	writer, err := s.codec.Writer(&buf)
	if err != nil {
		return fmt.Errorf("creating compressor: %w", err)
	}
	if err := pool.EncodeEntries(writer, entries); err != nil {
		writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("flushing compressor: %w", err)
	}

	tmp := s.poolPath() + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing pool file: %w", err)
	}
	if err := os.Rename(tmp, s.poolPath()); err != nil {
		return fmt.Errorf("replacing pool file: %w", err)
	}

	if err := WriteManifest(s.root, NewManifest(len(entries), s.codec.Extension())); err != nil {
		return err
	}
	return nil
}

// Close releases any resources held by the store.
func (s *Store) Close() error {
	return nil
}

func (s *Store) poolPath() string {
	name := "pool.jsonl"
	if ext := s.codec.Extension(); ext != "" {
		name += "." + ext
	}
	return filepath.Join(s.root, name)
}
