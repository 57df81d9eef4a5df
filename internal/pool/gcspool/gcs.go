// Package gcspool implements a Google Cloud Storage pool store, for training
// pools shared across machines.
package gcspool

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/discochess/coach/internal/codec"
	"github.com/discochess/coach/internal/pool"
)

var _ pool.Store = (*Store)(nil)

// Store persists the pool as a single object in a GCS bucket.
type Store struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
	codec  codec.Codec
}

// New creates a new GCS store. The bucket must already exist.
func New(ctx context.Context, bucketName string, c codec.Codec, opts ...Option) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}

	s := &Store{
		client: client,
		bucket: client.Bucket(bucketName),
		codec:  c,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets a key prefix for all operations.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = strings.TrimSuffix(prefix, "/")
		if s.prefix != "" {
			s.prefix += "/"
		}
	}
}

// Load reads and decompresses the persisted pool object.
func (s *Store) Load(ctx context.Context) ([]pool.Entry, error) {
	reader, err := s.bucket.Object(s.poolKey()).NewReader(ctx)
	if err != nil {
		if err == storage.ErrObjectNotExist {
			return nil, pool.ErrNotFound
		}
		return nil, fmt.Errorf("creating reader: %w", err)
	}
	defer reader.Close()

	decompressor, err := s.codec.Reader(reader)
	if err != nil {
		return nil, fmt.Errorf("creating decompressor: %w", err)
	}
	defer decompressor.Close()

	return pool.DecodeEntries(decompressor)
}

// Save rewrites the pool object. GCS object writes are atomic, so readers
// never observe a half-written pool.
func (s *Store) Save(ctx context.Context, entries []pool.Entry) error {
	w := s.bucket.Object(s.poolKey()).NewWriter(ctx)

	compressor, err := s.codec.Writer(w)
	if err != nil {
		w.Close()
		return fmt.Errorf("creating compressor: %w", err)
	}
	if err := pool.EncodeEntries(compressor, entries); err != nil {
		compressor.Close()
		w.Close()
		return err
	}
	if err := compressor.Close(); err != nil {
		w.Close()
		return fmt.Errorf("flushing compressor: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("writing pool object: %w", err)
	}
	return nil
}

// Close releases the GCS client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) poolKey() string {
	name := "pool.jsonl"
	if ext := s.codec.Extension(); ext != "" {
		name += "." + ext
	}
	return s.prefix + name
}
