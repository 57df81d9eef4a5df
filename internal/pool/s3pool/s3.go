// Package s3pool implements an AWS S3 pool store.
package s3pool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/discochess/coach/internal/codec"
	"github.com/discochess/coach/internal/pool"
)

var _ pool.Store = (*Store)(nil)

// Store persists the pool as a single object in an S3 bucket.
type Store struct {
	client *s3.Client
	bucket string
	prefix string
	codec  codec.Codec
}

// New creates a new S3 store. The bucket must already exist.
func New(ctx context.Context, bucketName string, c codec.Codec, opts ...Option) (*Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	s := &Store{
		client: s3.NewFromConfig(cfg),
		bucket: bucketName,
		codec:  c,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Option configures a Store.
type Option func(*Store) error

// WithPrefix sets a key prefix for all operations.
func WithPrefix(prefix string) Option {
	return func(s *Store) error {
		s.prefix = strings.TrimSuffix(prefix, "/")
		if s.prefix != "" {
			s.prefix += "/"
		}
		return nil
	}
}

// WithRegion sets the AWS region.
func WithRegion(region string) Option {
	return func(s *Store) error {
		cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
		if err != nil {
			return fmt.Errorf("loading AWS config with region: %w", err)
		}
		s.client = s3.NewFromConfig(cfg)
		return nil
	}
}

// WithEndpoint sets a custom endpoint (for S3-compatible services like MinIO).
func WithEndpoint(endpoint string) Option {
	return func(s *Store) error {
		cfg, err := config.LoadDefaultConfig(context.Background())
		if err != nil {
			return fmt.Errorf("loading AWS config for endpoint: %w", err)
		}
		s.client = s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
		return nil
	}
}

// Load reads and decompresses the persisted pool object.
func (s *Store) Load(ctx context.Context) ([]pool.Entry, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.poolKey()),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, pool.ErrNotFound
		}
		return nil, fmt.Errorf("reading pool object: %w", err)
	}
	defer result.Body.Close()

	decompressor, err := s.codec.Reader(result.Body)
	if err != nil {
		return nil, fmt.Errorf("creating decompressor: %w", err)
	}
	defer decompressor.Close()

	return pool.DecodeEntries(decompressor)
}

// Save rewrites the pool object.
func (s *Store) Save(ctx context.Context, entries []pool.Entry) error {
	var buf bytes.Buffer
	compressor, err := s.codec.Writer(&buf)
	if err != nil {
		return fmt.Errorf("creating compressor: %w", err)
	}
	if err := pool.EncodeEntries(compressor, entries); err != nil {
		compressor.Close()
		return err
	}
	if err := compressor.Close(); err != nil {
		return fmt.Errorf("flushing compressor: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.poolKey()),
		Body:   bytes.NewReader(buf.Bytes()),
	})
	if err != nil {
		return fmt.Errorf("writing pool object: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *Store) Close() error {
	// The S3 client does not need explicit closing.
	return nil
}

func (s *Store) poolKey() string {
	name := "pool.jsonl"
	if ext := s.codec.Extension(); ext != "" {
		name += "." + ext
	}
	return s.prefix + name
}
