package s3pool

import (
	"testing"

	"github.com/discochess/coach/internal/codec"
	"github.com/discochess/coach/internal/codec/zstdcodec"
)

func TestWithPrefix(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"prefix", "prefix/"},
		{"prefix/", "prefix/"},
		{"a/b/c", "a/b/c/"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s := &Store{}
			if err := WithPrefix(tt.input)(s); err != nil {
				t.Fatalf("WithPrefix() error = %v", err)
			}
			if s.prefix != tt.want {
				t.Errorf("prefix = %q, want %q", s.prefix, tt.want)
			}
		})
	}
}

func TestStore_poolKey(t *testing.T) {
	tests := []struct {
		name   string
		store  *Store
		want   string
	}{
		{"zstd no prefix", &Store{codec: zstdcodec.New()}, "pool.jsonl.zst"},
		{"noop with prefix", &Store{codec: codec.NewNoop(), prefix: "team-a/"}, "team-a/pool.jsonl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.store.poolKey(); got != tt.want {
				t.Errorf("poolKey() = %q, want %q", got, tt.want)
			}
		})
	}
}
