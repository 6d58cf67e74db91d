package kvstore

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

// exerciseStore runs the same contract checks against any backend.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.Set(ctx, "views/main", []byte(`[1,2]`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := s.Get(ctx, "views/main")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != `[1,2]` {
		t.Errorf("expected [1,2], got %s", got)
	}

	if err := s.Set(ctx, "views/main", []byte(`[]`)); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	got, _ = s.Get(ctx, "views/main")
	if string(got) != `[]` {
		t.Errorf("expected overwritten value, got %s", got)
	}

	if err := s.Delete(ctx, "views/main"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, "views/main"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, "never-set"); err != nil {
		t.Errorf("expected deleting a missing key to succeed, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemoryCopiesValues(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	buf := []byte("abc")
	m.Set(ctx, "k", buf)
	buf[0] = 'x'

	got, _ := m.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("expected stored copy abc, got %s", got)
	}
	if keys := m.Keys(); len(keys) != 1 || keys[0] != "k" {
		t.Errorf("expected [k], got %v", keys)
	}
}

func TestDirStore(t *testing.T) {
	d, err := NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewDir failed: %v", err)
	}
	exerciseStore(t, d)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)

	r, err := NewRedis(context.Background(), "redis://"+mr.Addr(), "tablekit:")
	if err != nil {
		t.Fatalf("NewRedis failed: %v", err)
	}
	defer r.Close()

	exerciseStore(t, r)

	if err := r.Set(context.Background(), "x", []byte("1")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !mr.Exists("tablekit:x") {
		t.Error("expected key to be stored under the prefix")
	}
}

func TestNewRedisBadURL(t *testing.T) {
	if _, err := NewRedis(context.Background(), "not a url", ""); err == nil {
		t.Error("expected error for invalid redis url")
	}
}
