package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/quillhq/quill/internal/kv"
)

func TestStore_GetSetDel(t *testing.T) {
	s := NewStore()
	defer s.Close()
	ctx := context.Background()

	if _, err := s.Get(ctx, "k"); !errors.Is(err, kv.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}

	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("expected v, got %q err=%v", got, err)
	}

	if err := s.Del(ctx, "k"); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, kv.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound after delete, got %v", err)
	}

	// Deleting again is idempotent.
	if err := s.Del(ctx, "k"); err != nil {
		t.Errorf("second delete must succeed, got %v", err)
	}
}

func TestStore_CopiesValues(t *testing.T) {
	s := NewStore()
	defer s.Close()
	ctx := context.Background()

	buf := []byte("original")
	if err := s.Set(ctx, "k", buf); err != nil {
		t.Fatal(err)
	}
	buf[0] = 'X'

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "original" {
		t.Errorf("store must copy on write, got %q", got)
	}

	got[0] = 'Y'
	again, _ := s.Get(ctx, "k")
	if string(again) != "original" {
		t.Errorf("store must copy on read, got %q", again)
	}
}
