package memory_test

import (
	"context"
	"testing"

	"github.com/naschastye/salesim/internal/adapters/storage/memory"
)

func TestSetGetOverwrite(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	if err := s.Set(ctx, "dialog:u1:arena:s1", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := s.Get(ctx, "dialog:u1:arena:s1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != `{"a":1}` {
		t.Fatalf("unexpected value: %s", got)
	}

	// Writes are upserts.
	if err := s.Set(ctx, "dialog:u1:arena:s1", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, _ = s.Get(ctx, "dialog:u1:arena:s1")
	if string(got) != `{"a":2}` {
		t.Fatalf("expected overwrite, got %s", got)
	}
}

func TestGetAbsent(t *testing.T) {
	s := memory.NewStore()

	got, err := s.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get of absent key should not error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for absent key, got %s", got)
	}
}

func TestListKeysByPrefix(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	for _, k := range []string{
		"dialog:u1:exam:s1",
		"dialog:u1:arena:s1",
		"dialog:u2:exam:s1",
	} {
		if err := s.Set(ctx, k, []byte(`{}`)); err != nil {
			t.Fatalf("Set %s failed: %v", k, err)
		}
	}

	keys, err := s.ListKeys(ctx, "dialog:u1:")
	if err != nil {
		t.Fatalf("ListKeys failed: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %v", keys)
	}

	keys, _ = s.ListKeys(ctx, "dialog:u1:exam:")
	if len(keys) != 1 || keys[0] != "dialog:u1:exam:s1" {
		t.Fatalf("expected single exam key, got %v", keys)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	_ = s.Set(ctx, "k", []byte(`{}`))
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil || got != nil {
		t.Fatalf("expected absent after delete, got %s err=%v", got, err)
	}
}
