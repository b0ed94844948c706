package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestInMemoryStoreNewestFirstAndBounded(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	for i := 0; i < historyLimit+5; i++ {
		if _, err := s.CreateGeneration(ctx, Generation{BasePrompt: fmt.Sprintf("p%d", i)}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	all, err := s.ListGenerations(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != historyLimit {
		t.Fatalf("len = %d", len(all))
	}
	if all[0].BasePrompt != fmt.Sprintf("p%d", historyLimit+4) {
		t.Errorf("newest first violated: %s", all[0].BasePrompt)
	}

	few, _ := s.ListGenerations(ctx, ListFilter{Limit: 3})
	if len(few) != 3 {
		t.Errorf("limit ignored: %d", len(few))
	}
}

func TestInMemoryStoreGet(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	created, err := s.CreateGeneration(ctx, Generation{Status: StatusSucceeded})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("defaults not applied: %+v", created)
	}

	got, err := s.GetGeneration(ctx, created.ID)
	if err != nil || got.ID != created.ID {
		t.Fatalf("get = %+v, %v", got, err)
	}
	if _, err := s.GetGeneration(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInMemoryStoreFiltersBeforeLimiting(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	s.CreateGeneration(ctx, Generation{Status: StatusFailed, ErrorKind: "content_blocked"})
	for i := 0; i < 10; i++ {
		s.CreateGeneration(ctx, Generation{Status: StatusSucceeded})
	}
	s.CreateGeneration(ctx, Generation{Status: StatusFailed, ErrorKind: "no_image_generated"})

	failed, err := s.ListGenerations(ctx, ListFilter{Limit: 2, Status: StatusFailed})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(failed) != 2 {
		t.Fatalf("len = %d, want both failures past the successes", len(failed))
	}
	if failed[0].ErrorKind != "no_image_generated" || failed[1].ErrorKind != "content_blocked" {
		t.Errorf("order = %s, %s", failed[0].ErrorKind, failed[1].ErrorKind)
	}
}
