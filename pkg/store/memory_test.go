package store

import (
	"context"
	"errors"
	"testing"

	"github.com/RainBoltz/v-network-graph/pkg/scene"
)

func TestMemoryStoreCRUD(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	rec := &Record{Name: "demo", Scene: &scene.Scene{
		Nodes: []scene.NodeRecord{{ID: "a"}},
	}}
	if err := s.Put(ctx, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("Put left ID empty")
	}
	if rec.CreatedAt.IsZero() || rec.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}

	got, err := s.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "demo" || len(got.Scene.Nodes) != 1 {
		t.Errorf("Get = %+v, want stored record", got)
	}

	// Replacing keeps the creation time.
	created := rec.CreatedAt
	rec.Name = "demo2"
	if err := s.Put(ctx, rec); err != nil {
		t.Fatalf("Put replace: %v", err)
	}
	got, _ = s.Get(ctx, rec.ID)
	if got.Name != "demo2" || !got.CreatedAt.Equal(created) {
		t.Errorf("replace = name %q created %v, want demo2 / %v", got.Name, got.CreatedAt, created)
	}

	sums, err := s.List(ctx)
	if err != nil || len(sums) != 1 || sums[0].ID != rec.ID {
		t.Errorf("List = %v err %v, want one summary", sums, err)
	}

	if err := s.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete err = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("repeat Delete err = %v, want ErrNotFound", err)
	}
}
