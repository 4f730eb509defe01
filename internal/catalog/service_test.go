package catalog

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/example/movie-platform/internal/platform/analytics"
	"github.com/example/movie-platform/internal/store"
)

func newTestService() (*Service, *store.MemoryStore) {
	st := store.NewMemoryStore()
	log := zap.NewNop()
	return &Service{Movies: st, Reviews: st, Log: log, Events: analytics.New(nil, log)}, st
}

func TestCreate_RequiresAdmin(t *testing.T) {
	svc, _ := newTestService()
	in := store.MovieInput{Title: "Heat"}

	if _, err := svc.Create(context.Background(), false, in); !errors.Is(err, store.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Create(context.Background(), true, in); err != nil {
		t.Fatalf("admin create: %v", err)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, true, store.MovieInput{Title: "  "}); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("blank title: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Create(ctx, true, store.MovieInput{Title: "x", ReleaseYear: 1700}); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("ancient year: expected ErrInvalidInput, got %v", err)
	}
	// Zero means unknown, not invalid.
	if _, err := svc.Create(ctx, true, store.MovieInput{Title: "x"}); err != nil {
		t.Fatalf("zero year: %v", err)
	}
}

func TestUpdate_PreservesCachedRating(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()

	m, _ := svc.Create(ctx, true, store.MovieInput{Title: "Heat"})
	if _, _, err := st.UpsertReview(ctx, "u1", m.ID, 4, ""); err != nil {
		t.Fatalf("seed review: %v", err)
	}

	updated, err := svc.Update(ctx, true, m.ID, store.MovieInput{Title: "Heat (1995)"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.CachedAvgRating != 4.0 {
		t.Fatalf("update must not touch the cached rating, got %v", updated.CachedAvgRating)
	}
}

func TestDelete_RequiresAdminAndCascades(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()

	m, _ := svc.Create(ctx, true, store.MovieInput{Title: "Heat"})
	rev, _, _ := st.UpsertReview(ctx, "u1", m.ID, 4, "")

	if err := svc.Delete(ctx, false, m.ID); !errors.Is(err, store.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(ctx, true, m.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, err := st.GetReview(ctx, rev.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected cascaded review delete, got %v", err)
	}
}

func TestGet_UnknownMovie(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Get(context.Background(), "nope", ""); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestList_SortByAllowList(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.Create(ctx, true, store.MovieInput{Title: "Heat"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// An unknown sort field falls back instead of erroring.
	movies, total, err := svc.List(ctx, store.MovieFilter{SortBy: "drop table", Page: store.Page{Page: 1, Limit: 10}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(movies) != 1 {
		t.Fatalf("expected 1 movie, got total=%d len=%d", total, len(movies))
	}
}
