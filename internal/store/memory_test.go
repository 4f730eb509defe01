package store

import (
	"context"
	"errors"
	"testing"
)

func newTestMovie(t *testing.T, s *MemoryStore, title, genre string) Movie {
	t.Helper()
	m, err := s.CreateMovie(context.Background(), MovieInput{Title: title, Genre: genre, ReleaseYear: 2020})
	if err != nil {
		t.Fatalf("create movie: %v", err)
	}
	return m
}

// ─── rating projection ──────────────────────────────────────────────────────

func TestUpsertReview_RecomputesCachedRating(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	m := newTestMovie(t, s, "Heat", "crime")

	for user, rating := range map[string]int{"u1": 4, "u2": 5, "u3": 3} {
		if _, _, err := s.UpsertReview(ctx, user, m.ID, rating, ""); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	got, _ := s.GetMovie(ctx, m.ID)
	if got.CachedAvgRating != 4.0 {
		t.Fatalf("expected avg 4.0, got %v", got.CachedAvgRating)
	}
}

func TestUpsertReview_ResubmitUpdatesInPlace(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	m := newTestMovie(t, s, "Heat", "crime")

	first, created, err := s.UpsertReview(ctx, "u1", m.ID, 2, "meh")
	if err != nil || !created {
		t.Fatalf("expected created review, got created=%v err=%v", created, err)
	}
	second, created, err := s.UpsertReview(ctx, "u1", m.ID, 5, "rewatched, great")
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if created {
		t.Fatal("resubmit must update, not create")
	}
	if second.ID != first.ID {
		t.Fatalf("resubmit changed review identity: %q -> %q", first.ID, second.ID)
	}

	revs, total, err := s.ListMovieReviews(ctx, m.ID, Page{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(revs) != 1 {
		t.Fatalf("expected exactly one review, got total=%d len=%d", total, len(revs))
	}
	if revs[0].Rating != 5 {
		t.Fatalf("expected updated rating 5, got %d", revs[0].Rating)
	}

	got, _ := s.GetMovie(ctx, m.ID)
	if got.CachedAvgRating != 5.0 {
		t.Fatalf("expected avg 5.0 after update, got %v", got.CachedAvgRating)
	}
}

func TestDeleteReview_RecomputesCachedRating(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	m := newTestMovie(t, s, "Heat", "crime")

	rev, _, _ := s.UpsertReview(ctx, "u1", m.ID, 2, "")
	_, _, _ = s.UpsertReview(ctx, "u2", m.ID, 4, "")
	_, _, _ = s.UpsertReview(ctx, "u3", m.ID, 4, "")

	if err := s.DeleteReview(ctx, rev.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ := s.GetMovie(ctx, m.ID)
	if got.CachedAvgRating != 4.0 {
		t.Fatalf("expected avg 4.0 after delete, got %v", got.CachedAvgRating)
	}

	// Removing the last reviews resets the projection to 0.
	for _, r := range []string{"u2", "u3"} {
		revs, _, _ := s.ListUserReviews(ctx, r, Page{Page: 1, Limit: 10})
		_ = s.DeleteReview(ctx, revs[0].ID)
	}
	got, _ = s.GetMovie(ctx, m.ID)
	if got.CachedAvgRating != 0 {
		t.Fatalf("expected avg 0 with no reviews, got %v", got.CachedAvgRating)
	}
}

func TestUpsertReview_UnknownMovie(t *testing.T) {
	s := NewMemoryStore()
	if _, _, err := s.UpsertReview(context.Background(), "u1", "nope", 5, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// ─── cascade ────────────────────────────────────────────────────────────────

func TestDeleteMovie_Cascades(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	m := newTestMovie(t, s, "Heat", "crime")

	rev, _, _ := s.UpsertReview(ctx, "u1", m.ID, 4, "")
	_, _ = s.AddWatchlistEntry(ctx, "u1", m.ID)

	if err := s.DeleteMovie(ctx, m.ID); err != nil {
		t.Fatalf("delete movie: %v", err)
	}
	if _, err := s.GetReview(ctx, rev.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected review gone, got %v", err)
	}
	ok, _ := s.WatchlistContains(ctx, "u1", m.ID)
	if ok {
		t.Fatal("expected watchlist entry gone")
	}
}

// ─── watchlist uniqueness ───────────────────────────────────────────────────

func TestWatchlist_AddIsUnique(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	m := newTestMovie(t, s, "Heat", "crime")

	if _, err := s.AddWatchlistEntry(ctx, "u1", m.ID); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if _, err := s.AddWatchlistEntry(ctx, "u1", m.ID); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	// A different user is unaffected.
	if _, err := s.AddWatchlistEntry(ctx, "u2", m.ID); err != nil {
		t.Fatalf("other user add: %v", err)
	}

	if err := s.RemoveWatchlistEntry(ctx, "u1", m.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.RemoveWatchlistEntry(ctx, "u1", m.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second remove, got %v", err)
	}
}

func TestWatchlistStats(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	crime := newTestMovie(t, s, "Heat", "crime")
	scifi := newTestMovie(t, s, "Arrival", "sci-fi")
	crime2 := newTestMovie(t, s, "Se7en", "crime")
	for _, m := range []Movie{crime, scifi, crime2} {
		if _, err := s.AddWatchlistEntry(ctx, "u1", m.ID); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	stats, err := s.GetWatchlistStats(ctx, "u1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalMovies != 3 {
		t.Fatalf("expected 3 movies, got %d", stats.TotalMovies)
	}
	if stats.Genres["crime"] != 2 || stats.Genres["sci-fi"] != 1 {
		t.Fatalf("unexpected genre counts: %v", stats.Genres)
	}
	if len(stats.RecentAdditions) != 3 {
		t.Fatalf("expected 3 recent additions, got %d", len(stats.RecentAdditions))
	}
}

// ─── listing ────────────────────────────────────────────────────────────────

func TestListMovies_FilterSortPaginate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	newTestMovie(t, s, "Alien", "sci-fi")
	newTestMovie(t, s, "Blade Runner", "sci-fi")
	newTestMovie(t, s, "Casablanca", "romance")

	movies, total, err := s.ListMovies(ctx, MovieFilter{Genre: "sci-fi", SortBy: "title", Page: Page{Page: 1, Limit: 1}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected total 2, got %d", total)
	}
	if len(movies) != 1 || movies[0].Title != "Alien" {
		t.Fatalf("expected first page ['Alien'], got %v", movies)
	}

	movies, _, _ = s.ListMovies(ctx, MovieFilter{Genre: "sci-fi", SortBy: "title", SortDesc: true, Page: Page{Page: 1, Limit: 1}})
	if len(movies) != 1 || movies[0].Title != "Blade Runner" {
		t.Fatalf("expected desc first page ['Blade Runner'], got %v", movies)
	}

	movies, _, _ = s.ListMovies(ctx, MovieFilter{Search: "runner", Page: Page{Page: 1, Limit: 10}})
	if len(movies) != 1 || movies[0].Title != "Blade Runner" {
		t.Fatalf("expected search hit 'Blade Runner', got %v", movies)
	}
}

func TestListMovies_PageBeyondEnd(t *testing.T) {
	s := NewMemoryStore()
	newTestMovie(t, s, "Alien", "sci-fi")

	movies, total, err := s.ListMovies(context.Background(), MovieFilter{Page: Page{Page: 5, Limit: 10}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(movies) != 0 {
		t.Fatalf("expected empty page with total 1, got total=%d len=%d", total, len(movies))
	}
}

// ─── users ──────────────────────────────────────────────────────────────────

func TestCreateUser_DuplicateLogin(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, CreateUserParams{Email: "a@b.c", Username: "alice", PasswordHash: "x"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateUser(ctx, CreateUserParams{Email: "A@B.C", Username: "other", PasswordHash: "x"}); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists for email, got %v", err)
	}
	if _, err := s.CreateUser(ctx, CreateUserParams{Email: "z@b.c", Username: "ALICE", PasswordHash: "x"}); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists for username, got %v", err)
	}
}

func TestUpdateUserProfile(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	u, _ := s.CreateUser(ctx, CreateUserParams{Email: "a@b.c", Username: "alice", PasswordHash: "x"})
	_, _ = s.CreateUser(ctx, CreateUserParams{Email: "b@b.c", Username: "bob", PasswordHash: "x"})

	// Empty fields keep current values.
	got, err := s.UpdateUserProfile(ctx, u.ID, ProfileUpdate{})
	if err != nil {
		t.Fatalf("noop update: %v", err)
	}
	if got.Username != "alice" || got.Email != "a@b.c" {
		t.Fatalf("noop update changed fields: %+v", got)
	}

	pic := "https://cdn/pic.png"
	got, err = s.UpdateUserProfile(ctx, u.ID, ProfileUpdate{Username: "alice2", ProfilePic: &pic})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Username != "alice2" || got.ProfilePic != pic {
		t.Fatalf("update not applied: %+v", got)
	}

	// Someone else's username or email is a conflict, case-insensitively.
	if _, err := s.UpdateUserProfile(ctx, u.ID, ProfileUpdate{Username: "BOB"}); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists for username, got %v", err)
	}
	if _, err := s.UpdateUserProfile(ctx, u.ID, ProfileUpdate{Email: "B@B.C"}); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists for email, got %v", err)
	}

	// Re-asserting your own username is not a conflict.
	if _, err := s.UpdateUserProfile(ctx, u.ID, ProfileUpdate{Username: "alice2"}); err != nil {
		t.Fatalf("own username: %v", err)
	}

	if _, err := s.UpdateUserProfile(ctx, "nope", ProfileUpdate{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetUserPassword(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	u, _ := s.CreateUser(ctx, CreateUserParams{Email: "a@b.c", Username: "alice", PasswordHash: "old"})
	if err := s.SetUserPassword(ctx, u.ID, "new"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	hash, err := s.UserPasswordHash(ctx, u.ID)
	if err != nil {
		t.Fatalf("password hash: %v", err)
	}
	if hash != "new" {
		t.Fatalf("expected 'new', got %q", hash)
	}

	if err := s.SetUserPassword(ctx, "nope", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.UserPasswordHash(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListMovieReviews_AttachesAuthor(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	m := newTestMovie(t, s, "Heat", "crime")

	u, _ := s.CreateUser(ctx, CreateUserParams{Email: "a@b.c", Username: "alice", PasswordHash: "x", ProfilePic: "pic.png"})
	_, _, _ = s.UpsertReview(ctx, u.ID, m.ID, 5, "great")
	// A review whose account is gone still lists, with a blank author.
	_, _, _ = s.UpsertReview(ctx, "ghost", m.ID, 3, "")

	revs, total, err := s.ListMovieReviews(ctx, m.ID, Page{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(revs) != 2 {
		t.Fatalf("expected 2 reviews, got total=%d len=%d", total, len(revs))
	}
	byUser := map[string]ReviewAuthor{}
	for _, r := range revs {
		byUser[r.UserID] = r.Author
	}
	if a := byUser[u.ID]; a.Username != "alice" || a.ProfilePic != "pic.png" {
		t.Fatalf("expected alice's identity attached, got %+v", a)
	}
	if a := byUser["ghost"]; a.Username != "" || a.ProfilePic != "" {
		t.Fatalf("expected blank author for missing account, got %+v", a)
	}
}

func TestFindUserByLogin(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	u, _ := s.CreateUser(ctx, CreateUserParams{Email: "a@b.c", Username: "alice", PasswordHash: "hash"})

	got, hash, err := s.FindUserByLogin(ctx, "Alice")
	if err != nil {
		t.Fatalf("find by username: %v", err)
	}
	if got.ID != u.ID || hash != "hash" {
		t.Fatalf("unexpected user/hash: %v %q", got, hash)
	}
	if _, _, err := s.FindUserByLogin(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
