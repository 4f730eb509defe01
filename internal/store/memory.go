package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/movie-platform/internal/ratings"
)

// MemoryStore is a development and test implementation. A single mutex
// covers all entity maps, which gives review mutations and the rating
// recompute the same atomic scope the Postgres backend gets from a
// transaction.
type MemoryStore struct {
	mu        sync.RWMutex
	movies    map[string]Movie
	reviews   map[string]Review
	watchlist map[string]WatchlistEntry
	users     map[string]User
	passwords map[string]string // user id -> bcrypt hash
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		movies:    make(map[string]Movie),
		reviews:   make(map[string]Review),
		watchlist: make(map[string]WatchlistEntry),
		users:     make(map[string]User),
		passwords: make(map[string]string),
	}
}

var _ Store = (*MemoryStore)(nil)

// ── movies ─────────────────────────────────────────────────────────────────

func (s *MemoryStore) CreateMovie(_ context.Context, in MovieInput) (Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	m := Movie{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Genre:       in.Genre,
		ReleaseYear: in.ReleaseYear,
		Director:    in.Director,
		Cast:        in.Cast,
		Synopsis:    in.Synopsis,
		PosterURL:   in.PosterURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.movies[m.ID] = m
	return m, nil
}

func (s *MemoryStore) GetMovie(_ context.Context, id string) (Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.movies[id]
	if !ok {
		return Movie{}, ErrNotFound
	}
	return m, nil
}

func (s *MemoryStore) UpdateMovie(_ context.Context, id string, in MovieInput) (Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.movies[id]
	if !ok {
		return Movie{}, ErrNotFound
	}
	m.Title = in.Title
	m.Genre = in.Genre
	m.ReleaseYear = in.ReleaseYear
	m.Director = in.Director
	m.Cast = in.Cast
	m.Synopsis = in.Synopsis
	m.PosterURL = in.PosterURL
	m.UpdatedAt = time.Now().UTC()
	s.movies[id] = m
	return m, nil
}

func (s *MemoryStore) DeleteMovie(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.movies[id]; !ok {
		return ErrNotFound
	}
	delete(s.movies, id)
	// cascade
	for rid, r := range s.reviews {
		if r.MovieID == id {
			delete(s.reviews, rid)
		}
	}
	for wid, w := range s.watchlist {
		if w.MovieID == id {
			delete(s.watchlist, wid)
		}
	}
	return nil
}

func (s *MemoryStore) ListMovies(_ context.Context, f MovieFilter) ([]Movie, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(f.Search))
	genre := strings.ToLower(strings.TrimSpace(f.Genre))

	var out []Movie
	for _, m := range s.movies {
		if search != "" &&
			!strings.Contains(strings.ToLower(m.Title), search) &&
			!strings.Contains(strings.ToLower(m.Director), search) &&
			!strings.Contains(strings.ToLower(m.Cast), search) {
			continue
		}
		if genre != "" && !strings.Contains(strings.ToLower(m.Genre), genre) {
			continue
		}
		out = append(out, m)
	}

	sortMovies(out, f.SortBy, f.SortDesc)
	total := len(out)
	out = paginate(out, f.Page.Normalize())
	return out, total, nil
}

func sortMovies(ms []Movie, sortBy string, desc bool) {
	sort.Slice(ms, func(i, j int) bool {
		a, b := ms[i], ms[j]
		if desc {
			a, b = b, a
		}
		switch sortBy {
		case "title":
			if a.Title != b.Title {
				return a.Title < b.Title
			}
		case "release_year":
			if a.ReleaseYear != b.ReleaseYear {
				return a.ReleaseYear < b.ReleaseYear
			}
		case "avg_rating":
			if a.CachedAvgRating != b.CachedAvgRating {
				return a.CachedAvgRating < b.CachedAvgRating
			}
		default: // created_at
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		}
		return ms[i].ID < ms[j].ID
	})
}

func paginate[T any](items []T, p Page) []T {
	off := p.Offset()
	if off >= len(items) {
		return nil
	}
	items = items[off:]
	if len(items) > p.Limit {
		items = items[:p.Limit]
	}
	return items
}

func (s *MemoryStore) MovieExists(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.movies[id]
	return ok, nil
}

func (s *MemoryStore) MovieReviewStats(_ context.Context, since time.Time) ([]MovieStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []MovieStats
	for _, m := range s.movies {
		st := MovieStats{Movie: m}
		var sum, windowSum int
		for _, r := range s.reviews {
			if r.MovieID != m.ID {
				continue
			}
			sum += r.Rating
			st.ReviewCount++
			if since.IsZero() || !r.CreatedAt.Before(since) {
				windowSum += r.Rating
				st.WindowReviewCount++
			}
		}
		if st.ReviewCount > 0 {
			st.AvgRating = float64(sum) / float64(st.ReviewCount)
		}
		if st.WindowReviewCount > 0 {
			st.WindowAvgRating = float64(windowSum) / float64(st.WindowReviewCount)
		}
		out = append(out, st)
	}
	// Deterministic base order; the ranking engine re-sorts per mode.
	sort.Slice(out, func(i, j int) bool { return out[i].Movie.ID < out[j].Movie.ID })
	return out, nil
}

// ── reviews ────────────────────────────────────────────────────────────────

func (s *MemoryStore) UpsertReview(_ context.Context, userID, movieID string, rating int, text string) (Review, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.movies[movieID]; !ok {
		return Review{}, false, ErrNotFound
	}

	now := time.Now().UTC()
	for id, r := range s.reviews {
		if r.UserID == userID && r.MovieID == movieID {
			r.Rating = rating
			r.ReviewText = text
			r.UpdatedAt = now
			s.reviews[id] = r
			s.recomputeRatingLocked(movieID)
			return r, false, nil
		}
	}

	r := Review{
		ID:         uuid.NewString(),
		UserID:     userID,
		MovieID:    movieID,
		Rating:     rating,
		ReviewText: text,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.reviews[r.ID] = r
	s.recomputeRatingLocked(movieID)
	return r, true, nil
}

// recomputeRatingLocked rewrites the movie's cached average from its current
// reviews. Caller holds the write lock.
func (s *MemoryStore) recomputeRatingLocked(movieID string) {
	m, ok := s.movies[movieID]
	if !ok {
		return // movie deleted in the same operation
	}
	var rs []int
	for _, r := range s.reviews {
		if r.MovieID == movieID {
			rs = append(rs, r.Rating)
		}
	}
	m.CachedAvgRating = ratings.Average(rs)
	s.movies[movieID] = m
}

func (s *MemoryStore) GetReview(_ context.Context, id string) (Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reviews[id]
	if !ok {
		return Review{}, ErrNotFound
	}
	return r, nil
}

func (s *MemoryStore) DeleteReview(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reviews[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.reviews, id)
	s.recomputeRatingLocked(r.MovieID)
	return nil
}

func (s *MemoryStore) ListMovieReviews(_ context.Context, movieID string, p Page) ([]ReviewWithAuthor, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ReviewWithAuthor
	for _, r := range s.reviews {
		if r.MovieID != movieID {
			continue
		}
		rw := ReviewWithAuthor{Review: r}
		if u, ok := s.users[r.UserID]; ok {
			rw.Author = ReviewAuthor{Username: u.Username, ProfilePic: u.ProfilePic}
		}
		out = append(out, rw)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	total := len(out)
	return paginate(out, p.Normalize()), total, nil
}

func (s *MemoryStore) ListUserReviews(_ context.Context, userID string, p Page) ([]Review, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Review
	for _, r := range s.reviews {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	total := len(out)
	return paginate(out, p.Normalize()), total, nil
}

// ── watchlist ──────────────────────────────────────────────────────────────

func (s *MemoryStore) AddWatchlistEntry(_ context.Context, userID, movieID string) (WatchlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.movies[movieID]; !ok {
		return WatchlistEntry{}, ErrNotFound
	}
	for _, w := range s.watchlist {
		if w.UserID == userID && w.MovieID == movieID {
			return WatchlistEntry{}, ErrAlreadyExists
		}
	}
	w := WatchlistEntry{
		ID:      uuid.NewString(),
		UserID:  userID,
		MovieID: movieID,
		AddedAt: time.Now().UTC(),
	}
	s.watchlist[w.ID] = w
	return w, nil
}

func (s *MemoryStore) RemoveWatchlistEntry(_ context.Context, userID, movieID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, w := range s.watchlist {
		if w.UserID == userID && w.MovieID == movieID {
			delete(s.watchlist, id)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) WatchlistContains(_ context.Context, userID, movieID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, w := range s.watchlist {
		if w.UserID == userID && w.MovieID == movieID {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) ListWatchlist(_ context.Context, userID string, p Page) ([]WatchlistItem, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.watchlistItemsLocked(userID)
	total := len(items)
	return paginate(items, p.Normalize()), total, nil
}

func (s *MemoryStore) watchlistItemsLocked(userID string) []WatchlistItem {
	var items []WatchlistItem
	for _, w := range s.watchlist {
		if w.UserID != userID {
			continue
		}
		m, ok := s.movies[w.MovieID]
		if !ok {
			continue
		}
		items = append(items, WatchlistItem{Movie: m, AddedAt: w.AddedAt})
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].AddedAt.Equal(items[j].AddedAt) {
			return items[i].AddedAt.After(items[j].AddedAt)
		}
		return items[i].Movie.ID < items[j].Movie.ID
	})
	return items
}

func (s *MemoryStore) GetWatchlistStats(_ context.Context, userID string) (WatchlistStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.watchlistItemsLocked(userID)
	stats := WatchlistStats{
		TotalMovies: len(items),
		Genres:      make(map[string]int),
	}
	for _, it := range items {
		if it.Movie.Genre != "" {
			stats.Genres[it.Movie.Genre]++
		}
	}
	recent := items
	if len(recent) > 5 {
		recent = recent[:5]
	}
	stats.RecentAdditions = recent
	return stats, nil
}

// ── users ──────────────────────────────────────────────────────────────────

func (s *MemoryStore) CreateUser(_ context.Context, p CreateUserParams) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, p.Email) || strings.EqualFold(u.Username, p.Username) {
			return User{}, ErrAlreadyExists
		}
	}
	u := User{
		ID:         uuid.NewString(),
		Username:   p.Username,
		Email:      p.Email,
		ProfilePic: p.ProfilePic,
		Role:       RoleUser,
		CreatedAt:  time.Now().UTC(),
	}
	s.users[u.ID] = u
	s.passwords[u.ID] = p.PasswordHash
	return u, nil
}

func (s *MemoryStore) FindUserByLogin(_ context.Context, login string) (User, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	login = strings.TrimSpace(login)
	for _, u := range s.users {
		if strings.EqualFold(u.Email, login) || strings.EqualFold(u.Username, login) {
			return u, s.passwords[u.ID], nil
		}
	}
	return User{}, "", ErrNotFound
}

func (s *MemoryStore) GetUser(_ context.Context, id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemoryStore) SetUserRole(_ context.Context, id, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Role = role
	s.users[id] = u
	return nil
}

func (s *MemoryStore) UpdateUserProfile(_ context.Context, id string, p ProfileUpdate) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	if p.Username != "" {
		for uid, other := range s.users {
			if uid != id && strings.EqualFold(other.Username, p.Username) {
				return User{}, ErrAlreadyExists
			}
		}
		u.Username = p.Username
	}
	if p.Email != "" {
		for uid, other := range s.users {
			if uid != id && strings.EqualFold(other.Email, p.Email) {
				return User{}, ErrAlreadyExists
			}
		}
		u.Email = p.Email
	}
	if p.ProfilePic != nil {
		u.ProfilePic = *p.ProfilePic
	}
	s.users[id] = u
	return u, nil
}

func (s *MemoryStore) SetUserPassword(_ context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	s.passwords[id] = passwordHash
	return nil
}

func (s *MemoryStore) UserPasswordHash(_ context.Context, id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.passwords[id]
	if !ok {
		return "", ErrNotFound
	}
	return h, nil
}
