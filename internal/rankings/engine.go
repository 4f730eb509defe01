// Package rankings computes the category listings (top-rated, trending,
// latest, most-reviewed) from the review corpus. All ordering and tie-break
// rules live in this package so they can be audited in one place.
package rankings

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/movie-platform/internal/ratings"
	"github.com/example/movie-platform/internal/store"
)

// Mode selects one of the ranking queries.
type Mode int

const (
	TopRated Mode = iota
	Trending
	Latest
	MostReviewed
	HighestRated
)

const (
	DefaultLimit      = 10
	DefaultMinReviews = 3
	DefaultWindowDays = 30

	// highest-rated is top-rated with a fixed, stricter threshold
	highestRatedMinReviews = 5
)

// Params tunes a ranking query. Zero values take the mode's defaults.
type Params struct {
	Limit      int
	MinReviews int // TopRated only; HighestRated pins its own
	WindowDays int // Trending only
}

// MovieWithStats is a movie annotated with the statistics that ranked it.
// AvgRating is rounded to two decimal places and is 0 when no qualifying
// review exists; it is never absent.
type MovieWithStats struct {
	store.Movie
	AvgRating         float64 `json:"avg_rating"`
	ReviewCount       int     `json:"review_count"`
	RecentReviewCount int     `json:"recent_review_count,omitempty"`
}

// ModeFromCategory resolves a category path segment to a Mode. The valid
// names are the ones the original category listing exposes.
func ModeFromCategory(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "latest":
		return Latest, nil
	case "highest-rated":
		return HighestRated, nil
	case "most-reviewed":
		return MostReviewed, nil
	default:
		return 0, fmt.Errorf("%w: unknown category %q, valid categories: latest, highest-rated, most-reviewed", store.ErrInvalidInput, name)
	}
}

type Engine struct {
	Movies store.MovieStore
}

// Query runs one ranking mode and returns at most p.Limit movies. Fewer
// qualifying movies than the limit is not an error.
func (e *Engine) Query(ctx context.Context, mode Mode, p Params) ([]MovieWithStats, error) {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.MinReviews <= 0 {
		p.MinReviews = DefaultMinReviews
	}
	if p.WindowDays <= 0 {
		p.WindowDays = DefaultWindowDays
	}

	var since time.Time
	if mode == Trending {
		since = time.Now().UTC().AddDate(0, 0, -p.WindowDays)
	}

	stats, err := e.Movies.MovieReviewStats(ctx, since)
	if err != nil {
		return nil, err
	}

	// Order on the unrounded means; rounding is display-only. Two movies
	// whose raw averages fall in the same rounded bucket must not tie.
	var picked []store.MovieStats
	for _, st := range stats {
		if qualifies(mode, st, p.MinReviews) {
			picked = append(picked, st)
		}
	}
	sort.SliceStable(picked, byMode(mode, picked))

	if len(picked) > p.Limit {
		picked = picked[:p.Limit]
	}
	out := make([]MovieWithStats, 0, len(picked))
	for _, st := range picked {
		out = append(out, annotate(mode, st))
	}
	return out, nil
}

func qualifies(mode Mode, st store.MovieStats, minReviews int) bool {
	switch mode {
	case TopRated:
		return st.ReviewCount >= minReviews
	case HighestRated:
		return st.ReviewCount >= highestRatedMinReviews
	case Trending:
		return st.WindowReviewCount > 0
	case MostReviewed:
		return st.ReviewCount > 0
	default: // Latest includes everything, even unreviewed movies
		return true
	}
}

func annotate(mode Mode, st store.MovieStats) MovieWithStats {
	m := MovieWithStats{
		Movie:       st.Movie,
		AvgRating:   ratings.Round2(st.AvgRating),
		ReviewCount: st.ReviewCount,
	}
	if mode == Trending {
		// trending reports in-window statistics only
		m.AvgRating = ratings.Round2(st.WindowAvgRating)
		m.ReviewCount = st.WindowReviewCount
		m.RecentReviewCount = st.WindowReviewCount
	}
	return m
}

// byMode returns the ordering for a mode over raw statistics. Tie-break
// rules:
//
//	TopRated/HighestRated: avg desc, then review count desc
//	Trending:              in-window count desc, then in-window avg desc
//	Latest:                created_at desc
//	MostReviewed:          review count desc, then avg desc
func byMode(mode Mode, sts []store.MovieStats) func(i, j int) bool {
	switch mode {
	case Trending:
		return func(i, j int) bool {
			if sts[i].WindowReviewCount != sts[j].WindowReviewCount {
				return sts[i].WindowReviewCount > sts[j].WindowReviewCount
			}
			return sts[i].WindowAvgRating > sts[j].WindowAvgRating
		}
	case Latest:
		return func(i, j int) bool {
			return sts[i].Movie.CreatedAt.After(sts[j].Movie.CreatedAt)
		}
	case MostReviewed:
		return func(i, j int) bool {
			if sts[i].ReviewCount != sts[j].ReviewCount {
				return sts[i].ReviewCount > sts[j].ReviewCount
			}
			return sts[i].AvgRating > sts[j].AvgRating
		}
	default: // TopRated, HighestRated
		return func(i, j int) bool {
			if sts[i].AvgRating != sts[j].AvgRating {
				return sts[i].AvgRating > sts[j].AvgRating
			}
			return sts[i].ReviewCount > sts[j].ReviewCount
		}
	}
}
