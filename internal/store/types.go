package store

import "time"

// Movie is a catalog entry. CachedAvgRating is a denormalized projection of
// the movie's review set: round(mean(rating), 2), or 0 with no reviews. Only
// the rating aggregator writes it.
type Movie struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Genre           string    `json:"genre"`
	ReleaseYear     int       `json:"release_year"`
	Director        string    `json:"director"`
	Cast            string    `json:"cast"`
	Synopsis        string    `json:"synopsis"`
	PosterURL       string    `json:"poster_url"`
	CachedAvgRating float64   `json:"avg_rating"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// MovieInput carries caller-supplied movie fields for create/update.
type MovieInput struct {
	Title       string `json:"title"`
	Genre       string `json:"genre"`
	ReleaseYear int    `json:"release_year"`
	Director    string `json:"director"`
	Cast        string `json:"cast"`
	Synopsis    string `json:"synopsis"`
	PosterURL   string `json:"poster_url"`
}

// Review is a single user's review of a movie. At most one exists per
// (UserID, MovieID) pair.
type Review struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	MovieID    string    `json:"movie_id"`
	Rating     int       `json:"rating"` // 1-5
	ReviewText string    `json:"review_text,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ReviewAuthor is the reviewer's public identity, attached to movie review
// listings.
type ReviewAuthor struct {
	Username   string `json:"username"`
	ProfilePic string `json:"profile_pic,omitempty"`
}

// ReviewWithAuthor is the listing view of a review on a movie page.
type ReviewWithAuthor struct {
	Review
	Author ReviewAuthor `json:"author"`
}

// WatchlistEntry is a pure membership marker; at most one exists per
// (UserID, MovieID) pair.
type WatchlistEntry struct {
	ID      string    `json:"id"`
	UserID  string    `json:"user_id"`
	MovieID string    `json:"movie_id"`
	AddedAt time.Time `json:"added_at"`
}

// WatchlistItem is the joined listing view: the movie plus when it was added.
type WatchlistItem struct {
	Movie   Movie     `json:"movie"`
	AddedAt time.Time `json:"added_at"`
}

// WatchlistStats summarizes one user's watchlist.
type WatchlistStats struct {
	TotalMovies     int             `json:"total_movies"`
	Genres          map[string]int  `json:"genres"`
	RecentAdditions []WatchlistItem `json:"recent_additions"`
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	ProfilePic string    `json:"profile_pic,omitempty"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

type CreateUserParams struct {
	Email        string
	Username     string
	PasswordHash string
	ProfilePic   string
}

// ProfileUpdate carries the changeable account fields. Empty Username or
// Email keeps the current value; a nil ProfilePic keeps it, a non-nil one
// sets it (so an empty picture can be set explicitly).
type ProfileUpdate struct {
	Username   string
	Email      string
	ProfilePic *string
}

// Page is 1-based pagination input.
type Page struct {
	Page  int
	Limit int
}

func (p Page) Offset() int { return (p.Page - 1) * p.Limit }

// Normalize clamps page/limit to sane bounds.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > 50 {
		p.Limit = 10
	}
	return p
}

// MovieFilter drives catalog listings. SortBy must already be allow-listed by
// the caller.
type MovieFilter struct {
	Search   string
	Genre    string
	SortBy   string
	SortDesc bool
	Page     Page
}

// MovieStats is a movie annotated with derived review statistics. Averages
// are unrounded means; rounding happens at the edge that reports them. The
// Window fields cover only reviews created at or after the `since` argument
// of MovieReviewStats and equal the lifetime fields when since is zero.
type MovieStats struct {
	Movie             Movie
	AvgRating         float64
	ReviewCount       int
	WindowAvgRating   float64
	WindowReviewCount int
}
