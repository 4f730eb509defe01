package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/movie-platform/internal/accounts"
	"github.com/example/movie-platform/internal/catalog"
	"github.com/example/movie-platform/internal/handlers"
	"github.com/example/movie-platform/internal/platform/analytics"
	"github.com/example/movie-platform/internal/platform/auth"
	"github.com/example/movie-platform/internal/platform/config"
	"github.com/example/movie-platform/internal/platform/db"
	"github.com/example/movie-platform/internal/platform/httpserver"
	"github.com/example/movie-platform/internal/platform/logging"
	"github.com/example/movie-platform/internal/platform/natsconn"
	"github.com/example/movie-platform/internal/platform/run"
	"github.com/example/movie-platform/internal/rankings"
	"github.com/example/movie-platform/internal/reviews"
	"github.com/example/movie-platform/internal/store"
	"github.com/example/movie-platform/internal/watchlist"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(cfg.LogLevel, cfg.ServiceName)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	st, ready, closeStore := initStore(log)
	defer closeStore()

	events := initAnalytics(log)

	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		log.Error("JWT_SECRET is required")
		run.Exit(1)
	}
	tokens := accounts.TokenService{
		Secret:         []byte(secret),
		AccessTokenTTL: envDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
	}
	verifier := auth.JWTVerifier{Secret: []byte(secret)}

	accountSvc := &accounts.Service{
		Users:         st,
		Tokens:        tokens,
		Log:           log,
		Events:        events,
		AdminUsername: strings.TrimSpace(os.Getenv("ADMIN_USERNAME")),
	}
	catalogSvc := &catalog.Service{Movies: st, Reviews: st, Log: log, Events: events}
	reviewSvc := &reviews.Service{Reviews: st, Movies: st, Users: st, Log: log, Events: events}
	watchlistSvc := &watchlist.Service{Watchlist: st, Movies: st, Log: log, Events: events}
	engine := &rankings.Engine{Movies: st}

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{ReadyFunc: ready})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/register", handlers.Register(accountSvc))
		r.Post("/auth/login", handlers.Login(accountSvc))

		r.Get("/movies", handlers.ListMovies(catalogSvc))
		r.Get("/movies/{movie_id}", handlers.GetMovie(catalogSvc))
		r.Get("/movies/{movie_id}/reviews", handlers.ListMovieReviews(reviewSvc))
		r.Get("/users/{user_id}/reviews", handlers.ListUserReviews(reviewSvc))

		r.Get("/rankings/top-rated", handlers.TopRated(engine))
		r.Get("/rankings/trending", handlers.Trending(engine))
		r.Get("/rankings/{category}", handlers.Category(engine))

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireUser(verifier))

			r.Get("/auth/me", handlers.Me(accountSvc))
			r.Put("/auth/profile", handlers.UpdateProfile(accountSvc))
			r.Put("/auth/password", handlers.ChangePassword(accountSvc))

			r.Post("/movies/{movie_id}/reviews", handlers.SubmitReview(reviewSvc))
			r.Delete("/reviews/{review_id}", handlers.DeleteReview(reviewSvc))
			r.Get("/me/reviews", handlers.MyReviews(reviewSvc))

			r.Get("/watchlist", handlers.GetWatchlist(watchlistSvc))
			r.Get("/watchlist/stats", handlers.WatchlistStats(watchlistSvc))
			r.Post("/watchlist/{movie_id}", handlers.AddToWatchlist(watchlistSvc))
			r.Delete("/watchlist/{movie_id}", handlers.RemoveFromWatchlist(watchlistSvc))
			r.Get("/watchlist/{movie_id}/status", handlers.CheckWatchlist(watchlistSvc))
			r.Post("/watchlist/{movie_id}/toggle", handlers.ToggleWatchlist(watchlistSvc))

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAdmin)
				r.Post("/movies", handlers.CreateMovie(catalogSvc))
				r.Put("/movies/{movie_id}", handlers.UpdateMovie(catalogSvc))
				r.Delete("/movies/{movie_id}", handlers.DeleteMovie(catalogSvc))
			})
		})
	})

	srv := httpserver.New(httpserver.Options{Addr: cfg.HTTP.Addr, ServiceName: cfg.ServiceName, Router: r})

	runner := run.New(log)
	code := runner.WithSignals(func(ctx context.Context) error {
		go func() {
			<-ctx.Done()
			_ = srv.Shutdown(context.Background())
		}()
		return srv.Start(log)
	})

	log.Info("exit", zap.Int("code", code))
	run.Exit(code)
}

// initStore picks the backend: Postgres when DATABASE_URL is set, otherwise
// an in-memory store outside production.
func initStore(log *zap.Logger) (store.Store, func() error, func()) {
	if strings.TrimSpace(os.Getenv("DATABASE_URL")) != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		pool, err := db.Open(ctx)
		if err != nil {
			log.Error("postgres open", zap.Error(err))
			run.Exit(1)
		}
		ready := func() error {
			c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Ping(c)
		}
		return store.NewPostgresStore(pool, log), ready, pool.Close
	}

	if strings.EqualFold(strings.TrimSpace(os.Getenv("APP_ENV")), "production") {
		log.Error("DATABASE_URL is required in production")
		run.Exit(1)
	}
	log.Warn("DATABASE_URL not set, using in-memory store")
	return store.NewMemoryStore(), func() error { return nil }, func() {}
}

// initAnalytics connects to NATS when configured; without NATS_URL the
// publisher is a no-op stub.
func initAnalytics(log *zap.Logger) *analytics.Publisher {
	if strings.TrimSpace(os.Getenv("NATS_URL")) == "" {
		log.Info("NATS_URL not set, analytics disabled")
		return analytics.New(nil, log)
	}
	nc, err := natsconn.Connect(natsconn.Options{Name: "moviedb"})
	if err != nil {
		log.Warn("nats connect failed, analytics disabled", zap.Error(err))
		return analytics.New(nil, log)
	}
	js, err := nc.JetStream(nats.PublishAsyncMaxPending(256))
	if err != nil {
		log.Warn("jetstream init failed, analytics disabled", zap.Error(err))
		return analytics.New(nil, log)
	}
	return analytics.New(js, log)
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
