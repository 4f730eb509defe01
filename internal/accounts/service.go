// Package accounts handles registration and login. The core consumes
// identity only as a resolved (userID, isAdmin) pair; this package is where
// that identity is minted.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/movie-platform/internal/platform/analytics"
	"github.com/example/movie-platform/internal/store"
)

var (
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)
)

// Session is a logged-in identity plus its bearer token.
type Session struct {
	User        store.User `json:"user"`
	AccessToken string     `json:"access_token"`
	ExpiresIn   int64      `json:"expires_in"`
}

type Service struct {
	Users  store.UserStore
	Tokens TokenService
	Log    *zap.Logger
	Events *analytics.Publisher

	// AdminUsername, when set, promotes the matching registration to admin.
	AdminUsername string
}

// Register creates an account and returns a live session.
func (s *Service) Register(ctx context.Context, email, username, password string) (Session, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)

	if !emailRe.MatchString(email) {
		return Session{}, fmt.Errorf("%w: invalid email", store.ErrInvalidInput)
	}
	if !usernameRe.MatchString(username) {
		return Session{}, fmt.Errorf("%w: username must be 3-32 word characters", store.ErrInvalidInput)
	}
	if len(password) < 8 {
		return Session{}, fmt.Errorf("%w: password must be at least 8 characters", store.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, err
	}

	u, err := s.Users.CreateUser(ctx, store.CreateUserParams{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
	})
	if err != nil {
		return Session{}, err
	}

	// Bootstrap admin: promote the configured username on first registration.
	if s.AdminUsername != "" && strings.EqualFold(s.AdminUsername, u.Username) {
		if err := s.Users.SetUserRole(ctx, u.ID, store.RoleAdmin); err != nil {
			s.Log.Warn("admin promotion failed", zap.String("user_id", u.ID), zap.Error(err))
		} else {
			u.Role = store.RoleAdmin
		}
	}

	s.Events.Publish(analytics.SubjectAuthRegistered, "auth_registered", u.ID, nil)
	return s.newSession(u)
}

// Login authenticates by email or username.
func (s *Service) Login(ctx context.Context, login, password string) (Session, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return Session{}, fmt.Errorf("%w: login and password are required", store.ErrInvalidInput)
	}

	u, hash, err := s.Users.FindUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, fmt.Errorf("%w: invalid credentials", store.ErrForbidden)
		}
		return Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return Session{}, fmt.Errorf("%w: invalid credentials", store.ErrForbidden)
	}

	s.Events.Publish(analytics.SubjectAuthLoggedIn, "auth_logged_in", u.ID, nil)
	return s.newSession(u)
}

// Profile returns the account behind a session token.
func (s *Service) Profile(ctx context.Context, userID string) (store.User, error) {
	return s.Users.GetUser(ctx, userID)
}

// UpdateProfile applies a partial profile update. Empty username/email keep
// their current values; a supplied one is validated like at registration.
func (s *Service) UpdateProfile(ctx context.Context, userID string, p store.ProfileUpdate) (store.User, error) {
	p.Username = strings.TrimSpace(p.Username)
	p.Email = strings.TrimSpace(p.Email)

	if p.Username != "" && !usernameRe.MatchString(p.Username) {
		return store.User{}, fmt.Errorf("%w: username must be 3-32 word characters", store.ErrInvalidInput)
	}
	if p.Email != "" && !emailRe.MatchString(p.Email) {
		return store.User{}, fmt.Errorf("%w: invalid email", store.ErrInvalidInput)
	}

	u, err := s.Users.UpdateUserProfile(ctx, userID, p)
	if err != nil {
		return store.User{}, err
	}
	s.Events.Publish(analytics.SubjectAuthProfileUpdated, "auth_profile_updated", u.ID, nil)
	return u, nil
}

// ChangePassword verifies the current password before setting the new one.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	if len(next) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", store.ErrInvalidInput)
	}

	hash, err := s.Users.UserPasswordHash(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(current)) != nil {
		return fmt.Errorf("%w: current password is incorrect", store.ErrInvalidInput)
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.Users.SetUserPassword(ctx, userID, string(newHash)); err != nil {
		return err
	}
	s.Events.Publish(analytics.SubjectAuthPasswordChanged, "auth_password_changed", userID, nil)
	return nil
}

func (s *Service) newSession(u store.User) (Session, error) {
	now := time.Now().UTC()
	tok, exp, err := s.Tokens.NewAccessToken(u.ID, u.Role, now)
	if err != nil {
		return Session{}, err
	}
	return Session{
		User:        u,
		AccessToken: tok,
		ExpiresIn:   int64(exp.Sub(now).Seconds()),
	}, nil
}
