package handlers

import (
	"errors"
	"net/http"

	"github.com/example/movie-platform/internal/accounts"
	"github.com/example/movie-platform/internal/platform/api"
	"github.com/example/movie-platform/internal/platform/httpserver"
	"github.com/example/movie-platform/internal/store"
)

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Register creates an account and returns a live session.
func Register(svc *accounts.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := decodeJSON(w, r, &req); err != nil {
			return
		}
		sess, err := svc.Register(r.Context(), req.Email, req.Username, req.Password)
		if err != nil {
			writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, sess)
	}
}

type updateProfileRequest struct {
	Username   string  `json:"username"`
	Email      string  `json:"email"`
	ProfilePic *string `json:"profile_pic"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Me returns the account behind the session token.
func Me(svc *accounts.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, ok := requester(r)
		if !ok {
			unauthorized(w, r)
			return
		}
		u, err := svc.Profile(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, u)
	}
}

// UpdateProfile changes the caller's username, email or picture. Omitted
// fields keep their current values.
func UpdateProfile(svc *accounts.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, ok := requester(r)
		if !ok {
			unauthorized(w, r)
			return
		}
		var req updateProfileRequest
		if err := decodeJSON(w, r, &req); err != nil {
			return
		}
		u, err := svc.UpdateProfile(r.Context(), userID, store.ProfileUpdate{
			Username:   req.Username,
			Email:      req.Email,
			ProfilePic: req.ProfilePic,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, u)
	}
}

// ChangePassword sets a new password after verifying the current one.
func ChangePassword(svc *accounts.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, ok := requester(r)
		if !ok {
			unauthorized(w, r)
			return
		}
		var req changePasswordRequest
		if err := decodeJSON(w, r, &req); err != nil {
			return
		}
		if err := svc.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Login authenticates by email or username. Bad credentials are a 401, not
// the 403 the generic mapping would produce.
func Login(svc *accounts.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			return
		}
		sess, err := svc.Login(r.Context(), req.Login, req.Password)
		if err != nil {
			if errors.Is(err, store.ErrForbidden) {
				rid := httpserver.RequestIDFromContext(r.Context())
				api.Unauthorized(w, "INVALID_CREDENTIALS", "invalid credentials", rid)
				return
			}
			writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, sess)
	}
}
