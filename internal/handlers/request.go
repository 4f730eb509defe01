package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/example/movie-platform/internal/platform/auth"
	"github.com/example/movie-platform/internal/store"
)

const maxBodyBytes = 1 << 20

// parsePage reads ?page= and ?limit= with the usual defaults.
func parsePage(r *http.Request) store.Page {
	p := store.Page{Page: 1, Limit: 10}
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		p.Limit = v
	}
	return p.Normalize()
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

// requester resolves the authenticated identity injected by auth.RequireUser.
func requester(r *http.Request) (userID string, isAdmin bool, ok bool) {
	userID, ok = auth.UserIDFromContext(r.Context())
	if !ok || userID == "" {
		return "", false, false
	}
	role, _ := auth.RoleFromContext(r.Context())
	return userID, strings.EqualFold(role, store.RoleAdmin), true
}

// pagination is the listing metadata block shared by all paged responses.
type pagination struct {
	CurrentPage  int `json:"current_page"`
	TotalPages   int `json:"total_pages"`
	TotalItems   int `json:"total_items"`
	ItemsPerPage int `json:"items_per_page"`
}

func paginationMeta(p store.Page, total int) pagination {
	pages := (total + p.Limit - 1) / p.Limit
	return pagination{
		CurrentPage:  p.Page,
		TotalPages:   pages,
		TotalItems:   total,
		ItemsPerPage: p.Limit,
	}
}
