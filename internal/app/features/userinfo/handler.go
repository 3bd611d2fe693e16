// internal/app/features/userinfo/handler.go
package userinfo

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/journalhub/internal/app/system/auth"
)

// Handler serves user information for the current session.
type Handler struct{}

// NewHandler creates a new userinfo handler.
func NewHandler() *Handler {
	return &Handler{}
}

// ServeUserInfo returns JSON with the caller's authentication status and
// identity:
//
//	{ "isAuthenticated": bool, "user_id": "...", "name": "...", "email": "...", "photo_url": "..." }
func (h *Handler) ServeUserInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	s, ok := auth.CurrentSession(r)
	if !ok {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"isAuthenticated": false,
			"user_id":         "",
			"name":            "",
			"email":           "",
			"photo_url":       "",
		})
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"isAuthenticated": true,
		"user_id":         s.UserID,
		"name":            s.Name,
		"email":           s.Email,
		"photo_url":       s.PhotoURL,
	})
}
