// internal/app/features/userinfo/routes.go
package userinfo

import "github.com/go-chi/chi/v5"

// MountRoutes registers GET /api/user on the supplied router.
// No auth middleware is needed; the handler reports signed-out callers.
func MountRoutes(r chi.Router, h *Handler) {
	r.Get("/api/user", h.ServeUserInfo)
}
