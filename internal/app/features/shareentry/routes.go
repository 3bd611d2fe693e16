// internal/app/features/shareentry/routes.go
package shareentry

import (
	"net/http"

	"github.com/dalemusser/journalhub/internal/app/system/auth"
	"github.com/dalemusser/journalhub/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /api/share-entry behind RequireSignedIn. Each user
// gets its own send budget from limiter.
func Routes(h *Handler, limiter *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()
	r.Use(ratelimit.Middleware(limiter, func(req *http.Request) string {
		s, _ := auth.CurrentSession(req)
		return s.UserID
	}))
	r.Post("/", h.ServeShareEntry)
	return r
}
