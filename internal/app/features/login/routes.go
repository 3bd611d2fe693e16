// internal/app/features/login/routes.go
package login

import "github.com/go-chi/chi/v5"

// Routes is mounted at /auth/session.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleSession)
	return r
}
