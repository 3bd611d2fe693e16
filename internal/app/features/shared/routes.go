// internal/app/features/shared/routes.go
package shared

import "github.com/go-chi/chi/v5"

// Routes is mounted at /shared outside the signed-in group.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{token}", h.ServeLink)
	return r
}
