// internal/app/features/dashboard/routes.go
package dashboard

import "github.com/go-chi/chi/v5"

// Routes is mounted at /dashboard behind RequireSignedIn.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeDashboard)
	return r
}
