// internal/app/features/profile/routes.go
package profile

import "github.com/go-chi/chi/v5"

// Routes is mounted at /profiles behind RequireSignedIn.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleCreate)
	r.Get("/me", h.HandleMe)
	r.Patch("/me", h.HandleUpdate)
	r.Get("/username-available", h.HandleUsernameAvailable)
	r.Get("/search", h.HandleSearch)
	r.Get("/{id}", h.HandleGet)
	return r
}
