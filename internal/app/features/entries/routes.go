// internal/app/features/entries/routes.go
package entries

import "github.com/go-chi/chi/v5"

// Routes is mounted at /entries behind RequireSignedIn.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)

	r.Post("/media/audio", h.HandleUploadAudio)
	r.Post("/media/images", h.HandleUploadImage)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.HandleGet)
		r.Put("/", h.HandleUpdate)
		r.Delete("/", h.HandleDelete)
		r.Post("/share/user", h.HandleShareWithUser)
		r.Delete("/share/{userID}", h.HandleRevokeShare)
		r.Post("/share/team", h.HandleShareWithTeam)
		r.Post("/links", h.HandleCreateLink)
		r.Get("/comments", h.HandleListComments)
		r.Post("/comments", h.HandleAddComment)
	})
	return r
}
