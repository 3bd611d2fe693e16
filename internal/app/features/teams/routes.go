// internal/app/features/teams/routes.go
package teams

import "github.com/go-chi/chi/v5"

// Routes is mounted at /teams behind RequireSignedIn.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)

	r.Get("/invites/{inviteID}", h.HandleGetInvite)
	r.Post("/invites/{inviteID}/accept", h.HandleAccept)
	r.Post("/invites/{inviteID}/reject", h.HandleReject)

	r.Get("/{id}", h.HandleGet)
	r.Post("/{id}/invites", h.HandleInvite)
	r.Patch("/{id}/members/{userID}", h.HandleSetMemberRole)
	r.Delete("/{id}/members/{userID}", h.HandleRemoveMember)
	return r
}
