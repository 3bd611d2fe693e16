// internal/app/features/entries/share.go
package entries

import (
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/journalhub/internal/app/features/errors"
	"github.com/dalemusser/journalhub/internal/app/system/auth"
	"github.com/dalemusser/journalhub/internal/app/system/inputval"
	"github.com/dalemusser/journalhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type shareUserRequest struct {
	UserID string `json:"user_id" validate:"required" label:"User"`
	Email  string `json:"email" validate:"omitempty,emailaddr" label:"Email"`
}

type shareTeamRequest struct {
	TeamID   string `json:"team_id" validate:"required,objectid" label:"Team"`
	TeamName string `json:"team_name" validate:"max=100" label:"Team name"`
}

type commentRequest struct {
	Text string `json:"text"`
}

// HandleShareWithUser handles POST /entries/{id}/share/user.
func (h *Handler) HandleShareWithUser(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}
	var req shareUserRequest
	if err := uierrors.Decode(w, r, &req); err != nil {
		uierrors.BadRequest(w, err.Error())
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if res := inputval.Validate(req); res.HasErrors() {
		uierrors.BadRequest(w, res.First())
		return
	}

	sess, _ := auth.CurrentSession(r)
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "entries.ShareWithUser")
	defer cancel()

	grant, err := h.Sharing.ShareWithUser(ctx, sess, id, req.UserID, req.Email)
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	h.AuditLog.EntrySharedWithUser(ctx, r, sess.UserID, id, req.UserID)
	uierrors.JSON(w, http.StatusOK, map[string]any{"user_id": req.UserID, "grant": grant})
}

// HandleRevokeShare handles DELETE /entries/{id}/share/{userID}.
func (h *Handler) HandleRevokeShare(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}
	userID := strings.TrimSpace(chi.URLParam(r, "userID"))

	sess, _ := auth.CurrentSession(r)
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "entries.RevokeShare")
	defer cancel()

	if err := h.Sharing.RevokeShare(ctx, sess, id, userID); err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	h.AuditLog.EntryShareRevoked(ctx, r, sess.UserID, id, userID)
	w.WriteHeader(http.StatusNoContent)
}

// HandleShareWithTeam handles POST /entries/{id}/share/team.
func (h *Handler) HandleShareWithTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}
	var req shareTeamRequest
	if err := uierrors.Decode(w, r, &req); err != nil {
		uierrors.BadRequest(w, err.Error())
		return
	}
	if res := inputval.Validate(req); res.HasErrors() {
		uierrors.BadRequest(w, res.First())
		return
	}
	teamID, _ := primitive.ObjectIDFromHex(req.TeamID)

	sess, _ := auth.CurrentSession(r)
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "entries.ShareWithTeam")
	defer cancel()

	granted, err := h.Sharing.ShareWithTeam(ctx, sess, id, teamID, strings.TrimSpace(req.TeamName))
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	h.AuditLog.EntrySharedWithTeam(ctx, r, sess.UserID, id, teamID, len(granted))
	uierrors.JSON(w, http.StatusOK, map[string]any{"shared_with": granted})
}

// HandleCreateLink handles POST /entries/{id}/links.
func (h *Handler) HandleCreateLink(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}
	sess, _ := auth.CurrentSession(r)
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "entries.CreateLink")
	defer cancel()

	link, err := h.Journals.CreateShareLink(ctx, sess, id)
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	h.AuditLog.ShareLinkCreated(ctx, r, sess.UserID, id)
	uierrors.JSON(w, http.StatusCreated, link)
}

// HandleListComments handles GET /entries/{id}/comments.
func (h *Handler) HandleListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}
	sess, _ := auth.CurrentSession(r)
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "entries.ListComments")
	defer cancel()

	list, err := h.Journals.ListComments(ctx, sess, id)
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	uierrors.JSON(w, http.StatusOK, map[string]any{"comments": list})
}

// HandleAddComment handles POST /entries/{id}/comments.
func (h *Handler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}
	var req commentRequest
	if err := uierrors.Decode(w, r, &req); err != nil {
		uierrors.BadRequest(w, err.Error())
		return
	}

	sess, _ := auth.CurrentSession(r)
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "entries.AddComment")
	defer cancel()

	c, err := h.Journals.AddComment(ctx, sess, id, req.Text)
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	uierrors.JSON(w, http.StatusCreated, c)
}
