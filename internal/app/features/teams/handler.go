// internal/app/features/teams/handler.go
package teams

import (
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/journalhub/internal/app/features/errors"
	"github.com/dalemusser/journalhub/internal/app/services/sharing"
	"github.com/dalemusser/journalhub/internal/app/system/auditlog"
	"github.com/dalemusser/journalhub/internal/app/system/auth"
	"github.com/dalemusser/journalhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Sharing  *sharing.Coordinator
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(coord *sharing.Coordinator, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Sharing:  coord,
		ErrLog:   errLog,
		AuditLog: audit,
		Log:      logger,
	}
}

type createRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type inviteRequest struct {
	Emails []string `json:"emails"`
}

type roleRequest struct {
	Role string `json:"role"`
}

// objectIDParam parses a chi URL parameter, writing a 400 when it is not
// an ObjectID.
func objectIDParam(w http.ResponseWriter, r *http.Request, name, what string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(chi.URLParam(r, name)))
	if err != nil {
		uierrors.BadRequest(w, "invalid "+what+" id")
		return primitive.NilObjectID, false
	}
	return id, true
}

// HandleList handles GET /teams: the caller's teams and pending invites.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.CurrentSession(r)
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "teams.List")
	defer cancel()

	list, err := h.Sharing.ListTeams(ctx, sess)
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	uierrors.JSON(w, http.StatusOK, list)
}

// HandleCreate handles POST /teams.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := uierrors.Decode(w, r, &req); err != nil {
		uierrors.BadRequest(w, err.Error())
		return
	}
	sess, _ := auth.CurrentSession(r)
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "teams.Create")
	defer cancel()

	team, err := h.Sharing.CreateTeam(ctx, sess, req.Name, req.Description)
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	h.AuditLog.TeamCreated(ctx, r, sess.UserID, team.ID, team.Name)
	uierrors.JSON(w, http.StatusCreated, team)
}

// HandleGet handles GET /teams/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := objectIDParam(w, r, "id", "team")
	if !ok {
		return
	}
	sess, _ := auth.CurrentSession(r)
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "teams.Get")
	defer cancel()

	detail, err := h.Sharing.GetTeam(ctx, sess, id)
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	uierrors.JSON(w, http.StatusOK, detail)
}

// HandleInvite handles POST /teams/{id}/invites. Admins only. Each address
// is reported as invited, skipped, invalid or failed.
func (h *Handler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	id, ok := objectIDParam(w, r, "id", "team")
	if !ok {
		return
	}
	var req inviteRequest
	if err := uierrors.Decode(w, r, &req); err != nil {
		uierrors.BadRequest(w, err.Error())
		return
	}
	if len(req.Emails) == 0 {
		uierrors.BadRequest(w, "at least one email is required")
		return
	}

	sess, _ := auth.CurrentSession(r)
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "teams.Invite")
	defer cancel()

	res, err := h.Sharing.InviteMembers(ctx, sess, id, req.Emails)
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	if len(res.Invited) > 0 {
		h.AuditLog.TeamInvitesSent(ctx, r, sess.UserID, id, len(res.Invited))
	}
	uierrors.JSON(w, http.StatusOK, res)
}

// HandleSetMemberRole handles PATCH /teams/{id}/members/{userID}. Admins
// only.
func (h *Handler) HandleSetMemberRole(w http.ResponseWriter, r *http.Request) {
	id, ok := objectIDParam(w, r, "id", "team")
	if !ok {
		return
	}
	var req roleRequest
	if err := uierrors.Decode(w, r, &req); err != nil {
		uierrors.BadRequest(w, err.Error())
		return
	}

	sess, _ := auth.CurrentSession(r)
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "teams.SetMemberRole")
	defer cancel()

	m, err := h.Sharing.SetMemberRole(ctx, sess, id, chi.URLParam(r, "userID"), req.Role)
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	h.AuditLog.MemberRoleChanged(ctx, r, sess.UserID, id, m.UserID, m.Role)
	uierrors.JSON(w, http.StatusOK, m)
}

// HandleRemoveMember handles DELETE /teams/{id}/members/{userID}. A member
// may remove themselves; admins may remove anyone.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	id, ok := objectIDParam(w, r, "id", "team")
	if !ok {
		return
	}
	userID := strings.TrimSpace(chi.URLParam(r, "userID"))

	sess, _ := auth.CurrentSession(r)
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "teams.RemoveMember")
	defer cancel()

	if err := h.Sharing.RemoveMember(ctx, sess, id, userID); err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	h.AuditLog.MemberRemoved(ctx, r, sess.UserID, id, userID)
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetInvite handles GET /teams/invites/{inviteID}.
func (h *Handler) HandleGetInvite(w http.ResponseWriter, r *http.Request) {
	id, ok := objectIDParam(w, r, "inviteID", "invite")
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "teams.GetInvite")
	defer cancel()

	inv, err := h.Sharing.GetInvite(ctx, id)
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	uierrors.JSON(w, http.StatusOK, inv)
}

// HandleAccept handles POST /teams/invites/{inviteID}/accept.
func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	id, ok := objectIDParam(w, r, "inviteID", "invite")
	if !ok {
		return
	}
	sess, _ := auth.CurrentSession(r)
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "teams.Accept")
	defer cancel()

	inv, err := h.Sharing.AcceptInvite(ctx, sess, id)
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	h.AuditLog.InviteAccepted(ctx, r, sess.UserID, inv.TeamID, inv.ID)
	uierrors.JSON(w, http.StatusOK, inv)
}

// HandleReject handles POST /teams/invites/{inviteID}/reject.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	id, ok := objectIDParam(w, r, "inviteID", "invite")
	if !ok {
		return
	}
	sess, _ := auth.CurrentSession(r)
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "teams.Reject")
	defer cancel()

	if err := h.Sharing.RejectInvite(ctx, sess, id); err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	h.AuditLog.InviteRejected(ctx, r, sess.UserID, id)
	w.WriteHeader(http.StatusNoContent)
}
