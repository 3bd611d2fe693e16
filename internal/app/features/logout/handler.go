// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/journalhub/internal/app/system/auditlog"
	"github.com/dalemusser/journalhub/internal/app/system/auth"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		AuditLog:   audit,
	}
}

// HandleLogout handles POST /auth/logout. The cookie is cleared even when
// the request carries no session.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.CurrentSession(r)
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}
	h.AuditLog.SignOut(r.Context(), r, sess.UserID)
	w.WriteHeader(http.StatusNoContent)
}
