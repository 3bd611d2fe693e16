// internal/app/features/login/handler.go
package login

import (
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/journalhub/internal/app/features/errors"
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

type sessionRequest struct {
	Token string `json:"token"`
}

type sessionResponse struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	PhotoURL string `json:"photo_url,omitempty"`
}

// HandleSession handles POST /auth/session. It exchanges an identity
// provider token for the signed session cookie used by browsers.
func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := uierrors.Decode(w, r, &req); err != nil {
		uierrors.BadRequest(w, err.Error())
		return
	}
	tok := strings.TrimSpace(req.Token)
	if tok == "" {
		uierrors.BadRequest(w, "token is required")
		return
	}

	s, err := h.SessionMgr.SignIn(w, r, tok)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			h.Log.Info("sign-in rejected", zap.Error(err))
			h.AuditLog.SignInFailed(r.Context(), r, "invalid or expired token")
			uierrors.JSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired token", "kind": "unauthenticated"})
			return
		}
		h.Log.Error("sign-in: save session", zap.Error(err))
		uierrors.JSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error", "kind": "internal"})
		return
	}

	h.Log.Info("user signed in", zap.String("user_id", s.UserID))
	h.AuditLog.SignIn(r.Context(), r, s.UserID, s.Email)
	uierrors.JSON(w, http.StatusOK, sessionResponse{UserID: s.UserID, Email: s.Email, Name: s.Name, PhotoURL: s.PhotoURL})
}
