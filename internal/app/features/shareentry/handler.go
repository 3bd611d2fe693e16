// internal/app/features/shareentry/handler.go
package shareentry

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/journalhub/internal/app/features/errors"
	"github.com/dalemusser/journalhub/internal/app/services/journals"
	"github.com/dalemusser/journalhub/internal/app/system/apperr"
	"github.com/dalemusser/journalhub/internal/app/system/auditlog"
	"github.com/dalemusser/journalhub/internal/app/system/auth"
	"github.com/dalemusser/journalhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	Journals *journals.Service
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(svc *journals.Service, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Journals: svc,
		ErrLog:   errLog,
		AuditLog: audit,
		Log:      logger,
	}
}

// ServeShareEntry handles POST /api/share-entry.
//
// Body: {"emails": [...], "entryId", "entryTitle", "shareLink"}.
// Replies {"success": true}, or {"error": "..."} with 400 for a bad body
// and 500 when the notification could not be sent.
func (h *Handler) ServeShareEntry(w http.ResponseWriter, r *http.Request) {
	var req journals.EmailShare
	if err := uierrors.Decode(w, r, &req); err != nil {
		uierrors.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	sess, _ := auth.CurrentSession(r)
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "share-entry")
	defer cancel()

	err := h.Journals.ShareByEmail(ctx, sess, req)
	switch {
	case err == nil:
		h.AuditLog.EntrySharedByEmail(ctx, r, sess.UserID, req.EntryID, len(req.Emails), nil)
		uierrors.JSON(w, http.StatusOK, map[string]bool{"success": true})
	case errors.Is(err, journals.ErrSendFailed):
		h.Log.Error("share email failed",
			zap.String("user_id", sess.UserID),
			zap.String("entry_id", req.EntryID),
			zap.Error(err))
		h.AuditLog.EntrySharedByEmail(ctx, r, sess.UserID, req.EntryID, len(req.Emails), err)
		uierrors.JSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to send email"})
	case apperr.Is(err, apperr.KindInternal), apperr.Is(err, apperr.KindWriteFailed):
		h.ErrLog.Render(w, r, err)
	default:
		uierrors.JSON(w, apperr.HTTPStatus(err), map[string]string{"error": apperr.Message(err)})
	}
}
