// internal/app/features/heartbeat/handler.go
package heartbeat

import (
	"net/http"

	profilestore "github.com/dalemusser/journalhub/internal/app/store/profiles"
	"github.com/dalemusser/journalhub/internal/app/system/auth"
	"github.com/dalemusser/journalhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler handles heartbeat requests for activity tracking.
type Handler struct {
	Profiles *profilestore.Store
	Log      *zap.Logger
}

// NewHandler creates a new heartbeat handler.
func NewHandler(profiles *profilestore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Profiles: profiles,
		Log:      logger,
	}
}

// ServeHeartbeat handles POST /api/heartbeat.
// Updates the caller's last_active timestamp. Failures are logged and
// the client always gets 204; a missed heartbeat is harmless.
func (h *Handler) ServeHeartbeat(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.CurrentSession(r)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "heartbeat")
	defer cancel()

	if err := h.Profiles.Touch(ctx, sess.UserID); err != nil {
		h.Log.Warn("failed to update last_active",
			zap.Error(err),
			zap.String("user_id", sess.UserID))
	}
	w.WriteHeader(http.StatusNoContent)
}
