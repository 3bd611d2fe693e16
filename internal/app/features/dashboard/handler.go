// internal/app/features/dashboard/handler.go
package dashboard

import (
	"net/http"

	uierrors "github.com/dalemusser/journalhub/internal/app/features/errors"
	dashsvc "github.com/dalemusser/journalhub/internal/app/services/dashboard"
	"github.com/dalemusser/journalhub/internal/app/system/auth"
	"github.com/dalemusser/journalhub/internal/app/system/normalize"
	"github.com/dalemusser/journalhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	Agg    *dashsvc.Aggregator
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(agg *dashsvc.Aggregator, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Agg:    agg,
		ErrLog: errLog,
		Log:    logger,
	}
}

// ServeDashboard handles GET /dashboard. q filters the caller's own
// entries and shared_q the entries shared with them, both by title.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.CurrentSession(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "dashboard")
	defer cancel()

	v, err := h.Agg.Build(ctx, sess, dashsvc.Filter{
		PrivateQuery: normalize.QueryParam(r.URL.Query().Get("q")),
		SharedQuery:  normalize.QueryParam(r.URL.Query().Get("shared_q")),
	})
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	uierrors.JSON(w, http.StatusOK, v)
}
