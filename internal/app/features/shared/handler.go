// internal/app/features/shared/handler.go
package shared

import (
	"net/http"
	"time"

	uierrors "github.com/dalemusser/journalhub/internal/app/features/errors"
	"github.com/dalemusser/journalhub/internal/app/services/journals"
	"github.com/dalemusser/journalhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Journals *journals.Service
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(svc *journals.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Journals: svc, ErrLog: errLog, Log: logger}
}

// linkView is what a link holder sees; grants stay private.
type linkView struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Categories []string  `json:"categories"`
	AudioURLs  []string  `json:"audio_urls"`
	CreatedAt  time.Time `json:"created_at"`
}

// ServeLink handles GET /shared/{token}. No session is needed.
func (h *Handler) ServeLink(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "shared.Link")
	defer cancel()

	e, err := h.Journals.ResolveShareLink(ctx, chi.URLParam(r, "token"))
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}

	v := linkView{
		ID:         e.ID.Hex(),
		Title:      e.Title,
		Content:    e.Content,
		Categories: e.Categories,
		AudioURLs:  make([]string, 0, len(e.AudioFiles)),
		CreatedAt:  e.CreatedAt,
	}
	if v.Categories == nil {
		v.Categories = []string{}
	}
	for _, a := range e.AudioFiles {
		v.AudioURLs = append(v.AudioURLs, a.URL)
	}
	uierrors.JSON(w, http.StatusOK, v)
}
