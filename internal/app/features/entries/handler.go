// internal/app/features/entries/handler.go
package entries

import (
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/journalhub/internal/app/features/errors"
	"github.com/dalemusser/journalhub/internal/app/services/journals"
	"github.com/dalemusser/journalhub/internal/app/services/sharing"
	"github.com/dalemusser/journalhub/internal/app/system/auditlog"
	"github.com/dalemusser/journalhub/internal/app/system/auth"
	"github.com/dalemusser/journalhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Journals *journals.Service
	Sharing  *sharing.Coordinator
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(svc *journals.Service, coord *sharing.Coordinator, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Journals: svc,
		Sharing:  coord,
		ErrLog:   errLog,
		AuditLog: audit,
		Log:      logger,
	}
}

// entryID reads the {id} URL parameter, writing a 400 when it is not an
// ObjectID.
func entryID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		uierrors.BadRequest(w, "invalid entry id")
		return primitive.NilObjectID, false
	}
	return id, true
}

// HandleList handles GET /entries.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.CurrentSession(r)
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "entries.List")
	defer cancel()

	list, err := h.Journals.ListOwned(ctx, sess)
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	uierrors.JSON(w, http.StatusOK, map[string]any{"entries": list})
}

// HandleCreate handles POST /entries.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.CurrentSession(r)
	var in journals.EntryInput
	if err := uierrors.Decode(w, r, &in); err != nil {
		uierrors.BadRequest(w, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "entries.Create")
	defer cancel()

	e, err := h.Journals.Create(ctx, sess, in)
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	uierrors.JSON(w, http.StatusCreated, e)
}

// HandleGet handles GET /entries/{id}. Owners and active grantees may read.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}
	sess, _ := auth.CurrentSession(r)
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "entries.Get")
	defer cancel()

	e, err := h.Journals.Get(ctx, sess, id)
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	uierrors.JSON(w, http.StatusOK, e)
}

// HandleUpdate handles PUT /entries/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}
	sess, _ := auth.CurrentSession(r)
	var in journals.EntryInput
	if err := uierrors.Decode(w, r, &in); err != nil {
		uierrors.BadRequest(w, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "entries.Update")
	defer cancel()

	e, err := h.Journals.Update(ctx, sess, id, in)
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	uierrors.JSON(w, http.StatusOK, e)
}

// HandleDelete handles DELETE /entries/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}
	sess, _ := auth.CurrentSession(r)
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "entries.Delete")
	defer cancel()

	if err := h.Journals.Delete(ctx, sess, id); err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
