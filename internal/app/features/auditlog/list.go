// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	uierrors "github.com/dalemusser/journalhub/internal/app/features/errors"
	"github.com/dalemusser/journalhub/internal/app/store/audit"
	"github.com/dalemusser/journalhub/internal/app/system/apperr"
	"github.com/dalemusser/journalhub/internal/app/system/auth"
	"github.com/dalemusser/journalhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const pageSize = 50

// ServeList handles GET /audit. Users see only events they performed.
//
// Query: category, event_type, entry_id, start_date and end_date
// (YYYY-MM-DD), page (1-based).
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.CurrentSession(r)

	page := 1
	if p, err := strconv.Atoi(query.Get(r, "page")); err == nil && p > 0 {
		page = p
	}
	filter := audit.QueryFilter{
		ActorID:   sess.UserID,
		Category:  strings.TrimSpace(query.Get(r, "category")),
		EventType: strings.TrimSpace(query.Get(r, "event_type")),
		Limit:     pageSize,
		Offset:    int64((page - 1) * pageSize),
	}
	if v := strings.TrimSpace(query.Get(r, "entry_id")); v != "" {
		oid, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			uierrors.BadRequest(w, "invalid entry id")
			return
		}
		filter.EntryID = &oid
	}
	if v := strings.TrimSpace(query.Get(r, "start_date")); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			uierrors.BadRequest(w, "start_date must be YYYY-MM-DD")
			return
		}
		filter.StartTime = &t
	}
	if v := strings.TrimSpace(query.Get(r, "end_date")); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			uierrors.BadRequest(w, "end_date must be YYYY-MM-DD")
			return
		}
		// End of day
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.EndTime = &end
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "audit log list")
	defer cancel()

	events, err := h.Audit.Query(ctx, filter)
	if err != nil {
		h.ErrLog.Render(w, r, apperr.Internal("auditlog.List", err))
		return
	}
	total, err := h.Audit.CountByFilter(ctx, filter)
	if err != nil {
		h.ErrLog.Render(w, r, apperr.Internal("auditlog.List", err))
		return
	}

	// Resolve share targets to names; a failed lookup leaves ids only.
	var targets []string
	for _, e := range events {
		if e.UserID != "" {
			targets = append(targets, e.UserID)
		}
	}
	names := map[string]string{}
	if len(targets) > 0 {
		sums, err := h.Profiles.GetSummaries(ctx, targets)
		if err != nil {
			h.Log.Warn("failed to fetch user names for audit log", zap.Error(err))
		}
		for id, s := range sums {
			names[id] = s.FullName
		}
	}

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		item := listItem{
			ID:         e.ID.Hex(),
			Timestamp:  e.Timestamp,
			Category:   e.Category,
			EventType:  e.EventType,
			TargetID:   e.UserID,
			TargetName: names[e.UserID],
			IP:         e.IP,
			Success:    e.Success,
			Failure:    e.FailureReason,
			Details:    e.Details,
		}
		if e.EntryID != nil {
			item.EntryID = e.EntryID.Hex()
		}
		if e.TeamID != nil {
			item.TeamID = e.TeamID.Hex()
		}
		items = append(items, item)
	}

	totalPages := int((total + pageSize - 1) / pageSize)
	if totalPages < 1 {
		totalPages = 1
	}
	uierrors.JSON(w, http.StatusOK, listResponse{
		Events:     items,
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
	})
}
