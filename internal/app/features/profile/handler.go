// internal/app/features/profile/handler.go
package profile

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"

	uierrors "github.com/dalemusser/journalhub/internal/app/features/errors"
	"github.com/dalemusser/journalhub/internal/app/services/sharing"
	profilestore "github.com/dalemusser/journalhub/internal/app/store/profiles"
	"github.com/dalemusser/journalhub/internal/app/system/apperr"
	"github.com/dalemusser/journalhub/internal/app/system/auth"
	"github.com/dalemusser/journalhub/internal/app/system/inputval"
	"github.com/dalemusser/journalhub/internal/app/system/normalize"
	"github.com/dalemusser/journalhub/internal/app/system/timeouts"
	"github.com/dalemusser/journalhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 30
	// generated usernames retry a few suffixes before giving up
	usernameAttempts = 5
)

type Handler struct {
	Profiles *profilestore.Store
	Sharing  *sharing.Coordinator
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, coord *sharing.Coordinator, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Profiles: profilestore.New(db),
		Sharing:  coord,
		ErrLog:   errLog,
		Log:      logger,
	}
}

type createRequest struct {
	FullName         string   `json:"full_name" validate:"required,max=100" label:"Full name"`
	Username         string   `json:"username" validate:"omitempty,max=30" label:"Username"`
	PhotoURL         string   `json:"photo_url" validate:"omitempty,httpurl" label:"Photo URL"`
	Bio              string   `json:"bio" validate:"max=1000" label:"Bio"`
	DateOfBirth      string   `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02" label:"Date of birth"`
	MinistryRole     string   `json:"ministry_role" validate:"max=100" label:"Ministry role"`
	HomebaseMinistry string   `json:"homebase_ministry" validate:"max=100" label:"Homebase ministry"`
	SpiritualLeader  string   `json:"spiritual_leader" validate:"max=100" label:"Spiritual leader"`
	SpiritualGifts   []string `json:"spiritual_gifts" validate:"max=20,dive,max=50" label:"Spiritual gifts"`
	PrayerPartners   []string `json:"prayer_partners" validate:"max=50,dive,max=100" label:"Prayer partners"`
}

type updateRequest struct {
	FullName         *string  `json:"full_name" validate:"omitempty,min=1,max=100" label:"Full name"`
	Username         *string  `json:"username" validate:"omitempty,max=30" label:"Username"`
	PhotoURL         *string  `json:"photo_url" validate:"omitempty,httpurl" label:"Photo URL"`
	Bio              *string  `json:"bio" validate:"omitempty,max=1000" label:"Bio"`
	DateOfBirth      *string  `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02" label:"Date of birth"`
	MinistryRole     *string  `json:"ministry_role" validate:"omitempty,max=100" label:"Ministry role"`
	HomebaseMinistry *string  `json:"homebase_ministry" validate:"omitempty,max=100" label:"Homebase ministry"`
	SpiritualLeader  *string  `json:"spiritual_leader" validate:"omitempty,max=100" label:"Spiritual leader"`
	SpiritualGifts   []string `json:"spiritual_gifts" validate:"omitempty,max=20,dive,max=50" label:"Spiritual gifts"`
	PrayerPartners   []string `json:"prayer_partners" validate:"omitempty,max=50,dive,max=100" label:"Prayer partners"`
}

// HandleCreate handles POST /profiles. The profile id and email come from
// the session; everything else from the body.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "profile.Create"
	sess, _ := auth.CurrentSession(r)

	var req createRequest
	if err := uierrors.Decode(w, r, &req); err != nil {
		uierrors.BadRequest(w, err.Error())
		return
	}
	req.FullName = normalize.Name(req.FullName)
	if res := inputval.Validate(req); res.HasErrors() {
		uierrors.BadRequest(w, res.First())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, op)
	defer cancel()

	username, err := h.chooseUsername(ctx, req.Username, req.FullName, "")
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}

	p, err := h.Profiles.Create(ctx, models.UserProfile{
		ID:               sess.UserID,
		FullName:         req.FullName,
		Username:         username,
		Email:            sess.Email,
		PhotoURL:         strings.TrimSpace(req.PhotoURL),
		Bio:              strings.TrimSpace(req.Bio),
		DateOfBirth:      req.DateOfBirth,
		MinistryRole:     strings.TrimSpace(req.MinistryRole),
		HomebaseMinistry: strings.TrimSpace(req.HomebaseMinistry),
		SpiritualLeader:  strings.TrimSpace(req.SpiritualLeader),
		SpiritualGifts:   normalize.Categories(req.SpiritualGifts),
		PrayerPartners:   req.PrayerPartners,
	})
	switch {
	case errors.Is(err, profilestore.ErrDuplicateProfile):
		uierrors.JSON(w, http.StatusConflict, map[string]string{"error": err.Error(), "kind": apperr.KindValidation.String()})
		return
	case errors.Is(err, profilestore.ErrUsernameTaken):
		h.ErrLog.Render(w, r, apperr.Validation(op, err.Error()))
		return
	case err != nil:
		h.ErrLog.Render(w, r, apperr.WriteFailed(op, err))
		return
	}

	h.Log.Info("profile created", zap.String("user_id", p.ID), zap.String("username", p.Username))
	uierrors.JSON(w, http.StatusCreated, p)
}

// chooseUsername validates a requested username, or generates one from
// the full name when none was given.
func (h *Handler) chooseUsername(ctx context.Context, requested, fullName, excludeID string) (string, error) {
	const op = "profile.Username"
	if strings.TrimSpace(requested) != "" {
		u := normalize.Username(requested)
		if len(u) < minUsernameLen || len(u) > maxUsernameLen {
			return "", apperr.Validation(op, "Username must be 3 to 30 letters or digits.")
		}
		ok, err := h.Profiles.IsUsernameAvailable(ctx, u, excludeID)
		if err != nil {
			return "", apperr.Internal(op, err)
		}
		if !ok {
			return "", apperr.Validation(op, profilestore.ErrUsernameTaken.Error())
		}
		return u, nil
	}

	base := normalize.Username(fullName)
	if base == "" {
		base = "user"
	}
	if len(base) > maxUsernameLen-3 {
		base = base[:maxUsernameLen-3]
	}
	for i := 0; i < usernameAttempts; i++ {
		u := base + strconv.Itoa(rand.IntN(1000))
		ok, err := h.Profiles.IsUsernameAvailable(ctx, u, excludeID)
		if err != nil {
			return "", apperr.Internal(op, err)
		}
		if ok {
			return u, nil
		}
	}
	return "", apperr.Validation(op, "Could not generate a username; please choose one.")
}

// HandleMe handles GET /profiles/me.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	const op = "profile.Me"
	sess, _ := auth.CurrentSession(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, op)
	defer cancel()

	p, err := h.Profiles.GetByID(ctx, sess.UserID)
	if err != nil {
		h.ErrLog.Render(w, r, classifyRead(op, err))
		return
	}
	uierrors.JSON(w, http.StatusOK, p)
}

// HandleUpdate handles PATCH /profiles/me. Only fields present in the body
// change.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "profile.Update"
	sess, _ := auth.CurrentSession(r)

	var req updateRequest
	if err := uierrors.Decode(w, r, &req); err != nil {
		uierrors.BadRequest(w, err.Error())
		return
	}
	if req.FullName != nil {
		name := normalize.Name(*req.FullName)
		if name == "" {
			uierrors.BadRequest(w, "Full name is required.")
			return
		}
		req.FullName = &name
	}
	if res := inputval.Validate(req); res.HasErrors() {
		uierrors.BadRequest(w, res.First())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, op)
	defer cancel()

	upd := profilestore.ProfileUpdate{
		FullName:         req.FullName,
		PhotoURL:         req.PhotoURL,
		Bio:              req.Bio,
		DateOfBirth:      req.DateOfBirth,
		MinistryRole:     req.MinistryRole,
		HomebaseMinistry: req.HomebaseMinistry,
		SpiritualLeader:  req.SpiritualLeader,
		PrayerPartners:   req.PrayerPartners,
	}
	if req.SpiritualGifts != nil {
		upd.SpiritualGifts = normalize.Categories(req.SpiritualGifts)
	}
	if req.Username != nil {
		u, err := h.chooseUsername(ctx, *req.Username, "", sess.UserID)
		if err != nil {
			h.ErrLog.Render(w, r, err)
			return
		}
		upd.Username = &u
	}

	p, err := h.Profiles.Update(ctx, sess.UserID, upd)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		h.ErrLog.Render(w, r, apperr.NotFound(op, "profile not found"))
		return
	case errors.Is(err, profilestore.ErrUsernameTaken):
		h.ErrLog.Render(w, r, apperr.Validation(op, err.Error()))
		return
	case err != nil:
		h.ErrLog.Render(w, r, apperr.WriteFailed(op, err))
		return
	}
	uierrors.JSON(w, http.StatusOK, p)
}

// HandleUsernameAvailable handles GET /profiles/username-available?username=.
func (h *Handler) HandleUsernameAvailable(w http.ResponseWriter, r *http.Request) {
	const op = "profile.UsernameAvailable"
	sess, _ := auth.CurrentSession(r)

	u := normalize.Username(r.URL.Query().Get("username"))
	if len(u) < minUsernameLen || len(u) > maxUsernameLen {
		uierrors.JSON(w, http.StatusOK, map[string]any{"username": u, "available": false})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, op)
	defer cancel()

	ok, err := h.Profiles.IsUsernameAvailable(ctx, u, sess.UserID)
	if err != nil {
		h.ErrLog.Render(w, r, apperr.Internal(op, err))
		return
	}
	uierrors.JSON(w, http.StatusOK, map[string]any{"username": u, "available": ok})
}

// HandleSearch handles GET /profiles/search?q=.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "profile.Search")
	defer cancel()

	users, err := h.Sharing.SearchUsers(ctx, normalize.QueryParam(r.URL.Query().Get("q")))
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	uierrors.JSON(w, http.StatusOK, map[string]any{"users": users})
}

// HandleGet handles GET /profiles/{id} and returns the public subset.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "profile.Get"
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, op)
	defer cancel()

	found, err := h.Profiles.GetSummaries(ctx, []string{id})
	if err != nil {
		h.ErrLog.Render(w, r, apperr.Internal(op, err))
		return
	}
	u, ok := found[id]
	if !ok {
		h.ErrLog.Render(w, r, apperr.NotFound(op, "profile not found"))
		return
	}
	uierrors.JSON(w, http.StatusOK, u)
}

func classifyRead(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound(op, "profile not found")
	}
	return apperr.Internal(op, err)
}
