// internal/app/features/entries/media.go
package entries

import (
	"errors"
	"mime/multipart"
	"net/http"

	uierrors "github.com/dalemusser/journalhub/internal/app/features/errors"
	"github.com/dalemusser/journalhub/internal/app/system/auth"
	"github.com/dalemusser/journalhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

const (
	MaxAudioBytes = 25 << 20
	MaxImageBytes = 10 << 20
	formMemory    = 4 << 20
)

// formFile opens the multipart "file" part, bounding the whole body to max.
// On failure it has already written a 400.
func formFile(w http.ResponseWriter, r *http.Request, limit int64) (multipart.File, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(formMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			uierrors.BadRequest(w, "file is too large")
		} else {
			uierrors.BadRequest(w, "expected a multipart form with a file")
		}
		return nil, "", false
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		uierrors.BadRequest(w, "file is required")
		return nil, "", false
	}
	return f, hdr.Header.Get("Content-Type"), true
}

// HandleUploadAudio handles POST /entries/media/audio.
func (h *Handler) HandleUploadAudio(w http.ResponseWriter, r *http.Request) {
	f, _, ok := formFile(w, r, MaxAudioBytes)
	if !ok {
		return
	}
	defer f.Close()

	sess, _ := auth.CurrentSession(r)
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "entries.UploadAudio")
	defer cancel()

	a, err := h.Journals.UploadAudio(ctx, sess, f)
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	h.Log.Info("audio uploaded", zap.String("user_id", sess.UserID), zap.String("audio_id", a.ID))
	uierrors.JSON(w, http.StatusCreated, a)
}

// HandleUploadImage handles POST /entries/media/images.
func (h *Handler) HandleUploadImage(w http.ResponseWriter, r *http.Request) {
	f, contentType, ok := formFile(w, r, MaxImageBytes)
	if !ok {
		return
	}
	defer f.Close()

	sess, _ := auth.CurrentSession(r)
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "entries.UploadImage")
	defer cancel()

	url, err := h.Journals.UploadImage(ctx, sess, f, contentType)
	if err != nil {
		h.ErrLog.Render(w, r, err)
		return
	}
	uierrors.JSON(w, http.StatusCreated, map[string]string{"url": url})
}
