// internal/app/services/journals/media.go
package journals

import (
	"context"
	"errors"
	"io"
	"strings"

	journalstore "github.com/dalemusser/journalhub/internal/app/store/journals"
	"github.com/dalemusser/journalhub/internal/app/system/apperr"
	"github.com/dalemusser/journalhub/internal/app/system/blobstore"
	"github.com/dalemusser/journalhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/journalhub/internal/app/system/session"
	"github.com/dalemusser/journalhub/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var imageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// UploadAudio stores a voice recording for the acting user and returns the
// reference to attach to an entry.
func (s *Service) UploadAudio(ctx context.Context, sess session.Session, r io.Reader) (models.AudioFile, error) {
	const op = "journals.UploadAudio"
	if !sess.Valid() {
		return models.AudioFile{}, apperr.Unauthorized(op, "sign in required")
	}
	id := uuid.NewString()
	key := blobstore.AudioKey(sess.UserID, id)
	if err := s.blobs.Put(ctx, key, r, "audio/mpeg"); err != nil {
		return models.AudioFile{}, apperr.WriteFailed(op, err)
	}
	return models.AudioFile{ID: id, URL: s.blobs.URL(key)}, nil
}

// UploadImage stores an inline image and returns the URL to embed in
// entry content.
func (s *Service) UploadImage(ctx context.Context, sess session.Session, r io.Reader, contentType string) (string, error) {
	const op = "journals.UploadImage"
	if !sess.Valid() {
		return "", apperr.Unauthorized(op, "sign in required")
	}
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if !imageTypes[ct] {
		return "", apperr.Validation(op, "only PNG, JPEG, GIF and WebP images can be uploaded")
	}
	key := blobstore.ImageKey(sess.UserID, uuid.NewString())
	if err := s.blobs.Put(ctx, key, r, ct); err != nil {
		return "", apperr.WriteFailed(op, err)
	}
	return s.blobs.URL(key), nil
}

var errStopSweep = errors.New("sweep cancelled")

// CleanupUnusedImages deletes stored images that no entry's content
// references and that are older than the grace period. Individual delete
// failures are logged and skipped. It returns the number deleted.
func (s *Service) CleanupUnusedImages(ctx context.Context) (int, error) {
	const op = "journals.CleanupUnusedImages"

	objects, err := s.blobs.List(ctx, blobstore.ImagePrefix)
	if err != nil {
		return 0, apperr.Internal(op, err)
	}
	if len(objects) == 0 {
		return 0, nil
	}

	used := make(map[string]struct{})
	err = s.entries.EachContent(ctx, func(row journalstore.ContentRow) error {
		if ctx.Err() != nil {
			return errStopSweep
		}
		for _, src := range htmlsanitize.ImageSources(row.Content) {
			used[src] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return 0, apperr.Internal(op, err)
	}

	cutoff := s.now().Add(-s.cfg.ImageGrace)
	deleted := 0
	for _, obj := range objects {
		if obj.ModTime.After(cutoff) {
			continue
		}
		if _, ok := used[s.blobs.URL(obj.Key)]; ok {
			continue
		}
		if err := s.blobs.Delete(ctx, obj.Key); err != nil {
			s.log.Warn("unused image not deleted", zap.String("key", obj.Key), zap.Error(apperr.BestEffort(op, err)))
			continue
		}
		s.log.Debug("deleted unused image", zap.String("key", obj.Key))
		deleted++
	}
	return deleted, nil
}
