// internal/app/services/journals/service.go
package journals

import (
	"context"
	"errors"
	"strings"
	"time"

	commentstore "github.com/dalemusser/journalhub/internal/app/store/comments"
	journalstore "github.com/dalemusser/journalhub/internal/app/store/journals"
	profilestore "github.com/dalemusser/journalhub/internal/app/store/profiles"
	sharestore "github.com/dalemusser/journalhub/internal/app/store/shares"
	"github.com/dalemusser/journalhub/internal/app/system/apperr"
	"github.com/dalemusser/journalhub/internal/app/system/blobstore"
	"github.com/dalemusser/journalhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/journalhub/internal/app/system/inputval"
	"github.com/dalemusser/journalhub/internal/app/system/mailer"
	"github.com/dalemusser/journalhub/internal/app/system/normalize"
	"github.com/dalemusser/journalhub/internal/app/system/session"
	"github.com/dalemusser/journalhub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Defaults applied by New when Config leaves them zero.
const (
	DefaultShareLinkTTL = 7 * 24 * time.Hour
	DefaultImageGrace   = 24 * time.Hour
)

// Config holds the settings the journal service needs beyond its stores.
type Config struct {
	SiteName     string
	BaseURL      string
	ShareLinkTTL time.Duration
	// ImageGrace protects freshly uploaded images of unsaved drafts from
	// the unused-image sweep.
	ImageGrace time.Duration
}

// Service orchestrates entry CRUD, media, comments and link shares.
type Service struct {
	entries  *journalstore.Store
	profiles *profilestore.Store
	comments *commentstore.Store
	shares   *sharestore.Store
	blobs    blobstore.Store
	mail     mailer.Sender
	cfg      Config
	log      *zap.Logger
	now      func() time.Time
}

// New wires a Service to the stores in db.
func New(db *mongo.Database, blobs blobstore.Store, mail mailer.Sender, cfg Config, logger *zap.Logger) *Service {
	if cfg.ShareLinkTTL <= 0 {
		cfg.ShareLinkTTL = DefaultShareLinkTTL
	}
	if cfg.ImageGrace <= 0 {
		cfg.ImageGrace = DefaultImageGrace
	}
	if cfg.SiteName == "" {
		cfg.SiteName = "JournalHub"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		entries:  journalstore.New(db),
		profiles: profilestore.New(db),
		comments: commentstore.New(db),
		shares:   sharestore.New(db),
		blobs:    blobs,
		mail:     mail,
		cfg:      cfg,
		log:      logger,
		now:      time.Now,
	}
}

// EntryInput is the editable part of an entry as submitted by a client.
type EntryInput struct {
	Title      string             `json:"title"`
	Content    string             `json:"content"`
	Categories []string           `json:"categories"`
	AudioFiles []models.AudioFile `json:"audio_files"`
}

type entryForm struct {
	Title   string `validate:"required,max=200" label:"Title"`
	Content string `validate:"required" label:"Content"`
}

// clean sanitizes in and checks the required fields. Audio references must
// name recordings owner uploaded through UploadAudio.
func (s *Service) clean(op, owner string, in EntryInput) (EntryInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = htmlsanitize.Sanitize(in.Content)
	if res := inputval.Validate(entryForm{Title: in.Title, Content: in.Content}); res.HasErrors() {
		return in, apperr.Validation(op, res.First())
	}
	if !htmlsanitize.HasContent(in.Content) {
		return in, apperr.Validation(op, "Content is required.")
	}
	in.Categories = normalize.Categories(in.Categories)
	audio := make([]models.AudioFile, 0, len(in.AudioFiles))
	for _, a := range in.AudioFiles {
		id, err := uuid.Parse(strings.TrimSpace(a.ID))
		if err != nil {
			return in, apperr.Validation(op, "audio file references must come from an upload")
		}
		want := s.blobs.URL(blobstore.AudioKey(owner, id.String()))
		if a.URL != want {
			return in, apperr.Validation(op, "audio file references must come from an upload")
		}
		audio = append(audio, models.AudioFile{ID: id.String(), URL: want})
	}
	in.AudioFiles = audio
	return in, nil
}

// Create saves a new entry owned by the acting user.
func (s *Service) Create(ctx context.Context, sess session.Session, in EntryInput) (*models.JournalEntry, error) {
	const op = "journals.Create"
	if !sess.Valid() {
		return nil, apperr.Unauthorized(op, "sign in required")
	}
	in, err := s.clean(op, sess.UserID, in)
	if err != nil {
		return nil, err
	}

	e, err := s.entries.Create(ctx, models.JournalEntry{
		UserID:     sess.UserID,
		Title:      in.Title,
		Content:    in.Content,
		Categories: in.Categories,
		AudioFiles: in.AudioFiles,
	})
	if err != nil {
		return nil, apperr.WriteFailed(op, err)
	}

	if err := s.profiles.IncJournalCount(ctx, sess.UserID, 1); err != nil {
		s.log.Warn("journal count not incremented",
			zap.String("user_id", sess.UserID),
			zap.Error(apperr.BestEffort(op, err)))
	}
	s.log.Info("entry created", zap.String("entry_id", e.ID.Hex()), zap.String("user_id", sess.UserID))
	return &e, nil
}

// Update replaces the editable fields of an entry the acting user owns.
func (s *Service) Update(ctx context.Context, sess session.Session, id primitive.ObjectID, in EntryInput) (*models.JournalEntry, error) {
	const op = "journals.Update"
	if _, err := s.owned(ctx, op, sess, id); err != nil {
		return nil, err
	}
	in, err := s.clean(op, sess.UserID, in)
	if err != nil {
		return nil, err
	}

	e, err := s.entries.Update(ctx, id, sess.UserID, journalstore.EntryUpdate{
		Title:      in.Title,
		Content:    in.Content,
		Categories: in.Categories,
		AudioFiles: in.AudioFiles,
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound(op, "entry not found")
	}
	if err != nil {
		return nil, apperr.WriteFailed(op, err)
	}
	return e, nil
}

// load fetches an entry, mapping a missing document to NotFound.
func (s *Service) load(ctx context.Context, op string, id primitive.ObjectID) (*models.JournalEntry, error) {
	e, err := s.entries.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound(op, "entry not found")
	}
	if err != nil {
		return nil, apperr.Internal(op, err)
	}
	return e, nil
}

// owned loads an entry and requires the acting user to own it.
func (s *Service) owned(ctx context.Context, op string, sess session.Session, id primitive.ObjectID) (*models.JournalEntry, error) {
	if !sess.Valid() {
		return nil, apperr.Unauthorized(op, "sign in required")
	}
	e, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if e.UserID != sess.UserID {
		return nil, apperr.Unauthorized(op, "only the owner can change this entry")
	}
	return e, nil
}

// CanView reports whether userID may read e: the owner always, anyone
// else only through an active grant.
func CanView(e *models.JournalEntry, userID string) bool {
	if userID == "" {
		return false
	}
	if e.UserID == userID {
		return true
	}
	g, ok := e.SharedWith[userID]
	return ok && g.IsActive()
}

// Get returns an entry the acting user may view.
func (s *Service) Get(ctx context.Context, sess session.Session, id primitive.ObjectID) (*models.JournalEntry, error) {
	const op = "journals.Get"
	if !sess.Valid() {
		return nil, apperr.Unauthorized(op, "sign in required")
	}
	e, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if !CanView(e, sess.UserID) {
		return nil, apperr.Unauthorized(op, "this entry has not been shared with you")
	}
	return e, nil
}

// ListOwned returns the acting user's entries, newest first.
func (s *Service) ListOwned(ctx context.Context, sess session.Session) ([]models.JournalEntry, error) {
	if !sess.Valid() {
		return nil, apperr.Unauthorized("journals.ListOwned", "sign in required")
	}
	out, err := s.entries.ListOwned(ctx, sess.UserID)
	if err != nil {
		return nil, apperr.Internal("journals.ListOwned", err)
	}
	return out, nil
}

// Delete removes an entry the acting user owns. Audio blobs, comments and
// share records are cleaned up afterwards; those failures are logged and
// never fail the delete.
func (s *Service) Delete(ctx context.Context, sess session.Session, id primitive.ObjectID) error {
	const op = "journals.Delete"
	e, err := s.owned(ctx, op, sess, id)
	if err != nil {
		return err
	}

	n, err := s.entries.Delete(ctx, id, sess.UserID)
	if err != nil {
		return apperr.WriteFailed(op, err)
	}
	if n == 0 {
		return apperr.NotFound(op, "entry not found")
	}

	for _, a := range e.AudioFiles {
		key := blobstore.AudioKey(e.UserID, a.ID)
		if !blobstore.OwnsAudioKey(e.UserID, key) {
			s.log.Warn("audio reference outside owner prefix skipped",
				zap.String("entry_id", id.Hex()),
				zap.String("key", key))
			continue
		}
		if err := s.blobs.Delete(ctx, key); err != nil {
			s.log.Warn("audio blob not deleted",
				zap.String("entry_id", id.Hex()),
				zap.String("key", key),
				zap.Error(apperr.BestEffort(op, err)))
		}
	}
	if _, err := s.comments.DeleteByEntry(ctx, id); err != nil {
		s.log.Warn("entry comments not deleted", zap.String("entry_id", id.Hex()), zap.Error(apperr.BestEffort(op, err)))
	}
	if _, err := s.shares.DeleteByEntry(ctx, id); err != nil {
		s.log.Warn("entry shares not deleted", zap.String("entry_id", id.Hex()), zap.Error(apperr.BestEffort(op, err)))
	}
	if err := s.profiles.IncJournalCount(ctx, e.UserID, -1); err != nil {
		s.log.Warn("journal count not decremented", zap.String("user_id", e.UserID), zap.Error(apperr.BestEffort(op, err)))
	}

	s.log.Info("entry deleted", zap.String("entry_id", id.Hex()), zap.String("user_id", sess.UserID))
	return nil
}
