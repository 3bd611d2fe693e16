// internal/app/services/journals/sharing.go
package journals

import (
	"context"
	"errors"
	"strings"
	"time"

	sharestore "github.com/dalemusser/journalhub/internal/app/store/shares"
	"github.com/dalemusser/journalhub/internal/app/system/apperr"
	"github.com/dalemusser/journalhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/journalhub/internal/app/system/inputval"
	"github.com/dalemusser/journalhub/internal/app/system/mailer"
	"github.com/dalemusser/journalhub/internal/app/system/normalize"
	"github.com/dalemusser/journalhub/internal/app/system/session"
	"github.com/dalemusser/journalhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type commentForm struct {
	Text string `validate:"required,max=2000" label:"Comment"`
}

// AddComment records a comment from a user who may view the entry.
func (s *Service) AddComment(ctx context.Context, sess session.Session, entryID primitive.ObjectID, text string) (*models.Comment, error) {
	const op = "journals.AddComment"
	if _, err := s.Get(ctx, sess, entryID); err != nil {
		return nil, err
	}
	in := commentForm{Text: strings.TrimSpace(text)}
	if res := inputval.Validate(in); res.HasErrors() {
		return nil, apperr.Validation(op, res.First())
	}
	c, err := s.comments.Create(ctx, models.Comment{
		EntryID:      entryID,
		UserID:       sess.UserID,
		UserEmail:    sess.Email,
		UserPhotoURL: sess.PhotoURL,
		Text:         in.Text,
	})
	if err != nil {
		return nil, apperr.WriteFailed(op, err)
	}
	return &c, nil
}

// ListComments returns an entry's comments, oldest first.
func (s *Service) ListComments(ctx context.Context, sess session.Session, entryID primitive.ObjectID) ([]models.Comment, error) {
	if _, err := s.Get(ctx, sess, entryID); err != nil {
		return nil, err
	}
	out, err := s.comments.ListByEntry(ctx, entryID)
	if err != nil {
		return nil, apperr.Internal("journals.ListComments", err)
	}
	return out, nil
}

// ShareLink is a freshly created bearer link to an entry.
type ShareLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateShareLink creates a link anyone can use to read the entry until it
// expires. Owner only.
func (s *Service) CreateShareLink(ctx context.Context, sess session.Session, entryID primitive.ObjectID) (ShareLink, error) {
	const op = "journals.CreateShareLink"
	if _, err := s.owned(ctx, op, sess, entryID); err != nil {
		return ShareLink{}, err
	}
	token, ls, err := s.shares.CreateLink(ctx, entryID, sess.UserID, s.cfg.ShareLinkTTL)
	if err != nil {
		return ShareLink{}, apperr.WriteFailed(op, err)
	}
	return ShareLink{
		URL:       strings.TrimRight(s.cfg.BaseURL, "/") + "/shared/" + token,
		ExpiresAt: *ls.ExpiresAt,
	}, nil
}

// ResolveShareLink returns the entry behind a link token. Holding an
// unexpired token is the only authorization.
func (s *Service) ResolveShareLink(ctx context.Context, token string) (*models.JournalEntry, error) {
	const op = "journals.ResolveShareLink"
	ls, err := s.shares.ResolveLink(ctx, strings.TrimSpace(token))
	if errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, sharestore.ErrLinkExpired) {
		return nil, apperr.NotFound(op, "this link is invalid or has expired")
	}
	if err != nil {
		return nil, apperr.Internal(op, err)
	}
	return s.load(ctx, op, ls.EntryID)
}

// EmailShare is the body of an email share request.
type EmailShare struct {
	Emails     []string `json:"emails" validate:"required,min=1,max=20,dive,required,emailaddr" label:"Emails"`
	EntryID    string   `json:"entryId" validate:"required" label:"Entry"`
	EntryTitle string   `json:"entryTitle" validate:"required,max=200" label:"Entry title"`
	ShareLink  string   `json:"shareLink" validate:"required,url" label:"Share link"`
}

// ErrSendFailed marks a notification that could not be delivered to every
// recipient.
var ErrSendFailed = errors.New("failed to send email")

// ShareByEmail notifies each recipient that an entry was shared with them
// and records one email share per address. The acting user must own the
// entry. Recording is best-effort; a failed send returns an error wrapping
// ErrSendFailed.
func (s *Service) ShareByEmail(ctx context.Context, sess session.Session, req EmailShare) error {
	const op = "journals.ShareByEmail"

	if res := inputval.Validate(req); res.HasErrors() {
		return apperr.Validation(op, res.First())
	}
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.EntryID))
	if err != nil {
		return apperr.Validation(op, "Entry is invalid.")
	}
	// Titles come from the editor and may carry markup; mail gets text.
	title := htmlsanitize.PlainText(req.EntryTitle)
	if title == "" {
		return apperr.Validation(op, "Entry title is required.")
	}
	if _, err := s.owned(ctx, op, sess, id); err != nil {
		return err
	}

	emails := make([]string, 0, len(req.Emails))
	seen := map[string]bool{}
	for _, e := range req.Emails {
		e = normalize.Email(e)
		if !seen[e] {
			seen[e] = true
			emails = append(emails, e)
		}
	}

	if err := s.shares.RecordEmails(ctx, id, sess.UserID, emails); err != nil {
		s.log.Warn("email shares not recorded", zap.String("entry_id", id.Hex()), zap.Error(apperr.BestEffort(op, err)))
	}

	sharedBy := sess.Name
	if sharedBy == "" {
		sharedBy = sess.Email
	}
	msg := mailer.BuildShareEmail(mailer.ShareEmailData{
		SiteName:   s.cfg.SiteName,
		SharedBy:   sharedBy,
		EntryTitle: title,
		ShareLink:  strings.TrimSpace(req.ShareLink),
	})

	var failed []string
	for _, to := range emails {
		m := msg
		m.To = to
		if err := s.mail.Send(ctx, m); err != nil {
			s.log.Error("share email not sent", zap.String("entry_id", id.Hex()), zap.String("to", to), zap.Error(err))
			failed = append(failed, to)
		}
	}
	if len(failed) > 0 {
		return apperr.WriteFailed(op, ErrSendFailed)
	}

	s.log.Info("entry shared by email", zap.String("entry_id", id.Hex()), zap.Int("recipients", len(emails)))
	return nil
}
