// internal/app/services/dashboard/dashboard.go
package dashboard

import (
	"context"
	"strings"
	"time"

	journalstore "github.com/dalemusser/journalhub/internal/app/store/journals"
	"github.com/dalemusser/journalhub/internal/app/system/apperr"
	"github.com/dalemusser/journalhub/internal/app/system/session"
	"github.com/dalemusser/journalhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

// Entries is the part of the entry store the aggregator reads.
type Entries interface {
	ListOwned(ctx context.Context, userID string) ([]models.JournalEntry, error)
	ListSharedWith(ctx context.Context, userID string) ([]models.JournalEntry, error)
}

// Filter narrows each list by a case-insensitive title substring.
type Filter struct {
	PrivateQuery string
	SharedQuery  string
}

// EntrySummary is the dashboard's view of one entry.
type EntrySummary struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Categories    []string  `json:"categories"`
	CreatedAt     time.Time `json:"created_at"`
	HasImage      bool      `json:"has_image"`
	HasAudio      bool      `json:"has_audio"`
	OwnerID       string    `json:"owner_id"`
	SharedByEmail string    `json:"shared_by_email,omitempty"`
}

// View is the composed dashboard.
type View struct {
	PrivateEntries      []EntrySummary `json:"private_entries"`
	SharedWithMeEntries []EntrySummary `json:"shared_with_me_entries"`
}

// Aggregator composes the owned and shared-with-me entry sets. Nothing is
// cached; every Build queries the store.
type Aggregator struct {
	entries Entries
}

func New(db *mongo.Database) *Aggregator {
	return &Aggregator{entries: journalstore.New(db)}
}

// NewWithEntries builds an Aggregator over any Entries implementation.
func NewWithEntries(e Entries) *Aggregator {
	return &Aggregator{entries: e}
}

// Build runs both queries concurrently and returns the filtered summaries.
func (a *Aggregator) Build(ctx context.Context, sess session.Session, f Filter) (*View, error) {
	const op = "dashboard.Build"
	if !sess.Valid() {
		return nil, apperr.Unauthorized(op, "sign in required")
	}

	var owned, shared []models.JournalEntry
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		owned, err = a.entries.ListOwned(gctx, sess.UserID)
		return err
	})
	g.Go(func() error {
		var err error
		shared, err = a.entries.ListSharedWith(gctx, sess.UserID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperr.Internal(op, err)
	}

	return &View{
		PrivateEntries:      summarize(owned, f.PrivateQuery, ""),
		SharedWithMeEntries: summarize(shared, f.SharedQuery, sess.UserID),
	}, nil
}

func summarize(entries []models.JournalEntry, query, viewerID string) []EntrySummary {
	q := text.Fold(strings.TrimSpace(query))
	out := make([]EntrySummary, 0, len(entries))
	for _, e := range entries {
		if q != "" && !strings.Contains(text.Fold(e.Title), q) {
			continue
		}
		s := EntrySummary{
			ID:         e.ID.Hex(),
			Title:      e.Title,
			Categories: e.Categories,
			CreatedAt:  e.CreatedAt,
			HasImage:   strings.Contains(strings.ToLower(e.Content), "<img"),
			HasAudio:   len(e.AudioFiles) > 0,
			OwnerID:    e.UserID,
		}
		if viewerID != "" {
			s.SharedByEmail = e.SharedWith[viewerID].SharedByEmail
		}
		if s.Categories == nil {
			s.Categories = []string{}
		}
		out = append(out, s)
	}
	return out
}
