// internal/app/store/shares/sharestore.go
package sharestore

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/journalhub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/blake2b"
)

type Store struct {
	c   *mongo.Collection
	now func() time.Time
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("shares"), now: time.Now}
}

// ErrLinkExpired is returned by ResolveLink for a link past its expiry that
// the TTL monitor has not yet removed.
var ErrLinkExpired = errors.New("share link has expired")

// HashToken returns the stored form of a link token.
func HashToken(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func newToken() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}

// CreateLink records a bearer link for entryID valid for ttl and returns
// the raw token. Only its hash is stored.
func (s *Store) CreateLink(ctx context.Context, entryID primitive.ObjectID, createdBy string, ttl time.Duration) (string, models.LinkShare, error) {
	token := newToken()
	now := s.now().UTC()
	exp := now.Add(ttl)
	ls := models.LinkShare{
		ID:        primitive.NewObjectID(),
		EntryID:   entryID,
		Type:      models.ShareTypeLink,
		TokenHash: HashToken(token),
		CreatedBy: createdBy,
		CreatedAt: now,
		ExpiresAt: &exp,
	}
	if _, err := s.c.InsertOne(ctx, ls); err != nil {
		return "", models.LinkShare{}, err
	}
	return token, ls, nil
}

// ResolveLink finds the link share for token. Returns mongo.ErrNoDocuments
// for an unknown token and ErrLinkExpired for an expired one.
func (s *Store) ResolveLink(ctx context.Context, token string) (*models.LinkShare, error) {
	if token == "" {
		return nil, mongo.ErrNoDocuments
	}
	var ls models.LinkShare
	err := s.c.FindOne(ctx, bson.M{"token_hash": HashToken(token), "type": models.ShareTypeLink}).Decode(&ls)
	if err != nil {
		return nil, err
	}
	if ls.ExpiresAt != nil && !s.now().Before(*ls.ExpiresAt) {
		return nil, ErrLinkExpired
	}
	return &ls, nil
}

// RecordEmails stores one email share per address.
func (s *Store) RecordEmails(ctx context.Context, entryID primitive.ObjectID, createdBy string, emails []string) error {
	if len(emails) == 0 {
		return nil
	}
	now := s.now().UTC()
	docs := make([]interface{}, 0, len(emails))
	for _, e := range emails {
		docs = append(docs, models.LinkShare{
			ID:        primitive.NewObjectID(),
			EntryID:   entryID,
			Type:      models.ShareTypeEmail,
			Email:     e,
			Status:    "pending",
			CreatedBy: createdBy,
			CreatedAt: now,
		})
	}
	_, err := s.c.InsertMany(ctx, docs)
	return err
}

// ListByEntry returns every share record for entryID, newest first.
func (s *Store) ListByEntry(ctx context.Context, entryID primitive.ObjectID) ([]models.LinkShare, error) {
	cur, err := s.c.Find(ctx, bson.M{"entry_id": entryID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.LinkShare{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByEntry removes all share records for entryID.
func (s *Store) DeleteByEntry(ctx context.Context, entryID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"entry_id": entryID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
