// internal/app/store/journals/journalstore.go
package journalstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/journalhub/internal/app/system/session"
	"github.com/dalemusser/journalhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("journals")}
}

// ErrInvalidGrantKey is returned when a grant key could not be used as a
// field name under shared_with.
var ErrInvalidGrantKey = errors.New("invalid share target id")

// Create inserts e with a fresh id and timestamps.
func (s *Store) Create(ctx context.Context, e models.JournalEntry) (models.JournalEntry, error) {
	now := time.Now().UTC()
	e.ID = primitive.NewObjectID()
	e.TitleCI = text.Fold(e.Title)
	if e.Categories == nil {
		e.Categories = []string{}
	}
	e.CreatedAt = now
	e.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.JournalEntry{}, err
	}
	return e, nil
}

// GetByID loads an entry. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.JournalEntry, error) {
	var e models.JournalEntry
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

// EntryUpdate holds the editable fields of an entry.
type EntryUpdate struct {
	Title      string
	Content    string
	Categories []string
	AudioFiles []models.AudioFile
}

// Update overwrites the editable fields. The owner filter makes the write a
// no-op for anyone else; mongo.ErrNoDocuments is returned in that case.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, ownerID string, upd EntryUpdate) (*models.JournalEntry, error) {
	set := bson.M{
		"title":       upd.Title,
		"title_ci":    text.Fold(upd.Title),
		"content":     upd.Content,
		"categories":  upd.Categories,
		"audio_files": upd.AudioFiles,
		"updated_at":  time.Now().UTC(),
	}
	if upd.Categories == nil {
		set["categories"] = []string{}
	}
	if upd.AudioFiles == nil {
		set["audio_files"] = []models.AudioFile{}
	}
	var out models.JournalEntry
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "user_id": ownerID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes the entry if ownerID owns it and returns the deleted count.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID, ownerID string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "user_id": ownerID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListOwned returns the user's own entries, newest first.
func (s *Store) ListOwned(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	return s.find(ctx, bson.M{"user_id": userID})
}

// ListSharedWith returns other users' entries holding an active grant for
// userID, newest first.
func (s *Store) ListSharedWith(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	if !session.ValidUserID(userID) {
		return nil, ErrInvalidGrantKey
	}
	return s.find(ctx, bson.M{
		"shared_with." + userID + ".status": models.GrantActive,
		"user_id":                           bson.M{"$ne": userID},
	})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.JournalEntry, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.JournalEntry{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetGrant writes (or overwrites) a single grant.
func (s *Store) SetGrant(ctx context.Context, id primitive.ObjectID, targetUserID string, g models.ShareGrant) error {
	return s.SetGrants(ctx, id, map[string]models.ShareGrant{targetUserID: g})
}

// SetGrants writes every grant in one single-document update. Existing
// grants for other users are left untouched. Returns mongo.ErrNoDocuments
// when the entry does not exist.
func (s *Store) SetGrants(ctx context.Context, id primitive.ObjectID, grants map[string]models.ShareGrant) error {
	if len(grants) == 0 {
		return nil
	}
	set := bson.M{}
	for uid, g := range grants {
		if !session.ValidUserID(uid) {
			return ErrInvalidGrantKey
		}
		set["shared_with."+uid] = g
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetGrantStatus flips an existing grant between active and inactive.
func (s *Store) SetGrantStatus(ctx context.Context, id primitive.ObjectID, targetUserID, status string) (bool, error) {
	if !session.ValidUserID(targetUserID) {
		return false, ErrInvalidGrantKey
	}
	key := "shared_with." + targetUserID
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, key: bson.M{"$exists": true}},
		bson.M{"$set": bson.M{key + ".status": status}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// ContentRow is the projection streamed by EachContent.
type ContentRow struct {
	ID      primitive.ObjectID `bson:"_id"`
	Content string             `bson:"content"`
}

// EachContent streams the content of every entry to fn. Iteration stops at
// the first error fn returns.
func (s *Store) EachContent(ctx context.Context, fn func(ContentRow) error) error {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"content": 1}).SetBatchSize(200))
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row ContentRow
		if err := cur.Decode(&row); err != nil {
			return err
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return cur.Err()
}
