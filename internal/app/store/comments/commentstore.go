// internal/app/store/comments/commentstore.go
package commentstore

import (
	"context"
	"time"

	"github.com/dalemusser/journalhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("journal_comments")}
}

// Create inserts a comment with a fresh id and timestamp.
func (s *Store) Create(ctx context.Context, c models.Comment) (models.Comment, error) {
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Comment{}, err
	}
	return c, nil
}

// ListByEntry returns an entry's comments, oldest first.
func (s *Store) ListByEntry(ctx context.Context, entryID primitive.ObjectID) ([]models.Comment, error) {
	cur, err := s.c.Find(ctx, bson.M{"entry_id": entryID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Comment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByEntry removes all comments on entryID.
func (s *Store) DeleteByEntry(ctx context.Context, entryID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"entry_id": entryID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
