// internal/app/store/teams/teamstore.go
package teamstore

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/journalhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c       *mongo.Collection
	members *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:       db.Collection("teams"),
		members: db.Collection("team_memberships"),
	}
}

// Create inserts a team. Members are written separately to team_memberships.
func (s *Store) Create(ctx context.Context, t models.Team) (models.Team, error) {
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	t.Name = strings.TrimSpace(t.Name)
	t.NameCI = text.Fold(t.Name)
	t.Description = strings.TrimSpace(t.Description)
	t.CreatedAt = now
	t.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Team{}, err
	}
	return t, nil
}

// GetByID loads a team. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Team, error) {
	var t models.Team
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetMany loads the teams with the given ids, ordered by name.
func (s *Store) GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.Team, error) {
	out := []models.Team{}
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListForUser returns the teams userID belongs to, resolved through the
// membership index.
func (s *Store) ListForUser(ctx context.Context, userID string) ([]models.Team, error) {
	raw, err := s.members.Distinct(ctx, "team_id", bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return s.GetMany(ctx, ids)
}

// Update changes the name and description.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, name, description string) error {
	name = strings.TrimSpace(name)
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"name":        name,
		"name_ci":     text.Fold(name),
		"description": strings.TrimSpace(description),
		"updated_at":  time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
