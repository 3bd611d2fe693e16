// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/journalhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is the team membership index: one document per (team_id, user_id).
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("team_memberships")}
}

var errBadRole = errors.New(`role must be "admin" or "member"`)

// Add records userID as a member of teamID. It is duplicate-safe: when a
// membership already exists it is left as is (role included) and created
// is false.
func (s *Store) Add(ctx context.Context, teamID primitive.ObjectID, userID, email, role string) (created bool, err error) {
	if role != models.TeamRoleAdmin && role != models.TeamRoleMember {
		return false, errBadRole
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"team_id": teamID, "user_id": userID},
		bson.M{"$setOnInsert": bson.M{
			"team_id":    teamID,
			"user_id":    userID,
			"email":      email,
			"role":       role,
			"created_at": time.Now().UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		// Two concurrent upserts can race on the unique index; the loser
		// still ends with exactly one membership.
		if wafflemongo.IsDup(err) {
			return false, nil
		}
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

// Remove deletes the membership document for (teamID, userID).
func (s *Store) Remove(ctx context.Context, teamID primitive.ObjectID, userID string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"team_id": teamID, "user_id": userID})
	return err
}

// SetRole changes the role of an existing membership. It returns
// mongo.ErrNoDocuments when userID is not a member of teamID.
func (s *Store) SetRole(ctx context.Context, teamID primitive.ObjectID, userID, role string) error {
	if role != models.TeamRoleAdmin && role != models.TeamRoleMember {
		return errBadRole
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"team_id": teamID, "user_id": userID},
		bson.M{"$set": bson.M{"role": role}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Get returns the membership for (teamID, userID) or mongo.ErrNoDocuments.
func (s *Store) Get(ctx context.Context, teamID primitive.ObjectID, userID string) (*models.TeamMembership, error) {
	var m models.TeamMembership
	if err := s.c.FindOne(ctx, bson.M{"team_id": teamID, "user_id": userID}).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByTeam returns all memberships for a team, oldest first.
func (s *Store) ListByTeam(ctx context.Context, teamID primitive.ObjectID) ([]models.TeamMembership, error) {
	return s.list(ctx, bson.M{"team_id": teamID})
}

// ListForUser returns all memberships held by userID.
func (s *Store) ListForUser(ctx context.Context, userID string) ([]models.TeamMembership, error) {
	return s.list(ctx, bson.M{"user_id": userID})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.TeamMembership, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	memberships := []models.TeamMembership{}
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// CountByTeam returns the count of memberships for a team, optionally filtered by role.
// If role is empty, counts all memberships.
func (s *Store) CountByTeam(ctx context.Context, teamID primitive.ObjectID, role string) (int64, error) {
	filter := bson.M{"team_id": teamID}
	if role != "" {
		filter["role"] = role
	}
	return s.c.CountDocuments(ctx, filter)
}

// CountPerTeam returns member counts for several teams in one aggregation.
// Teams with no memberships are absent from the map.
func (s *Store) CountPerTeam(ctx context.Context, teamIDs []primitive.ObjectID) (map[primitive.ObjectID]int, error) {
	result := make(map[primitive.ObjectID]int)
	if len(teamIDs) == 0 {
		return result, nil
	}

	cur, err := s.c.Aggregate(ctx, []bson.M{
		{"$match": bson.M{"team_id": bson.M{"$in": teamIDs}}},
		{"$group": bson.M{"_id": "$team_id", "n": bson.M{"$sum": 1}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
			N  int                `bson:"n"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		result[row.ID] = row.N
	}
	return result, cur.Err()
}
