// internal/app/store/invites/invitestore.go
package invitestore

import (
	"context"
	"time"

	"github.com/dalemusser/journalhub/internal/app/system/normalize"
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
	return &Store{c: db.Collection("team_invites")}
}

// Create inserts a pending invite for inv.InvitedEmail.
func (s *Store) Create(ctx context.Context, inv models.TeamInvite) (models.TeamInvite, error) {
	now := time.Now().UTC()
	inv.ID = primitive.NewObjectID()
	inv.InvitedEmail = normalize.Email(inv.InvitedEmail)
	inv.Status = models.InvitePending
	inv.CreatedAt = now
	inv.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, inv); err != nil {
		return models.TeamInvite{}, err
	}
	return inv, nil
}

// GetByID loads an invite. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.TeamInvite, error) {
	var inv models.TeamInvite
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// ListPendingForEmail returns pending invites addressed to email, newest first.
func (s *Store) ListPendingForEmail(ctx context.Context, email string) ([]models.TeamInvite, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"invited_email": normalize.Email(email), "status": models.InvitePending},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.TeamInvite{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRedundant moves the given invites from pending to redundant. Invites
// that already left pending are untouched, so repeated or concurrent calls
// converge on the same statuses. Returns how many changed.
func (s *Store) MarkRedundant(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.c.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "status": models.InvitePending},
		bson.M{"$set": bson.M{"status": models.InviteRedundant, "updated_at": time.Now().UTC()}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// SetStatus moves the invite to status if its current status is one of
// from. It reports whether the invite was changed.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status, respondedBy string, from ...string) (bool, error) {
	filter := bson.M{"_id": id}
	if len(from) > 0 {
		filter["status"] = bson.M{"$in": from}
	}
	set := bson.M{"status": status, "updated_at": time.Now().UTC()}
	if respondedBy != "" {
		set["responded_by"] = respondedBy
	}
	res, err := s.c.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// HasPending reports whether email already has a pending invite to teamID.
func (s *Store) HasPending(ctx context.Context, teamID primitive.ObjectID, email string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"team_id":       teamID,
		"invited_email": normalize.Email(email),
		"status":        models.InvitePending,
	}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
