// internal/domain/models/teaminvite.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invite statuses. Pending is the only non-terminal state.
const (
	InvitePending   = "pending"
	InviteAccepted  = "accepted"
	InviteRejected  = "rejected"
	InviteRedundant = "redundant"
)

// TeamInvite is an outstanding or resolved invitation for an email address
// to join a team.
type TeamInvite struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	TeamID       primitive.ObjectID `bson:"team_id" json:"team_id"`
	TeamName     string             `bson:"team_name" json:"team_name"`
	InvitedBy    string             `bson:"invited_by" json:"invited_by"` // inviter's email
	InvitedEmail string             `bson:"invited_email" json:"invited_email"`
	Status       string             `bson:"status" json:"status"`
	RespondedBy  string             `bson:"responded_by,omitempty" json:"responded_by,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}
