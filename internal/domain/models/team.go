// internal/domain/models/team.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Team roles.
const (
	TeamRoleAdmin  = "admin"
	TeamRoleMember = "member"
)

// Team is a named group of users that entries can be shared with.
//
// Members are not embedded. All membership lives in team_memberships.
type Team struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"`
	Description string             `bson:"description" json:"description"`
	CreatedBy   string             `bson:"created_by" json:"created_by"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// TeamMembership is the authoritative join between users and teams.
// Exactly one document per (team_id, user_id).
type TeamMembership struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TeamID    primitive.ObjectID `bson:"team_id" json:"team_id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	Email     string             `bson:"email,omitempty" json:"email,omitempty"`
	Role      string             `bson:"role" json:"role"` // "admin" | "member"
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
