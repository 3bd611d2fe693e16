// internal/domain/models/share.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Link share types.
const (
	ShareTypeLink  = "link"
	ShareTypeEmail = "email"
)

// LinkShare records a share of an entry outside the grant map: either a
// bearer link (type "link", expiring) or a notification sent to an email
// address (type "email").
//
// Only the hash of a link token is stored.
type LinkShare struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	EntryID   primitive.ObjectID `bson:"entry_id" json:"entry_id"`
	Type      string             `bson:"type" json:"type"`
	TokenHash string             `bson:"token_hash,omitempty" json:"-"`
	Email     string             `bson:"email,omitempty" json:"email,omitempty"`
	Status    string             `bson:"status,omitempty" json:"status,omitempty"`
	CreatedBy string             `bson:"created_by" json:"created_by"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	ExpiresAt *time.Time         `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
}
