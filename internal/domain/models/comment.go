// internal/domain/models/comment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is a reader's note on a journal entry.
type Comment struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	EntryID      primitive.ObjectID `bson:"entry_id" json:"entry_id"`
	UserID       string             `bson:"user_id" json:"user_id"`
	UserEmail    string             `bson:"user_email" json:"user_email"`
	UserPhotoURL string             `bson:"user_photo_url,omitempty" json:"user_photo_url,omitempty"`
	Text         string             `bson:"text" json:"text"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}
