// internal/domain/models/journal.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Grant statuses. Only an active grant lets a non-owner read an entry.
const (
	GrantActive   = "active"
	GrantInactive = "inactive"
)

// JournalEntry is a single journal document.
//
// NOTE:
//   - SharedWith is keyed by the target user's id and never contains the owner.
//   - Content is stored sanitized; it may embed <img src="..."> references
//     to blobs under journal-images/.
type JournalEntry struct {
	ID         primitive.ObjectID    `bson:"_id" json:"id"`
	UserID     string                `bson:"user_id" json:"user_id"`
	Title      string                `bson:"title" json:"title"`
	TitleCI    string                `bson:"title_ci" json:"-"`
	Content    string                `bson:"content" json:"content"`
	Categories []string              `bson:"categories" json:"categories"`
	AudioFiles []AudioFile           `bson:"audio_files,omitempty" json:"audio_files,omitempty"`
	SharedWith map[string]ShareGrant `bson:"shared_with,omitempty" json:"shared_with,omitempty"`
	CreatedAt  time.Time             `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time             `bson:"updated_at" json:"updated_at"`
}

// AudioFile references a voice recording stored at journal-audio/<uid>/<id>.mp3.
type AudioFile struct {
	ID  string `bson:"id" json:"id"`
	URL string `bson:"url" json:"url"`
}

// ShareGrant is one entry in JournalEntry.SharedWith.
type ShareGrant struct {
	Email         string              `bson:"email" json:"email"`
	SharedAt      time.Time           `bson:"shared_at" json:"shared_at"`
	Status        string              `bson:"status" json:"status"`
	SharedByEmail string              `bson:"shared_by_email" json:"shared_by_email"`
	SharedViaTeam *primitive.ObjectID `bson:"shared_via_team,omitempty" json:"shared_via_team,omitempty"`
	TeamName      string              `bson:"team_name,omitempty" json:"team_name,omitempty"`
	PhotoURL      string              `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
}

// IsActive reports whether the grant currently confers read access.
func (g ShareGrant) IsActive() bool { return g.Status == GrantActive }
