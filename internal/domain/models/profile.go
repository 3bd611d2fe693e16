// internal/domain/models/profile.go
package models

import "time"

// DefaultBadge is granted to every profile on creation.
const DefaultBadge = "newcomer"

// UserProfile is the per-user document in the users collection.
//
// The _id is the identity provider's user id (a string, not an ObjectID).
// Email and FullName keep what the user typed; the *_ci fields hold the
// folded forms used for search and uniqueness.
type UserProfile struct {
	ID         string `bson:"_id" json:"id"`
	FullName   string `bson:"full_name" json:"full_name"`
	FullNameCI string `bson:"full_name_ci" json:"-"`
	Username   string `bson:"username" json:"username"` // always stored lowercase
	Email      string `bson:"email" json:"email"`
	EmailCI    string `bson:"email_ci" json:"-"`
	PhotoURL   string `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
	Bio        string `bson:"bio,omitempty" json:"bio,omitempty"`

	DateOfBirth      string   `bson:"date_of_birth,omitempty" json:"date_of_birth,omitempty"`
	MinistryRole     string   `bson:"ministry_role,omitempty" json:"ministry_role,omitempty"`
	HomebaseMinistry string   `bson:"homebase_ministry,omitempty" json:"homebase_ministry,omitempty"`
	SpiritualLeader  string   `bson:"spiritual_leader,omitempty" json:"spiritual_leader,omitempty"`
	SpiritualGifts   []string `bson:"spiritual_gifts,omitempty" json:"spiritual_gifts,omitempty"`
	PrayerPartners   []string `bson:"prayer_partners,omitempty" json:"prayer_partners,omitempty"`

	Badges       []string  `bson:"badges" json:"badges"`
	JournalCount int       `bson:"journal_count" json:"journal_count"`
	JoinedAt     time.Time `bson:"joined_at" json:"joined_at"`
	LastActive   time.Time `bson:"last_active" json:"last_active"`
}

// UserSummary is the public subset returned by user search and
// profile lookups by other users.
type UserSummary struct {
	ID       string `bson:"_id" json:"id"`
	FullName string `bson:"full_name" json:"full_name"`
	Username string `bson:"username" json:"username"`
	Email    string `bson:"email" json:"email"`
	PhotoURL string `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
}
