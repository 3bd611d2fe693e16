// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryAuth    = "auth"
	CategorySharing = "sharing"
)

// Auth event types
const (
	EventSignIn       = "sign_in"
	EventSignInFailed = "sign_in_failed"
	EventSignOut      = "sign_out"
)

// Sharing event types
const (
	EventEntrySharedWithUser = "entry_shared_with_user"
	EventEntrySharedWithTeam = "entry_shared_with_team"
	EventShareLinkCreated    = "share_link_created"
	EventEntrySharedByEmail  = "entry_shared_by_email"
	EventEntryShareRevoked   = "entry_share_revoked"
	EventTeamCreated         = "team_created"
	EventTeamInvitesSent     = "team_invites_sent"
	EventInviteAccepted      = "invite_accepted"
	EventInviteRejected      = "invite_rejected"
	EventMemberRoleChanged   = "member_role_changed"
	EventMemberRemoved       = "member_removed"
)

// Event represents an audit event.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Timestamp time.Time          `bson:"timestamp"`

	Category  string `bson:"category"`
	EventType string `bson:"event_type"`

	// Who acted, and who was affected (share target, invitee).
	ActorID string `bson:"actor_id,omitempty"`
	UserID  string `bson:"user_id,omitempty"`

	// What was touched
	EntryID *primitive.ObjectID `bson:"entry_id,omitempty"`
	TeamID  *primitive.ObjectID `bson:"team_id,omitempty"`

	IP        string `bson:"ip,omitempty"`
	UserAgent string `bson:"user_agent,omitempty"`

	Success       bool   `bson:"success"`
	FailureReason string `bson:"failure_reason,omitempty"`

	Details map[string]string `bson:"details,omitempty"`
}

// QueryFilter defines filters for querying audit events.
type QueryFilter struct {
	ActorID   string
	UserID    string
	EntryID   *primitive.ObjectID
	Category  string
	EventType string
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int64
	Offset    int64
}

func (f QueryFilter) query() bson.M {
	q := bson.M{}
	if f.ActorID != "" {
		q["actor_id"] = f.ActorID
	}
	if f.UserID != "" {
		q["user_id"] = f.UserID
	}
	if f.EntryID != nil {
		q["entry_id"] = *f.EntryID
	}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.EventType != "" {
		q["event_type"] = f.EventType
	}
	if f.StartTime != nil || f.EndTime != nil {
		tq := bson.M{}
		if f.StartTime != nil {
			tq["$gte"] = *f.StartTime
		}
		if f.EndTime != nil {
			tq["$lte"] = *f.EndTime
		}
		q["timestamp"] = tq
	}
	return q
}

// Store manages audit event records. Indexes are created by the indexes
// package at startup.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// Log records an audit event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// Query retrieves audit events matching the filter, newest first. A zero
// Limit means 100.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit).
		SetSkip(filter.Offset)

	cur, err := s.c.Find(ctx, filter.query(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	events := []Event{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// CountByFilter returns the count of events matching the filter.
func (s *Store) CountByFilter(ctx context.Context, filter QueryFilter) (int64, error) {
	return s.c.CountDocuments(ctx, filter.query())
}

// GetByActor retrieves recent events performed by a user.
func (s *Store) GetByActor(ctx context.Context, actorID string, limit int64) ([]Event, error) {
	return s.Query(ctx, QueryFilter{ActorID: actorID, Limit: limit})
}

// GetByEntry retrieves the sharing history of an entry.
func (s *Store) GetByEntry(ctx context.Context, entryID primitive.ObjectID, limit int64) ([]Event, error) {
	return s.Query(ctx, QueryFilter{EntryID: &entryID, Category: CategorySharing, Limit: limit})
}

// GetRecent retrieves the most recent audit events.
func (s *Store) GetRecent(ctx context.Context, limit int64) ([]Event, error) {
	return s.Query(ctx, QueryFilter{Limit: limit})
}
