package testutil

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/journalhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, _ := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateProfile inserts a profile with a random id for the given email.
// The username is derived from the email's local part.
func (f *Fixtures) CreateProfile(ctx context.Context, fullName, email string) models.UserProfile {
	f.t.Helper()

	now := time.Now().UTC()
	local := strings.SplitN(email, "@", 2)[0]
	p := models.UserProfile{
		ID:         "uid-" + uuid.NewString()[:12],
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Username:   strings.ToLower(local),
		Email:      email,
		EmailCI:    strings.ToLower(email),
		PhotoURL:   "https://img.example.com/" + strings.ToLower(local) + ".png",
		Badges:     []string{models.DefaultBadge},
		JoinedAt:   now,
		LastActive: now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test profile: %v", err)
	}
	return p
}

// CreateEntry inserts a journal entry owned by ownerID.
func (f *Fixtures) CreateEntry(ctx context.Context, ownerID, title, content string) models.JournalEntry {
	f.t.Helper()

	now := time.Now().UTC()
	e := models.JournalEntry{
		ID:         primitive.NewObjectID(),
		UserID:     ownerID,
		Title:      title,
		TitleCI:    text.Fold(title),
		Content:    content,
		Categories: []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("journals").InsertOne(ctx, e); err != nil {
		f.t.Fatalf("failed to create test entry: %v", err)
	}
	return e
}

// CreateTeam inserts a team and makes admin its admin member.
// Each further member is added with the member role.
func (f *Fixtures) CreateTeam(ctx context.Context, name string, admin models.UserProfile, members ...models.UserProfile) models.Team {
	f.t.Helper()

	now := time.Now().UTC()
	team := models.Team{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		CreatedBy: admin.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("teams").InsertOne(ctx, team); err != nil {
		f.t.Fatalf("failed to create test team: %v", err)
	}
	f.AddMember(ctx, team.ID, admin, models.TeamRoleAdmin)
	for _, m := range members {
		f.AddMember(ctx, team.ID, m, models.TeamRoleMember)
	}
	return team
}

// AddMember inserts a membership row for p in teamID.
func (f *Fixtures) AddMember(ctx context.Context, teamID primitive.ObjectID, p models.UserProfile, role string) {
	f.t.Helper()

	m := models.TeamMembership{
		ID:        primitive.NewObjectID(),
		TeamID:    teamID,
		UserID:    p.ID,
		Email:     p.EmailCI,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("team_memberships").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to add test membership: %v", err)
	}
}

// CreateInvite inserts a pending invite for email to team.
func (f *Fixtures) CreateInvite(ctx context.Context, team models.Team, invitedBy, email string) models.TeamInvite {
	f.t.Helper()

	now := time.Now().UTC()
	inv := models.TeamInvite{
		ID:           primitive.NewObjectID(),
		TeamID:       team.ID,
		TeamName:     team.Name,
		InvitedBy:    invitedBy,
		InvitedEmail: strings.ToLower(email),
		Status:       models.InvitePending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("team_invites").InsertOne(ctx, inv); err != nil {
		f.t.Fatalf("failed to create test invite: %v", err)
	}
	return inv
}
