// internal/app/services/sharing/coordinator.go
package sharing

import (
	"context"
	"time"

	invitestore "github.com/dalemusser/journalhub/internal/app/store/invites"
	journalstore "github.com/dalemusser/journalhub/internal/app/store/journals"
	membershipstore "github.com/dalemusser/journalhub/internal/app/store/memberships"
	profilestore "github.com/dalemusser/journalhub/internal/app/store/profiles"
	teamstore "github.com/dalemusser/journalhub/internal/app/store/teams"
	"github.com/dalemusser/journalhub/internal/app/system/mailer"
	"github.com/dalemusser/journalhub/internal/app/system/txn"
	"github.com/dalemusser/journalhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// SearchLimit caps SearchUsers results.
const SearchLimit = 5

// minSearchLen is the shortest query SearchUsers sends to the store.
const minSearchLen = 3

// The store surfaces the coordinator depends on. The mongo-backed stores
// satisfy them; tests may substitute fakes.
type (
	Entries interface {
		GetByID(ctx context.Context, id primitive.ObjectID) (*models.JournalEntry, error)
		SetGrant(ctx context.Context, id primitive.ObjectID, targetUserID string, g models.ShareGrant) error
		SetGrants(ctx context.Context, id primitive.ObjectID, grants map[string]models.ShareGrant) error
		SetGrantStatus(ctx context.Context, id primitive.ObjectID, targetUserID, status string) (bool, error)
	}

	Profiles interface {
		GetByID(ctx context.Context, id string) (*models.UserProfile, error)
		GetByEmail(ctx context.Context, email string) (*models.UserProfile, error)
		GetSummaries(ctx context.Context, ids []string) (map[string]models.UserSummary, error)
		SearchByEmailPrefix(ctx context.Context, prefix string, limit int64) ([]models.UserSummary, error)
	}

	Teams interface {
		Create(ctx context.Context, t models.Team) (models.Team, error)
		GetByID(ctx context.Context, id primitive.ObjectID) (*models.Team, error)
		GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.Team, error)
	}

	Memberships interface {
		Add(ctx context.Context, teamID primitive.ObjectID, userID, email, role string) (bool, error)
		Get(ctx context.Context, teamID primitive.ObjectID, userID string) (*models.TeamMembership, error)
		ListByTeam(ctx context.Context, teamID primitive.ObjectID) ([]models.TeamMembership, error)
		ListForUser(ctx context.Context, userID string) ([]models.TeamMembership, error)
		CountPerTeam(ctx context.Context, teamIDs []primitive.ObjectID) (map[primitive.ObjectID]int, error)
		CountByTeam(ctx context.Context, teamID primitive.ObjectID, role string) (int64, error)
		SetRole(ctx context.Context, teamID primitive.ObjectID, userID, role string) error
		Remove(ctx context.Context, teamID primitive.ObjectID, userID string) error
	}

	Invites interface {
		Create(ctx context.Context, inv models.TeamInvite) (models.TeamInvite, error)
		GetByID(ctx context.Context, id primitive.ObjectID) (*models.TeamInvite, error)
		ListPendingForEmail(ctx context.Context, email string) ([]models.TeamInvite, error)
		MarkRedundant(ctx context.Context, ids []primitive.ObjectID) (int64, error)
		SetStatus(ctx context.Context, id primitive.ObjectID, status, respondedBy string, from ...string) (bool, error)
		HasPending(ctx context.Context, teamID primitive.ObjectID, email string) (bool, error)
	}
)

// Config carries the settings used to build links in outgoing email.
type Config struct {
	SiteName string
	BaseURL  string
}

// Deps bundles everything a Coordinator needs.
type Deps struct {
	Entries     Entries
	Profiles    Profiles
	Teams       Teams
	Memberships Memberships
	Invites     Invites
	Txn         txn.Runner
	Mail        mailer.Sender
	Config      Config
	Log         *zap.Logger
	Now         func() time.Time
}

// Coordinator grants entry visibility to users and teams and keeps team
// invites and memberships consistent.
type Coordinator struct {
	entries     Entries
	profiles    Profiles
	teams       Teams
	memberships Memberships
	invites     Invites
	tx          txn.Runner
	mail        mailer.Sender
	cfg         Config
	log         *zap.Logger
	now         func() time.Time
}

// New wires a Coordinator to the mongo-backed stores in db.
func New(db *mongo.Database, tx txn.Runner, mail mailer.Sender, cfg Config, logger *zap.Logger) *Coordinator {
	return NewWithDeps(Deps{
		Entries:     journalstore.New(db),
		Profiles:    profilestore.New(db),
		Teams:       teamstore.New(db),
		Memberships: membershipstore.New(db),
		Invites:     invitestore.New(db),
		Txn:         tx,
		Mail:        mail,
		Config:      cfg,
		Log:         logger,
	})
}

// NewWithDeps builds a Coordinator from explicit dependencies. A nil Txn
// runs work without a transaction; a nil Now uses time.Now.
func NewWithDeps(d Deps) *Coordinator {
	c := &Coordinator{
		entries:     d.Entries,
		profiles:    d.Profiles,
		teams:       d.Teams,
		memberships: d.Memberships,
		invites:     d.Invites,
		tx:          d.Txn,
		mail:        d.Mail,
		cfg:         d.Config,
		log:         d.Log,
		now:         d.Now,
	}
	if c.tx == nil {
		c.tx = txn.Direct{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.cfg.SiteName == "" {
		c.cfg.SiteName = "JournalHub"
	}
	return c
}
