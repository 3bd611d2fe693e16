package sharing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/journalhub/internal/app/services/sharing"
	invitestore "github.com/dalemusser/journalhub/internal/app/store/invites"
	journalstore "github.com/dalemusser/journalhub/internal/app/store/journals"
	membershipstore "github.com/dalemusser/journalhub/internal/app/store/memberships"
	profilestore "github.com/dalemusser/journalhub/internal/app/store/profiles"
	teamstore "github.com/dalemusser/journalhub/internal/app/store/teams"
	"github.com/dalemusser/journalhub/internal/app/system/apperr"
	"github.com/dalemusser/journalhub/internal/app/system/mailer"
	"github.com/dalemusser/journalhub/internal/domain/models"
	"github.com/dalemusser/journalhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRevokeShare(t *testing.T) {
	e := setup(t)
	a := e.fx.CreateProfile(e.ctx, "Alice", "alice@example.com")
	b := e.fx.CreateProfile(e.ctx, "Bob", "bob@example.com")
	c := e.fx.CreateProfile(e.ctx, "Carol", "carol@example.com")
	entry := e.fx.CreateEntry(e.ctx, a.ID, "Psalm", "<p>x</p>")
	as := testutil.SessionFor(a)

	if _, err := e.c.ShareWithUser(e.ctx, as, entry.ID, b.ID, ""); err != nil {
		t.Fatalf("ShareWithUser failed: %v", err)
	}

	wantKind(t, e.c.RevokeShare(e.ctx, testutil.SessionFor(b), entry.ID, b.ID), apperr.KindUnauthorized)
	wantKind(t, e.c.RevokeShare(e.ctx, as, entry.ID, c.ID), apperr.KindNotFound)
	wantKind(t, e.c.RevokeShare(e.ctx, as, entry.ID, "a.b"), apperr.KindValidation)
	wantKind(t, e.c.RevokeShare(e.ctx, as, primitive.NewObjectID(), b.ID), apperr.KindNotFound)

	if err := e.c.RevokeShare(e.ctx, as, entry.ID, " "+b.ID+" "); err != nil {
		t.Fatalf("RevokeShare failed: %v", err)
	}
	// Revoking twice is harmless.
	if err := e.c.RevokeShare(e.ctx, as, entry.ID, b.ID); err != nil {
		t.Fatalf("second RevokeShare failed: %v", err)
	}

	got := e.entry(t, entry.ID)
	if g, ok := got.SharedWith[b.ID]; !ok || g.IsActive() {
		t.Errorf("grant = %+v, want kept and inactive", g)
	}
	shared, err := journalstore.New(e.db).ListSharedWith(e.ctx, b.ID)
	if err != nil {
		t.Fatalf("ListSharedWith: %v", err)
	}
	if len(shared) != 0 {
		t.Errorf("shared with bob = %d entries, want 0", len(shared))
	}
}

func TestSetMemberRole(t *testing.T) {
	e := setup(t)
	a := e.fx.CreateProfile(e.ctx, "Alice", "alice@example.com")
	b := e.fx.CreateProfile(e.ctx, "Bob", "bob@example.com")
	c := e.fx.CreateProfile(e.ctx, "Carol", "carol@example.com")
	team := e.fx.CreateTeam(e.ctx, "T", a, b)
	as := testutil.SessionFor(a)

	_, err := e.c.SetMemberRole(e.ctx, testutil.SessionFor(b), team.ID, b.ID, models.TeamRoleAdmin)
	wantKind(t, err, apperr.KindUnauthorized)
	_, err = e.c.SetMemberRole(e.ctx, as, team.ID, b.ID, "owner")
	wantKind(t, err, apperr.KindValidation)
	_, err = e.c.SetMemberRole(e.ctx, as, team.ID, c.ID, models.TeamRoleAdmin)
	wantKind(t, err, apperr.KindNotFound)
	_, err = e.c.SetMemberRole(e.ctx, as, team.ID, a.ID, models.TeamRoleMember)
	wantKind(t, err, apperr.KindValidation)

	m, err := e.c.SetMemberRole(e.ctx, as, team.ID, b.ID, "ADMIN")
	if err != nil {
		t.Fatalf("promote failed: %v", err)
	}
	if m.Role != models.TeamRoleAdmin {
		t.Errorf("role = %q", m.Role)
	}

	// With two admins, Alice may step down.
	if _, err := e.c.SetMemberRole(e.ctx, as, team.ID, a.ID, models.TeamRoleMember); err != nil {
		t.Fatalf("demote failed: %v", err)
	}
	detail, err := e.c.GetTeam(e.ctx, testutil.SessionFor(b), team.ID)
	if err != nil {
		t.Fatalf("GetTeam failed: %v", err)
	}
	roles := map[string]string{}
	for _, mv := range detail.Members {
		roles[mv.UserID] = mv.Role
	}
	if roles[a.ID] != models.TeamRoleMember || roles[b.ID] != models.TeamRoleAdmin {
		t.Errorf("roles = %v", roles)
	}
}

func TestRemoveMember(t *testing.T) {
	e := setup(t)
	a := e.fx.CreateProfile(e.ctx, "Alice", "alice@example.com")
	b := e.fx.CreateProfile(e.ctx, "Bob", "bob@example.com")
	c := e.fx.CreateProfile(e.ctx, "Carol", "carol@example.com")
	d := e.fx.CreateProfile(e.ctx, "Dan", "dan@example.com")
	team := e.fx.CreateTeam(e.ctx, "T", a, b, c, d)
	as := testutil.SessionFor(a)

	wantKind(t, e.c.RemoveMember(e.ctx, testutil.SessionFor(b), team.ID, c.ID), apperr.KindUnauthorized)
	wantKind(t, e.c.RemoveMember(e.ctx, as, team.ID, a.ID), apperr.KindValidation)
	wantKind(t, e.c.RemoveMember(e.ctx, as, team.ID, "uid-nobody"), apperr.KindNotFound)

	// Bob leaves; Alice removes Carol.
	if err := e.c.RemoveMember(e.ctx, testutil.SessionFor(b), team.ID, b.ID); err != nil {
		t.Fatalf("leave failed: %v", err)
	}
	if err := e.c.RemoveMember(e.ctx, as, team.ID, c.ID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	_, err := e.c.GetTeam(e.ctx, testutil.SessionFor(b), team.ID)
	wantKind(t, err, apperr.KindUnauthorized)
	detail, err := e.c.GetTeam(e.ctx, as, team.ID)
	if err != nil {
		t.Fatalf("GetTeam failed: %v", err)
	}
	if len(detail.Members) != 2 {
		t.Errorf("members = %+v", detail.Members)
	}

	// Once Dan is an admin too, Alice may leave.
	if _, err := e.c.SetMemberRole(e.ctx, as, team.ID, d.ID, models.TeamRoleAdmin); err != nil {
		t.Fatalf("promote failed: %v", err)
	}
	if err := e.c.RemoveMember(e.ctx, as, team.ID, a.ID); err != nil {
		t.Fatalf("admin leave failed: %v", err)
	}
}

func TestInviteMembers_ParsesListsAndSkipsMembers(t *testing.T) {
	e := setup(t)
	a := e.fx.CreateProfile(e.ctx, "Alice", "alice@example.com")
	b := e.fx.CreateProfile(e.ctx, "Bob", "bob@example.com")
	team := e.fx.CreateTeam(e.ctx, "T", a, b)

	// A membership written before emails were recorded.
	if _, err := e.db.Collection("team_memberships").UpdateOne(e.ctx,
		bson.M{"team_id": team.ID, "user_id": b.ID}, bson.M{"$unset": bson.M{"email": ""}}); err != nil {
		t.Fatalf("unset email: %v", err)
	}

	res, err := e.c.InviteMembers(e.ctx, testutil.SessionFor(a), team.ID,
		[]string{" C@x.com , d@x.com,, BOB@example.com ", "c@x.com", "oops"})
	if err != nil {
		t.Fatalf("InviteMembers failed: %v", err)
	}
	got := map[string]bool{}
	for _, inv := range res.Invited {
		got[inv.InvitedEmail] = true
	}
	if len(res.Invited) != 2 || !got["c@x.com"] || !got["d@x.com"] {
		t.Errorf("invited = %v", got)
	}
	if len(res.Skipped) != 1 || res.Skipped[0] != "bob@example.com" {
		t.Errorf("skipped = %v", res.Skipped)
	}
	if len(res.Invalid) != 1 || res.Invalid[0] != "oops" {
		t.Errorf("invalid = %v", res.Invalid)
	}
}

// failingPending reports an error from every pending-invite check.
type failingPending struct {
	*invitestore.Store
}

func (failingPending) HasPending(context.Context, primitive.ObjectID, string) (bool, error) {
	return false, errors.New("read timed out")
}

func TestInviteMembers_PendingCheckFailureIsLogged(t *testing.T) {
	e := setup(t)
	a := e.fx.CreateProfile(e.ctx, "Alice", "alice@example.com")
	team := e.fx.CreateTeam(e.ctx, "T", a)

	core, logs := observer.New(zapcore.WarnLevel)
	c := sharing.NewWithDeps(sharing.Deps{
		Entries:     journalstore.New(e.db),
		Profiles:    profilestore.New(e.db),
		Teams:       teamstore.New(e.db),
		Memberships: membershipstore.New(e.db),
		Invites:     failingPending{invitestore.New(e.db)},
		Mail:        &mailer.Recorder{},
		Log:         zap.New(core),
	})

	res, err := c.InviteMembers(e.ctx, testutil.SessionFor(a), team.ID, []string{"c@x.com"})
	if err != nil {
		t.Fatalf("InviteMembers failed: %v", err)
	}
	if len(res.Invited) != 1 {
		t.Errorf("invited = %d, want 1", len(res.Invited))
	}
	if n := logs.FilterMessage("pending invite check failed; inviting anyway").Len(); n != 1 {
		t.Errorf("warnings = %d, want 1", n)
	}
}
