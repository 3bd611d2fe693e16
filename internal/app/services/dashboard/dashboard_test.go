package dashboard_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/journalhub/internal/app/services/dashboard"
	journalstore "github.com/dalemusser/journalhub/internal/app/store/journals"
	"github.com/dalemusser/journalhub/internal/app/system/apperr"
	"github.com/dalemusser/journalhub/internal/app/system/session"
	"github.com/dalemusser/journalhub/internal/domain/models"
	"github.com/dalemusser/journalhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuild(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	a := fx.CreateProfile(ctx, "Alice", "alice@example.com")
	b := fx.CreateProfile(ctx, "Bob", "bob@example.com")

	fx.CreateEntry(ctx, a.ID, "Morning Prayer", "<p>x</p>")
	fx.CreateEntry(ctx, a.ID, "Evening notes", `<p><img src="https://f/x.png"></p>`)
	fromBob := fx.CreateEntry(ctx, b.ID, "Bob's Prayer List", "<p>y</p>")
	hidden := fx.CreateEntry(ctx, b.ID, "Private", "<p>z</p>")

	store := journalstore.New(db)
	now := time.Now().UTC()
	if err := store.SetGrant(ctx, fromBob.ID, a.ID, models.ShareGrant{Email: a.EmailCI, SharedAt: now, Status: models.GrantActive, SharedByEmail: b.EmailCI}); err != nil {
		t.Fatalf("SetGrant: %v", err)
	}
	if err := store.SetGrant(ctx, hidden.ID, a.ID, models.ShareGrant{Email: a.EmailCI, SharedAt: now, Status: models.GrantInactive, SharedByEmail: b.EmailCI}); err != nil {
		t.Fatalf("SetGrant: %v", err)
	}

	agg := dashboard.New(db)
	sess := testutil.SessionFor(a)

	v, err := agg.Build(ctx, sess, dashboard.Filter{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(v.PrivateEntries) != 2 {
		t.Fatalf("private = %+v", v.PrivateEntries)
	}
	if v.PrivateEntries[0].Title != "Evening notes" || !v.PrivateEntries[0].HasImage {
		t.Errorf("newest private entry = %+v", v.PrivateEntries[0])
	}
	if len(v.SharedWithMeEntries) != 1 {
		t.Fatalf("shared = %+v", v.SharedWithMeEntries)
	}
	got := v.SharedWithMeEntries[0]
	if got.ID != fromBob.ID.Hex() || got.OwnerID != b.ID || got.SharedByEmail != b.EmailCI {
		t.Errorf("shared entry = %+v", got)
	}

	v, err = agg.Build(ctx, sess, dashboard.Filter{PrivateQuery: "PRAYER", SharedQuery: "nothing"})
	if err != nil {
		t.Fatalf("filtered Build failed: %v", err)
	}
	if len(v.PrivateEntries) != 1 || v.PrivateEntries[0].Title != "Morning Prayer" {
		t.Errorf("filtered private = %+v", v.PrivateEntries)
	}
	if v.SharedWithMeEntries == nil || len(v.SharedWithMeEntries) != 0 {
		t.Errorf("filtered shared = %+v", v.SharedWithMeEntries)
	}
}

type fakeEntries struct {
	owned, shared []models.JournalEntry
	sharedErr     error
}

func (f *fakeEntries) ListOwned(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	return f.owned, nil
}

func (f *fakeEntries) ListSharedWith(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	return f.shared, f.sharedErr
}

func TestBuild_QueryFailure(t *testing.T) {
	fake := &fakeEntries{
		owned:     []models.JournalEntry{{ID: primitive.NewObjectID(), UserID: "u1", Title: "x"}},
		sharedErr: errors.New("boom"),
	}
	agg := dashboard.NewWithEntries(fake)

	_, err := agg.Build(context.Background(), session.Session{UserID: "u1", Email: "u1@example.com"}, dashboard.Filter{})
	if !apperr.Is(err, apperr.KindInternal) || err == nil {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestBuild_RequiresSession(t *testing.T) {
	agg := dashboard.NewWithEntries(&fakeEntries{})
	_, err := agg.Build(context.Background(), session.Session{}, dashboard.Filter{})
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestBuild_EmptyListsAreNotNil(t *testing.T) {
	agg := dashboard.NewWithEntries(&fakeEntries{})
	v, err := agg.Build(context.Background(), session.Session{UserID: "u1", Email: "u1@example.com"}, dashboard.Filter{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if v.PrivateEntries == nil || v.SharedWithMeEntries == nil {
		t.Error("expected empty, non-nil lists")
	}
}
