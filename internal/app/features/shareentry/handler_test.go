package shareentry_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/journalhub/internal/app/features/errors"
	"github.com/dalemusser/journalhub/internal/app/features/shareentry"
	"github.com/dalemusser/journalhub/internal/app/services/journals"
	"github.com/dalemusser/journalhub/internal/app/store/audit"
	"github.com/dalemusser/journalhub/internal/app/system/auditlog"
	"github.com/dalemusser/journalhub/internal/app/system/mailer"
	"github.com/dalemusser/journalhub/internal/app/system/ratelimit"
	"github.com/dalemusser/journalhub/internal/domain/models"
	"github.com/dalemusser/journalhub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type env struct {
	r     chi.Router
	mail  *mailer.Recorder
	audit *audit.Store
	alice models.UserProfile
	entry models.JournalEntry
}

func newEnv(t *testing.T, limit int) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	alice := fx.CreateProfile(ctx, "Alice", "alice@example.com")
	entry := fx.CreateEntry(ctx, alice.ID, "Gratitude", "<p>x</p>")

	logger := zap.NewNop()
	rec := &mailer.Recorder{}
	svc := journals.New(db, testutil.NewMemBlobs("https://files.example.com"), rec,
		journals.Config{SiteName: "JournalHub", BaseURL: "https://journal.example.com"}, logger)
	store := audit.New(db)
	h := shareentry.NewHandler(svc, uierrors.NewErrorLogger(logger), auditlog.New(store, logger, auditlog.Config{}), logger)
	return &env{
		r:     shareentry.Routes(h, ratelimit.New(limit, time.Hour)),
		mail:  rec,
		audit: store,
		alice: alice,
		entry: entry,
	}
}

func (e *env) post(body any) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	e.r.ServeHTTP(rec, testutil.WithSession(testutil.NewJSONRequest("POST", "/", body), testutil.SessionFor(e.alice)))
	return rec
}

func (e *env) body(emails ...string) map[string]any {
	return map[string]any{
		"emails":     emails,
		"entryId":    e.entry.ID.Hex(),
		"entryTitle": e.entry.Title,
		"shareLink":  "https://journal.example.com/shared/abc",
	}
}

func TestShareEntry_Success(t *testing.T) {
	e := newEnv(t, 20)

	rec := e.post(e.body("bob@example.com", "carol@example.com"))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"success":true`)

	if e.mail.Count() != 2 {
		t.Fatalf("sent = %d, want 2", e.mail.Count())
	}
	if got := e.mail.Sent[0].Subject; !strings.Contains(got, "Gratitude") {
		t.Errorf("subject = %q", got)
	}
	e.assertAudited(t, true)
}

func (e *env) assertAudited(t *testing.T, success bool) {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	events, err := e.audit.GetByEntry(ctx, e.entry.ID, 10)
	if err != nil {
		t.Fatalf("GetByEntry: %v", err)
	}
	if len(events) != 1 || events[0].EventType != audit.EventEntrySharedByEmail || events[0].Success != success {
		t.Errorf("audit events = %+v, want one email share with success=%v", events, success)
	}
}

func TestShareEntry_SendFailure(t *testing.T) {
	e := newEnv(t, 20)
	e.mail.Fail = func(to string) bool { return to == "carol@example.com" }

	rec := e.post(e.body("bob@example.com", "carol@example.com"))
	rec.AssertStatus(t, http.StatusInternalServerError)
	rec.AssertContains(t, `"error":"Failed to send email"`)
	e.assertAudited(t, false)
}

func TestShareEntry_BadRequests(t *testing.T) {
	e := newEnv(t, 20)

	tests := []struct {
		name string
		body any
	}{
		{"no emails", e.body()},
		{"invalid email", e.body("not-an-address")},
		{"bad entry id", map[string]any{"emails": []string{"b@example.com"}, "entryId": "x", "entryTitle": "t", "shareLink": "https://x/y"}},
		{"missing link", map[string]any{"emails": []string{"b@example.com"}, "entryId": e.entry.ID.Hex(), "entryTitle": "t"}},
		{"unknown field", map[string]any{"emails": []string{"b@example.com"}, "bogus": true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.post(tt.body)
			rec.AssertStatus(t, http.StatusBadRequest)
			rec.AssertContains(t, `"error"`)
		})
	}
	if e.mail.Count() != 0 {
		t.Errorf("sent = %d, want 0", e.mail.Count())
	}
}

func TestShareEntry_RateLimited(t *testing.T) {
	e := newEnv(t, 1)

	e.post(e.body("bob@example.com")).AssertStatus(t, http.StatusOK)
	e.post(e.body("bob@example.com")).AssertStatus(t, http.StatusTooManyRequests)
}
