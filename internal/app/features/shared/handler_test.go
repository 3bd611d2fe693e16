package shared_test

import (
	"net/http"
	"strings"
	"testing"

	uierrors "github.com/dalemusser/journalhub/internal/app/features/errors"
	"github.com/dalemusser/journalhub/internal/app/features/shared"
	"github.com/dalemusser/journalhub/internal/app/services/journals"
	"github.com/dalemusser/journalhub/internal/app/system/mailer"
	"github.com/dalemusser/journalhub/internal/testutil"
	"go.uber.org/zap"
)

func TestServeLink(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	alice := fx.CreateProfile(ctx, "Alice", "alice@example.com")
	entry := fx.CreateEntry(ctx, alice.ID, "Psalm 23", "<p>The Lord is my shepherd</p>")

	logger := zap.NewNop()
	svc := journals.New(db, testutil.NewMemBlobs("https://files.example.com"), &mailer.Recorder{},
		journals.Config{BaseURL: "https://journal.example.com"}, logger)
	link, err := svc.CreateShareLink(ctx, testutil.SessionFor(alice), entry.ID)
	if err != nil {
		t.Fatalf("CreateShareLink: %v", err)
	}
	token := link.URL[strings.LastIndex(link.URL, "/")+1:]

	r := shared.Routes(shared.NewHandler(svc, uierrors.NewErrorLogger(logger), logger))

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewRequest("GET", "/"+token))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Psalm 23")
	if strings.Contains(rec.Body.String(), "shared_with") || strings.Contains(rec.Body.String(), alice.ID) {
		t.Errorf("link view leaks owner data: %s", rec.Body.String())
	}

	rec = testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewRequest("GET", "/not-a-token"))
	rec.AssertStatus(t, http.StatusNotFound)
}
