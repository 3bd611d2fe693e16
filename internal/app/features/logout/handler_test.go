package logout_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/journalhub/internal/app/features/logout"
	"github.com/dalemusser/journalhub/internal/app/system/auth"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) *logout.Handler {
	t.Helper()
	logger := zap.NewNop()

	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", 24*time.Hour, false, nil, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return logout.NewHandler(sessionMgr, nil, logger)
}

func TestHandleLogout_ClearsSessionCookie(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest("POST", "/auth/logout", nil)
	rec := httptest.NewRecorder()

	handler.HandleLogout(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected the session cookie to be expired")
	}
}
