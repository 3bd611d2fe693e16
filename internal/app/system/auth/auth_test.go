package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/journalhub/internal/app/system/auth"
	"github.com/dalemusser/journalhub/internal/app/system/session"
	"go.uber.org/zap"
)

const testSecret = "test-jwt-secret-test-jwt-secret!!"

func newTestSessionManager(t *testing.T) (*auth.SessionManager, *auth.TokenVerifier) {
	t.Helper()
	v := auth.NewTokenVerifier(testSecret, "journalhub-test")
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		v,
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm, v
}

// echoSession writes the session found in context, or 204 when none.
func echoSession(w http.ResponseWriter, r *http.Request) {
	s, ok := auth.CurrentSession(r)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"user_id": s.UserID, "email": s.Email})
}

func TestRequireSignedIn_NoSession_Returns401(t *testing.T) {
	sm, _ := newTestSessionManager(t)
	h := sm.LoadSession(sm.RequireSignedIn(http.HandlerFunc(echoSession)))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/entries", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestLoadSession_BearerToken(t *testing.T) {
	sm, v := newTestSessionManager(t)
	tok, err := v.Issue(session.Session{UserID: "uid-1", Email: "Alice@Example.com"}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	h := sm.LoadSession(sm.RequireSignedIn(http.HandlerFunc(echoSession)))
	req := httptest.NewRequest("GET", "/entries", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["user_id"] != "uid-1" {
		t.Errorf("user_id = %q", body["user_id"])
	}
	if body["email"] != "alice@example.com" {
		t.Errorf("email should be lowercased, got %q", body["email"])
	}
}

func TestLoadSession_RejectsBadTokens(t *testing.T) {
	sm, _ := newTestSessionManager(t)
	other := auth.NewTokenVerifier("some-other-secret-some-other-secret", "journalhub-test")
	forged, _ := other.Issue(session.Session{UserID: "uid-1"}, time.Hour)

	wrongIssuer := auth.NewTokenVerifier(testSecret, "someone-else")
	foreign, _ := wrongIssuer.Issue(session.Session{UserID: "uid-1"}, time.Hour)

	v := auth.NewTokenVerifier(testSecret, "journalhub-test")
	expired, _ := v.Issue(session.Session{UserID: "uid-1"}, -time.Hour)
	badSubject, _ := v.Issue(session.Session{UserID: "a.b"}, time.Hour)

	for name, tok := range map[string]string{
		"garbage":      "not-a-jwt",
		"wrong secret": forged,
		"wrong issuer": foreign,
		"expired":      expired,
		"bad subject":  badSubject,
	} {
		t.Run(name, func(t *testing.T) {
			h := sm.LoadSession(http.HandlerFunc(echoSession))
			req := httptest.NewRequest("GET", "/", nil)
			req.Header.Set("Authorization", "Bearer "+tok)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestSignIn_SetsCookieThatLoadsSession(t *testing.T) {
	sm, v := newTestSessionManager(t)
	tok, _ := v.Issue(session.Session{UserID: "uid-2", Email: "bob@example.com"}, time.Hour)

	rec := httptest.NewRecorder()
	s, err := sm.SignIn(rec, httptest.NewRequest("POST", "/auth/session", nil), tok)
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if s.UserID != "uid-2" {
		t.Errorf("UserID = %q", s.UserID)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}

	req := httptest.NewRequest("GET", "/entries", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec2 := httptest.NewRecorder()
	sm.LoadSession(sm.RequireSignedIn(http.HandlerFunc(echoSession))).ServeHTTP(rec2, req)
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected cookie session to authenticate, got %d", rec2.Code)
	}

	rec3 := httptest.NewRecorder()
	if err := sm.SignOut(rec3, req); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	for _, c := range rec3.Result().Cookies() {
		if c.Name == "test-session" && c.MaxAge >= 0 {
			t.Errorf("expected expired cookie, got MaxAge %d", c.MaxAge)
		}
	}
}

func TestNewSessionManager_EmptyKey(t *testing.T) {
	_, err := auth.NewSessionManager("", "s", "", time.Hour, false, nil, zap.NewNop())
	if err == nil {
		t.Error("expected error for empty session key")
	}
}

func TestLoadSession_CookieFromRotatedKeyIgnored(t *testing.T) {
	sm, v := newTestSessionManager(t)
	tok, _ := v.Issue(session.Session{UserID: "uid-3", Email: "carol@example.com"}, time.Hour)
	rec := httptest.NewRecorder()
	if _, err := sm.SignIn(rec, httptest.NewRequest("POST", "/auth/session", nil), tok); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	rotated, err := auth.NewSessionManager("a-different-session-key-of-32-chars!", "test-session", "", time.Hour, false, v, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	req := httptest.NewRequest("GET", "/entries", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	rec2 := httptest.NewRecorder()
	rotated.LoadSession(http.HandlerFunc(echoSession)).ServeHTTP(rec2, req)
	if rec2.Code != http.StatusNoContent {
		t.Errorf("expected no session from a cookie signed with another key, got %d", rec2.Code)
	}
}

func TestNewSessionManager_SecureCookieStaysLax(t *testing.T) {
	v := auth.NewTokenVerifier(testSecret, "journalhub-test")
	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test-session", "", time.Hour, true, v, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	tok, _ := v.Issue(session.Session{UserID: "uid-5", Email: "eve@example.com"}, time.Hour)
	rec := httptest.NewRecorder()
	if _, err := sm.SignIn(rec, httptest.NewRequest("POST", "/auth/session", nil), tok); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}
	for _, c := range cookies {
		if c.SameSite != http.SameSiteLaxMode || !c.Secure {
			t.Errorf("cookie %s: SameSite = %v, Secure = %v; want Lax and Secure", c.Name, c.SameSite, c.Secure)
		}
	}
}

func TestLoadSession_CookieWritesNeedSameOrigin(t *testing.T) {
	sm, v := newTestSessionManager(t)
	sm.TrustOrigins("https://app.journal.example/", "not a url")

	tok, _ := v.Issue(session.Session{UserID: "uid-4", Email: "dave@example.com"}, time.Hour)
	rec := httptest.NewRecorder()
	if _, err := sm.SignIn(rec, httptest.NewRequest("POST", "/auth/session", nil), tok); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	cookies := rec.Result().Cookies()

	tests := []struct {
		name    string
		method  string
		headers map[string]string
		bearer  bool
		want    int
	}{
		{"read without origin", "GET", nil, false, http.StatusOK},
		{"same host origin", "POST", map[string]string{"Origin": "http://example.com"}, false, http.StatusOK},
		{"same host referer", "PUT", map[string]string{"Referer": "http://example.com/dashboard"}, false, http.StatusOK},
		{"trusted origin", "DELETE", map[string]string{"Origin": "https://APP.journal.example"}, false, http.StatusOK},
		{"foreign origin", "POST", map[string]string{"Origin": "https://evil.example"}, false, http.StatusForbidden},
		{"foreign referer", "POST", map[string]string{"Referer": "https://evil.example/page"}, false, http.StatusForbidden},
		{"opaque origin", "POST", map[string]string{"Origin": "null"}, false, http.StatusForbidden},
		{"no origin or referer", "POST", nil, false, http.StatusForbidden},
		{"bearer from anywhere", "POST", map[string]string{"Origin": "https://evil.example"}, true, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/entries", nil)
			for _, c := range cookies {
				req.AddCookie(c)
			}
			for k, val := range tt.headers {
				req.Header.Set(k, val)
			}
			if tt.bearer {
				req.Header.Set("Authorization", "Bearer "+tok)
			}
			rec := httptest.NewRecorder()
			sm.LoadSession(sm.RequireSignedIn(http.HandlerFunc(echoSession))).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body: %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestLoadSession_ForeignOriginWithoutCookieIsUnauthenticated(t *testing.T) {
	sm, _ := newTestSessionManager(t)
	req := httptest.NewRequest("POST", "/entries", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	sm.LoadSession(sm.RequireSignedIn(http.HandlerFunc(echoSession))).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
