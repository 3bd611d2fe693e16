package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/dalemusser/journalhub/internal/app/system/auth"
	"github.com/dalemusser/journalhub/internal/app/system/session"
	"github.com/dalemusser/journalhub/internal/domain/models"
)

// SessionFor returns the session a signed-in p would carry.
func SessionFor(p models.UserProfile) session.Session {
	return session.Session{UserID: p.ID, Email: p.EmailCI, Name: p.FullName, PhotoURL: p.PhotoURL}
}

// WithSession adds s to the request context, bypassing session middleware.
func WithSession(r *http.Request, s session.Session) *http.Request {
	return auth.WithTestSession(r, s)
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest creates a request whose body is v encoded as JSON.
func NewJSONRequest(method, target string, v any) *http.Request {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(v)
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewAuthenticatedRequest creates an HTTP request with s in context.
func NewAuthenticatedRequest(method, target string, s session.Session) *http.Request {
	return WithSession(httptest.NewRequest(method, target, nil), s)
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body: %s)", r.Code, expected, r.Body.String())
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}

// DecodeJSON decodes the response body into v.
func (r *ResponseRecorder) DecodeJSON(t interface{ Fatalf(string, ...any) }, v any) {
	if err := json.Unmarshal(r.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, r.Body.String())
	}
}
