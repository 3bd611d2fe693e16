// internal/app/system/session/session.go
package session

import (
	"context"
	"strings"
)

// Session identifies the acting user for one request. It is built by the
// auth middleware and passed explicitly to every service call that acts on
// behalf of a user.
type Session struct {
	UserID   string
	Email    string
	Name     string
	PhotoURL string
}

// Valid reports whether the session names a user.
func (s Session) Valid() bool { return strings.TrimSpace(s.UserID) != "" }

type ctxKey struct{}

// With returns a child context carrying s.
func With(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// From returns the session stored in ctx, if any.
func From(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok && s.Valid()
}

// ValidUserID reports whether id can be used as a key inside a document
// field path (shared_with.<id>). Identity-provider ids are opaque strings;
// reject the characters that would change the path.
func ValidUserID(id string) bool {
	if id == "" || len(id) > 128 {
		return false
	}
	return !strings.ContainsAny(id, ".$ \x00")
}
