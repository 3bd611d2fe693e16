// internal/app/system/auth/auth.go
package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/journalhub/internal/app/system/keys"
	"github.com/dalemusser/journalhub/internal/app/system/session"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session values                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	isAuthKey   = "is_authenticated"
	userIDKey   = "user_id"
	userEmail   = "user_email"
	userName    = "user_name"
	userPhoto   = "user_photo"
	issuedAtKey = "issued_at"
)

// SessionManager resolves the acting user for each request, from a bearer
// token or from the signed session cookie.
type SessionManager struct {
	store    *sessions.CookieStore
	name     string
	verifier *TokenVerifier
	trusted  map[string]bool
	log      *zap.Logger
}

// NewSessionManager builds the cookie store from keys derived from
// sessionKey. Cookies are SameSite=Lax, and Secure when secure is set.
// Browser clients on another site authenticate with bearer tokens.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, verifier *TokenVerifier, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended", zap.Int("length", len(sessionKey)))
	}
	hashKey, blockKey, err := keys.SessionKeys(sessionKey)
	if err != nil {
		return nil, err
	}

	store := sessions.NewCookieStore(hashKey, blockKey)
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(store.Options.MaxAge)

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, verifier: verifier, trusted: map[string]bool{}, log: logger}, nil
}

// TrustOrigins allows cookie-authenticated writes from the given origins
// (scheme://host[:port]) in addition to the request's own host.
func (sm *SessionManager) TrustOrigins(origins ...string) {
	for _, o := range origins {
		if n, ok := originOf(o); ok {
			sm.trusted[n] = true
		}
	}
}

func originOf(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	return strings.ToLower(u.Scheme + "://" + u.Host), true
}

// sameOrigin reports whether an unsafe request riding on the session cookie
// came from this host or a trusted origin. Origin is preferred; Referer is
// the fallback. A request with neither is refused.
func (sm *SessionManager) sameOrigin(r *http.Request) bool {
	src := r.Header.Get("Origin")
	if src == "" {
		src = r.Header.Get("Referer")
	}
	o, ok := originOf(src)
	if !ok {
		return false
	}
	if sm.trusted[o] {
		return true
	}
	u, _ := url.Parse(o)
	return strings.EqualFold(u.Host, r.Host)
}

func safeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

// LoadSession puts the acting user's session.Session into the request
// context when the request carries a valid bearer token or session cookie.
// Unsafe methods authenticated by the cookie must pass the origin check.
// An invalid bearer token is rejected with 401 rather than falling back to
// the cookie.
func (sm *SessionManager) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok, ok := bearerToken(r.Header.Get("Authorization")); ok {
			if sm.verifier == nil {
				writeUnauthorized(w, "bearer tokens are not accepted")
				return
			}
			s, err := sm.verifier.Verify(tok)
			if err != nil {
				sm.log.Debug("bearer token rejected", zap.Error(err))
				writeUnauthorized(w, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(session.With(r.Context(), s)))
			return
		}

		if s, ok := sm.fromCookie(r); ok {
			if !safeMethod(r.Method) && !sm.sameOrigin(r) {
				sm.log.Warn("cross-origin write with session cookie rejected",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("origin", r.Header.Get("Origin")))
				writeError(w, http.StatusForbidden, "cross-origin request rejected", "forbidden")
				return
			}
			r = r.WithContext(session.With(r.Context(), s))
		}
		next.ServeHTTP(w, r)
	})
}

func (sm *SessionManager) fromCookie(r *http.Request) (session.Session, bool) {
	cs, err := sm.store.Get(r, sm.name)
	if err != nil {
		if scErr, ok := err.(securecookie.Error); ok && scErr.IsDecode() {
			// Tampered cookie, or one signed before a session key rotation.
			sm.log.Warn("session cookie invalid, ignoring", zap.Error(err))
		} else {
			sm.log.Error("session store error", zap.Error(err))
		}
		return session.Session{}, false
	}
	if isAuth, _ := cs.Values[isAuthKey].(bool); !isAuth {
		return session.Session{}, false
	}
	s := session.Session{
		UserID:   getString(cs, userIDKey),
		Email:    getString(cs, userEmail),
		Name:     getString(cs, userName),
		PhotoURL: getString(cs, userPhoto),
	}
	return s, s.Valid()
}

// RequireSignedIn rejects requests without a session with 401 JSON.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := session.From(r.Context()); !ok {
			writeUnauthorized(w, "sign in required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SignIn verifies a bearer token and stores its identity in the cookie.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, token string) (session.Session, error) {
	if sm.verifier == nil {
		return session.Session{}, ErrInvalidToken
	}
	s, err := sm.verifier.Verify(token)
	if err != nil {
		return session.Session{}, err
	}
	cs, _ := sm.store.Get(r, sm.name) // a stale or undecodable cookie yields a fresh session
	cs.Values[isAuthKey] = true
	cs.Values[userIDKey] = s.UserID
	cs.Values[userEmail] = s.Email
	cs.Values[userName] = s.Name
	cs.Values[userPhoto] = s.PhotoURL
	cs.Values[issuedAtKey] = time.Now().Unix()
	if err := cs.Save(r, w); err != nil {
		return session.Session{}, err
	}
	return s, nil
}

// SignOut expires the session cookie.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	cs, _ := sm.store.Get(r, sm.name)
	cs.Values = map[interface{}]interface{}{}
	cs.Options.MaxAge = -1
	return cs.Save(r, w)
}

// CurrentSession returns the session placed in r's context by LoadSession.
func CurrentSession(r *http.Request) (session.Session, bool) {
	return session.From(r.Context())
}

// WithTestSession injects s directly, bypassing cookies and tokens.
func WithTestSession(r *http.Request, s session.Session) *http.Request {
	return r.WithContext(session.With(r.Context(), s))
}

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusUnauthorized, msg, "unauthenticated")
}

func writeError(w http.ResponseWriter, status int, msg, kind string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg, "kind": kind})
}
