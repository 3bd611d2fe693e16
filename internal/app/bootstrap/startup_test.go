package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/journalhub/internal/app/system/auth"
	"github.com/dalemusser/journalhub/internal/app/system/blobstore"
	"github.com/dalemusser/journalhub/internal/app/system/session"
	"github.com/dalemusser/journalhub/internal/app/system/tasks"
	"github.com/dalemusser/journalhub/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validConfig(t *testing.T) AppConfig {
	return AppConfig{
		MongoURI:             "mongodb://localhost:27017",
		MongoDatabase:        "journalhub_test",
		SessionKey:           "test-session-key-for-testing-only-0123456789",
		SessionName:          "journalhub-session",
		SessionMaxAge:        time.Hour,
		AuthJWTSecret:        "test-jwt-secret-test-jwt-secret!!",
		AuthJWTIssuer:        "journalhub-test",
		StorageType:          "local",
		StorageLocalPath:     t.TempDir(),
		StorageLocalURL:      "/files",
		BaseURL:              "http://localhost:3000",
		MailFromName:         "JournalHub",
		ShareLinkTTL:         time.Hour,
		ShareEmailLimit:      20,
		ImageCleanupInterval: time.Hour,
		ImageCleanupGrace:    time.Hour,
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"valid", func(c *AppConfig) {}, false},
		{"bad mongo uri", func(c *AppConfig) { c.MongoURI = "postgres://x" }, true},
		{"unknown storage", func(c *AppConfig) { c.StorageType = "ftp" }, true},
		{"s3 without bucket", func(c *AppConfig) { c.StorageType = "s3"; c.StorageS3Region = "us-east-1" }, true},
		{"s3 complete", func(c *AppConfig) {
			c.StorageType = "s3"
			c.StorageS3Region = "us-east-1"
			c.StorageS3Bucket = "media"
		}, false},
		{"missing jwt secret", func(c *AppConfig) { c.AuthJWTSecret = "  " }, true},
		{"zero share limit", func(c *AppConfig) { c.ShareEmailLimit = 0 }, true},
		{"bad audit setting", func(c *AppConfig) { c.AuditLogSharing = "verbose" }, true},
		{"trusted origins", func(c *AppConfig) { c.TrustedOrigins = []string{"https://app.example.com"} }, false},
		{"trusted origin without scheme", func(c *AppConfig) { c.TrustedOrigins = []string{"app.example.com"} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(&cfg)
			err := ValidateConfig(&config.CoreConfig{}, cfg, testLogger())
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewBlobStore_Local(t *testing.T) {
	cfg := validConfig(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s, err := newBlobStore(ctx, cfg)
	if err != nil {
		t.Fatalf("newBlobStore: %v", err)
	}
	if _, ok := s.(*blobstore.Local); !ok {
		t.Errorf("store = %T, want *blobstore.Local", s)
	}
	if got := s.URL("journal-images/u/1"); got != "/files/journal-images/u/1" {
		t.Errorf("URL = %q", got)
	}
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}
	for i := 0; i < 2; i++ {
		if err := EnsureSchema(ctx, &config.CoreConfig{}, validConfig(t), deps, testLogger()); err != nil {
			t.Fatalf("EnsureSchema run %d: %v", i+1, err)
		}
	}
}

func TestStartupAndShutdown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{
		MongoDatabase: db,
		Blobs:         testutil.NewMemBlobs("https://files.example.com"),
		Tasks:         tasks.NewRunner(testLogger()),
	}
	if err := Startup(ctx, &config.CoreConfig{}, validConfig(t), deps, testLogger()); err != nil {
		t.Fatalf("Startup: %v", err)
	}
	if err := Shutdown(ctx, &config.CoreConfig{}, validConfig(t), deps, testLogger()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestBuildHandler(t *testing.T) {
	db := testutil.SetupTestDB(t)
	deps := DBDeps{
		MongoClient:   db.Client(),
		MongoDatabase: db,
		Blobs:         testutil.NewMemBlobs("https://files.example.com"),
	}
	h, err := BuildHandler(&config.CoreConfig{Env: "dev"}, validConfig(t), deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler: %v", err)
	}

	tests := []struct {
		method, path string
		want         int
	}{
		{"GET", "/health", http.StatusOK},
		{"GET", "/no-such-page", http.StatusNotFound},
		{"GET", "/profiles/me", http.StatusUnauthorized},
		{"GET", "/dashboard", http.StatusUnauthorized},
		{"GET", "/audit", http.StatusUnauthorized},
		{"POST", "/api/share-entry", http.StatusUnauthorized},
		{"GET", "/api/user", http.StatusOK},
		{"GET", "/shared/unknown-token", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body: %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestBuildHandler_CookieWritesCheckOriginAndContentType(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := validConfig(t)
	deps := DBDeps{
		MongoClient:   db.Client(),
		MongoDatabase: db,
		Blobs:         testutil.NewMemBlobs("https://files.example.com"),
	}
	h, err := BuildHandler(&config.CoreConfig{Env: "dev"}, cfg, deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler: %v", err)
	}

	tok, err := auth.NewTokenVerifier(cfg.AuthJWTSecret, cfg.AuthJWTIssuer).
		Issue(session.Session{UserID: "uid-victim", Email: "victim@example.com"}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	req := httptest.NewRequest("POST", "/auth/session", strings.NewReader(`{"token":"`+tok+`"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("sign in: status %d (body: %s)", rec.Code, rec.Body.String())
	}
	cookies := rec.Result().Cookies()

	body := `{"user_id":"uid-attacker"}`
	tests := []struct {
		name        string
		origin      string
		contentType string
		want        int
	}{
		{"foreign origin without content type", "https://evil.example", "", http.StatusForbidden},
		{"foreign origin with json", "https://evil.example", "application/json", http.StatusForbidden},
		{"base url origin without content type", "http://localhost:3000", "", http.StatusBadRequest},
		{"base url origin with text/plain", "http://localhost:3000", "text/plain", http.StatusBadRequest},
		{"base url origin with json", "http://localhost:3000", "application/json", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/entries/"+primitive.NewObjectID().Hex()+"/share/user", strings.NewReader(body))
			for _, c := range cookies {
				req.AddCookie(c)
			}
			req.Header.Set("Origin", tt.origin)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body: %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}
