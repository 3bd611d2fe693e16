// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for JournalHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: JOURNALHUB_MONGO_URI, JOURNALHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "journalhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "journalhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session cookie lifetime"},
	{Name: "trusted_origins", Default: "", Desc: "Comma-separated origins, besides base_url, allowed to write with the session cookie"},

	// Identity tokens
	{Name: "auth_jwt_secret", Default: "", Desc: "HMAC secret for identity tokens (required)"},
	{Name: "auth_jwt_issuer", Default: "journalhub", Desc: "Expected identity token issuer"},

	// Media storage
	{Name: "storage_type", Default: "local", Desc: "Storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./uploads", Desc: "Local storage path for uploaded media"},
	{Name: "storage_local_url", Default: "/files", Desc: "URL prefix for serving local files"},
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_prefix", Default: "", Desc: "S3 key prefix"},
	{Name: "storage_s3_public_url", Default: "", Desc: "Public URL (CDN or bucket) for stored media"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "localhost", Desc: "SMTP server host"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@journalhub.app", Desc: "From email address"},
	{Name: "mail_from_name", Default: "JournalHub", Desc: "From display name"},

	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for email and share links"},

	// Sharing
	{Name: "share_link_ttl", Default: "168h", Desc: "Lifetime of a link share (e.g., 168h)"},
	{Name: "share_email_limit", Default: 20, Desc: "Share-entry emails allowed per user per hour"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_sharing", Default: "all", Desc: "Sharing event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Unused image sweep
	{Name: "image_cleanup_interval", Default: "24h", Desc: "How often unused images are swept"},
	{Name: "image_cleanup_grace", Default: "24h", Desc: "Minimum age before an unreferenced image is deleted"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, JOURNALHUB_* for app) and
// command-line flags, merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "JOURNALHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		SessionMaxAge:    appValues.Duration("session_max_age", 30*24*time.Hour),
		TrustedOrigins:   splitList(appValues.String("trusted_origins")),

		AuthJWTSecret: appValues.String("auth_jwt_secret"),
		AuthJWTIssuer: appValues.String("auth_jwt_issuer"),

		StorageType:        strings.ToLower(strings.TrimSpace(appValues.String("storage_type"))),
		StorageLocalPath:   appValues.String("storage_local_path"),
		StorageLocalURL:    appValues.String("storage_local_url"),
		StorageS3Region:    appValues.String("storage_s3_region"),
		StorageS3Bucket:    appValues.String("storage_s3_bucket"),
		StorageS3Prefix:    appValues.String("storage_s3_prefix"),
		StorageS3PublicURL: appValues.String("storage_s3_public_url"),

		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),

		BaseURL: appValues.String("base_url"),

		ShareLinkTTL:    appValues.Duration("share_link_ttl", 7*24*time.Hour),
		ShareEmailLimit: appValues.Int("share_email_limit"),

		AuditLogAuth:    appValues.String("audit_log_auth"),
		AuditLogSharing: appValues.String("audit_log_sharing"),

		ImageCleanupInterval: appValues.Duration("image_cleanup_interval", 24*time.Hour),
		ImageCleanupGrace:    appValues.Duration("image_cleanup_grace", 24*time.Hour),
	}

	return coreCfg, appCfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// JournalHub checks the MongoDB URI format, the storage backend and the
// identity token secret before anything connects.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	switch appCfg.StorageType {
	case "local":
		if appCfg.StorageLocalPath == "" {
			return fmt.Errorf("storage_type local requires storage_local_path")
		}
	case "s3":
		if appCfg.StorageS3Bucket == "" || appCfg.StorageS3Region == "" {
			return fmt.Errorf("storage_type s3 requires storage_s3_bucket and storage_s3_region")
		}
	default:
		return fmt.Errorf("storage_type must be 'local' or 's3', got %q", appCfg.StorageType)
	}

	if strings.TrimSpace(appCfg.AuthJWTSecret) == "" {
		return fmt.Errorf("auth_jwt_secret is required")
	}
	if appCfg.ShareEmailLimit <= 0 {
		return fmt.Errorf("share_email_limit must be positive")
	}
	for _, o := range appCfg.TrustedOrigins {
		u, err := url.Parse(o)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("trusted_origins entries must be scheme://host, got %q", o)
		}
	}
	for key, v := range map[string]string{"audit_log_auth": appCfg.AuditLogAuth, "audit_log_sharing": appCfg.AuditLogSharing} {
		switch v {
		case "", "all", "db", "log", "off":
		default:
			return fmt.Errorf("%s must be one of all, db, log, off; got %q", key, v)
		}
	}
	return nil
}
