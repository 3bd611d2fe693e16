// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, logging, CORS); everything specific
// to JournalHub lives here. The struct is passed to most lifecycle hooks.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret for deriving session cookie keys (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: journalhub-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// Origins, besides BaseURL, whose pages may write with the session cookie
	TrustedOrigins []string

	// Identity tokens exchanged at /auth/session and accepted as bearer tokens
	AuthJWTSecret string
	AuthJWTIssuer string

	// Media storage configuration
	StorageType      string // Storage backend: "local" or "s3"
	StorageLocalPath string // Local storage root (e.g., "./uploads")
	StorageLocalURL  string // URL prefix for serving local files (e.g., "/files")

	// S3 configuration (only used if StorageType is "s3")
	StorageS3Region    string
	StorageS3Bucket    string
	StorageS3Prefix    string
	StorageS3PublicURL string // CDN or bucket URL used in stored links

	// Email/SMTP configuration
	MailSMTPHost string // SMTP server host (e.g., localhost for Mailpit)
	MailSMTPPort int    // SMTP server port (e.g., 1025 for Mailpit, 587 for SES)
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string // From email address
	MailFromName string // From display name; also the site name in emails

	// Base URL for links in emails and share links
	BaseURL string

	// Sharing
	ShareLinkTTL    time.Duration // lifetime of a link share
	ShareEmailLimit int           // share-entry emails per user per hour

	// Audit logging: "all", "db", "log" or "off"
	AuditLogAuth    string
	AuditLogSharing string

	// Unused image sweep
	ImageCleanupInterval time.Duration
	ImageCleanupGrace    time.Duration
}
