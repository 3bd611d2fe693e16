// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"strings"
	"time"

	auditlogfeature "github.com/dalemusser/journalhub/internal/app/features/auditlog"
	dashboardfeature "github.com/dalemusser/journalhub/internal/app/features/dashboard"
	entriesfeature "github.com/dalemusser/journalhub/internal/app/features/entries"
	errorsfeature "github.com/dalemusser/journalhub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/journalhub/internal/app/features/health"
	heartbeatfeature "github.com/dalemusser/journalhub/internal/app/features/heartbeat"
	loginfeature "github.com/dalemusser/journalhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/journalhub/internal/app/features/logout"
	profilefeature "github.com/dalemusser/journalhub/internal/app/features/profile"
	shareentryfeature "github.com/dalemusser/journalhub/internal/app/features/shareentry"
	sharedfeature "github.com/dalemusser/journalhub/internal/app/features/shared"
	teamsfeature "github.com/dalemusser/journalhub/internal/app/features/teams"
	userinfofeature "github.com/dalemusser/journalhub/internal/app/features/userinfo"
	dashsvc "github.com/dalemusser/journalhub/internal/app/services/dashboard"
	profilestore "github.com/dalemusser/journalhub/internal/app/store/profiles"
	"github.com/dalemusser/journalhub/internal/app/system/auth"
	"github.com/dalemusser/journalhub/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. JournalHub is a JSON API: the session
// middleware runs on every request, a few routes are public, and the rest
// sit behind RequireSignedIn.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	verifier := auth.NewTokenVerifier(appCfg.AuthJWTSecret, appCfg.AuthJWTIssuer)
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain,
		appCfg.SessionMaxAge, secure, verifier, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	sessionMgr.TrustOrigins(append([]string{appCfg.BaseURL}, appCfg.TrustedOrigins...)...)

	errLog := errorsfeature.NewErrorLogger(logger)
	mail := newMailer(appCfg, logger)
	journalSvc := newJournalService(appCfg, deps, mail, logger)
	coord := newCoordinator(appCfg, deps, mail, logger)
	auditLog := newAuditLogger(appCfg, deps, logger)

	r := chi.NewRouter()
	r.NotFound(errorsfeature.NotFound)
	r.MethodNotAllowed(errorsfeature.MethodNotAllowed)

	// Global auth middleware: loads the session into context if signed in.
	r.Use(sessionMgr.LoadSession)

	// Health check endpoint for load balancers and orchestrators
	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(deps.MongoClient, logger)))

	// Locally stored media is served from the storage root.
	if appCfg.StorageType == "local" {
		prefix := "/" + strings.Trim(appCfg.StorageLocalURL, "/")
		r.Handle(prefix+"/*", fileserver.Handler(prefix, appCfg.StorageLocalPath))
	}

	// Authentication, throttled per client address.
	authLimiter := ratelimit.New(30, time.Minute)
	r.Group(func(pr chi.Router) {
		pr.Use(ratelimit.Middleware(authLimiter, ratelimit.ClientIP))
		pr.Mount("/auth/session", loginfeature.Routes(loginfeature.NewHandler(sessionMgr, auditLog, logger)))
		pr.Mount("/auth/logout", logoutfeature.Routes(logoutfeature.NewHandler(sessionMgr, auditLog, logger)))
	})

	// Public
	userinfofeature.MountRoutes(r, userinfofeature.NewHandler())
	r.Mount("/shared", sharedfeature.Routes(sharedfeature.NewHandler(journalSvc, errLog, logger)))

	r.Mount("/api/heartbeat", heartbeatfeature.Routes(
		heartbeatfeature.NewHandler(profilestore.New(deps.MongoDatabase), logger), sessionMgr))

	// Everything else requires a session.
	shareLimiter := ratelimit.New(appCfg.ShareEmailLimit, time.Hour)
	r.Group(func(pr chi.Router) {
		pr.Use(sessionMgr.RequireSignedIn)

		pr.Mount("/profiles", profilefeature.Routes(profilefeature.NewHandler(deps.MongoDatabase, coord, errLog, logger)))
		pr.Mount("/entries", entriesfeature.Routes(entriesfeature.NewHandler(journalSvc, coord, errLog, auditLog, logger)))
		pr.Mount("/dashboard", dashboardfeature.Routes(dashboardfeature.NewHandler(dashsvc.New(deps.MongoDatabase), errLog, logger)))
		pr.Mount("/audit", auditlogfeature.Routes(auditlogfeature.NewHandler(deps.MongoDatabase, errLog, logger)))
		pr.Mount("/teams", teamsfeature.Routes(teamsfeature.NewHandler(coord, errLog, auditLog, logger)))
		pr.Mount("/api/share-entry", shareentryfeature.Routes(shareentryfeature.NewHandler(journalSvc, errLog, auditLog, logger), shareLimiter))
	})

	return r, nil
}
