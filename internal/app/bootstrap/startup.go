// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/journalhub/internal/app/system/tasks"
	"github.com/dalemusser/journalhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built: timeout
// tiers from the environment, then the background jobs.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts configured from environment", zap.Int("overrides", n))
	}

	svc := newJournalService(appCfg, deps, newMailer(appCfg, logger), logger)
	deps.Tasks.Add(tasks.ImageCleanupJob(svc, logger, appCfg.ImageCleanupInterval))
	deps.Tasks.Start()
	return nil
}
