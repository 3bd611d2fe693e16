// internal/app/bootstrap/services.go
package bootstrap

import (
	"github.com/dalemusser/journalhub/internal/app/services/journals"
	"github.com/dalemusser/journalhub/internal/app/services/sharing"
	"github.com/dalemusser/journalhub/internal/app/store/audit"
	"github.com/dalemusser/journalhub/internal/app/system/auditlog"
	"github.com/dalemusser/journalhub/internal/app/system/mailer"
	"github.com/dalemusser/journalhub/internal/app/system/txn"
	"go.uber.org/zap"
)

func newMailer(appCfg AppConfig, logger *zap.Logger) *mailer.Mailer {
	return mailer.New(mailer.Config{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		Username: appCfg.MailSMTPUser,
		Password: appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		FromName: appCfg.MailFromName,
	}, logger)
}

func newJournalService(appCfg AppConfig, deps DBDeps, mail mailer.Sender, logger *zap.Logger) *journals.Service {
	return journals.New(deps.MongoDatabase, deps.Blobs, mail, journals.Config{
		SiteName:     appCfg.MailFromName,
		BaseURL:      appCfg.BaseURL,
		ShareLinkTTL: appCfg.ShareLinkTTL,
		ImageGrace:   appCfg.ImageCleanupGrace,
	}, logger)
}

func newCoordinator(appCfg AppConfig, deps DBDeps, mail mailer.Sender, logger *zap.Logger) *sharing.Coordinator {
	return sharing.New(deps.MongoDatabase, txn.New(deps.MongoClient, logger), mail, sharing.Config{
		SiteName: appCfg.MailFromName,
		BaseURL:  appCfg.BaseURL,
	}, logger)
}

func newAuditLogger(appCfg AppConfig, deps DBDeps, logger *zap.Logger) *auditlog.Logger {
	return auditlog.New(audit.New(deps.MongoDatabase), logger, auditlog.Config{
		Auth:    appCfg.AuditLogAuth,
		Sharing: appCfg.AuditLogSharing,
	})
}
