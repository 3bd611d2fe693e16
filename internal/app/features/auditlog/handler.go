// internal/app/features/auditlog/handler.go
package auditlog

import (
	uierrors "github.com/dalemusser/journalhub/internal/app/features/errors"
	"github.com/dalemusser/journalhub/internal/app/store/audit"
	profilestore "github.com/dalemusser/journalhub/internal/app/store/profiles"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Audit    *audit.Store
	Profiles *profilestore.Store
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
}

// NewHandler constructs the activity log handler bound to db.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Audit:    audit.New(db),
		Profiles: profilestore.New(db),
		Log:      logger,
		ErrLog:   errLog,
	}
}
