// internal/app/system/txn/txn.go
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Runner executes a unit of work atomically when the deployment supports
// multi-document transactions (replica set or sharded cluster). On a
// standalone server the work runs without a transaction, so every fn must
// be written to tolerate partial application.
type Runner interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// Mongo runs work inside a MongoDB session transaction.
type Mongo struct {
	client *mongo.Client
	log    *zap.Logger
}

// New returns a transaction runner bound to client.
func New(client *mongo.Client, logger *zap.Logger) *Mongo {
	return &Mongo{client: client, log: logger}
}

// Run executes fn in a transaction, falling back to a direct call when the
// server reports that transactions are unavailable.
func (m *Mongo) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	sess, err := m.client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		m.log.Debug("transactions unavailable, running without one", zap.Error(err))
		return fn(ctx)
	}
	return err
}

// Direct runs fn without a transaction.
type Direct struct{}

func (Direct) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Server error codes that mean "transactions are not available here".
var notSupportedCodes = map[int32]bool{
	20:  true, // IllegalOperation (standalone)
	51:  true, // IllegalOperation variant on older servers
	263: true, // OperationNotSupportedInTransaction
}

var notSupportedKeywords = []string{
	"transaction",
	"replica set",
	"session",
	"not supported",
	"illegal operation",
}

// IsNotSupported reports whether err indicates the deployment cannot run
// transactions. Known command codes match directly; otherwise the message
// must mention at least two of the telltale phrases.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && notSupportedCodes[ce.Code] {
		return true
	}

	msg := strings.ToLower(err.Error())
	hits := 0
	for _, kw := range notSupportedKeywords {
		if strings.Contains(msg, kw) {
			hits++
		}
	}
	return hits >= 2
}
