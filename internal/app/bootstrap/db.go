// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/journalhub/internal/app/system/blobstore"
	"github.com/dalemusser/journalhub/internal/app/system/indexes"
	"github.com/dalemusser/journalhub/internal/app/system/tasks"
	"github.com/dalemusser/journalhub/internal/app/system/timeouts"
	"github.com/dalemusser/journalhub/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB connects to MongoDB and builds the media store.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize).
		SetServerSelectionTimeout(timeouts.Long())

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	blobs, err := newBlobStore(ctx, appCfg)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, err
	}
	logger.Info("media storage ready", zap.String("type", appCfg.StorageType))

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
		Blobs:         blobs,
		Tasks:         tasks.NewRunner(logger),
	}, nil
}

func newBlobStore(ctx context.Context, appCfg AppConfig) (blobstore.Store, error) {
	if appCfg.StorageType == "s3" {
		s, err := blobstore.NewS3(ctx, blobstore.S3Config{
			Region:    appCfg.StorageS3Region,
			Bucket:    appCfg.StorageS3Bucket,
			Prefix:    appCfg.StorageS3Prefix,
			PublicURL: appCfg.StorageS3PublicURL,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 storage: %w", err)
		}
		return s, nil
	}
	l, err := blobstore.NewLocal(appCfg.StorageLocalPath, appCfg.StorageLocalURL)
	if err != nil {
		return nil, fmt.Errorf("local storage: %w", err)
	}
	return l, nil
}

// EnsureSchema creates collections with their JSON-schema validators and
// then the indexes. Both steps are idempotent.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Batch())
	defer cancel()

	if err := validators.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("collection validators failed", zap.Error(err))
		return err
	}
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("index setup failed", zap.Error(err))
		return err
	}
	return nil
}
