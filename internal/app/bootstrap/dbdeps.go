// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/journalhub/internal/app/system/blobstore"
	"github.com/dalemusser/journalhub/internal/app/system/tasks"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and backend dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	Blobs         blobstore.Store

	// Tasks gets its jobs in Startup and is stopped in Shutdown.
	Tasks *tasks.Runner
}
