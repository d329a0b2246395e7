// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/Thomas-Sedhom/LMS/internal/app/cache"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	Cache         *cache.Store
}
