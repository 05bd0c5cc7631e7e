package database

import (
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ConnectMongo creates a client for uri and returns the named database.
// The driver connects lazily, so an unreachable server surfaces on the first
// ping rather than here.
func ConnectMongo(uri, dbName string, maxPoolSize uint64) (*mongo.Database, error) {
	clientOpts := options.Client().ApplyURI(uri)
	if maxPoolSize > 0 {
		clientOpts.SetMaxPoolSize(maxPoolSize)
	}

	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return nil, errors.Wrap(err, "could not create mongo client")
	}
	return client.Database(dbName), nil
}
