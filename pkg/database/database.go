package database

import (
	"context"
	"time"

	"github.com/Dhinesh71/bustrackingsystem/pkg/util"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Instance is an explicitly constructed database handle. It is created once at
// process startup and passed to the components that need it.
type Instance struct {
	Client   *mongo.Client
	Database *mongo.Database
}

const defaultConnectionString = "mongodb://localhost:27017/"
const defaultDatabase = "bustracking"

func Connect() (*Instance, error) {
	connectionString := util.GetEnvironmentVariable("BUSTRACKING_MONGODB_CONNECTION", defaultConnectionString)
	dbName := util.GetEnvironmentVariable("BUSTRACKING_MONGODB_DATABASE", defaultDatabase)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(connectionString))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(context.Background(), nil); err != nil {
		return nil, err
	}

	instance := &Instance{
		Client:   client,
		Database: client.Database(dbName),
	}

	instance.createIndexes()

	return instance, nil
}

func (i *Instance) GetCollection(collectionName string) *mongo.Collection {
	return i.Database.Collection(collectionName)
}

func (i *Instance) Disconnect(ctx context.Context) error {
	return i.Client.Disconnect(ctx)
}
