package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (i *Instance) createIndexes() {
	i.createVehicleIndexes()
	i.createTelemetryIndexes()
	i.createAlertIndexes()
	i.createStopIndexes()
}

func (i *Instance) createVehicleIndexes() {
	vehiclesCollection := i.GetCollection("vehicles")
	vehiclesIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "deviceref", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "routeref", Value: 1}},
		},
	}

	opts := options.CreateIndexes()
	_, err := vehiclesCollection.Indexes().CreateMany(context.Background(), vehiclesIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}

	deviceKeysCollection := i.GetCollection("device_keys")
	deviceKeysIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "key", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "vehicleref", Value: 1}},
		},
	}

	opts = options.CreateIndexes()
	_, err = deviceKeysCollection.Indexes().CreateMany(context.Background(), deviceKeysIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func (i *Instance) createTelemetryIndexes() {
	// No TTL index on timestamp - the retention sweeper owns pruning
	telemetryCollection := i.GetCollection("telemetry_reports")
	_, err := telemetryCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
		},
		{
			Keys: bson.D{
				{Key: "vehicleref", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "timestamp", Value: 1}},
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func (i *Instance) createAlertIndexes() {
	alertsCollection := i.GetCollection("alerts")
	_, err := alertsCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
		},
		{
			Keys: bson.D{
				{Key: "vehicleref", Value: 1},
				{Key: "creationdatetime", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "resolved", Value: 1}},
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func (i *Instance) createStopIndexes() {
	stopsCollection := i.GetCollection("stops")
	_, err := stopsCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}
