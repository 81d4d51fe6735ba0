package telemetry

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/Dhinesh71/bustrackingsystem/pkg/busdata"
	"github.com/Dhinesh71/bustrackingsystem/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepository implements Repository on top of the MongoDB instance.
type MongoRepository struct {
	database *database.Instance
}

func NewMongoRepository(db *database.Instance) *MongoRepository {
	return &MongoRepository{database: db}
}

func (r *MongoRepository) InsertReport(ctx context.Context, report *busdata.TelemetryReport) error {
	collection := r.database.GetCollection("telemetry_reports")

	_, err := collection.InsertOne(ctx, report)
	return err
}

func (r *MongoRepository) LatestReport(ctx context.Context, vehicleRef string) (*busdata.TelemetryReport, error) {
	collection := r.database.GetCollection("telemetry_reports")

	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})

	var report busdata.TelemetryReport
	err := collection.FindOne(ctx, bson.M{"vehicleref": vehicleRef}, opts).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	return &report, nil
}

func (r *MongoRepository) RecentReports(ctx context.Context, vehicleRef string, since time.Time, limit int64) ([]busdata.TelemetryReport, error) {
	collection := r.database.GetCollection("telemetry_reports")

	query := bson.M{
		"vehicleref": vehicleRef,
		"timestamp":  bson.M{"$gte": since},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cursor, err := collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}

	var reports []busdata.TelemetryReport
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}

	return reports, nil
}

func (r *MongoRepository) DeleteReportsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	collection := r.database.GetCollection("telemetry_reports")

	result, err := collection.DeleteMany(ctx, bson.M{"timestamp": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}

	return result.DeletedCount, nil
}

func (r *MongoRepository) Vehicle(ctx context.Context, vehicleRef string) (*busdata.Vehicle, error) {
	collection := r.database.GetCollection("vehicles")

	var vehicle busdata.Vehicle
	err := collection.FindOne(ctx, bson.M{"primaryidentifier": vehicleRef}).Decode(&vehicle)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	return &vehicle, nil
}

func (r *MongoRepository) Vehicles(ctx context.Context) ([]busdata.Vehicle, error) {
	collection := r.database.GetCollection("vehicles")

	opts := options.Find().SetSort(bson.D{{Key: "number", Value: 1}})

	cursor, err := collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}

	var vehicles []busdata.Vehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, err
	}

	return vehicles, nil
}

// UpdateVehicleFromReport applies an accepted report to the vehicle's last
// known state in a single update. Occupancy is clamped to [0, capacity] and
// fuel level to [0, 100].
func (r *MongoRepository) UpdateVehicleFromReport(ctx context.Context, report *busdata.TelemetryReport) error {
	vehicle, err := r.Vehicle(ctx, report.VehicleRef)
	if err != nil {
		return err
	}

	updateMap := bson.M{
		"location":    report.Location,
		"speed":       report.Speed,
		"heading":     report.Heading,
		"lastupdated": report.Timestamp,
	}

	if report.FuelLevel != nil {
		updateMap["fuellevel"] = math.Min(math.Max(*report.FuelLevel, 0), 100)
	}

	if report.PassengerCount != nil {
		occupancy := *report.PassengerCount
		if occupancy < 0 {
			occupancy = 0
		}
		if vehicle.Capacity > 0 && occupancy > vehicle.Capacity {
			occupancy = vehicle.Capacity
		}
		updateMap["occupancy"] = occupancy
	}

	collection := r.database.GetCollection("vehicles")
	_, err = collection.UpdateOne(ctx,
		bson.M{"primaryidentifier": report.VehicleRef},
		bson.M{"$set": updateMap},
	)
	return err
}

func (r *MongoRepository) UpdateVehicleLastSeen(ctx context.Context, vehicleRef string, at time.Time) error {
	collection := r.database.GetCollection("vehicles")

	_, err := collection.UpdateOne(ctx,
		bson.M{"primaryidentifier": vehicleRef},
		bson.M{"$set": bson.M{"lastseen": at}},
	)
	return err
}

func (r *MongoRepository) Stop(ctx context.Context, stopRef string) (*busdata.Stop, error) {
	collection := r.database.GetCollection("stops")

	var stop busdata.Stop
	err := collection.FindOne(ctx, bson.M{"primaryidentifier": stopRef}).Decode(&stop)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	return &stop, nil
}

func (r *MongoRepository) InsertAlert(ctx context.Context, alert *busdata.Alert) error {
	collection := r.database.GetCollection("alerts")

	_, err := collection.InsertOne(ctx, alert)
	return err
}

func (r *MongoRepository) DeviceKey(ctx context.Context, key string) (*busdata.DeviceKey, error) {
	collection := r.database.GetCollection("device_keys")

	var deviceKey busdata.DeviceKey
	err := collection.FindOne(ctx, bson.M{"key": key}).Decode(&deviceKey)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	return &deviceKey, nil
}

func (r *MongoRepository) InsertDeviceKey(ctx context.Context, deviceKey *busdata.DeviceKey) error {
	collection := r.database.GetCollection("device_keys")

	_, err := collection.InsertOne(ctx, deviceKey)
	return err
}

func (r *MongoRepository) RecordDeviceKeyUsage(ctx context.Context, key string, at time.Time) error {
	collection := r.database.GetCollection("device_keys")

	_, err := collection.UpdateOne(ctx,
		bson.M{"key": key},
		bson.M{
			"$inc": bson.M{"usagecount": 1},
			"$set": bson.M{"lastused": at},
		},
	)
	return err
}
