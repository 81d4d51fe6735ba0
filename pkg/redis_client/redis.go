package redis_client

import (
	"context"
	"strconv"

	"github.com/Dhinesh71/bustrackingsystem/pkg/util"
	"github.com/adjust/rmq/v5"
	"github.com/redis/go-redis/v9"
)

// Connection bundles the raw redis client with the rmq queue connection built
// on top of it. Constructed once at startup and handed to whatever needs
// queues or caching.
type Connection struct {
	Client          *redis.Client
	QueueConnection rmq.Connection
}

const defaultConnectionAddress = "localhost:6379"
const defaultConnectionPassword = ""
const defaultDatabase = 0

func Connect() (*Connection, error) {
	address := util.GetEnvironmentVariable("BUSTRACKING_REDIS_ADDRESS", defaultConnectionAddress)
	password := util.GetEnvironmentVariable("BUSTRACKING_REDIS_PASSWORD", defaultConnectionPassword)
	database := defaultDatabase

	env := util.GetEnvironmentVariables()
	if env["BUSTRACKING_REDIS_DATABASE"] != "" {
		if n, err := strconv.Atoi(env["BUSTRACKING_REDIS_DATABASE"]); err == nil {
			database = n
		} else {
			return nil, err
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	})

	statusCmd := client.Ping(context.Background())
	if err := statusCmd.Err(); err != nil {
		return nil, err
	}

	queueConnection, err := rmq.OpenConnectionWithRedisClient("bustracking", client, nil)
	if err != nil {
		return nil, err
	}

	return &Connection{
		Client:          client,
		QueueConnection: queueConnection,
	}, nil
}
