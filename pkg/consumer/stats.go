package consumer

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"

	"github.com/Dhinesh71/bustrackingsystem/pkg/database"
	"github.com/Dhinesh71/bustrackingsystem/pkg/redis_client"
	"github.com/adjust/rmq/v5"
	"github.com/rs/zerolog/log"
)

// StartStatsServer exposes the queue stats overview and a health probe for a
// worker process. Blocks forever.
func StartStatsServer(listen string, redisConnection *redis_client.Connection, db *database.Instance) {
	http.Handle("/queue-stats", NewStatsHandler(redisConnection.QueueConnection))
	http.Handle("/health", NewHealthHandler(redisConnection, db))

	log.Info().Msgf("Stats server listening on http://localhost%s/queue-stats", listen)
	if err := http.ListenAndServe(listen, nil); err != nil {
		panic(err)
	}
}

type StatsServerHandler struct {
	redisConnection rmq.Connection
}

func NewStatsHandler(connection rmq.Connection) *StatsServerHandler {
	return &StatsServerHandler{redisConnection: connection}
}

func (handler *StatsServerHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	// get redis queue stats
	layout := request.FormValue("layout")
	refresh := request.FormValue("refresh")

	queues, err := handler.redisConnection.GetOpenQueues()
	if err != nil {
		panic(err)
	}

	stats, err := handler.redisConnection.CollectStats(queues)
	if err != nil {
		panic(err)
	}

	fmt.Fprint(writer, stats.GetHtml(layout, refresh))
}

type HealthHandler struct {
	redis    *redis_client.Connection
	database *database.Instance
}

func NewHealthHandler(redis *redis_client.Connection, db *database.Instance) *HealthHandler {
	return &HealthHandler{redis: redis, database: db}
}

func (handler *HealthHandler) ServeHTTP(writer http.ResponseWriter, _ *http.Request) {
	testRedis := handler.redis.Client.ClientID(context.TODO())
	if testRedis.Err() != nil {
		writer.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(writer, testRedis.Err())

		return
	}

	testMongo := handler.database.Client.Ping(context.TODO(), nil)
	if testMongo != nil {
		writer.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(writer, testMongo)

		return
	}

	writer.WriteHeader(http.StatusOK)
	fmt.Fprint(writer, "OK")
}
