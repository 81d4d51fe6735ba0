package api

import (
	"time"

	"github.com/Dhinesh71/bustrackingsystem/pkg/consumer"
	"github.com/Dhinesh71/bustrackingsystem/pkg/database"
	"github.com/Dhinesh71/bustrackingsystem/pkg/deviceauth"
	"github.com/Dhinesh71/bustrackingsystem/pkg/elastic_client"
	"github.com/Dhinesh71/bustrackingsystem/pkg/eta"
	"github.com/Dhinesh71/bustrackingsystem/pkg/ingest"
	"github.com/Dhinesh71/bustrackingsystem/pkg/realtimehub"
	"github.com/Dhinesh71/bustrackingsystem/pkg/redis_client"
	"github.com/Dhinesh71/bustrackingsystem/pkg/telemetry"
	"github.com/Dhinesh71/bustrackingsystem/pkg/util"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the core web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":3001",
						Usage: "listen target for the web server",
					},
				},
				Action: func(c *cli.Context) error {
					db, err := database.Connect()
					if err != nil {
						return err
					}
					redisConnection, err := redis_client.Connect()
					if err != nil {
						return err
					}
					auditClient, err := elastic_client.Connect(false)
					if err != nil {
						return err
					}

					tokenSecret := util.GetEnvironmentVariable("BUSTRACKING_TOKEN_SECRET", "")
					if tokenSecret == "" {
						log.Warn().Msg("BUSTRACKING_TOKEN_SECRET is not set, bearer token auth is disabled")
					}

					repository := telemetry.NewMongoRepository(db)

					publisher, err := ingest.NewPublisher(redisConnection.QueueConnection)
					if err != nil {
						return err
					}

					hub := realtimehub.NewHub()

					eventsConsumer := consumer.RedisConsumer{
						Connection: redisConnection,

						QueueName: ingest.EventsQueueName,

						NumberConsumers: 2,
						BatchSize:       50,

						Timeout: 1 * time.Second,

						Consumer: realtimehub.NewEventsBatchConsumer(hub),
					}
					eventsConsumer.Setup()

					server := &Server{
						Repository:    repository,
						Authenticator: deviceauth.NewAuthenticator(repository, redisConnection.Client, []byte(tokenSecret)),
						Publisher:     publisher,
						Hub:           hub,
						Calculator:    eta.NewCalculator(repository),
						Audit:         auditClient,
					}

					return server.SetupServer(c.String("listen"))
				},
			},
		},
	}
}
