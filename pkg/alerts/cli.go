package alerts

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dhinesh71/bustrackingsystem/pkg/consumer"
	"github.com/Dhinesh71/bustrackingsystem/pkg/database"
	"github.com/Dhinesh71/bustrackingsystem/pkg/ingest"
	"github.com/Dhinesh71/bustrackingsystem/pkg/redis_client"
	"github.com/Dhinesh71/bustrackingsystem/pkg/telemetry"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "alerts",
		Usage: "Provides the alert rule engine worker",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the alert rule worker",
				Action: func(c *cli.Context) error {
					databaseInstance, err := database.Connect()
					if err != nil {
						return err
					}
					redisConnection, err := redis_client.Connect()
					if err != nil {
						return err
					}

					repository := telemetry.NewMongoRepository(databaseInstance)

					publisher, err := ingest.NewPublisher(redisConnection.QueueConnection)
					if err != nil {
						return err
					}

					redisConsumer := consumer.RedisConsumer{
						Connection:      redisConnection,
						QueueName:       ingest.AlertsQueueName,
						NumberConsumers: 5,
						BatchSize:       20,
						Timeout:         2 * time.Second,
						Consumer:        NewBatchConsumer(repository, publisher),
					}
					redisConsumer.Setup()

					go consumer.StartStatsServer(":3333", redisConnection, databaseInstance)

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT)
					defer signal.Stop(signals)

					<-signals // wait for signal
					go func() {
						<-signals // hard exit on second signal (in case shutdown gets stuck)
						os.Exit(1)
					}()

					<-redisConnection.QueueConnection.StopAllConsuming() // wait for all Consume() calls to finish

					return nil
				},
			},
		},
	}
}
