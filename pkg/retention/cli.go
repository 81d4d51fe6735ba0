package retention

import (
	"github.com/Dhinesh71/bustrackingsystem/pkg/database"
	"github.com/Dhinesh71/bustrackingsystem/pkg/telemetry"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "retention",
		Usage: "Provides the telemetry retention sweeper",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the retention sweeper",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "horizon",
						Value: DefaultHorizon,
						Usage: "age beyond which telemetry is deleted",
					},
					&cli.DurationFlag{
						Name:  "interval",
						Value: DefaultInterval,
						Usage: "how often the sweep runs",
					},
				},
				Action: func(c *cli.Context) error {
					databaseInstance, err := database.Connect()
					if err != nil {
						return err
					}

					sweeper := Sweeper{
						Repository: telemetry.NewMongoRepository(databaseInstance),
						Horizon:    c.Duration("horizon"),
						Interval:   c.Duration("interval"),
					}

					sweeper.Run()

					return nil
				},
			},
		},
	}
}
