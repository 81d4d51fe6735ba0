package main

import (
	"os"
	"time"

	"github.com/Dhinesh71/bustrackingsystem/pkg/alerts"
	"github.com/Dhinesh71/bustrackingsystem/pkg/api"
	"github.com/Dhinesh71/bustrackingsystem/pkg/deviceauth"
	"github.com/Dhinesh71/bustrackingsystem/pkg/retention"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	_ "time/tzdata"
)

func main() {
	if os.Getenv("BUSTRACKING_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("BUSTRACKING_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "bustracking",
		Description: "Single binary of truth for the Smart Bus Tracking System - runs all the services",

		Commands: []*cli.Command{
			api.RegisterCLI(),
			alerts.RegisterCLI(),
			retention.RegisterCLI(),
			deviceauth.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
