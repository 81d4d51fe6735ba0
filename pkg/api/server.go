package api

import (
	"github.com/Dhinesh71/bustrackingsystem/pkg/api/routes"
	"github.com/Dhinesh71/bustrackingsystem/pkg/deviceauth"
	"github.com/Dhinesh71/bustrackingsystem/pkg/elastic_client"
	"github.com/Dhinesh71/bustrackingsystem/pkg/eta"
	"github.com/Dhinesh71/bustrackingsystem/pkg/ingest"
	"github.com/Dhinesh71/bustrackingsystem/pkg/realtimehub"
	"github.com/Dhinesh71/bustrackingsystem/pkg/telemetry"
	"github.com/gofiber/fiber/v2"
)

// Server holds the constructed API dependencies. Everything is injected - the
// package owns no process-wide state.
type Server struct {
	Repository    telemetry.Repository
	Authenticator *deviceauth.Authenticator
	Publisher     *ingest.Publisher
	Hub           *realtimehub.Hub
	Calculator    *eta.Calculator
	Audit         *elastic_client.Client
}

func (s *Server) SetupServer(listen string) error {
	webApp := fiber.New()
	webApp.Use(NewLogger())

	group := webApp.Group("/api")

	group.Get("version", routes.APIVersion)

	hardwareRouter := routes.HardwareRouter{
		Authenticator: s.Authenticator,
		Repository:    s.Repository,
		Publisher:     s.Publisher,
		Audit:         s.Audit,
	}
	hardwareRouter.Setup(group.Group("/hardware"))

	busesRouter := routes.BusesRouter{
		Repository: s.Repository,
	}
	busesRouter.Setup(group.Group("/buses"))

	etaRouter := routes.ETARouter{
		Calculator: s.Calculator,
	}
	etaRouter.Setup(group.Group("/eta"))

	liveRouter := routes.LiveRouter{
		Hub: s.Hub,
	}
	liveRouter.Setup(group.Group("/live"))

	return webApp.Listen(listen)
}
