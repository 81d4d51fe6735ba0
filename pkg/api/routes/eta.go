package routes

import (
	"errors"

	"github.com/Dhinesh71/bustrackingsystem/pkg/eta"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type ETARouter struct {
	Calculator *eta.Calculator
}

func (r *ETARouter) Setup(router fiber.Router) {
	router.Get("/:vehicle/:stop", r.getEstimate)
}

func (r *ETARouter) getEstimate(c *fiber.Ctx) error {
	vehicleRef := c.Params("vehicle")
	stopRef := c.Params("stop")

	estimate, err := r.Calculator.Estimate(c.Context(), vehicleRef, stopRef)
	if errors.Is(err, eta.ErrNoTelemetry) {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"success": false,
			"error":   "No telemetry recorded for this bus",
		})
	} else if errors.Is(err, eta.ErrUnknownStop) {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"success": false,
			"error":   "Could not find Stop matching Stop Identifier",
		})
	} else if err != nil {
		log.Error().Err(err).Str("vehicle", vehicleRef).Str("stop", stopRef).Msg("Failed to calculate estimate")

		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"success": false,
			"error":   "Failed to calculate estimate",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    estimate,
	})
}
