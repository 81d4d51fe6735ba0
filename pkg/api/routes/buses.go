package routes

import (
	"errors"
	"strconv"
	"time"

	"github.com/Dhinesh71/bustrackingsystem/pkg/telemetry"
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/rs/zerolog/log"
)

// BusesRouter serves the public read side for the vehicle fleet.
type BusesRouter struct {
	Repository telemetry.Repository
}

func (r *BusesRouter) Setup(router fiber.Router) {
	router.Get("/", r.listBuses)
	router.Get("/:identifier", r.getBus)
	router.Get("/:identifier/reports", r.getBusReports)
}

func (r *BusesRouter) listBuses(c *fiber.Ctx) error {
	vehicles, err := r.Repository.Vehicles(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list vehicles")

		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"success": false,
			"error":   "Failed to list buses",
		})
	}

	vehiclesReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, vehicles)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"success": false,
			"error":   "Sherrif could not reduce vehicles",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    vehiclesReduced,
	})
}

func (r *BusesRouter) getBus(c *fiber.Ctx) error {
	identifier := c.Params("identifier")

	vehicle, err := r.Repository.Vehicle(c.Context(), identifier)
	if errors.Is(err, telemetry.ErrNotFound) {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"success": false,
			"error":   "Could not find Bus matching Bus Identifier",
		})
	} else if err != nil {
		log.Error().Err(err).Str("vehicle", identifier).Msg("Failed to get vehicle")

		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"success": false,
			"error":   "Failed to get bus",
		})
	}

	vehicleReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, vehicle)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"success": false,
			"error":   "Sherrif could not reduce vehicle",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    vehicleReduced,
	})
}

func (r *BusesRouter) getBusReports(c *fiber.Ctx) error {
	identifier := c.Params("identifier")

	count, err := strconv.ParseInt(c.Query("count", "50"), 10, 64)
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"success": false,
			"error":   "Parameter count should be an integer",
		})
	}

	window, err := time.ParseDuration(c.Query("window", "24h"))
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"success": false,
			"error":   "Parameter window should be a duration",
		})
	}

	if _, err := r.Repository.Vehicle(c.Context(), identifier); errors.Is(err, telemetry.ErrNotFound) {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"success": false,
			"error":   "Could not find Bus matching Bus Identifier",
		})
	} else if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"success": false,
			"error":   "Failed to get bus",
		})
	}

	reports, err := r.Repository.RecentReports(c.Context(), identifier, time.Now().Add(-window), count)
	if err != nil {
		log.Error().Err(err).Str("vehicle", identifier).Msg("Failed to get reports")

		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"success": false,
			"error":   "Failed to get reports",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    reports,
	})
}
