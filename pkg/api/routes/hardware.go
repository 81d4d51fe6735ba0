package routes

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dhinesh71/bustrackingsystem/pkg/busdata"
	"github.com/Dhinesh71/bustrackingsystem/pkg/deviceauth"
	"github.com/Dhinesh71/bustrackingsystem/pkg/elastic_client"
	"github.com/Dhinesh71/bustrackingsystem/pkg/ingest"
	"github.com/Dhinesh71/bustrackingsystem/pkg/telemetry"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// HardwareRouter serves the device-facing endpoints. Devices authenticate
// with the X-API-Key header; the auth endpoint additionally issues bearer
// tokens from key+secret for deployments using the token scheme.
type HardwareRouter struct {
	Authenticator *deviceauth.Authenticator
	Repository    telemetry.Repository
	Publisher     *ingest.Publisher
	Audit         *elastic_client.Client
}

func (r *HardwareRouter) Setup(router fiber.Router) {
	router.Post("/auth", r.issueToken)

	router.Use(r.authenticate)
	router.Post("/gps", r.recordTelemetry)
	router.Get("/status", r.deviceStatus)
	router.Post("/heartbeat", r.heartbeat)
}

// authenticate resolves the request's credential. Exactly one credential must
// be presented per request.
func (r *HardwareRouter) authenticate(c *fiber.Ctx) error {
	apiKey := c.Get("X-API-Key")
	authHeader := c.Get("Authorization")

	var authentication *deviceauth.Authentication
	var err error

	switch {
	case apiKey != "" && authHeader != "":
		err = deviceauth.ErrMalformedCredential
	case apiKey != "":
		authentication, err = r.Authenticator.AuthenticateKey(c.Context(), apiKey)
	case authHeader != "":
		token, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			err = deviceauth.ErrMalformedCredential
		} else {
			authentication, err = r.Authenticator.AuthenticateToken(c.Context(), token)
		}
	default:
		err = deviceauth.ErrNoCredential
	}

	if err != nil {
		return respondAuthenticationError(c, err)
	}

	c.Locals("authentication", authentication)

	return c.Next()
}

func (r *HardwareRouter) recordTelemetry(c *fiber.Ctx) error {
	authentication := c.Locals("authentication").(*deviceauth.Authentication)
	vehicle := authentication.Vehicle

	// The authenticator only resolves identity - operational status is
	// re-checked here before accepting a state-changing write
	if vehicle.Status == busdata.VehicleStatusInactive {
		c.SendStatus(fiber.StatusForbidden)
		return c.JSON(fiber.Map{
			"success": false,
			"error":   "Vehicle is not in service",
		})
	}

	var payload ingest.ReportPayload
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"success": false,
			"error":   "Request body must be valid JSON",
		})
	}

	report, violations := ingest.ValidateReport(payload, time.Now())
	if violations != nil {
		r.auditIngest(vehicle.PrimaryIdentifier, false, violations)

		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"success":    false,
			"error":      "Validation failed",
			"violations": violations,
		})
	}

	report.PrimaryIdentifier = uuid.NewString()
	report.VehicleRef = vehicle.PrimaryIdentifier
	report.DeviceRef = authentication.DeviceRef

	if err := r.Repository.InsertReport(c.Context(), report); err != nil {
		log.Error().Err(err).Str("vehicle", report.VehicleRef).Msg("Failed to persist report")

		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"success": false,
			"error":   "Failed to record telemetry",
		})
	}

	if err := r.Repository.UpdateVehicleFromReport(c.Context(), report); err != nil {
		log.Error().Err(err).Str("vehicle", report.VehicleRef).Msg("Failed to update vehicle state")

		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"success": false,
			"error":   "Failed to record telemetry",
		})
	}

	// The report is durably accepted - everything from here is off the
	// critical path and must not affect the response
	r.Publisher.ReportAccepted(report, vehicle)
	r.auditIngest(vehicle.PrimaryIdentifier, true, nil)

	c.SendStatus(fiber.StatusCreated)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Telemetry recorded",
		"data": fiber.Map{
			"report_id": report.PrimaryIdentifier,
			"bus": fiber.Map{
				"id":     vehicle.PrimaryIdentifier,
				"number": vehicle.Number,
			},
			"timestamp": report.Timestamp,
			"location":  report.Location,
		},
	})
}

func (r *HardwareRouter) deviceStatus(c *fiber.Ctx) error {
	authentication := c.Locals("authentication").(*deviceauth.Authentication)
	vehicle := authentication.Vehicle

	data := fiber.Map{
		"bus": fiber.Map{
			"id":           vehicle.PrimaryIdentifier,
			"number":       vehicle.Number,
			"route":        vehicle.RouteRef,
			"status":       vehicle.Status,
			"last_updated": vehicle.LastUpdated,
		},
	}

	if deviceKey := authentication.DeviceKey; deviceKey != nil {
		data["key"] = fiber.Map{
			"device":      deviceKey.DeviceRef,
			"usage_count": deviceKey.UsageCount,
			"last_used":   deviceKey.LastUsed,
			"expires_at":  deviceKey.ExpiresAt,
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

type heartbeatPayload struct {
	DeviceInfo   map[string]interface{} `json:"device_info"`
	SystemStatus map[string]interface{} `json:"system_status"`
}

// heartbeat accepts a device health payload. It never alters vehicle state
// beyond the last-seen timestamp.
func (r *HardwareRouter) heartbeat(c *fiber.Ctx) error {
	authentication := c.Locals("authentication").(*deviceauth.Authentication)
	vehicle := authentication.Vehicle

	var payload heartbeatPayload
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"success": false,
			"error":   "Request body must be valid JSON",
		})
	}

	if err := r.Repository.UpdateVehicleLastSeen(c.Context(), vehicle.PrimaryIdentifier, time.Now()); err != nil {
		log.Error().Err(err).Str("vehicle", vehicle.PrimaryIdentifier).Msg("Failed to update last seen")
	}

	log.Debug().
		Str("vehicle", vehicle.PrimaryIdentifier).
		Interface("device_info", payload.DeviceInfo).
		Msg("Device heartbeat")

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Heartbeat recorded",
	})
}

type authPayload struct {
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
}

func (r *HardwareRouter) issueToken(c *fiber.Ctx) error {
	var payload authPayload
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"success": false,
			"error":   "Request body must be valid JSON",
		})
	}

	token, expiresAt, err := r.Authenticator.IssueToken(c.Context(), payload.APIKey, payload.APISecret)
	if err != nil {
		return respondAuthenticationError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"token":      token,
			"expires_at": expiresAt,
		},
	})
}

func (r *HardwareRouter) auditIngest(vehicleRef string, success bool, violations []ingest.FieldViolation) {
	if r.Audit == nil {
		return
	}

	currentTime := time.Now()
	yearNumber, weekNumber := currentTime.ISOWeek()
	indexName := fmt.Sprintf("telemetry-ingest-events-%d-%d", yearNumber, weekNumber)

	auditEvent, _ := json.Marshal(map[string]interface{}{
		"Timestamp":  currentTime,
		"Success":    success,
		"Vehicle":    vehicleRef,
		"Violations": violations,
	})

	r.Audit.IndexRequest(indexName, auditEvent)
}

func respondAuthenticationError(c *fiber.Ctx, err error) error {
	status := fiber.StatusUnauthorized
	message := "Authentication failed"

	switch {
	case errors.Is(err, deviceauth.ErrNoCredential):
		message = "A credential is required"
	case errors.Is(err, deviceauth.ErrMalformedCredential):
		message = "Credential is malformed"
	case errors.Is(err, deviceauth.ErrUnknownOrInactiveCredential):
		message = "Invalid API key"
	case errors.Is(err, deviceauth.ErrExpiredCredential):
		message = "Credential has expired"
	case errors.Is(err, deviceauth.ErrVehicleMismatch):
		status = fiber.StatusForbidden
		message = "Device does not match vehicle binding"
	default:
		status = fiber.StatusInternalServerError
		message = "Authentication is temporarily unavailable"
		log.Error().Err(err).Msg("Authenticator failure")
	}

	c.SendStatus(status)
	return c.JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}
