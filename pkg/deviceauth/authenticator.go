package deviceauth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Dhinesh71/bustrackingsystem/pkg/busdata"
	"github.com/Dhinesh71/bustrackingsystem/pkg/telemetry"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const keyCacheExpiration = 60 * time.Second

// Store is the persistence surface the authenticator needs.
type Store interface {
	DeviceKey(ctx context.Context, key string) (*busdata.DeviceKey, error)
	RecordDeviceKeyUsage(ctx context.Context, key string, at time.Time) error
	Vehicle(ctx context.Context, vehicleRef string) (*busdata.Vehicle, error)
}

// Authentication is the resolved identity of a successfully authenticated
// request. Callers must still check the vehicle's operational status
// themselves before accepting state-changing writes.
type Authentication struct {
	Vehicle   *busdata.Vehicle
	DeviceKey *busdata.DeviceKey

	DeviceRef string
	Method    CredentialMethod
}

type CredentialMethod string

const (
	CredentialMethodAPIKey      CredentialMethod = "api-key"
	CredentialMethodBearerToken CredentialMethod = "bearer-token"
)

type Authenticator struct {
	store Store

	keyCache *cache.Cache[string]

	tokenSecret []byte
}

func NewAuthenticator(authStore Store, redisClient *redis.Client, tokenSecret []byte) *Authenticator {
	authenticator := &Authenticator{
		store:       authStore,
		tokenSecret: tokenSecret,
	}

	if redisClient != nil {
		redisStore := redisstore.NewRedis(redisClient, store.WithExpiration(keyCacheExpiration))
		authenticator.keyCache = cache.New[string](redisStore)
	}

	return authenticator
}

// AuthenticateKey resolves an opaque API key to a vehicle identity. On
// success a usage increment and last-used timestamp are recorded as a
// best-effort side effect that never blocks or fails the request.
func (a *Authenticator) AuthenticateKey(ctx context.Context, key string) (*Authentication, error) {
	if key == "" {
		return nil, ErrNoCredential
	}

	deviceKey, err := a.lookupDeviceKey(ctx, key)
	if err != nil {
		return nil, err
	}

	if !deviceKey.Active {
		return nil, ErrUnknownOrInactiveCredential
	}
	if deviceKey.Expired(time.Now()) {
		return nil, ErrExpiredCredential
	}

	vehicle, err := a.store.Vehicle(ctx, deviceKey.VehicleRef)
	if errors.Is(err, telemetry.ErrNotFound) {
		return nil, ErrUnknownOrInactiveCredential
	} else if err != nil {
		return nil, err
	}

	go func() {
		recordCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := a.store.RecordDeviceKeyUsage(recordCtx, key, time.Now()); err != nil {
			log.Error().Err(err).Str("vehicle", deviceKey.VehicleRef).Msg("Failed to record device key usage")
		}
	}()

	return &Authentication{
		Vehicle:   vehicle,
		DeviceKey: deviceKey,
		DeviceRef: deviceKey.DeviceRef,
		Method:    CredentialMethodAPIKey,
	}, nil
}

// AuthenticateToken verifies a bearer token and re-checks the vehicle's
// device binding against the token's claim.
func (a *Authenticator) AuthenticateToken(ctx context.Context, tokenString string) (*Authentication, error) {
	if tokenString == "" {
		return nil, ErrNoCredential
	}

	claims, err := a.verifyToken(tokenString)
	if err != nil {
		return nil, err
	}

	vehicle, err := a.store.Vehicle(ctx, claims.VehicleRef)
	if errors.Is(err, telemetry.ErrNotFound) {
		return nil, ErrUnknownOrInactiveCredential
	} else if err != nil {
		return nil, err
	}

	if vehicle.DeviceRef != claims.DeviceRef {
		return nil, ErrVehicleMismatch
	}

	return &Authentication{
		Vehicle:   vehicle,
		DeviceRef: claims.DeviceRef,
		Method:    CredentialMethodBearerToken,
	}, nil
}

func (a *Authenticator) lookupDeviceKey(ctx context.Context, key string) (*busdata.DeviceKey, error) {
	if a.keyCache != nil {
		cachedDeviceKey, _ := a.keyCache.Get(ctx, keyCacheIdentifier(key))

		if cachedDeviceKey != "" {
			var deviceKey busdata.DeviceKey
			if err := json.Unmarshal([]byte(cachedDeviceKey), &deviceKey); err == nil {
				return &deviceKey, nil
			}
		}
	}

	deviceKey, err := a.store.DeviceKey(ctx, key)
	if errors.Is(err, telemetry.ErrNotFound) {
		return nil, ErrUnknownOrInactiveCredential
	} else if err != nil {
		return nil, err
	}

	if a.keyCache != nil {
		deviceKeyJSON, _ := json.Marshal(deviceKey)
		if err := a.keyCache.Set(ctx, keyCacheIdentifier(key), string(deviceKeyJSON)); err != nil {
			log.Debug().Err(err).Msg("Failed to cache device key")
		}
	}

	return deviceKey, nil
}

func keyCacheIdentifier(key string) string {
	return "devicekey/" + key
}
