package deviceauth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Dhinesh71/bustrackingsystem/pkg/busdata"
	"github.com/Dhinesh71/bustrackingsystem/pkg/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memoryStore struct {
	mutex sync.Mutex

	deviceKeys map[string]*busdata.DeviceKey
	vehicles   map[string]*busdata.Vehicle

	usageRecords []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		deviceKeys: map[string]*busdata.DeviceKey{},
		vehicles:   map[string]*busdata.Vehicle{},
	}
}

func (s *memoryStore) DeviceKey(ctx context.Context, key string) (*busdata.DeviceKey, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	deviceKey, found := s.deviceKeys[key]
	if !found {
		return nil, telemetry.ErrNotFound
	}
	return deviceKey, nil
}

func (s *memoryStore) RecordDeviceKeyUsage(ctx context.Context, key string, at time.Time) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.usageRecords = append(s.usageRecords, key)
	return nil
}

func (s *memoryStore) Vehicle(ctx context.Context, vehicleRef string) (*busdata.Vehicle, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	vehicle, found := s.vehicles[vehicleRef]
	if !found {
		return nil, telemetry.ErrNotFound
	}
	return vehicle, nil
}

func (s *memoryStore) usageCount() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return len(s.usageRecords)
}

func seedStore(t *testing.T, store *memoryStore, secret string) *busdata.DeviceKey {
	t.Helper()

	secretHash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	require.NoError(t, err)

	deviceKey := &busdata.DeviceKey{
		Key:        "key-1",
		SecretHash: string(secretHash),
		DeviceRef:  "device-1",
		VehicleRef: "bus-42",
		Active:     true,
	}

	store.deviceKeys[deviceKey.Key] = deviceKey
	store.vehicles["bus-42"] = &busdata.Vehicle{
		PrimaryIdentifier: "bus-42",
		Number:            "42",
		DeviceRef:         "device-1",
		Status:            busdata.VehicleStatusActive,
	}

	return deviceKey
}

func TestAuthenticateKey(t *testing.T) {
	store := newMemoryStore()
	seedStore(t, store, "device-secret")

	authenticator := NewAuthenticator(store, nil, []byte("signing-secret"))

	authentication, err := authenticator.AuthenticateKey(context.Background(), "key-1")
	require.NoError(t, err)

	assert.Equal(t, "bus-42", authentication.Vehicle.PrimaryIdentifier)
	assert.Equal(t, "device-1", authentication.DeviceRef)
	assert.Equal(t, CredentialMethodAPIKey, authentication.Method)
	require.NotNil(t, authentication.DeviceKey)

	assert.Eventually(t, func() bool {
		return store.usageCount() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestAuthenticateKeyFailures(t *testing.T) {
	store := newMemoryStore()
	deviceKey := seedStore(t, store, "device-secret")

	authenticator := NewAuthenticator(store, nil, []byte("signing-secret"))

	t.Run("empty key", func(t *testing.T) {
		_, err := authenticator.AuthenticateKey(context.Background(), "")
		assert.ErrorIs(t, err, ErrNoCredential)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := authenticator.AuthenticateKey(context.Background(), "key-unknown")
		assert.ErrorIs(t, err, ErrUnknownOrInactiveCredential)
	})

	t.Run("inactive key", func(t *testing.T) {
		deviceKey.Active = false
		defer func() { deviceKey.Active = true }()

		_, err := authenticator.AuthenticateKey(context.Background(), "key-1")
		assert.ErrorIs(t, err, ErrUnknownOrInactiveCredential)
	})

	t.Run("expired key", func(t *testing.T) {
		expiry := time.Now().Add(-time.Hour)
		deviceKey.ExpiresAt = &expiry
		defer func() { deviceKey.ExpiresAt = nil }()

		_, err := authenticator.AuthenticateKey(context.Background(), "key-1")
		assert.ErrorIs(t, err, ErrExpiredCredential)
	})

	t.Run("vehicle missing", func(t *testing.T) {
		vehicle := store.vehicles["bus-42"]
		delete(store.vehicles, "bus-42")
		defer func() { store.vehicles["bus-42"] = vehicle }()

		_, err := authenticator.AuthenticateKey(context.Background(), "key-1")
		assert.ErrorIs(t, err, ErrUnknownOrInactiveCredential)
	})
}

func TestTokenRoundTrip(t *testing.T) {
	store := newMemoryStore()
	seedStore(t, store, "device-secret")

	authenticator := NewAuthenticator(store, nil, []byte("signing-secret"))

	token, expiresAt, err := authenticator.IssueToken(context.Background(), "key-1", "device-secret")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	authentication, err := authenticator.AuthenticateToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, "bus-42", authentication.Vehicle.PrimaryIdentifier)
	assert.Equal(t, "device-1", authentication.DeviceRef)
	assert.Equal(t, CredentialMethodBearerToken, authentication.Method)
}

func TestIssueTokenFailures(t *testing.T) {
	store := newMemoryStore()
	seedStore(t, store, "device-secret")

	authenticator := NewAuthenticator(store, nil, []byte("signing-secret"))

	t.Run("missing credentials", func(t *testing.T) {
		_, _, err := authenticator.IssueToken(context.Background(), "", "")
		assert.ErrorIs(t, err, ErrNoCredential)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, _, err := authenticator.IssueToken(context.Background(), "key-1", "not-the-secret")
		assert.ErrorIs(t, err, ErrUnknownOrInactiveCredential)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, _, err := authenticator.IssueToken(context.Background(), "key-unknown", "device-secret")
		assert.ErrorIs(t, err, ErrUnknownOrInactiveCredential)
	})
}

func TestAuthenticateTokenFailures(t *testing.T) {
	store := newMemoryStore()
	seedStore(t, store, "device-secret")

	authenticator := NewAuthenticator(store, nil, []byte("signing-secret"))

	t.Run("garbage token", func(t *testing.T) {
		_, err := authenticator.AuthenticateToken(context.Background(), "not.a.token")
		assert.ErrorIs(t, err, ErrMalformedCredential)
	})

	t.Run("wrong signing secret", func(t *testing.T) {
		other := NewAuthenticator(store, nil, []byte("different-secret"))
		token, _, err := other.IssueToken(context.Background(), "key-1", "device-secret")
		require.NoError(t, err)

		_, err = authenticator.AuthenticateToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrMalformedCredential)
	})

	t.Run("device binding changed", func(t *testing.T) {
		token, _, err := authenticator.IssueToken(context.Background(), "key-1", "device-secret")
		require.NoError(t, err)

		store.vehicles["bus-42"].DeviceRef = "device-replacement"
		defer func() { store.vehicles["bus-42"].DeviceRef = "device-1" }()

		_, err = authenticator.AuthenticateToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrVehicleMismatch)
	})
}
