package deviceauth

import (
	"context"
	"errors"
	"time"

	"github.com/Dhinesh71/bustrackingsystem/pkg/telemetry"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const tokenValidity = 24 * time.Hour

type deviceClaims struct {
	DeviceRef  string `json:"device_ref"`
	VehicleRef string `json:"vehicle_ref"`

	jwt.RegisteredClaims
}

// IssueToken exchanges an API key and its secret for a signed bearer token.
// The same failure taxonomy applies as for direct key authentication.
func (a *Authenticator) IssueToken(ctx context.Context, key string, secret string) (string, time.Time, error) {
	if key == "" || secret == "" {
		return "", time.Time{}, ErrNoCredential
	}

	deviceKey, err := a.store.DeviceKey(ctx, key)
	if errors.Is(err, telemetry.ErrNotFound) {
		return "", time.Time{}, ErrUnknownOrInactiveCredential
	} else if err != nil {
		return "", time.Time{}, err
	}

	if !deviceKey.Active {
		return "", time.Time{}, ErrUnknownOrInactiveCredential
	}
	if deviceKey.Expired(time.Now()) {
		return "", time.Time{}, ErrExpiredCredential
	}

	if err := bcrypt.CompareHashAndPassword([]byte(deviceKey.SecretHash), []byte(secret)); err != nil {
		return "", time.Time{}, ErrUnknownOrInactiveCredential
	}

	expiresAt := time.Now().Add(tokenValidity)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, deviceClaims{
		DeviceRef:  deviceKey.DeviceRef,
		VehicleRef: deviceKey.VehicleRef,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   deviceKey.DeviceRef,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(a.tokenSecret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func (a *Authenticator) verifyToken(tokenString string) (*deviceClaims, error) {
	claims := &deviceClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrMalformedCredential
		}
		return a.tokenSecret, nil
	})

	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ErrExpiredCredential
	} else if err != nil {
		return nil, ErrMalformedCredential
	}

	if !token.Valid || claims.VehicleRef == "" || claims.DeviceRef == "" {
		return nil, ErrMalformedCredential
	}

	return claims, nil
}
