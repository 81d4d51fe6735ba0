package deviceauth

import "errors"

var (
	ErrNoCredential                = errors.New("no credential presented")
	ErrMalformedCredential         = errors.New("credential is malformed")
	ErrUnknownOrInactiveCredential = errors.New("credential is unknown or inactive")
	ErrExpiredCredential           = errors.New("credential has expired")
	ErrVehicleMismatch             = errors.New("credential does not match vehicle device binding")
)
