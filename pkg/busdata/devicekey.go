package busdata

import "time"

// DeviceKey is a long-lived API key binding a hardware device to a single
// vehicle. The secret is stored as a bcrypt hash and only ever returned in
// full at issue time.
type DeviceKey struct {
	Key        string `groups:"internal"`
	SecretHash string `groups:"internal"`

	DeviceRef  string `groups:"basic"`
	VehicleRef string `groups:"basic"`

	Active    bool       `groups:"basic"`
	ExpiresAt *time.Time `groups:"basic"`

	UsageCount int64     `groups:"internal"`
	LastUsed   time.Time `groups:"internal"`

	CreationDateTime time.Time `groups:"internal"`
}

// Expired reports whether the key was past its expiry at the given instant.
// Keys without an expiry never expire.
func (k *DeviceKey) Expired(at time.Time) bool {
	return k.ExpiresAt != nil && at.After(*k.ExpiresAt)
}
