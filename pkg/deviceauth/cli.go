package deviceauth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/Dhinesh71/bustrackingsystem/pkg/busdata"
	"github.com/Dhinesh71/bustrackingsystem/pkg/database"
	"github.com/Dhinesh71/bustrackingsystem/pkg/telemetry"
	"github.com/kr/pretty"
	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/bcrypt"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "devicekey",
		Usage: "Manage hardware device API keys",
		Subcommands: []*cli.Command{
			{
				Name:  "issue",
				Usage: "issue a new API key bound to a vehicle",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "vehicle",
						Usage:    "vehicle identifier the key reports on behalf of",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "device",
						Usage:    "device identifier embedded in issued tokens",
						Required: true,
					},
					&cli.DurationFlag{
						Name:  "validity",
						Usage: "key lifetime, zero for no expiry",
					},
				},
				Action: func(c *cli.Context) error {
					databaseInstance, err := database.Connect()
					if err != nil {
						return err
					}

					repository := telemetry.NewMongoRepository(databaseInstance)

					key := randomHex(24)
					secret := randomHex(32)

					secretHash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
					if err != nil {
						return err
					}

					deviceKey := &busdata.DeviceKey{
						Key:        key,
						SecretHash: string(secretHash),

						DeviceRef:  c.String("device"),
						VehicleRef: c.String("vehicle"),

						Active: true,

						CreationDateTime: time.Now(),
					}

					if validity := c.Duration("validity"); validity > 0 {
						expiresAt := time.Now().Add(validity)
						deviceKey.ExpiresAt = &expiresAt
					}

					if err := repository.InsertDeviceKey(context.Background(), deviceKey); err != nil {
						return err
					}

					pretty.Println(deviceKey)
					pretty.Println("secret (shown once):", secret)

					return nil
				},
			},
		},
	}
}

func randomHex(length int) string {
	bytes := make([]byte, length)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
