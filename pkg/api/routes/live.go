package routes

import (
	"encoding/json"

	"github.com/Dhinesh71/bustrackingsystem/pkg/realtimehub"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type LiveRouter struct {
	Hub *realtimehub.Hub
}

func (r *LiveRouter) Setup(router fiber.Router) {
	router.Use("/", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/", websocket.New(r.handleConnection))
}

type subscribeCommand struct {
	Type     string   `json:"type"`
	Channels []string `json:"channels"`
}

// handleConnection pumps hub events to the socket while reading subscribe
// commands off it. A new connection starts unfiltered.
func (r *LiveRouter) handleConnection(conn *websocket.Conn) {
	subscriber := r.Hub.Register()
	defer subscriber.Close()

	// Writer drains the subscriber queue until the hub closes it, then tears
	// the connection down so the read loop below unblocks
	go func() {
		for message := range subscriber.Receive() {
			if err := conn.WriteJSON(message); err != nil {
				break
			}
		}
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var command subscribeCommand
		if err := json.Unmarshal(data, &command); err != nil {
			log.Debug().Err(err).Msg("Unparseable live command")
			continue
		}

		if command.Type == "subscribe" {
			subscriber.SetFilter(command.Channels)

			log.Debug().Strs("channels", command.Channels).Msg("Subscriber filter updated")
		}
	}
}
