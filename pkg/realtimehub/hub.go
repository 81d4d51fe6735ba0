package realtimehub

import (
	"sync"
	"time"

	"github.com/Dhinesh71/bustrackingsystem/pkg/util"
	"github.com/rs/zerolog/log"
)

const defaultQueueSize = 64

// OutboundMessage is the typed event frame pushed to live subscribers.
type OutboundMessage struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Hub fans events out to live subscriber connections. Each subscriber owns an
// independent bounded outbound queue, so one slow or dead connection never
// stalls delivery to the rest - a subscriber that overflows its queue is
// disconnected instead.
type Hub struct {
	mutex       sync.RWMutex
	subscribers map[*Subscriber]struct{}

	queueSize int
}

func NewHub() *Hub {
	return &Hub{
		subscribers: map[*Subscriber]struct{}{},
		queueSize:   defaultQueueSize,
	}
}

// Register adds a new subscriber with no filter (receives everything).
func (h *Hub) Register() *Subscriber {
	subscriber := &Subscriber{
		hub:  h,
		send: make(chan OutboundMessage, h.queueSize),
	}

	h.mutex.Lock()
	h.subscribers[subscriber] = struct{}{}
	h.mutex.Unlock()

	log.Debug().Int("subscribers", h.SubscriberCount()).Msg("Subscriber registered")

	return subscriber
}

// Broadcast delivers an event to every subscriber whose filter matches one of
// the named channels. Delivery is at-most-once and never blocks.
func (h *Hub) Broadcast(messageType string, channels []string, body interface{}) {
	message := OutboundMessage{
		Type:      messageType,
		Timestamp: time.Now(),
		Data:      body,
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for subscriber := range h.subscribers {
		if !subscriber.wants(channels) {
			continue
		}

		select {
		case subscriber.send <- message:
		default:
			// Queue overflow - disconnect this subscriber only
			log.Warn().Msg("Subscriber queue overflow, disconnecting")
			go subscriber.Close()
		}
	}
}

func (h *Hub) SubscriberCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.subscribers)
}

// Subscriber is one live connection's subscription state. It is owned by the
// hub for the connection's lifetime and only mutated through its methods.
type Subscriber struct {
	hub *Hub

	send chan OutboundMessage

	filterMutex sync.RWMutex
	filter      []string

	closeOnce sync.Once
}

// Receive is the subscriber's outbound queue. It is closed when the
// subscriber is disconnected.
func (s *Subscriber) Receive() <-chan OutboundMessage {
	return s.send
}

// SetFilter replaces the subscriber's channel interest set. An empty filter
// means receive everything. May be called at any time while the connection is
// open.
func (s *Subscriber) SetFilter(channels []string) {
	s.filterMutex.Lock()
	s.filter = channels
	s.filterMutex.Unlock()
}

func (s *Subscriber) wants(channels []string) bool {
	s.filterMutex.RLock()
	defer s.filterMutex.RUnlock()

	if len(s.filter) == 0 {
		return true
	}

	for _, channel := range channels {
		if util.ContainsString(s.filter, channel) {
			return true
		}
	}

	return false
}

// Close removes the subscriber from the hub and releases its resources. Safe
// to call from any goroutine, any number of times.
func (s *Subscriber) Close() {
	s.closeOnce.Do(func() {
		s.hub.mutex.Lock()
		delete(s.hub.subscribers, s)
		close(s.send)
		s.hub.mutex.Unlock()
	})
}
