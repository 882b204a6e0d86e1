package services

import (
	"log"
	"sync"
	"time"
)

// Event types pushed to live subscribers.
const (
	EventPlayerKills         = "player.kills"
	EventSquadRegistered     = "squad.registered"
	EventSquadKills          = "squad.kills"
	EventSquadDeleted        = "squad.deleted"
	EventMatchStarted        = "match.started"
	EventMatchSquadCompleted = "match.squad_completed"
	EventMatchEnded          = "match.ended"
	EventMatchReset          = "match.reset"
	EventTeamsUpdated        = "teams.updated"
	EventDataWiped           = "data.wiped"
)

type Event struct {
	Type    string    `json:"type"`
	Payload any       `json:"payload"`
	At      time.Time `json:"at"`
}

// Hub fans events out to live subscribers. Publish never blocks: a
// subscriber whose buffer is full misses the event.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
	buffer      int
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[chan Event]struct{}), buffer: 32}
}

// Subscribe returns a channel of events and a function that unsubscribes and closes it.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, h.buffer)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *Hub) Publish(eventType string, payload any) {
	if h == nil {
		return
	}
	ev := Event{Type: eventType, Payload: payload, At: time.Now().UTC()}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subscribers {
		select {
		case ch <- ev:
		default:
			log.Printf("[LIVE] subscriber buffer full, dropping %s", eventType)
		}
	}
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
