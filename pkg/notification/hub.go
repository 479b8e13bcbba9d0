// Package notification delivers realtime events to connected clients.
//
// A Hub is a registry of live connections. Each connection may join the room
// named after its own verified user id. Delivery is best-effort: nothing is
// queued for clients that are offline.
package notification

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/gofiber/fiber/v2/log"
)

const (
	EventJoin             = "join"
	EventNewDonation      = "new-donation"
	EventReceiveDonation  = "receive-donation"
	EventDonationAccepted = "donation-accepted"
	EventJoined           = "joined"
	EventError            = "error"
)

var (
	ErrNotRegistered = errors.New("connection is not registered")
	ErrRoomForbidden = errors.New("cannot join another user's room")
)

type Event struct {
	Name string `json:"event"`
	Data any    `json:"data,omitempty"`
}

// Incoming is a frame sent by a client.
type Incoming struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Subscriber is one live connection with a verified identity.
type Subscriber interface {
	ID() string
	UserID() string
	Send(ev Event) error
}

type Hub struct {
	mu     sync.RWMutex
	conns  map[string]Subscriber
	rooms  map[string]map[string]Subscriber
	joined map[string]map[string]struct{}
}

func NewHub() *Hub {
	return &Hub{
		conns:  make(map[string]Subscriber),
		rooms:  make(map[string]map[string]Subscriber),
		joined: make(map[string]map[string]struct{}),
	}
}

func (h *Hub) Register(s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.conns[s.ID()] = s
	if _, ok := h.joined[s.ID()]; !ok {
		h.joined[s.ID()] = make(map[string]struct{})
	}
}

// Unregister drops the connection and all of its room memberships.
func (h *Hub) Unregister(s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room := range h.joined[s.ID()] {
		members := h.rooms[room]
		delete(members, s.ID())
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(h.joined, s.ID())
	delete(h.conns, s.ID())
}

// Join subscribes s to room, which must be the subscriber's own user id.
func (h *Hub) Join(s Subscriber, room string) error {
	if room != s.UserID() {
		return ErrRoomForbidden
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[s.ID()]; !ok {
		return ErrNotRegistered
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]Subscriber)
		h.rooms[room] = members
	}
	members[s.ID()] = s
	h.joined[s.ID()][room] = struct{}{}
	return nil
}

// Publish sends ev to every member of room and returns the number of deliveries.
func (h *Hub) Publish(room string, ev Event) int {
	h.mu.RLock()
	targets := make([]Subscriber, 0, len(h.rooms[room]))
	for _, s := range h.rooms[room] {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	return deliver(targets, ev)
}

// Broadcast sends ev to every registered connection.
func (h *Hub) Broadcast(ev Event) int {
	h.mu.RLock()
	targets := make([]Subscriber, 0, len(h.conns))
	for _, s := range h.conns {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	return deliver(targets, ev)
}

func (h *Hub) Members(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func deliver(targets []Subscriber, ev Event) int {
	sent := 0
	for _, s := range targets {
		if err := s.Send(ev); err != nil {
			log.Warnw("notification send failed", "conn", s.ID(), "event", ev.Name, "error", err)
			continue
		}
		sent++
	}
	return sent
}

// Dispatch handles one client frame.
func (h *Hub) Dispatch(s Subscriber, in Incoming) {
	switch in.Name {
	case EventJoin:
		room := s.UserID()
		if len(in.Data) > 0 && string(in.Data) != "null" {
			var requested string
			if err := json.Unmarshal(in.Data, &requested); err != nil {
				h.reply(s, Event{Name: EventError, Data: "join expects a user id string"})
				return
			}
			if requested != "" {
				room = requested
			}
		}
		if err := h.Join(s, room); err != nil {
			h.reply(s, Event{Name: EventError, Data: err.Error()})
			return
		}
		h.reply(s, Event{Name: EventJoined, Data: room})

	case EventNewDonation:
		var payload map[string]any
		if err := json.Unmarshal(in.Data, &payload); err != nil || payload == nil {
			h.reply(s, Event{Name: EventError, Data: "new-donation expects an object"})
			return
		}
		ev := Event{Name: EventReceiveDonation, Data: payload}
		if receiver, _ := payload["receiverId"].(string); receiver != "" {
			h.Publish(receiver, ev)
			return
		}
		h.Broadcast(ev)

	default:
		h.reply(s, Event{Name: EventError, Data: "unknown event " + in.Name})
	}
}

func (h *Hub) reply(s Subscriber, ev Event) {
	if err := s.Send(ev); err != nil {
		log.Warnw("notification reply failed", "conn", s.ID(), "event", ev.Name, "error", err)
	}
}
