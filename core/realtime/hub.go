package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"dispatch-console/core/utils"
)

// Event is one message on the console change feed. An empty target fans the
// event out to every client.
type Event struct {
	Name    string    `json:"event"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`

	target string
}

// Client is one connected SSE subscriber. Send is closed by the hub on
// unregister; a full buffer drops events rather than blocking the hub.
type Client struct {
	UserID string
	Send   chan Event
}

// Hub fans change events out to connected consoles. Register, unregister
// and broadcast all flow through one goroutine so the client set needs no
// locking on the hot path.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan Event
	done       chan struct{}
	closeOnce  sync.Once
	log        *utils.Logger
}

func NewHub(log *utils.Logger) *Hub {
	if log == nil {
		log = utils.NewLogger()
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, 100),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run owns the client set. It returns when Close is called.
func (h *Hub) Run() {
	clients := make(map[*Client]bool)
	for {
		select {
		case c := <-h.register:
			clients[c] = true
			h.log.Printf("feed client connected, total %d", len(clients))
		case c := <-h.unregister:
			if _, ok := clients[c]; ok {
				delete(clients, c)
				close(c.Send)
			}
			h.log.Printf("feed client disconnected, total %d", len(clients))
		case ev := <-h.broadcast:
			for c := range clients {
				if ev.target != "" && c.UserID != ev.target {
					continue
				}
				select {
				case c.Send <- ev:
				default:
					// slow client, drop the event
				}
			}
		case <-h.done:
			for c := range clients {
				close(c.Send)
			}
			return
		}
	}
}

func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Subscribe registers a new client with a buffered send channel.
func (h *Hub) Subscribe(userID string) *Client {
	c := &Client{UserID: userID, Send: make(chan Event, 16)}
	select {
	case h.register <- c:
	case <-h.done:
		close(c.Send)
	}
	return c
}

func (h *Hub) Unsubscribe(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues an event for every connected client. It never blocks
// the caller; when the queue is full the event is dropped.
func (h *Hub) Broadcast(event string, payload any) {
	ev := Event{Name: event, Payload: payload, At: time.Now()}
	select {
	case h.broadcast <- ev:
	default:
		h.log.Errorf("feed queue full, dropping %q", event)
	}
}

// SendTo queues an event for the clients of one user only.
func (h *Hub) SendTo(userID, event string, payload any) {
	ev := Event{Name: event, Payload: payload, At: time.Now(), target: userID}
	select {
	case h.broadcast <- ev:
	default:
		h.log.Errorf("feed queue full, dropping %q for user %s", event, userID)
	}
}

// Encode renders the event in SSE wire format.
func (ev Event) Encode() []byte {
	data, err := json.Marshal(ev)
	if err != nil {
		data = []byte(`{}`)
	}
	out := make([]byte, 0, len(ev.Name)+len(data)+16)
	out = append(out, "event: "...)
	out = append(out, ev.Name...)
	out = append(out, "\ndata: "...)
	out = append(out, data...)
	out = append(out, "\n\n"...)
	return out
}
