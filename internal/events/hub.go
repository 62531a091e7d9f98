package events

import (
	"encoding/json"
	"log"

	"github.com/npezzotti/go-bulletin/internal/stats"
	"github.com/npezzotti/go-bulletin/internal/types"
)

const (
	EventAnnouncement = "announcement"
	EventComment      = "comment"
)

// Event is pushed to every connected page when a post is created.
type Event struct {
	Type         string              `json:"type"`
	Announcement *types.Announcement `json:"announcement,omitempty"`
	Comment      *types.Comment      `json:"comment,omitempty"`
}

// Hub fans events out to connected websocket clients. One-way: clients never
// publish, they only listen.
type Hub struct {
	log            *log.Logger
	stats          stats.StatsProvider
	clients        map[*Client]struct{}
	registerChan   chan *Client
	deregisterChan chan *Client
	broadcastChan  chan *Event
	stop           chan struct{}
	done           chan struct{}
}

func NewHub(logger *log.Logger, sp stats.StatsProvider) *Hub {
	if sp != nil {
		sp.RegisterMetric(stats.ActiveClients)
		sp.RegisterMetric(stats.EventsBroadcast)
	}

	return &Hub{
		log:            logger,
		stats:          sp,
		clients:        make(map[*Client]struct{}),
		registerChan:   make(chan *Client),
		deregisterChan: make(chan *Client),
		broadcastChan:  make(chan *Event, 64),
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.registerChan:
			h.clients[client] = struct{}{}
			if h.stats != nil {
				h.stats.Incr(stats.ActiveClients)
			}
		case client := <-h.deregisterChan:
			h.removeClient(client)
		case event := <-h.broadcastChan:
			raw, err := json.Marshal(event)
			if err != nil {
				h.log.Println("failed to serialize event:", err)
				continue
			}

			for client := range h.clients {
				if !client.queueMessage(raw) {
					// slow client, drop it rather than block the hub
					h.log.Println("dropping slow event client")
					h.removeClient(client)
				}
			}

			if h.stats != nil {
				h.stats.Incr(stats.EventsBroadcast)
			}
		case <-h.stop:
			h.log.Println("closing event clients")
			for client := range h.clients {
				h.removeClient(client)
			}

			close(h.done)
			return
		}
	}
}

func (h *Hub) removeClient(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}

	delete(h.clients, c)
	close(c.send)
	if h.stats != nil {
		h.stats.Decr(stats.ActiveClients)
	}
}

func (h *Hub) Register(c *Client) {
	h.registerChan <- c
}

func (h *Hub) Deregister(c *Client) {
	select {
	case h.deregisterChan <- c:
	case <-h.done:
	}
}

func (h *Hub) BroadcastAnnouncement(a types.Announcement) {
	h.broadcast(&Event{Type: EventAnnouncement, Announcement: &a})
}

func (h *Hub) BroadcastComment(c types.Comment) {
	h.broadcast(&Event{Type: EventComment, Comment: &c})
}

func (h *Hub) broadcast(event *Event) {
	select {
	case h.broadcastChan <- event:
	default:
		h.log.Println("broadcast channel full, dropping event")
	}
}

func (h *Hub) Shutdown() {
	close(h.stop)
	<-h.done
}
