// Package wsobserver streams resolver match decisions to connected
// websocket clients, implementing the resolver.DebugObserver hook
// described in spec §4.E ("the hook must not alter semantics").
// Grounded on the teacher pack's one gorilla/websocket consumer
// (Keyhole-Koro-InsightifyCore's interaction websocket handler): an
// Upgrader, a ping/pong keepalive loop, and non-blocking buffered
// per-client broadcast so a slow or stalled debug client can never
// block a resolve run.
package wsobserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mrjk/resourcegraph/link"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	clientBuf  = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Event is one match decision, JSON-serialized and broadcast verbatim.
type Event struct {
	Level       int      `json:"level"`
	Resource    string   `json:"resource"`
	Requirement string   `json:"requirement"`
	Effective   string   `json:"effective"`
	Candidates  []string `json:"candidates"`
	Chosen      []string `json:"chosen"`
}

// Hub fans out Events to every currently connected websocket client. It
// implements resolver.DebugObserver via OnMatch.
type Hub struct {
	mu      sync.Mutex
	clients map[chan Event]struct{}
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: map[chan Event]struct{}{}}
}

// HandleWS upgrades r to a websocket connection and streams Events to it
// until the client disconnects.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch := make(chan Event, clientBuf)
	h.register(ch)
	defer h.unregister(ch)

	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go drainReads(conn, done)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case evt := <-ch:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// drainReads discards client messages (this is a one-way event stream)
// and signals done when the connection closes.
func drainReads(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) register(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[ch] = struct{}{}
}

func (h *Hub) unregister(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, ch)
}

// OnMatch implements resolver.DebugObserver. It never blocks: a full
// client buffer drops the event for that client rather than stalling
// the resolve run.
func (h *Hub) OnMatch(level int, resource string, requirement, effective link.RequirementLink, candidates, chosen []link.ProviderLink) {
	evt := Event{
		Level:       level,
		Resource:    resource,
		Requirement: requirement.Rule(),
		Effective:   effective.Rule(),
		Candidates:  ruleStrings(candidates),
		Chosen:      ruleStrings(chosen),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- evt:
		default:
		}
	}
}

func ruleStrings(providers []link.ProviderLink) []string {
	out := make([]string, len(providers))
	for i, p := range providers {
		out[i] = p.Rule()
	}
	return out
}
