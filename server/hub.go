package main

import (
	"encoding/json"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	maxConnsPerIP = 5
	maxTotalConns = 1000
)

// Hub keeps the connected spectators and fans frames and events out to
// them.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	// welcome builds the greeting for a new spectator.
	welcome func() WelcomeMsg
	// Connection limiting (mutex-protected, accessed from HTTP handlers)
	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int
}

func NewHub(welcome func() WelcomeMsg) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		welcome:    welcome,
		ipConns:    make(map[string]int),
	}
}

func (h *Hub) CanAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= maxTotalConns {
		return false
	}
	if h.ipConns[ip] >= maxConnsPerIP {
		return false
	}
	return true
}

func (h *Hub) TrackConnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]++
	h.totalConns++
}

func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// Run processes register/unregister events
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			// The welcome is built before taking the lock: the sim may be
			// inside Broadcast holding its own.
			var wm *WelcomeMsg
			if h.welcome != nil {
				w := h.welcome()
				wm = &w
			}
			h.mu.Lock()
			h.clients[client] = true
			if wm != nil {
				client.SendJSON(Envelope{T: MsgWelcome, Data: *wm})
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast sends env to every spectator in the format each one asked
// for. Each encoding is done at most once.
func (h *Hub) Broadcast(env Envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var text, bin []byte
	for c := range h.clients {
		if c.binary.Load() {
			if bin == nil {
				var err error
				if bin, err = msgpack.Marshal(env); err != nil {
					Log.WithError(err).WithField("type", env.T).Error("msgpack marshal failed")
					return
				}
			}
			c.SendBinary(bin)
			continue
		}
		if text == nil {
			var err error
			if text, err = json.Marshal(env); err != nil {
				Log.WithError(err).WithField("type", env.T).Error("json marshal failed")
				return
			}
		}
		c.SendRaw(text)
	}
}

// BroadcastFrame and BroadcastEvent make the hub a Feed.
func (h *Hub) BroadcastFrame(fs FrameState) { h.Broadcast(Envelope{T: MsgState, Data: fs}) }

func (h *Hub) BroadcastEvent(ev EventMsg) { h.Broadcast(Envelope{T: MsgEvent, Data: ev}) }

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalConns returns the tracked connection count
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}
