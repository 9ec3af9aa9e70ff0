// Package live implements the snapshot subscription hub. A subscriber
// attaches over WebSocket with a set of collection names; after every
// relevant write the hub re-runs the collection's loader and pushes the
// complete result set, replacing whatever copy the client held. No
// incremental diffing is performed.
package live

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/edensitko/RED-CRM-sub001/internal/logging"
)

// Loader produces the full, user-scoped result set of one collection.
type Loader func(ctx context.Context, userID string) (any, error)

// Envelope is the wire format of one snapshot push.
type Envelope struct {
	Type       string `json:"type"`
	Collection string `json:"collection"`
	Data       any    `json:"data"`
}

type subscriber struct {
	conn        *websocket.Conn
	userID      string
	collections map[string]struct{}
	send        chan []byte
}

func (s *subscriber) wants(collection string) bool {
	_, ok := s.collections[collection]
	return ok
}

// Hub fans snapshots out to subscribers. One subscription per mounted
// view; the listener is released when the connection closes.
type Hub struct {
	mu      sync.Mutex
	subs    map[*subscriber]struct{}
	loaders map[string]Loader
	logger  logging.Logger
	baseCtx context.Context
}

func NewHub(baseCtx context.Context, logger logging.Logger) *Hub {
	return &Hub{
		subs:    make(map[*subscriber]struct{}),
		loaders: make(map[string]Loader),
		logger:  logger.With("module", "live_hub"),
		baseCtx: baseCtx,
	}
}

// RegisterLoader binds a collection name to its snapshot loader. Must be
// called during wiring, before the hub accepts connections.
func (h *Hub) RegisterLoader(collection string, l Loader) {
	h.loaders[collection] = l
}

// Collections returns the set of registered collection names.
func (h *Hub) Collections() []string {
	names := make([]string, 0, len(h.loaders))
	for name := range h.loaders {
		names = append(names, name)
	}
	return names
}

// ServeConn registers the connection for the given collections, pushes an
// initial snapshot of each, and blocks until the peer disconnects.
func (h *Hub) ServeConn(conn *websocket.Conn, userID string, collections []string) {
	sub := &subscriber{
		conn:        conn,
		userID:      userID,
		collections: make(map[string]struct{}, len(collections)),
		send:        make(chan []byte, 16),
	}
	for _, c := range collections {
		if _, ok := h.loaders[c]; ok {
			sub.collections[c] = struct{}{}
		}
	}

	h.register(sub)

	for c := range sub.collections {
		h.push(sub, c)
	}

	go sub.writeLoop()
	sub.readLoop()
	h.unregister(sub)
}

// Notify re-delivers the named collection to subscribers. With no userIDs
// every subscriber of the collection is refreshed; otherwise only the
// listed users are.
func (h *Hub) Notify(collection string, userIDs ...string) {
	targets := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		targets[id] = struct{}{}
	}

	h.mu.Lock()
	var affected []*subscriber
	for sub := range h.subs {
		if !sub.wants(collection) {
			continue
		}
		if len(targets) > 0 {
			if _, ok := targets[sub.userID]; !ok {
				continue
			}
		}
		affected = append(affected, sub)
	}
	h.mu.Unlock()

	for _, sub := range affected {
		h.push(sub, collection)
	}
}

// push loads a fresh snapshot for one subscriber and queues it. Loader
// failures are logged and the push is skipped; the subscriber simply
// stops receiving updates for that change.
func (h *Hub) push(sub *subscriber, collection string) {
	loader, ok := h.loaders[collection]
	if !ok {
		return
	}

	data, err := loader(h.baseCtx, sub.userID)
	if err != nil {
		h.logger.Error(h.baseCtx, "snapshot load failed", "collection", collection, "error", err.Error())
		return
	}

	payload, err := json.Marshal(Envelope{Type: "snapshot", Collection: collection, Data: data})
	if err != nil {
		h.logger.Error(h.baseCtx, "snapshot encode failed", "collection", collection, "error", err.Error())
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; !ok {
		return
	}
	select {
	case sub.send <- payload:
	default:
		// Slow consumer: drop it rather than block the hub.
		close(sub.send)
		delete(h.subs, sub)
	}
}

func (h *Hub) register(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[sub] = struct{}{}
}

func (h *Hub) unregister(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.send)
	}
}

func (s *subscriber) readLoop() {
	defer s.conn.Close()
	s.conn.SetReadLimit(64 * 1024)
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *subscriber) writeLoop() {
	defer s.conn.Close()
	for msg := range s.send {
		if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}
