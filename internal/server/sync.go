package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/replicated"
)

// SyncHandler is the replication hub: every committed local transaction is
// broadcast to all connected peers as a JSON op batch, and batches received
// from peers are merged into the document. Merging is idempotent, so
// relayed traffic needs no echo suppression beyond the document's own-site
// check.
type SyncHandler struct {
	doc     *replicated.Doc
	clients map[*websocket.Conn]*sync.Mutex
	mu      sync.RWMutex
	off     func()
}

// NewSyncHandler creates a SyncHandler bound to the given document.
func NewSyncHandler(doc *replicated.Doc) *SyncHandler {
	h := &SyncHandler{
		doc:     doc,
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
	h.off = doc.OnChange(h.broadcast)
	return h
}

// Close unsubscribes from the document feed.
func (h *SyncHandler) Close() {
	if h.off != nil {
		h.off()
		h.off = nil
	}
}

// ServeHTTP handles WebSocket upgrade requests and runs the peer's read
// loop until it disconnects.
func (h *SyncHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("sync upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = &sync.Mutex{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var ops []replicated.Op
		if err := json.Unmarshal(data, &ops); err != nil {
			log.Printf("sync: bad op batch from peer: %v", err)
			continue
		}
		h.doc.ApplyRemote(ops)
	}
}

// broadcast sends one committed op batch to every connected peer.
func (h *SyncHandler) broadcast(ops []replicated.Op) {
	data, err := json.Marshal(ops)
	if err != nil {
		return
	}

	h.mu.RLock()
	conns := make(map[*websocket.Conn]*sync.Mutex, len(h.clients))
	for conn, mu := range h.clients {
		conns[conn] = mu
	}
	h.mu.RUnlock()

	for conn, mu := range conns {
		mu.Lock()
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("sync write error: %v", err)
		}
		mu.Unlock()
	}
}
