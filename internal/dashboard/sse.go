package dashboard

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"CancelDash/api/constants"
	"CancelDash/internal/dataset"
	"CancelDash/internal/logger"
)

// Event types pushed to dashboard clients.
const (
	EventConnected      = "connected"
	EventPing           = "ping"
	EventDatasetUpdated = "dataset_updated"
)

const clientBuffer = 16

type sseClient struct {
	id   string
	send chan []byte
	done chan struct{}
}

// Broadcaster fans dashboard events out to every connected SSE client.
type Broadcaster struct {
	mu           sync.RWMutex
	clients      map[string]*sseClient
	pingInterval time.Duration
	stopCh       chan struct{}
	stopOnce     sync.Once
}

func NewBroadcaster(pingInterval time.Duration) *Broadcaster {
	b := &Broadcaster{
		clients:      make(map[string]*sseClient),
		pingInterval: pingInterval,
		stopCh:       make(chan struct{}),
	}
	if pingInterval > 0 {
		go b.pingClients()
	}
	return b
}

// HandleSSE streams events until the client disconnects or the broadcaster
// stops. A client_id query parameter replaces an older stream with the same id.
func (b *Broadcaster) HandleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set(constants.ContentTypeText, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set(constants.HeaderAccessControlAllowOrigin, "*")

	id := r.URL.Query().Get("client_id")
	if id == "" {
		id = uuid.NewString()
	}
	client := &sseClient{
		id:   id,
		send: make(chan []byte, clientBuffer),
		done: make(chan struct{}),
	}

	b.mu.Lock()
	if existing, exists := b.clients[id]; exists {
		close(existing.done)
	}
	b.clients[id] = client
	b.mu.Unlock()

	logger.L().Infow("sse client connected", "client_id", id, "remote", r.RemoteAddr)
	defer func() {
		b.remove(client)
		logger.L().Infow("sse client disconnected", "client_id", id)
	}()

	if err := writeEvent(w, flusher, message(EventConnected, map[string]interface{}{"client_id": id})); err != nil {
		return
	}

	for {
		select {
		case payload := <-client.send:
			if err := writeEvent(w, flusher, payload); err != nil {
				return
			}
		case <-client.done:
			return
		case <-r.Context().Done():
			return
		case <-b.stopCh:
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, payload []byte) error {
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

func message(eventType string, fields map[string]interface{}) []byte {
	data := map[string]interface{}{
		"type": eventType,
		"time": time.Now().Format(time.RFC3339),
	}
	for k, v := range fields {
		data[k] = v
	}
	out, _ := json.Marshal(data)
	return out
}

// Publish queues an event for every client. Clients whose queue is full are
// dropped.
func (b *Broadcaster) Publish(eventType string, fields map[string]interface{}) {
	payload := message(eventType, fields)

	var slow []*sseClient
	b.mu.RLock()
	for _, c := range b.clients {
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	b.mu.RUnlock()

	for _, c := range slow {
		logger.L().Warnw("dropping slow sse client", "client_id", c.id)
		b.remove(c)
	}
}

// DatasetUpdated announces a newly published snapshot.
func (b *Broadcaster) DatasetUpdated(snap *dataset.Snapshot) {
	b.Publish(EventDatasetUpdated, map[string]interface{}{
		"snapshot_id": snap.ID.String(),
		"filename":    snap.Filename,
		"kind":        snap.Kind,
		"rows":        snap.Table.Len(),
	})
}

func (b *Broadcaster) remove(c *sseClient) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.clients[c.id] == c {
		delete(b.clients, c.id)
		close(c.done)
	}
}

func (b *Broadcaster) pingClients() {
	ticker := time.NewTicker(b.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.Publish(EventPing, nil)
		case <-b.stopCh:
			return
		}
	}
}

func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

func (b *Broadcaster) Stop() {
	b.stopOnce.Do(func() {
		close(b.stopCh)
		b.mu.Lock()
		b.clients = make(map[string]*sseClient)
		b.mu.Unlock()
	})
}
