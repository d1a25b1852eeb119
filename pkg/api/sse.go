package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/bgpilot/internal/notify"
)

// Broker fans notices out to SSE subscribers. It is a notify.Sink.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]chan notify.Notice
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[string]chan notify.Notice)}
}

// Subscribe registers a subscriber with a buffer of size notices.
func (b *Broker) Subscribe(size int) (string, <-chan notify.Notice) {
	id := uuid.NewString()
	ch := make(chan notify.Notice, size)
	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broker) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Subscribers returns the number of live subscribers.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Notify delivers n to every subscriber. Slow subscribers miss notices
// rather than block the sender.
func (b *Broker) Notify(_ context.Context, n notify.Notice) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, ch := range b.subs {
		select {
		case ch <- n:
		default:
			log.Debug().Str("subscriber", id).Str("kind", n.Kind).Msg("sse-notice-dropped")
		}
	}
	return nil
}

// Notices handles GET /api/notices, streaming pipeline notices as
// Server-Sent Events until the client goes away.
// GET /api/notices?buffer=...
func (h *Handlers) Notices(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeSSEError(w, "streaming not supported")
		return
	}

	id, ch := h.broker.Subscribe(parseIntParam(r.URL.Query().Get("buffer"), 32))
	defer h.broker.Unsubscribe(id)

	writeSSEEvent(w, "ready", map[string]string{"subscriber": id})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			writeSSEEvent(w, n.Kind, n)
			flusher.Flush()
		}
	}
}

// writeSSEEvent writes a Server-Sent Event to the response.
func writeSSEEvent(w http.ResponseWriter, event string, data any) {
	fmt.Fprintf(w, "event: %s\n", event)
	if data != nil {
		jsonData, _ := json.Marshal(data)
		fmt.Fprintf(w, "data: %s\n", jsonData)
	}
	fmt.Fprintf(w, "\n")
}

// writeSSEError writes an error event and closes the stream.
func writeSSEError(w http.ResponseWriter, message string) {
	writeSSEEvent(w, "error", map[string]string{"error": message})
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// parseIntParam parses an integer from a string with a default value.
func parseIntParam(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(s)
	if err != nil || val <= 0 {
		return defaultVal
	}
	return val
}
