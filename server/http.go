package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/lrcshow-cli/lrcshow/log"
	"github.com/r3labs/sse/v2"
	"github.com/rs/cors"
)

// Stream is the SSE stream changes are published on.
const Stream = "lyrics"

// Event names of the SSE stream.
const (
	EventLyrics  = "lyrics"
	EventSegment = "segment"
)

// Lyrics is the JSON form of the current lyrics.
type Lyrics struct {
	Loaded bool     `json:"loaded" jsonschema:"description=Whether a lyrics file is loaded"`
	Lines  []string `json:"lines" jsonschema:"description=Lines of the loaded lyrics"`
}

// HTTP serves the cache as JSON and streams changes as server-sent events.
type HTTP struct {
	cache  *Cache
	events *sse.Server
	server *http.Server
}

func NewHTTP(cache *Cache, address string, origins []string) *HTTP {
	events := sse.New()
	events.AutoReplay = false
	events.CreateStream(Stream)

	h := &HTTP{cache: cache, events: events}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/lyrics", h.handleLyrics)
	mux.HandleFunc("/api/segment", h.handleSegment)
	mux.HandleFunc("/events", events.ServeHTTP)

	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept"},
	})

	h.server = &http.Server{
		Addr:              address,
		Handler:           c.Handler(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return h
}

// Handler returns the root handler, CORS included.
func (h *HTTP) Handler() http.Handler {
	return h.server.Handler
}

// ListenAndServe blocks until the server is shut down.
func (h *HTTP) ListenAndServe() error {
	log.Infof("server: listening on http://%s", h.server.Addr)

	err := h.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown closes the event streams and stops the server.
func (h *HTTP) Shutdown(ctx context.Context) error {
	h.events.Close()
	return h.server.Shutdown(ctx)
}

func (h *HTTP) handleLyrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, Lyrics{Loaded: h.cache.HasLyrics(), Lines: h.cache.Lines()})
}

func (h *HTTP) handleSegment(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, h.cache.Segment())
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("server: write response: %s", err)
	}
}

func (h *HTTP) publish(event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Warnf("server: encode %s event: %s", event, err)
		return
	}

	h.events.Publish(Stream, &sse.Event{Event: []byte(event), Data: data})
}

func (h *HTTP) PublishLyrics(lines []string) {
	h.publish(EventLyrics, Lyrics{Loaded: h.cache.HasLyrics(), Lines: lines})
}

func (h *HTTP) PublishSegment(s Segment) {
	h.publish(EventSegment, s)
}
