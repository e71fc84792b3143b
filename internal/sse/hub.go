// Package sse streams viewer state changes to browsers and overlays as
// Server-Sent Events.
//
// Each controller event (groups.changed, page.changed, night_mode.changed)
// is sent with the viewer snapshot taken right after it. A viewer that
// attaches late first receives the last snapshot sent for every event type,
// so it can draw the current page without polling the REST API.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync/atomic"
)

// feedBuffer is the number of frames a feed holds before new ones are dropped.
const feedBuffer = 64

// Event is one viewer state change: the event name and its snapshot.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// frame renders e in text/event-stream framing.
func (e Event) frame() ([]byte, error) {
	payload, err := json.Marshal(e.Data)
	if err != nil {
		return nil, fmt.Errorf("sse: encode %s: %w", e.Type, err)
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", e.Type, payload)), nil
}

// Feed is one attached viewer. C is closed on Detach or when the hub closes.
type Feed struct {
	C <-chan []byte

	ch      chan []byte
	dropped atomic.Int64
}

// Dropped returns how many frames were discarded because the viewer fell
// behind.
func (f *Feed) Dropped() int64 { return f.dropped.Load() }

func newFeed() *Feed {
	ch := make(chan []byte, feedBuffer)
	return &Feed{C: ch, ch: ch}
}

// deliver hands raw to the viewer without ever blocking the hub.
func (f *Feed) deliver(raw []byte) {
	select {
	case f.ch <- raw:
	default:
		f.dropped.Add(1)
	}
}

// Hub fans viewer events out to attached feeds.
//
// All feed bookkeeping lives in one goroutine (loop); the exported methods
// talk to it over channels. Once Close returns every feed is closed and
// further calls are no-ops.
type Hub struct {
	attachCh    chan *Feed
	detachCh    chan *Feed
	broadcastCh chan Event
	viewersCh   chan chan int

	quit   chan struct{}
	done   chan struct{}
	closed atomic.Bool
}

// NewHub creates a hub and starts its loop.
func NewHub() *Hub {
	h := &Hub{
		attachCh:    make(chan *Feed),
		detachCh:    make(chan *Feed),
		broadcastCh: make(chan Event),
		viewersCh:   make(chan chan int),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	go h.loop()
	return h
}

// hubState is owned by the loop goroutine.
type hubState struct {
	feeds map[*Feed]struct{}
	// last holds the most recent frame per event type.
	last map[string][]byte
}

// replay sends the last frame of every event type, ordered by type name.
func (s *hubState) replay(f *Feed) {
	types := make([]string, 0, len(s.last))
	for t := range s.last {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		f.deliver(s.last[t])
	}
}

func (h *Hub) loop() {
	defer close(h.done)

	s := hubState{
		feeds: make(map[*Feed]struct{}),
		last:  make(map[string][]byte),
	}

	for {
		select {
		case <-h.quit:
			for f := range s.feeds {
				close(f.ch)
			}
			return

		case f := <-h.attachCh:
			s.feeds[f] = struct{}{}
			s.replay(f)

		case f := <-h.detachCh:
			if _, ok := s.feeds[f]; ok {
				delete(s.feeds, f)
				close(f.ch)
			}

		case e := <-h.broadcastCh:
			raw, err := e.frame()
			if err != nil {
				continue
			}
			s.last[e.Type] = raw
			for f := range s.feeds {
				f.deliver(raw)
			}

		case resp := <-h.viewersCh:
			resp <- len(s.feeds)
		}
	}
}

// Close stops the loop and closes every feed. Safe to call more than once.
func (h *Hub) Close() {
	if h.closed.CompareAndSwap(false, true) {
		close(h.quit)
	}
	<-h.done
}

// Attach registers a new viewer feed. On a closed hub the feed comes back
// already closed.
func (h *Hub) Attach() *Feed {
	f := newFeed()
	if h.closed.Load() {
		close(f.ch)
		return f
	}
	select {
	case h.attachCh <- f:
	case <-h.done:
		close(f.ch)
	}
	return f
}

// Detach removes f and closes its channel.
func (h *Hub) Detach(f *Feed) {
	if h.closed.Load() {
		return
	}
	select {
	case h.detachCh <- f:
	case <-h.done:
	}
}

// Viewers returns the number of attached feeds.
func (h *Hub) Viewers() int {
	if h.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case h.viewersCh <- resp:
	case <-h.done:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-h.done:
		return 0
	}
}

// Broadcast hands e to the loop, which records it for replay and delivers it
// to every attached viewer. Once Broadcast returns, later Attach and Viewers
// calls observe e.
func (h *Hub) Broadcast(e Event) {
	if h.closed.Load() {
		return
	}
	select {
	case h.broadcastCh <- e:
	case <-h.done:
	}
}

// ServeHTTP streams viewer events until the client goes away or the hub
// closes. Mounted at GET /api/events.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	f := h.Attach()
	defer h.Detach(f)

	for {
		select {
		case <-r.Context().Done():
			return
		case raw, ok := <-f.C:
			if !ok {
				return
			}
			_, _ = w.Write(raw)
			flusher.Flush()
		}
	}
}
