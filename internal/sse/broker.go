// Package sse streams content change events to browsers over
// Server-Sent Events.
package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/telemetry"
)

// Event types.
const (
	TypePostCreated  = "post.created"
	TypePostUpdated  = "post.updated"
	TypePostDeleted  = "post.deleted"
	TypeIndexUpdated = "index.updated"
	typeTelemetry    = "telemetry."
)

// Event is one message broadcast to subscribers.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type changeReq struct {
	kind string
	slug string
}

type subscriber struct {
	ch       chan []byte
	prefixes []string
}

func (s subscriber) wants(typ string) bool {
	if len(s.prefixes) == 0 {
		return true
	}
	for _, p := range s.prefixes {
		if strings.HasPrefix(typ, p) {
			return true
		}
	}
	return false
}

// Options tune a Broker.
type Options struct {
	// IndexThrottle is the minimum gap between index.updated events.
	IndexThrottle time.Duration
	// Heartbeat is the keep-alive comment interval of ServeHTTP.
	Heartbeat time.Duration
	// Buffer is the per-subscriber queue length. Messages to a full
	// queue are dropped for that subscriber.
	Buffer int
}

// Broker fans events out to SSE subscribers.
//
// A single goroutine owns the subscriber set, the event sequence and
// the index throttle timestamp. Public methods talk to it over
// channels.
type Broker struct {
	opts Options

	subscribeCh   chan subscriber
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	changeCh      chan changeReq
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker.
func NewBroker(opts Options) *Broker {
	if opts.IndexThrottle <= 0 {
		opts.IndexThrottle = 2 * time.Second
	}
	if opts.Heartbeat <= 0 {
		opts.Heartbeat = 25 * time.Second
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 64
	}

	b := &Broker{
		opts:          opts,
		subscribeCh:   make(chan subscriber),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		changeCh:      make(chan changeReq, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	subs := make(map[chan []byte]subscriber)
	var seq uint64
	var lastIndex time.Time
	pending := 0

	broadcast := func(e Event) {
		payload, err := json.Marshal(e.Data)
		if err != nil {
			return
		}
		seq++
		raw := []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", seq, e.Type, payload))
		for ch, s := range subs {
			if !s.wants(e.Type) {
				continue
			}
			select {
			case ch <- raw:
			default:
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range subs {
				close(ch)
			}
			return

		case s := <-b.subscribeCh:
			subs[s.ch] = s

		case ch := <-b.unsubscribeCh:
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}

		case e := <-b.publishCh:
			broadcast(e)

		case req := <-b.changeCh:
			typ, ok := changeType(req.kind)
			if !ok {
				continue
			}
			broadcast(Event{Type: typ, Data: map[string]string{"slug": req.slug}})
			pending++

			now := time.Now()
			if now.Sub(lastIndex) >= b.opts.IndexThrottle {
				lastIndex = now
				broadcast(Event{Type: TypeIndexUpdated, Data: map[string]int{"changes": pending}})
				pending = 0
			}

		case resp := <-b.countReqCh:
			resp <- len(subs)
		}
	}
}

func changeType(kind string) (string, bool) {
	switch kind {
	case "created":
		return TypePostCreated, true
	case "updated":
		return TypePostUpdated, true
	case "deleted":
		return TypePostDeleted, true
	}
	return "", false
}

// Close stops the broker and closes every subscriber channel.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a subscriber. With prefixes set, only events
// whose type starts with one of them are delivered.
func (b *Broker) Subscribe(prefixes ...string) chan []byte {
	ch := make(chan []byte, b.opts.Buffer)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.subscribeCh <- subscriber{ch: ch, prefixes: prefixes}:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of subscribers.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish broadcasts an event.
func (b *Broker) Publish(e Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- e:
	case <-b.stopped:
	}
}

// PublishChange broadcasts a post change ("created", "updated" or
// "deleted") followed by a throttled index.updated event.
func (b *Broker) PublishChange(kind, slug string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.changeCh <- changeReq{kind: kind, slug: slug}:
	case <-b.stopped:
	}
}

// Emit forwards a telemetry event to subscribers as telemetry.<name>.
func (b *Broker) Emit(_ context.Context, e telemetry.Event) {
	b.Publish(Event{Type: typeTelemetry + e.Name, Data: e})
}

// ServeHTTP streams events (GET /api/events). The optional types query
// parameter is a comma-separated list of type prefixes.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	var prefixes []string
	for _, p := range strings.Split(r.URL.Query().Get("types"), ",") {
		if p = strings.TrimSpace(p); p != "" {
			prefixes = append(prefixes, p)
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("retry: 5000\n\n"))
	flusher.Flush()

	ch := b.Subscribe(prefixes...)
	defer b.Unsubscribe(ch)

	heartbeat := time.NewTicker(b.opts.Heartbeat)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			_, _ = w.Write([]byte(": keepalive\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
