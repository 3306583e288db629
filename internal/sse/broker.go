// Package sse implements a per-user Server-Sent Events broker.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event is a single SSE message.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type userEvent struct {
	userID string
	event  Event
}

type appEventReq struct {
	userID string
	kind   string
	appID  string
}

type subscription struct {
	userID string
	ch     chan []byte
}

// Broker manages SSE client connections and fans events out to the clients
// of one user.
//
// A single event loop goroutine owns the client table and the per-user
// throttle timestamps. Public methods talk to it over channels.
type Broker struct {
	notifMin time.Duration

	subscribeCh   chan subscription
	unsubscribeCh chan subscription
	publishCh     chan userEvent
	appEventCh    chan appEventReq
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker. notificationsThrottle bounds how often a user
// is sent notifications.updated.
func NewBroker(notificationsThrottle time.Duration) *Broker {
	if notificationsThrottle <= 0 {
		notificationsThrottle = 2 * time.Second
	}

	b := &Broker{
		notifMin:      notificationsThrottle,
		subscribeCh:   make(chan subscription),
		unsubscribeCh: make(chan subscription),
		publishCh:     make(chan userEvent, 256),
		appEventCh:    make(chan appEventReq, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[string]map[chan []byte]struct{})
	lastNotif := make(map[string]time.Time)

	send := func(userID string, event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		raw := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload))

		for ch := range clients[userID] {
			select {
			case ch <- raw:
			default:
				// Client buffer full; drop rather than block the loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for _, set := range clients {
				for ch := range set {
					close(ch)
				}
			}
			return

		case sub := <-b.subscribeCh:
			set := clients[sub.userID]
			if set == nil {
				set = make(map[chan []byte]struct{})
				clients[sub.userID] = set
			}
			set[sub.ch] = struct{}{}

		case sub := <-b.unsubscribeCh:
			set := clients[sub.userID]
			if _, ok := set[sub.ch]; ok {
				delete(set, sub.ch)
				close(sub.ch)
				if len(set) == 0 {
					delete(clients, sub.userID)
					delete(lastNotif, sub.userID)
				}
			}

		case ue := <-b.publishCh:
			send(ue.userID, ue.event)

		case req := <-b.appEventCh:
			if len(clients[req.userID]) == 0 {
				continue
			}
			send(req.userID, Event{
				Type: "application." + req.kind,
				Data: map[string]string{"applicationId": req.appID},
			})

			now := time.Now()
			if now.Sub(lastNotif[req.userID]) >= b.notifMin {
				lastNotif[req.userID] = now
				send(req.userID, Event{Type: "notifications.updated", Data: map[string]string{}})
			}

		case resp := <-b.countReqCh:
			n := 0
			for _, set := range clients {
				n += len(set)
			}
			resp <- n
		}
	}
}

// Close gracefully stops the broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a client for userID and returns its channel.
func (b *Broker) Subscribe(userID string) chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- subscription{userID: userID, ch: ch}:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(userID string, ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- subscription{userID: userID, ch: ch}:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients across all users.
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

// publishToUser sends an event to every client of userID.
func (b *Broker) publishToUser(userID string, event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- userEvent{userID: userID, event: event}:
	case <-b.stopped:
	}
}

// PublishApplicationEvent publishes application.<kind> to the owner and a
// throttled notifications.updated.
func (b *Broker) PublishApplicationEvent(userID, kind, applicationID string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.appEventCh <- appEventReq{userID: userID, kind: kind, appID: applicationID}:
	case <-b.stopped:
	}
}

// ServeUser streams userID's events until the request context ends.
func (b *Broker) ServeUser(w http.ResponseWriter, r *http.Request, userID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe(userID)
	defer b.Unsubscribe(userID, ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
