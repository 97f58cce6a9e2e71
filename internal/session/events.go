// Package session runs one scrape session as a state machine over the app's
// three screens: booking list, secondary (creation) page, and detail page.
// Each state's processor drives the UI, feeds captures through the
// extractors and persists results, then returns the next state.
package session

import (
	"sync"
	"time"
)

// State is one scraper state-machine position.
type State string

const (
	StateInitializing     State = "initializing"
	StateNavigatingToList State = "navigating_to_list"
	StateList             State = "list"
	StateSecondary        State = "secondary"
	StateDetail           State = "detail"
	StateError            State = "error"
	StateFinished         State = "finished"
	StateIdle             State = "idle"
)

// Event is one progress update emitted while a session runs.
type Event struct {
	SessionID string    `json:"session_id"`
	State     State     `json:"state"`
	BookingID string    `json:"booking_id,omitempty"`
	OrderRef  string    `json:"order_ref,omitempty"`
	Message   string    `json:"message,omitempty"`
	Scraped   int       `json:"scraped"`
	Errors    int       `json:"errors"`
	At        time.Time `json:"at"`
}

// Broadcaster fans session events out to subscribers. Slow subscribers drop
// events rather than stall the crawl.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new subscriber channel. Call the returned function
// to unsubscribe; the channel is closed then.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 64)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers an event to all subscribers without blocking.
func (b *Broadcaster) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// SubscriberCount reports the number of active subscribers.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
