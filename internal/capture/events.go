package capture

import (
	"sync"
	"time"
)

// Phase names one state of a capture in flight. The orchestrator publishes
// one event per transition.
type Phase string

const (
	PhaseBrowserStarting Phase = "browser_starting"
	PhaseNavigating      Phase = "navigating"
	PhaseDelaying        Phase = "delaying"
	PhaseMeasuring       Phase = "measuring"
	PhaseResizing        Phase = "resizing"
	PhaseCapturing       Phase = "capturing"
	PhasePersisting      Phase = "persisting"
	PhaseDone            Phase = "done"
	PhaseFailed          Phase = "failed"
)

// Event is one capture state transition.
type Event struct {
	CaptureID string    `json:"capture_id"`
	URL       string    `json:"url"`
	Phase     Phase     `json:"phase"`
	Detail    string    `json:"detail,omitempty"`
	Time      time.Time `json:"time"`
}

// Bus fans capture events out to subscribers. Publish never blocks: a
// subscriber whose buffer is full misses the event. Slow websocket clients
// must not stall a capture.
type Bus struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a listener with the given buffer size and returns the
// event channel plus an unsubscribe func. Unsubscribing closes the channel.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, unsubscribe
}

// Publish delivers ev to every subscriber that has buffer room.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribers reports the current listener count.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
