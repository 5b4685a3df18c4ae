// Package events is the pub/sub collaborator contract. The core only
// publishes; delivery guarantees and ordering belong to the bus, not to
// the callers.
package events

import (
	"context"
	"sync"
	"time"
)

// Type enumerates the lifecycle notifications the core emits.
type Type string

const (
	ExerciseGenerated       Type = "exercise.generated"
	ExerciseDeleted         Type = "exercise.deleted"
	ScoreSaved              Type = "score.saved"
	RepertoireStatusChanged Type = "repertoire.status_changed"
	PracticeSessionRecorded Type = "practice.session_recorded"
)

// Event carries the affected entity and a timestamp.
type Event struct {
	Type      Type      `json:"type"`
	OwnerID   string    `json:"owner_id,omitempty"`
	EntityID  string    `json:"entity_id"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher is what the core depends on: fire-and-forget publication.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Bus is the in-process Publisher: fan-out to buffered subscriber
// channels, dropping events for subscribers that cannot keep up rather
// than blocking the publishing caller.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
	closed bool
}

const subscriberBuffer = 64

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Publish stamps the event time if unset and fans out without
// blocking.
func (b *Bus) Publish(_ context.Context, e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default: // slow subscriber: drop
		}
	}
}

// Subscribe registers a consumer. The returned cancel func removes the
// subscription and closes the channel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, subscriberBuffer)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Close shuts the bus down; further publishes are no-ops.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
