// Package events carries the resolution subsystem's status stream. Recoverable
// tier failures never surface to callers, so this stream is how they stay
// diagnosable: every fall-through, self-heal and revalidation outcome is
// published here.
package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type Type string

const (
	TypeResolved              Type = "resolved"
	TypeTierFallthrough       Type = "tier_fallthrough"
	TypeCacheSelfHeal         Type = "cache_self_heal"
	TypeRevalidationStarted   Type = "revalidation_started"
	TypeRevalidationSucceeded Type = "revalidation_succeeded"
	TypeRevalidationFailed    Type = "revalidation_failed"
)

type Event struct {
	Type   Type      `json:"type"`
	Source string    `json:"source,omitempty"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}

// Publisher consumes resolution events. Implementations must not block the
// caller for long; the resolver publishes from its serving path.
type Publisher interface {
	Publish(e Event)
}

// Nop discards all events.
type Nop struct{}

func (Nop) Publish(Event) {}

// LogPublisher writes events to the structured log.
type LogPublisher struct{}

func (LogPublisher) Publish(e Event) {
	evt := log.Info()
	switch e.Type {
	case TypeTierFallthrough, TypeCacheSelfHeal, TypeRevalidationFailed:
		evt = log.Warn()
	}
	evt.Str("type", string(e.Type)).
		Str("source", e.Source).
		Str("detail", e.Detail).
		Time("at", e.At).
		Msg("schedule event")
}

// Multi fans an event out to several publishers.
type Multi []Publisher

func (m Multi) Publish(e Event) {
	for _, p := range m {
		p.Publish(e)
	}
}

// Recorder retains events and signals arrivals on a buffered channel.
// Intended for tests and for status endpoints that poll recent activity.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	signal chan Event
}

func NewRecorder() *Recorder {
	return &Recorder{signal: make(chan Event, 64)}
}

var _ Publisher = (*Recorder)(nil)

func (r *Recorder) Publish(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()

	select {
	case r.signal <- e:
	default:
	}
}

// Events returns a snapshot of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Wait blocks until an event of the given type arrives or the timeout lapses.
func (r *Recorder) Wait(t Type, timeout time.Duration) (Event, bool) {
	deadline := time.After(timeout)
	for {
		select {
		case e := <-r.signal:
			if e.Type == t {
				return e, true
			}
		case <-deadline:
			return Event{}, false
		}
	}
}
