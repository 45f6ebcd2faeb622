// Package audit keeps an in-process feed of team lifecycle events. Every
// event is logged and pushed to live subscribers such as the websocket
// stream; nothing is persisted.
package audit

import (
	"sync"

	"hackbot/models"
	"hackbot/utils"
)

const subscriberBuffer = 32

// Feed fans audit events out to subscribers. Slow subscribers lose events
// rather than block the recorder.
type Feed struct {
	mu     sync.Mutex
	next   int
	subs   map[int]chan models.AuditEvent
	recent []models.AuditEvent
	keep   int
}

// NewFeed returns a Feed remembering the last keep events for new
// subscribers.
func NewFeed(keep int) *Feed {
	return &Feed{subs: make(map[int]chan models.AuditEvent), keep: keep}
}

// Record implements teams.Auditor.
func (f *Feed) Record(e models.AuditEvent) {
	utils.LogEvent(e.Kind, map[string]interface{}{
		"team":    e.Team,
		"actor":   e.Actor,
		"members": e.Members,
		"detail":  e.Detail,
	})

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.keep > 0 {
		f.recent = append(f.recent, e)
		if len(f.recent) > f.keep {
			f.recent = f.recent[len(f.recent)-f.keep:]
		}
	}

	for _, ch := range f.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe returns a channel receiving the remembered events followed by
// every new one, and a func that ends the subscription.
func (f *Feed) Subscribe() (<-chan models.AuditEvent, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan models.AuditEvent, subscriberBuffer+len(f.recent))
	for _, e := range f.recent {
		ch <- e
	}

	f.next++
	id := f.next
	f.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
			close(ch)
		})
	}
}

// Recent returns a copy of the remembered events, oldest first.
func (f *Feed) Recent() []models.AuditEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.AuditEvent(nil), f.recent...)
}
