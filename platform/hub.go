package platform

import (
	"sync"

	"hackbot/models"
)

// Subscription receives at most one reaction: the first one that matches.
type Subscription struct {
	C <-chan models.Reaction

	id  uint64
	hub *ReactionHub
}

// Cancel stops the subscription. It is safe to call more than once.
func (s *Subscription) Cancel() {
	s.hub.remove(s.id)
}

type subscriber struct {
	messageID string
	match     func(models.Reaction) bool
	ch        chan models.Reaction
}

// ReactionHub fans reaction-added events out to subscriptions keyed by
// message ID. A subscription is removed as soon as it has been delivered to.
type ReactionHub struct {
	mu   sync.Mutex
	next uint64
	subs map[uint64]*subscriber
}

// NewReactionHub returns an empty hub.
func NewReactionHub() *ReactionHub {
	return &ReactionHub{subs: make(map[uint64]*subscriber)}
}

// Subscribe registers interest in the first reaction on messageID for which
// match returns true. A nil match accepts any reaction.
func (h *ReactionHub) Subscribe(messageID string, match func(models.Reaction) bool) *Subscription {
	ch := make(chan models.Reaction, 1)

	h.mu.Lock()
	h.next++
	id := h.next
	h.subs[id] = &subscriber{messageID: messageID, match: match, ch: ch}
	h.mu.Unlock()

	return &Subscription{C: ch, id: id, hub: h}
}

// Dispatch delivers r to every subscription it matches and reports whether
// anyone took it.
func (h *ReactionHub) Dispatch(r models.Reaction) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := false
	for id, s := range h.subs {
		if s.messageID != r.MessageID {
			continue
		}
		if s.match != nil && !s.match(r) {
			continue
		}
		s.ch <- r // buffered, and the subscriber is dropped right after
		delete(h.subs, id)
		delivered = true
	}
	return delivered
}

// Pending returns the number of live subscriptions.
func (h *ReactionHub) Pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *ReactionHub) remove(id uint64) {
	h.mu.Lock()
	delete(h.subs, id)
	h.mu.Unlock()
}
