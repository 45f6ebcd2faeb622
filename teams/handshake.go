package teams

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"hackbot/models"
	"hackbot/platform"
)

// Outcome is how a confirmation resolved.
type Outcome int

const (
	Affirmed Outcome = iota + 1
	Declined
	TimedOut
)

func (o Outcome) String() string {
	switch o {
	case Affirmed:
		return "affirmed"
	case Declined:
		return "declined"
	case TimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Reaction emoji offered on confirmation prompts.
const (
	AffirmEmoji  = "✅"
	DeclineEmoji = "❌"
)

// DefaultConfirmTimeout is how long a requester has to react.
const DefaultConfirmTimeout = 20 * time.Second

const timeoutNotice = "Timed out waiting for confirmation; please rerun the command if you want to try again."

// Handshake asks one user a yes/no question through two reactions on a
// message that has already been sent.
type Handshake struct {
	Messenger platform.Messenger
	Waiter    platform.ReactionWaiter
	Timeout   time.Duration
}

// NewHandshake returns a Handshake with the default timeout.
func NewHandshake(m platform.Messenger, w platform.ReactionWaiter) *Handshake {
	return &Handshake{Messenger: m, Waiter: w, Timeout: DefaultConfirmTimeout}
}

// Confirm attaches the affirm and decline reactions to msg and waits for
// userID to pick one. Reactions from anyone else are ignored. When the
// window closes first a timeout notice is replied to msg and TimedOut is
// returned. Cancelling ctx abandons the wait and returns ctx's error.
func (h *Handshake) Confirm(ctx context.Context, msg models.Message, userID string) (Outcome, error) {
	// subscribe before reacting so a fast click is never missed
	sub := h.Waiter.Subscribe(msg.ID, func(r models.Reaction) bool {
		return r.UserID == userID && (r.Emoji == AffirmEmoji || r.Emoji == DeclineEmoji)
	})
	defer sub.Cancel()

	if err := h.Messenger.React(ctx, msg, AffirmEmoji); err != nil {
		return 0, errors.Wrap(err, "failed to add confirm reaction")
	}
	if err := h.Messenger.React(ctx, msg, DeclineEmoji); err != nil {
		return 0, errors.Wrap(err, "failed to add cancel reaction")
	}

	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultConfirmTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-sub.C:
		if r.Emoji == AffirmEmoji {
			return Affirmed, nil
		}
		return Declined, nil

	case <-timer.C:
		if _, err := h.Messenger.Reply(ctx, msg, timeoutNotice); err != nil {
			return TimedOut, errors.Wrap(err, "failed to send timeout notice")
		}
		return TimedOut, nil

	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
