package audit

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"hackbot/models"
)

func init() {
	logrus.SetOutput(io.Discard)
}

func TestFeed(t *testing.T) {
	f := NewFeed(2)

	f.Record(models.AuditEvent{Kind: models.AuditTeamRejected, Team: "a"})
	f.Record(models.AuditEvent{Kind: models.AuditTeamCreated, Team: "b"})
	f.Record(models.AuditEvent{Kind: models.AuditTeamCreated, Team: "c"})

	ch, cancel := f.Subscribe()

	for _, want := range []string{"b", "c"} {
		if e := <-ch; e.Team != want {
			t.Fatalf("replayed team = %q, want %q", e.Team, want)
		}
	}

	f.Record(models.AuditEvent{Kind: models.AuditTeamCancelled, Team: "d"})
	if e := <-ch; e.Team != "d" {
		t.Fatalf("live team = %q, want d", e.Team)
	}

	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after cancel")
	}

	// recording after cancel must not panic on the closed channel
	f.Record(models.AuditEvent{Kind: models.AuditTeamCreated, Team: "e"})

	if got := len(f.Recent()); got != 2 {
		t.Fatalf("Recent() len = %d, want 2", got)
	}
}

func TestFeed_SlowSubscriberDoesNotBlock(t *testing.T) {
	f := NewFeed(0)
	_, cancel := f.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer*3; i++ {
		f.Record(models.AuditEvent{Kind: models.AuditTeamCreated})
	}
}
