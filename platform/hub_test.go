package platform

import (
	"testing"

	"hackbot/models"
)

func TestReactionHub_Dispatch(t *testing.T) {
	h := NewReactionHub()

	fromAlice := func(r models.Reaction) bool { return r.UserID == "alice" }
	sub := h.Subscribe("m1", fromAlice)
	defer sub.Cancel()

	tests := []struct {
		n    string
		r    models.Reaction
		want bool
	}{
		{n: "other_message", r: models.Reaction{MessageID: "m2", UserID: "alice"}},
		{n: "other_user", r: models.Reaction{MessageID: "m1", UserID: "bob"}},
		{n: "match", r: models.Reaction{MessageID: "m1", UserID: "alice", Emoji: "✅"}, want: true},
		{n: "already_delivered", r: models.Reaction{MessageID: "m1", UserID: "alice", Emoji: "❌"}},
	}

	for _, tt := range tests {
		if got := h.Dispatch(tt.r); got != tt.want {
			t.Fatalf("%s: Dispatch() = %t, want %t", tt.n, got, tt.want)
		}
	}

	got := <-sub.C
	if got.Emoji != "✅" {
		t.Fatalf("first match should win, got emoji %q", got.Emoji)
	}

	if n := h.Pending(); n != 0 {
		t.Fatalf("Pending() = %d, want 0", n)
	}
}

func TestReactionHub_Cancel(t *testing.T) {
	h := NewReactionHub()

	sub := h.Subscribe("m1", nil)
	sub.Cancel()
	sub.Cancel()

	if h.Dispatch(models.Reaction{MessageID: "m1"}) {
		t.Fatal("cancelled subscription should not receive reactions")
	}
}

func TestOptions_MembersInOrder(t *testing.T) {
	a := &models.Member{User: models.User{ID: "a"}}
	c := &models.Member{User: models.User{ID: "c"}}

	o := Options{Members: map[string]*models.Member{"member1": a, "member3": c}}

	got := o.MembersInOrder("member1", "member2", "member3")
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0] != a || got[1] != nil || got[2] != c {
		t.Fatalf("unexpected order: %v", got)
	}
}
