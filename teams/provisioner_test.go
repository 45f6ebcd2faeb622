package teams

import (
	"context"
	"errors"
	"testing"

	"hackbot/models"
	"hackbot/platform/memguild"
)

func TestProvisioner_Provision(t *testing.T) {
	g := newTestGuild()
	mentor := g.AddRole("mentor")
	a := g.AddMember(alice, DefaultParticipantRole)
	b := g.AddMember(bob, DefaultParticipantRole)

	p := NewProvisioner(g, quietLog())

	res, err := p.Provision(context.Background(), "hack-team", []models.Member{*a, *b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantOps := []string{
		memguild.OpCreateCategory,
		memguild.OpCreateRole,
		memguild.OpHideFromEveryone,
		memguild.OpGrantView, // team role
		memguild.OpGrantView, // organizer
		memguild.OpGrantView, // mentor
		memguild.OpCreateTextChannel,
		memguild.OpCreateVoiceChannel,
		memguild.OpAssignRole,
		memguild.OpAssignRole,
		memguild.OpSend,
	}

	calls := g.MutationCalls()
	if len(calls) != len(wantOps) {
		t.Fatalf("got %d mutation calls, want %d: %+v", len(calls), len(wantOps), calls)
	}
	for i, op := range wantOps {
		if calls[i].Op != op {
			t.Fatalf("call %d = %s, want %s", i, calls[i].Op, op)
		}
	}

	if res.Category.Name != "hack-team" || res.Text.Name != "hack-team" || res.Voice.Name != "hack-team" || res.Role.Name != "hack-team" {
		t.Fatalf("resources not named after the team: %+v", res)
	}
	if res.Text.ParentID != res.Category.ID || res.Voice.ParentID != res.Category.ID {
		t.Fatal("channels should live in the team category")
	}
	if res.Role.Color != TeamRoleColor || !res.Role.Mentionable {
		t.Fatalf("role = %+v, want mentionable with team colour", res.Role)
	}

	ow := g.Overwrites(res.Category.ID)
	if len(ow) != 4 || ow[0].Allow || ow[0].RoleID != g.Everyone().ID {
		t.Fatalf("overwrites = %+v, want everyone denied first", ow)
	}
	if ow[1].RoleID != res.Role.ID || ow[3].RoleID != mentor.ID {
		t.Fatalf("overwrites = %+v, want team role then staff", ow)
	}

	for _, u := range []models.User{alice, bob} {
		m, _ := g.Member(context.Background(), u.ID)
		if !m.HasRole("hack-team") {
			t.Fatalf("%s did not receive the team role", u.Username)
		}
	}

	msgs := g.Messages(res.Text.ID)
	want := "Hey <@u-alice> <@u-bob>! Here is your team category & channels."
	if len(msgs) != 1 || msgs[0].Content != want {
		t.Fatalf("welcome = %+v, want %q", msgs, want)
	}
}

func TestProvisioner_PartialFailure(t *testing.T) {
	tests := []struct {
		n        string
		failOp   string
		step     string
		lastOp   string
		hasText  bool
		assigned int
	}{
		{n: "category", failOp: memguild.OpCreateCategory, step: StepCreateCategory, lastOp: memguild.OpCreateCategory},
		{n: "role", failOp: memguild.OpCreateRole, step: StepCreateRole, lastOp: memguild.OpCreateRole},
		{n: "voice", failOp: memguild.OpCreateVoiceChannel, step: StepCreateVoice, lastOp: memguild.OpCreateVoiceChannel, hasText: true},
		{n: "welcome", failOp: memguild.OpSend, step: StepWelcome, lastOp: memguild.OpSend, hasText: true, assigned: 1},
	}

	for _, tt := range tests {
		t.Run(tt.n, func(t *testing.T) {
			g := newTestGuild()
			a := g.AddMember(alice, DefaultParticipantRole)
			boom := errors.New("boom")
			g.FailOn(tt.failOp, boom)

			_, err := NewProvisioner(g, quietLog()).Provision(context.Background(), "hack-team", []models.Member{*a})

			var perr *ProvisionError
			if !errors.As(err, &perr) {
				t.Fatalf("err = %v, want *ProvisionError", err)
			}
			if perr.Step != tt.step {
				t.Fatalf("step = %q, want %q", perr.Step, tt.step)
			}
			if !errors.Is(err, boom) {
				t.Fatal("cause should be preserved")
			}
			if (perr.Partial.Text.ID != "") != tt.hasText {
				t.Fatalf("partial text channel = %+v", perr.Partial.Text)
			}
			if len(perr.Partial.Members) != tt.assigned {
				t.Fatalf("partial members = %d, want %d", len(perr.Partial.Members), tt.assigned)
			}

			calls := g.MutationCalls()
			if calls[len(calls)-1].Op != tt.lastOp {
				t.Fatalf("sequence continued after failure: %+v", calls)
			}
		})
	}
}

func TestProvisionError_Created(t *testing.T) {
	e := &ProvisionError{Step: StepCreateText}
	if e.Created() != "nothing" {
		t.Fatalf("Created() = %q", e.Created())
	}

	e.Partial.Category.ID = "c1"
	e.Partial.Role.ID = "r1"
	if got, want := e.Created(), "category c1, role r1"; got != want {
		t.Fatalf("Created() = %q, want %q", got, want)
	}
}
