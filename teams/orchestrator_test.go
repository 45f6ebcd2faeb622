package teams

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"hackbot/models"
	"hackbot/platform/memguild"
)

type recordingAuditor struct {
	mu     sync.Mutex
	events []models.AuditEvent
}

func (a *recordingAuditor) Record(e models.AuditEvent) {
	a.mu.Lock()
	a.events = append(a.events, e)
	a.mu.Unlock()
}

func (a *recordingAuditor) kinds() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	var out []string
	for _, e := range a.events {
		out = append(out, e.Kind)
	}
	return out
}

func newOrchestrator(g *testGuild) (*Orchestrator, *recordingAuditor) {
	o := NewOrchestrator(g, NewGate(true), quietLog())
	o.Handshake.Timeout = time.Second
	audit := &recordingAuditor{}
	o.Audit = audit
	return o, audit
}

func TestOrchestrator_CreateTeam_Affirmed(t *testing.T) {
	g := newTestGuild()
	a := g.AddMember(alice, DefaultParticipantRole)
	g.reactWith(alice, AffirmEmoji)

	o, audit := newOrchestrator(g)
	inv, resp := g.invocation(a, g.createChannel)

	req := models.TeamRequest{Name: "hack-team", Requester: alice, Members: []*models.Member{a, nil, nil, nil, nil}}

	res, err := o.CreateTeam(context.Background(), req, inv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != Done || res.Outcome != Affirmed {
		t.Fatalf("result = %+v, want done/affirmed", res)
	}

	calls := g.MutationCalls()
	if len(calls) != 9 {
		t.Fatalf("got %d mutation calls, want 9: %+v", len(calls), calls)
	}

	wantOps := []string{
		memguild.OpCreateCategory,
		memguild.OpCreateRole,
		memguild.OpHideFromEveryone,
		memguild.OpGrantView,
		memguild.OpGrantView,
		memguild.OpCreateTextChannel,
		memguild.OpCreateVoiceChannel,
		memguild.OpAssignRole,
		memguild.OpSend,
	}
	for i, op := range wantOps {
		if calls[i].Op != op {
			t.Fatalf("call %d = %s, want %s", i, calls[i].Op, op)
		}
	}

	for _, c := range []models.Channel{res.Resources.Category, res.Resources.Text, res.Resources.Voice} {
		if c.Name != "hack-team" {
			t.Fatalf("channel %+v not named hack-team", c)
		}
	}
	if res.Resources.Role.Name != "hack-team" {
		t.Fatalf("role = %+v", res.Resources.Role)
	}

	assigns := g.CallsOf(memguild.OpAssignRole)
	if len(assigns) != 1 || assigns[0].Target != alice.ID {
		t.Fatalf("role assignments = %+v, want only alice", assigns)
	}

	responses := resp.Responses()
	if len(responses) != 1 || !strings.Contains(responses[0], "The team `hack-team` will be created") {
		t.Fatalf("responses = %q, want the confirmation prompt", responses)
	}
	if !strings.Contains(responses[0], "<@u-alice>, please react") {
		t.Fatalf("prompt should address the requester: %q", responses[0])
	}

	if got := audit.kinds(); len(got) != 1 || got[0] != models.AuditTeamCreated {
		t.Fatalf("audit = %v", got)
	}
}

func TestOrchestrator_CreateTeam_Declined(t *testing.T) {
	g := newTestGuild()
	a := g.AddMember(alice, DefaultParticipantRole)
	g.reactWith(alice, DeclineEmoji)

	o, _ := newOrchestrator(g)
	inv, resp := g.invocation(a, g.createChannel)

	res, err := o.CreateTeam(context.Background(), models.TeamRequest{Name: "hack-team", Requester: alice, Members: []*models.Member{a}}, inv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != Cancelled || res.Outcome != Declined {
		t.Fatalf("result = %+v, want cancelled/declined", res)
	}

	if calls := g.MutationCalls(); len(calls) != 0 {
		t.Fatalf("no mutations expected, got %+v", calls)
	}
	if n := len(resp.Responses()); n != 1 {
		t.Fatalf("expected only the prompt, got %d responses", n)
	}

	replies := g.CallsOf(memguild.OpReply)
	if len(replies) != 1 || replies[0].Arg != "Team hack-team was not created." {
		t.Fatalf("replies = %+v", replies)
	}
}

func TestOrchestrator_CreateTeam_TimedOut(t *testing.T) {
	g := newTestGuild()
	a := g.AddMember(alice, DefaultParticipantRole)

	o, _ := newOrchestrator(g)
	o.Handshake.Timeout = 20 * time.Millisecond
	inv, _ := g.invocation(a, g.createChannel)

	res, err := o.CreateTeam(context.Background(), models.TeamRequest{Name: "hack-team", Requester: alice, Members: []*models.Member{a}}, inv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != Cancelled || res.Outcome != TimedOut {
		t.Fatalf("result = %+v, want cancelled/timed out", res)
	}
	if calls := g.MutationCalls(); len(calls) != 0 {
		t.Fatalf("no provisioning expected after timeout, got %+v", calls)
	}
}

func TestOrchestrator_CreateTeam_Rejections(t *testing.T) {
	tests := []struct {
		n       string
		setup   func(g *testGuild)
		gate    bool
		channel string
		name    string
		members func(g *testGuild, a *models.Member) []*models.Member
		kind    RejectionKind
	}{
		{n: "disabled", gate: false, name: "hack-team", kind: CreationDisabled},
		{n: "wrong_channel_runs_no_validators", gate: true, channel: "general", name: "NOT VALID", kind: WrongChannel},
		{n: "name_too_long", gate: true, name: strings.Repeat("x", 101), kind: NameTooLong},
		{n: "name_format", gate: true, name: "Team-1", kind: NameInvalidFormat},
		{
			n:     "name_taken",
			gate:  true,
			name:  "alpha-team",
			setup: func(g *testGuild) { g.AddChannel("alpha-team", models.ChannelText) },
			kind:  NameTaken,
		},
		{
			n:     "name_conflicts_with_role",
			gate:  true,
			name:  "judge",
			setup: func(g *testGuild) { g.AddRole("judge") },
			kind:  NameConflict,
		},
		{
			n:    "requester_not_on_team",
			gate: true,
			name: "hack-team",
			members: func(g *testGuild, a *models.Member) []*models.Member {
				return []*models.Member{g.AddMember(bob, DefaultParticipantRole)}
			},
			kind: RequesterNotOnTeam,
		},
		{
			n:    "member_already_on_team",
			gate: true,
			name: "hack-team",
			members: func(g *testGuild, a *models.Member) []*models.Member {
				return []*models.Member{a, g.AddMember(bob, DefaultParticipantRole, "other-team")}
			},
			kind: MemberAlreadyOnTeam,
		},
	}

	for _, tt := range tests {
		t.Run(tt.n, func(t *testing.T) {
			g := newTestGuild()
			if tt.setup != nil {
				tt.setup(g)
			}
			a := g.AddMember(alice, DefaultParticipantRole)

			channel := g.createChannel
			if tt.channel != "" {
				channel = g.AddChannel(tt.channel, models.ChannelText)
			}

			members := []*models.Member{a}
			if tt.members != nil {
				members = tt.members(g, a)
			}

			o, audit := newOrchestrator(g)
			o.Gate.Set(tt.gate)
			inv, resp := g.invocation(a, channel)

			res, err := o.CreateTeam(context.Background(), models.TeamRequest{Name: tt.name, Requester: alice, Members: members}, inv)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.State != Rejected || res.Rejection == nil || res.Rejection.Kind != tt.kind {
				t.Fatalf("result = %+v, want rejected with %s", res, tt.kind)
			}

			responses := resp.Responses()
			if len(responses) != 1 || responses[0] != res.Rejection.Message {
				t.Fatalf("responses = %q, want the rejection message", responses)
			}

			if len(g.CallsOf(memguild.OpReact)) != 0 || len(g.MutationCalls()) != 0 {
				t.Fatal("rejected requests must not prompt or provision")
			}

			if got := audit.kinds(); len(got) != 1 || got[0] != models.AuditTeamRejected {
				t.Fatalf("audit = %v", got)
			}
		})
	}
}

func TestOrchestrator_CreateTeam_SecondRunIsTaken(t *testing.T) {
	g := newTestGuild()
	a := g.AddMember(alice, DefaultParticipantRole)
	g.reactWith(alice, AffirmEmoji)

	o, _ := newOrchestrator(g)
	req := models.TeamRequest{Name: "hack-team", Requester: alice, Members: []*models.Member{a}}

	inv, _ := g.invocation(a, g.createChannel)
	if res, err := o.CreateTeam(context.Background(), req, inv); err != nil || res.State != Done {
		t.Fatalf("first run: %+v, %v", res, err)
	}
	first := len(g.MutationCalls())

	inv, _ = g.invocation(a, g.createChannel)
	res, err := o.CreateTeam(context.Background(), req, inv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Rejection == nil || res.Rejection.Kind != NameTaken {
		t.Fatalf("second run = %+v, want NameTaken", res)
	}
	if len(g.MutationCalls()) != first {
		t.Fatal("second run must not provision")
	}
}

func TestOrchestrator_CreateTeam_ReservedName(t *testing.T) {
	g := newTestGuild()
	a := g.AddMember(alice, DefaultParticipantRole)

	o, _ := newOrchestrator(g)
	release, err := o.Reserver.Reserve(context.Background(), "hack-team")
	if err != nil {
		t.Fatalf("failed to reserve: %v", err)
	}
	defer release()

	inv, _ := g.invocation(a, g.createChannel)
	res, err := o.CreateTeam(context.Background(), models.TeamRequest{Name: "hack-team", Requester: alice, Members: []*models.Member{a}}, inv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Rejection == nil || res.Rejection.Kind != NameTaken {
		t.Fatalf("result = %+v, want NameTaken", res)
	}
}

func TestOrchestrator_CreateTeam_ReleasesReservation(t *testing.T) {
	g := newTestGuild()
	a := g.AddMember(alice, DefaultParticipantRole)
	g.reactWith(alice, DeclineEmoji)

	o, _ := newOrchestrator(g)
	inv, _ := g.invocation(a, g.createChannel)
	if _, err := o.CreateTeam(context.Background(), models.TeamRequest{Name: "hack-team", Requester: alice, Members: []*models.Member{a}}, inv); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	release, err := o.Reserver.Reserve(context.Background(), "hack-team")
	if err != nil {
		t.Fatalf("name still reserved after the invocation ended: %v", err)
	}
	release()
}

func TestOrchestrator_CreateTeam_NameTakenDuringConfirmation(t *testing.T) {
	g := newTestGuild()
	a := g.AddMember(alice, DefaultParticipantRole)

	g.OnReact = func(msg models.Message, emoji string) {
		if emoji != DeclineEmoji {
			return
		}
		// an administrator creates the channel while the requester decides
		g.AddChannel("hack-team", models.ChannelText)
		g.Dispatch(models.Reaction{MessageID: msg.ID, UserID: alice.ID, Emoji: AffirmEmoji})
	}

	o, _ := newOrchestrator(g)
	inv, resp := g.invocation(a, g.createChannel)

	res, err := o.CreateTeam(context.Background(), models.TeamRequest{Name: "hack-team", Requester: alice, Members: []*models.Member{a}}, inv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != Rejected || res.Rejection.Kind != NameTaken || res.Outcome != Affirmed {
		t.Fatalf("result = %+v, want rejected NameTaken after affirm", res)
	}
	if len(g.MutationCalls()) != 0 {
		t.Fatal("must not provision a taken name")
	}
	if n := len(resp.Responses()); n != 2 {
		t.Fatalf("want prompt and rejection, got %d responses", n)
	}
}

func TestOrchestrator_CreateTeam_ProvisionFailure(t *testing.T) {
	g := newTestGuild()
	a := g.AddMember(alice, DefaultParticipantRole)
	g.reactWith(alice, AffirmEmoji)
	g.FailOn(memguild.OpCreateTextChannel, errors.New("missing permissions"))

	o, audit := newOrchestrator(g)
	inv, _ := g.invocation(a, g.createChannel)

	res, err := o.CreateTeam(context.Background(), models.TeamRequest{Name: "hack-team", Requester: alice, Members: []*models.Member{a}}, inv)
	if err == nil {
		t.Fatal("expected provisioning error")
	}
	if res.State != Provisioning {
		t.Fatalf("state = %s, want %s", res.State, Provisioning)
	}

	var perr *ProvisionError
	if !errors.As(err, &perr) || perr.Step != StepCreateText {
		t.Fatalf("err = %v, want ProvisionError at %q", err, StepCreateText)
	}
	if perr.Partial.Category.ID == "" || perr.Partial.Role.ID == "" {
		t.Fatalf("partial = %+v, want category and role exposed", perr.Partial)
	}

	// nothing rolled back
	ns, _ := g.Namespace(context.Background())
	if !ns.HasCategory("hack-team") || !ns.HasRole("hack-team") {
		t.Fatal("already-created resources should remain")
	}

	if got := audit.kinds(); len(got) != 1 || got[0] != models.AuditTeamFailed {
		t.Fatalf("audit = %v", got)
	}
}

func TestOrchestrator_CreateTeam_SessionEnds(t *testing.T) {
	g := newTestGuild()
	a := g.AddMember(alice, DefaultParticipantRole)

	ctx, cancel := context.WithCancel(context.Background())
	g.OnReact = func(models.Message, string) { cancel() }

	o, _ := newOrchestrator(g)
	inv, _ := g.invocation(a, g.createChannel)

	res, err := o.CreateTeam(ctx, models.TeamRequest{Name: "hack-team", Requester: alice, Members: []*models.Member{a}}, inv)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if res.State != AwaitingConfirmation {
		t.Fatalf("state = %s", res.State)
	}
	if len(g.MutationCalls()) != 0 {
		t.Fatal("no provisioning after cancellation")
	}
}

func TestState_String(t *testing.T) {
	if Done.String() != "done" || State(42).String() != "State(42)" {
		t.Fatalf("unexpected names: %s %s", Done, State(42))
	}
}
