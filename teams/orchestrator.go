package teams

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"hackbot/models"
	"hackbot/platform"
)

// State is a step of a single team creation.
type State int

const (
	Idle State = iota
	Gated
	NameChecked
	RosterChecked
	AwaitingConfirmation
	Provisioning
	Done
	Rejected
	Cancelled
)

var stateNames = [...]string{
	Idle:                 "idle",
	Gated:                "gated",
	NameChecked:          "name_checked",
	RosterChecked:        "roster_checked",
	AwaitingConfirmation: "awaiting_confirmation",
	Provisioning:         "provisioning",
	Done:                 "done",
	Rejected:             "rejected",
	Cancelled:            "cancelled",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// DefaultCreateChannel is the only channel team creation may run in.
const DefaultCreateChannel = "team-create"

// DefaultParticipantRole is the role every team member must hold.
const DefaultParticipantRole = "participant"

// Auditor records lifecycle events of team creation.
type Auditor interface {
	Record(models.AuditEvent)
}

// Result is the terminal state of one creation.
type Result struct {
	State     State
	Rejection *Rejection
	Outcome   Outcome
	Resources *models.TeamResources
}

// Orchestrator runs the whole creation for one command invocation:
// gate, name, roster, confirmation, provisioning.
type Orchestrator struct {
	Guild           platform.Guild
	Gate            *Gate
	Handshake       *Handshake
	Provisioner     *Provisioner
	Reserver        Reserver
	Audit           Auditor
	Log             *logrus.Entry
	CreateChannel   string
	ParticipantRole string
}

// NewOrchestrator wires an Orchestrator with default collaborators for g.
func NewOrchestrator(g platform.Guild, gate *Gate, log *logrus.Entry) *Orchestrator {
	return &Orchestrator{
		Guild:           g,
		Gate:            gate,
		Handshake:       NewHandshake(g, g),
		Provisioner:     NewProvisioner(g, log),
		Reserver:        NewMemoryReserver(),
		Log:             log,
		CreateChannel:   DefaultCreateChannel,
		ParticipantRole: DefaultParticipantRole,
	}
}

// CreateTeam validates req, asks the requester to confirm through inv and,
// once confirmed, provisions the team. Rejections and cancellations are
// answered to the requester and reported in Result with a nil error. A
// returned error means a platform call failed; provisioning failures are
// *ProvisionError and leave already-created resources in place.
func (o *Orchestrator) CreateTeam(ctx context.Context, req models.TeamRequest, inv *platform.Invocation) (Result, error) {
	log := o.logger().WithFields(logrus.Fields{
		"team":      req.Name,
		"requester": req.Requester.Username,
	})
	log.WithField("members", proposedNames(req.Members)).Info("team called")

	// Idle -> Gated
	if !o.Gate.Open() {
		log.Info("team: ignoring because team creation is disabled")
		return o.rejected(ctx, req, inv, reject(CreationDisabled, "team creation is disabled right now."))
	}
	if inv.ChannelName != o.createChannel() {
		log.Info("team: ignoring because run in wrong channel")
		return o.rejected(ctx, req, inv, reject(WrongChannel, "you cannot run this command here."))
	}

	// Gated -> NameChecked
	ns, err := o.Guild.Namespace(ctx)
	if err != nil {
		return Result{State: Gated}, errors.Wrap(err, "failed to read guild namespace")
	}
	if r, err := asRejection(ValidateName(req.Name, ns)); r != nil || err != nil {
		if err != nil {
			return Result{State: Gated}, err
		}
		return o.rejected(ctx, req, inv, r)
	}

	release, err := o.reserve(ctx, req.Name)
	if err != nil {
		if errors.Is(err, ErrNameReserved) {
			return o.rejected(ctx, req, inv, reject(NameTaken, "there is already a team called `%s`.", req.Name))
		}
		return Result{State: NameChecked}, err
	}
	defer release()

	// NameChecked -> RosterChecked
	members, err := ValidateRoster(req.Members, req.Requester, o.participantRole())
	if r, err := asRejection(err); r != nil || err != nil {
		if err != nil {
			return Result{State: NameChecked}, err
		}
		return o.rejected(ctx, req, inv, r)
	}

	// RosterChecked -> AwaitingConfirmation
	prompt := fmt.Sprintf("The team `%s` will be created, and members %s will be added.\n\n%s, please react to this message with %s to confirm, or %s to cancel.",
		req.Name, models.Mentions(members), req.Requester.Mention(), AffirmEmoji, DeclineEmoji)

	msg, err := inv.Respond(ctx, prompt)
	if err != nil {
		return Result{State: RosterChecked}, errors.Wrap(err, "failed to send confirmation prompt")
	}

	outcome, err := o.Handshake.Confirm(ctx, msg, req.Requester.ID)
	if err != nil {
		return Result{State: AwaitingConfirmation, Outcome: outcome}, err
	}

	switch outcome {
	case TimedOut:
		log.Info("team: confirmation timed out")
		o.record(models.AuditTeamCancelled, req, members, outcome.String())
		return Result{State: Cancelled, Outcome: outcome}, nil

	case Declined:
		log.Info("team: confirmation declined")
		if _, err := o.Guild.Reply(ctx, msg, fmt.Sprintf("Team %s was not created.", req.Name)); err != nil {
			return Result{State: Cancelled, Outcome: outcome}, errors.Wrap(err, "failed to reply to declined confirmation")
		}
		o.record(models.AuditTeamCancelled, req, members, outcome.String())
		return Result{State: Cancelled, Outcome: outcome}, nil
	}

	// The namespace may have moved during the confirmation window.
	ns, err = o.Guild.Namespace(ctx)
	if err != nil {
		return Result{State: AwaitingConfirmation, Outcome: outcome}, errors.Wrap(err, "failed to re-read guild namespace")
	}
	if r, _ := asRejection(ValidateName(req.Name, ns)); r != nil {
		res, err := o.rejected(ctx, req, inv, r)
		res.Outcome = outcome
		return res, err
	}

	// AwaitingConfirmation -> Provisioning -> Done
	resources, err := o.Provisioner.Provision(ctx, req.Name, members)
	if err != nil {
		o.record(models.AuditTeamFailed, req, members, err.Error())
		return Result{State: Provisioning, Outcome: outcome}, errors.Wrapf(err, "failed to create team %q", req.Name)
	}

	o.record(models.AuditTeamCreated, req, members, "")
	return Result{State: Done, Outcome: outcome, Resources: resources}, nil
}

func (o *Orchestrator) rejected(ctx context.Context, req models.TeamRequest, inv *platform.Invocation, r *Rejection) (Result, error) {
	o.logger().WithFields(logrus.Fields{
		"team":   req.Name,
		"reason": r.Kind.String(),
	}).Info("team request rejected")

	o.record(models.AuditTeamRejected, req, nil, r.Kind.String())

	if _, err := inv.Respond(ctx, r.Message); err != nil {
		return Result{State: Rejected, Rejection: r}, errors.Wrap(err, "failed to send rejection")
	}
	return Result{State: Rejected, Rejection: r}, nil
}

func (o *Orchestrator) reserve(ctx context.Context, name string) (func(), error) {
	if o.Reserver == nil {
		return func() {}, nil
	}
	return o.Reserver.Reserve(ctx, name)
}

func (o *Orchestrator) record(kind string, req models.TeamRequest, members []models.Member, detail string) {
	if o.Audit == nil {
		return
	}
	o.Audit.Record(models.AuditEvent{
		Kind:    kind,
		Team:    req.Name,
		Actor:   req.Requester.Username,
		Members: models.Usernames(members),
		Detail:  detail,
		At:      time.Now().UTC(),
	})
}

func (o *Orchestrator) logger() *logrus.Entry {
	if o.Log == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return o.Log
}

func (o *Orchestrator) createChannel() string {
	if o.CreateChannel == "" {
		return DefaultCreateChannel
	}
	return o.CreateChannel
}

func (o *Orchestrator) participantRole() string {
	if o.ParticipantRole == "" {
		return DefaultParticipantRole
	}
	return o.ParticipantRole
}

// asRejection splits err into a user-facing rejection or an internal error.
func asRejection(err error) (*Rejection, error) {
	if err == nil {
		return nil, nil
	}
	var r *Rejection
	if errors.As(err, &r) {
		return r, nil
	}
	return nil, err
}

func proposedNames(members []*models.Member) []string {
	var names []string
	for _, m := range members {
		if m != nil {
			names = append(names, m.Username)
		}
	}
	return names
}
