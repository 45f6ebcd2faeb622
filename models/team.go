package models

import "time"

// TeamRequest is one "create team" invocation. It is built by the command
// handler and discarded once the invocation ends.
type TeamRequest struct {
	Name      string    `json:"name" validate:"required"`
	Requester User      `json:"requester" validate:"required"`
	Members   []*Member `json:"members" validate:"max=5"`
}

// TeamResources are the platform objects created for a team.
type TeamResources struct {
	Category Channel  `json:"category"`
	Text     Channel  `json:"text"`
	Voice    Channel  `json:"voice"`
	Role     Role     `json:"role"`
	Members  []Member `json:"members"`
}

// AuditEvent kinds
const (
	AuditTeamCreated   = "team_created"
	AuditTeamRejected  = "team_rejected"
	AuditTeamCancelled = "team_cancelled"
	AuditTeamFailed    = "team_failed"
	AuditRoleGranted   = "role_granted"
	AuditChannelPurged = "channel_purged"
)

// AuditEvent is a single entry of the audit feed.
type AuditEvent struct {
	Kind    string    `json:"kind"`
	Team    string    `json:"team,omitempty"`
	Actor   string    `json:"actor,omitempty"`
	Members []string  `json:"members,omitempty"`
	Detail  string    `json:"detail,omitempty"`
	At      time.Time `json:"at"`
}
