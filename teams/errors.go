package teams

import (
	"fmt"
	"strings"

	"hackbot/models"
)

// RejectionKind enumerates why a request was turned down.
type RejectionKind int

const (
	CreationDisabled RejectionKind = iota + 1
	WrongChannel
	NameTooLong
	NameInvalidFormat
	NameTaken
	NameConflict
	TooManyMembers
	MemberIsBot
	MemberAlreadyOnTeam
	MemberNotParticipant
	EmptyTeam
	RequesterNotOnTeam
)

var kindNames = map[RejectionKind]string{
	CreationDisabled:     "CreationDisabled",
	WrongChannel:         "WrongChannel",
	NameTooLong:          "NameTooLong",
	NameInvalidFormat:    "NameInvalidFormat",
	NameTaken:            "NameTaken",
	NameConflict:         "NameConflict",
	TooManyMembers:       "TooManyMembers",
	MemberIsBot:          "MemberIsBot",
	MemberAlreadyOnTeam:  "MemberAlreadyOnTeam",
	MemberNotParticipant: "MemberNotParticipant",
	EmptyTeam:            "EmptyTeam",
	RequesterNotOnTeam:   "RequesterNotOnTeam",
}

func (k RejectionKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("RejectionKind(%d)", int(k))
}

const rejectPrefix = "❌ Your team was not created; "

// Rejection is a user-caused refusal. It is replied to the requester and
// never treated as a failure.
type Rejection struct {
	Kind    RejectionKind
	Message string

	// Member is the offending member for per-member roster checks.
	Member *models.Member
}

func (r *Rejection) Error() string { return r.Message }

func reject(kind RejectionKind, format string, args ...interface{}) *Rejection {
	return &Rejection{Kind: kind, Message: rejectPrefix + fmt.Sprintf(format, args...)}
}

func rejectMember(kind RejectionKind, m models.Member, msg string) *Rejection {
	r := reject(kind, "%s", msg)
	r.Member = &m
	return r
}

// ProvisionError reports a provisioning step that failed. Nothing created
// by earlier steps is rolled back; Partial describes what exists.
type ProvisionError struct {
	Step    string
	Partial models.TeamResources
	Err     error
}

func (e *ProvisionError) Error() string {
	return fmt.Sprintf("provision %s: %v", e.Step, e.Err)
}

func (e *ProvisionError) Unwrap() error { return e.Err }

// Created lists the resources that exist despite the failure.
func (e *ProvisionError) Created() string {
	var parts []string
	if e.Partial.Category.ID != "" {
		parts = append(parts, "category "+e.Partial.Category.ID)
	}
	if e.Partial.Role.ID != "" {
		parts = append(parts, "role "+e.Partial.Role.ID)
	}
	if e.Partial.Text.ID != "" {
		parts = append(parts, "text channel "+e.Partial.Text.ID)
	}
	if e.Partial.Voice.ID != "" {
		parts = append(parts, "voice channel "+e.Partial.Voice.ID)
	}
	if len(e.Partial.Members) > 0 {
		parts = append(parts, fmt.Sprintf("%d role assignments", len(e.Partial.Members)))
	}
	if len(parts) == 0 {
		return "nothing"
	}
	return strings.Join(parts, ", ")
}
