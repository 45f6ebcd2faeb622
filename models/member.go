package models

import "strings"

// User is a platform account.
type User struct {
	ID       string `json:"id" validate:"required"`
	Username string `json:"username"`
	Bot      bool   `json:"bot"`
}

// Mention returns the platform mention markup for the user.
func (u User) Mention() string {
	return "<@" + u.ID + ">"
}

// Member is a user as seen inside the guild. Roles always includes the
// base (@everyone) role, so a fresh member holds exactly one role.
type Member struct {
	User
	Roles []Role `json:"roles"`
}

// HasRole reports whether the member holds a role with the exact name.
func (m Member) HasRole(name string) bool {
	for _, r := range m.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// Mentions joins the mentions of all members with single spaces.
func Mentions(members []Member) string {
	parts := make([]string, 0, len(members))
	for _, m := range members {
		parts = append(parts, m.Mention())
	}
	return strings.Join(parts, " ")
}

// Usernames returns the usernames of the given members, in order.
func Usernames(members []Member) []string {
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Username)
	}
	return names
}
