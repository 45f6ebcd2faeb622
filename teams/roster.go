package teams

import "hackbot/models"

// MaxMembers is the largest team the command surface can express.
const MaxMembers = 5

// ValidateRoster filters and checks the proposed members. Nil entries are
// dropped and duplicates collapse onto their first occurrence. On success
// it returns the final member list.
//
// "Already on a team" is approximated by role count: a member holding the
// base role plus one other role is fine, a third role means a team role.
func ValidateRoster(proposed []*models.Member, requester models.User, participantRole string) ([]models.Member, error) {
	if len(proposed) > MaxMembers {
		return nil, reject(TooManyMembers, "a team can have at most %d members.", MaxMembers)
	}

	members := dedupe(proposed)

	for _, m := range members {
		if m.Bot {
			return nil, rejectMember(MemberIsBot, m, "you cannot have a bot on your team.")
		}

		if len(m.Roles) > 2 {
			return nil, rejectMember(MemberAlreadyOnTeam, m, "at least one member is already in a team.")
		}

		if !m.HasRole(participantRole) {
			return nil, rejectMember(MemberNotParticipant, m, "at least one member does not have the `@"+participantRole+"` role.")
		}
	}

	if len(members) == 0 {
		return nil, reject(EmptyTeam, "you cannot have an empty team!")
	}

	if !contains(members, requester.ID) {
		return nil, reject(RequesterNotOnTeam, "you cannot create a team that you yourself are not on. (Ensure that you are one of the %d users mentioned in one of the 'member' fields.)", MaxMembers)
	}

	return members, nil
}

func dedupe(proposed []*models.Member) []models.Member {
	seen := make(map[string]bool, len(proposed))
	out := make([]models.Member, 0, len(proposed))

	for _, m := range proposed {
		if m == nil || seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		out = append(out, *m)
	}

	return out
}

func contains(members []models.Member, userID string) bool {
	for _, m := range members {
		if m.ID == userID {
			return true
		}
	}
	return false
}
