package teams

import (
	"hackbot/models"
	"hackbot/utils"
)

// MaxNameLength is the longest team name accepted, in characters.
const MaxNameLength = 100

// ValidateName checks a requested team name against the guild namespace.
// It returns nil when the name is acceptable and a *Rejection otherwise.
func ValidateName(name string, ns models.Namespace) error {
	if err := utils.ValidateVar("team name", name, "max=100"); err != nil {
		return reject(NameTooLong, "your team name is too long. The maximum team name length is %d characters.", MaxNameLength)
	}

	if err := utils.ValidateVar("team name", name, "teamname"); err != nil {
		return reject(NameInvalidFormat, "your team name is invalid. Team names may only consist of **lowercase letters** and **digits** separated by **dashes**.\nA few examples of valid team names: `some-team`, `hackathon-winners`, `a-b-c-d-e-f`")
	}

	if ns.HasChannel(name) {
		return reject(NameTaken, "there is already a team called `%s`.", name)
	}

	// The channel lookup repeats the check above on purpose; this one
	// guards every namespace a team creates an object in.
	if ns.HasChannel(name) || ns.HasCategory(name) || ns.HasRole(name) {
		return reject(NameConflict, "the name `%s` is not allowed.", name)
	}

	return nil
}
