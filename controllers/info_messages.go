package controller

// Static messages posted by /post-info, keyed by topic.
var InfoMessages = map[string]string{
	"welcome": "👋 **Welcome to the hackathon!**\n" +
		"React to the pinned message in this channel with ✅ to get the `@participant` role and unlock the rest of the server.",

	"rules": "📜 **Rules**\n" +
		"1. Be kind to everyone.\n" +
		"2. Teams have at most 5 members.\n" +
		"3. All code must be written during the event.\n" +
		"4. Ask a `@mentor` or `@organizer` if you are unsure about anything.",

	"team-help": "🛠️ **Creating a team**\n" +
		"Run `/team` in #team-create with your team name and up to five members, including yourself.\n" +
		"Team names may only use lowercase letters and digits separated by dashes, e.g. `some-team`.\n" +
		"Everyone on the team needs the `@participant` role and must not already be on a team.\n" +
		"You will be asked to confirm with ✅ within 20 seconds.",

	"schedule": "🗓️ **Schedule**\n" +
		"The full schedule is posted in #announcements and updated as the event goes on.",
}

// InfoTopics returns the topics in a stable order.
func InfoTopics() []string {
	return []string{"welcome", "rules", "team-help", "schedule"}
}
