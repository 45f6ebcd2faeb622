// Package teams implements hackathon team creation: validating a requested
// team name and roster, confirming with the requester through reactions,
// and provisioning the team's category, channels and role.
//
// A creation runs once per command invocation and keeps no state after it
// returns. The guild namespace it validates against is a snapshot; two
// invocations may race for the same name, which the Reserver and the
// re-check right before provisioning narrow but cannot rule out against
// changes made by guild administrators.
package teams
