package platform

import "hackbot/models"

// Options are the parsed arguments of a slash command. Member options are
// resolved by the adapter before the handler runs; an absent optional
// member is simply missing from the map.
type Options struct {
	Strings map[string]string
	Members map[string]*models.Member
}

// String returns the string option with the given name.
func (o Options) String(name string) string {
	return o.Strings[name]
}

// Member returns the member option with the given name, or nil.
func (o Options) Member(name string) *models.Member {
	return o.Members[name]
}

// MembersInOrder returns the member options for names, keeping nil
// placeholders for absent ones.
func (o Options) MembersInOrder(names ...string) []*models.Member {
	out := make([]*models.Member, 0, len(names))
	for _, n := range names {
		out = append(out, o.Members[n])
	}
	return out
}
