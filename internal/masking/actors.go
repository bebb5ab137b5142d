package masking

// MentionedActorsKey is the structured_state key ent's Situation schema
// documents as admin-only (ent/schema/situation.go's field comment).
const MentionedActorsKey = "mentioned_actors"

// RedactStructuredState returns a copy of a situation's structured_state
// with mentioned_actors removed, unless the caller is an admin. spec §4.5.1
// notes this is a policy mitigation, not a structural one — the field is
// still written and queryable by anything holding an *ent.Client directly;
// this function is the boundary internal/api's public situation projection
// must call before serializing structured_state to a response.
func RedactStructuredState(state map[string]interface{}, isAdmin bool) map[string]interface{} {
	if isAdmin || state == nil {
		return state
	}
	if _, ok := state[MentionedActorsKey]; !ok {
		return state
	}
	out := make(map[string]interface{}, len(state))
	for k, v := range state {
		if k == MentionedActorsKey {
			continue
		}
		out[k] = v
	}
	return out
}
