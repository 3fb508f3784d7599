package engine

import "github.com/google/uuid"

// Merge absorbs the source participant into the target: interval lists are
// unioned and re-sorted (never de-duplicated), the source becomes an alias
// record on the target, and absence and presence are recomputed from the
// merged lists. The returned roster no longer contains the source. Merging
// is irreversible within a session; a mistaken merge means restarting from
// raw input.
//
// Alias ordering preserves the merge chain: the source's own record comes
// before any aliases it had already absorbed, so a transitive merge reads
// in the order the identities were folded in.
func Merge(r Roster, targetID, sourceID uuid.UUID, rules Rules) (Roster, error) {
	if targetID == sourceID {
		return Roster{}, &InvalidMergeError{Reason: "cannot merge a participant into itself"}
	}
	ti := r.indexOf(targetID)
	if ti < 0 {
		return Roster{}, &InvalidMergeError{Reason: "target no longer in roster"}
	}
	si := r.indexOf(sourceID)
	if si < 0 {
		return Roster{}, &InvalidMergeError{Reason: "source no longer in roster"}
	}

	out := r.clone()
	target := out.Participants[ti]
	source := out.Participants[si]

	target.Morning = append(target.Morning, source.Morning...)
	target.Afternoon = append(target.Afternoon, source.Afternoon...)
	sortIntervals(target.Morning)
	sortIntervals(target.Afternoon)

	aliases := make([]Alias, 0, len(target.Aliases)+1+len(source.Aliases))
	aliases = append(aliases, target.Aliases...)
	aliases = append(aliases, Alias{
		Name:        source.Name,
		Connections: ConnectionsSummary(source.Morning, source.Afternoon),
	})
	aliases = append(aliases, source.Aliases...)
	target.Aliases = aliases

	target = Classify(target, rules)

	out.Participants[ti] = target
	out.Participants = append(out.Participants[:si], out.Participants[si+1:]...)
	return out, nil
}
