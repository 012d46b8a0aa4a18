package sync

import (
	"github.com/teranos/qntx-core/errors"
)

// GroupOffer is a local group the peer lacks or disagrees on, resolved to
// its key and member digests so the caller can fetch the attestations.
type GroupOffer struct {
	GroupKeyHash Hash
	Key          GroupKey
	Digests      []Hash // ascending
}

// ReconcilePlan is what one side should do after seeing the peer's group
// hashes.
type ReconcilePlan struct {
	InSync bool
	Need   []Hash       // group key hashes to request: remote-only and divergent
	Offer  []GroupOffer // local-only and divergent groups, by ascending key hash
}

// Plan diffs the local tree against a peer's hex group hashes.
func Plan(tree *Tree, remoteGroups map[string]string) (*ReconcilePlan, error) {
	remote, err := DecodeGroupHashes(remoteGroups)
	if err != nil {
		return nil, errors.Wrap(err, "decode peer group hashes")
	}

	diff := tree.Diff(remote)
	if diff.Empty() {
		return &ReconcilePlan{InSync: true}, nil
	}

	plan := &ReconcilePlan{
		Need: append(append([]Hash{}, diff.RemoteOnly...), diff.Divergent...),
	}
	sortHashes(plan.Need)

	offered := append(append([]Hash{}, diff.LocalOnly...), diff.Divergent...)
	sortHashes(offered)
	for _, gkh := range offered {
		key, ok := tree.FindGroupKey(gkh)
		if !ok {
			// Removed since the diff was taken
			continue
		}
		plan.Offer = append(plan.Offer, GroupOffer{
			GroupKeyHash: gkh,
			Key:          key,
			Digests:      tree.GroupLeaves(key),
		})
	}

	return plan, nil
}

// NeedMsg builds the request for the plan's needed groups.
func (p *ReconcilePlan) NeedMsg() Msg {
	need := make([]string, len(p.Need))
	for i, gkh := range p.Need {
		need[i] = HexHash(gkh)
	}
	return Msg{Type: MsgNeed, Need: need}
}

// Answer builds the reply to a peer's need: member digests for every
// requested group this tree holds. Unknown groups are skipped.
func Answer(tree *Tree, need []string) (Msg, error) {
	digests := make(map[string][]string, len(need))
	for _, gkhHex := range need {
		gkh, err := ParseHash(gkhHex)
		if err != nil {
			return Msg{}, errors.Wrap(err, "needed group key hash")
		}
		key, ok := tree.FindGroupKey(gkh)
		if !ok {
			continue
		}
		leaves := tree.GroupLeaves(key)
		hexes := make([]string, len(leaves))
		for i, h := range leaves {
			hexes[i] = HexHash(h)
		}
		digests[HexHash(gkh)] = hexes
	}
	return Msg{Type: MsgAttestations, Digests: digests}, nil
}

// Missing returns the digests in an answer that this tree does not hold,
// sorted and deduplicated.
func Missing(tree *Tree, answer Msg) ([]Hash, error) {
	seen := make(map[Hash]struct{})
	for _, hexes := range answer.Digests {
		for _, s := range hexes {
			h, err := ParseHash(s)
			if err != nil {
				return nil, errors.Wrap(err, "offered digest")
			}
			if _, dup := seen[h]; dup || tree.Contains(h) {
				continue
			}
			seen[h] = struct{}{}
		}
	}

	missing := make([]Hash, 0, len(seen))
	for h := range seen {
		missing = append(missing, h)
	}
	sortHashes(missing)
	return missing, nil
}
