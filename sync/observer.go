package sync

import (
	"github.com/teranos/qntx-core/ats/types"
)

// TreeObserver keeps a Merkle tree in step with an attestation set. Each
// attestation's content hash is filed under every (actor, context) pair it
// names.
type TreeObserver struct {
	tree *Tree
}

// NewTreeObserver creates an observer backed by the given Merkle tree.
func NewTreeObserver(tree *Tree) *TreeObserver {
	return &TreeObserver{tree: tree}
}

// OnAttestationCreated adds the attestation to every (actor, context) group.
func (o *TreeObserver) OnAttestationCreated(as *types.As) {
	if as == nil {
		return
	}

	ch := ContentHash(as)
	for _, key := range groupKeys(as) {
		o.tree.Insert(key, ch)
	}
}

// OnAttestationDeleted removes the attestation from every (actor, context)
// group it was filed under.
func (o *TreeObserver) OnAttestationDeleted(as *types.As) {
	if as == nil {
		return
	}

	ch := ContentHash(as)
	for _, key := range groupKeys(as) {
		o.tree.Remove(key, ch)
	}
}

// Tree returns the underlying Merkle tree for state inspection and sync.
func (o *TreeObserver) Tree() *Tree {
	return o.tree
}

func groupKeys(as *types.As) []GroupKey {
	keys := make([]GroupKey, 0, len(as.Actors)*len(as.Contexts))
	for _, actor := range as.Actors {
		for _, ctx := range as.Contexts {
			keys = append(keys, GroupKey{Actor: actor, Context: ctx})
		}
	}
	return keys
}
