package sync

import (
	"bytes"
	"crypto/sha256"
	"io"
	"sort"
	gosync "sync"
)

// Tree is an in-memory Merkle tree over attestation content hashes.
//
// Structure:
//
//	Root
//	└── Group (actor, context pair)
//	    └── Leaf (attestation content hash)
//
// Inserts and removes are O(1) and only mark hashes dirty; group and root
// hashes are recomputed on the next read. Every ordering that feeds a hash is
// an explicit sort, never map iteration order.
type Tree struct {
	mu     gosync.Mutex
	groups map[Hash]*group // keyed by GroupKey hash
	dirty  bool            // root needs recomputation
	root   Hash
}

// group is one (actor, context) bucket in the tree.
type group struct {
	key    GroupKey
	leaves map[Hash]struct{}
	dirty  bool
	hash   Hash
}

// GroupKey identifies one (actor, context) pair.
type GroupKey struct {
	Actor   string `json:"actor"`
	Context string `json:"context"`
}

// DiffResult lists group key hashes, each slice sorted ascending.
type DiffResult struct {
	LocalOnly  []Hash // present here only
	RemoteOnly []Hash // present on the peer only
	Divergent  []Hash // present on both with different group hashes
}

// Empty reports whether the two sides agree on every group.
func (d DiffResult) Empty() bool {
	return len(d.LocalOnly) == 0 && len(d.RemoteOnly) == 0 && len(d.Divergent) == 0
}

// Domain tags keep group key, group and root digests apart.
const (
	tagGroupKey = "gk:"
	tagGroup    = "grp:"
	tagRoot     = "root:"
)

// GroupKeyHash returns the deterministic hash identifying a GroupKey.
func GroupKeyHash(k GroupKey) Hash {
	h := sha256.New()
	h.Write([]byte(tagGroupKey))
	k.writeTo(h)
	var out Hash
	h.Sum(out[:0])
	return out
}

// writeTo writes actor and context separated by a NUL byte.
func (k GroupKey) writeTo(w io.Writer) {
	io.WriteString(w, k.Actor)
	io.WriteString(w, "\x00")
	io.WriteString(w, k.Context)
}

// NewTree creates an empty Merkle tree.
func NewTree() *Tree {
	return &Tree{
		groups: make(map[Hash]*group),
	}
}

// Insert adds a content hash under the given group. Inserting a hash that is
// already present changes nothing.
func (t *Tree) Insert(key GroupKey, contentHash Hash) {
	t.mu.Lock()
	defer t.mu.Unlock()

	gkh := GroupKeyHash(key)
	g, ok := t.groups[gkh]
	if !ok {
		g = &group{
			key:    key,
			leaves: make(map[Hash]struct{}),
		}
		t.groups[gkh] = g
	}

	if _, dup := g.leaves[contentHash]; dup {
		return
	}
	g.leaves[contentHash] = struct{}{}
	g.dirty = true
	t.dirty = true
}

// Remove deletes a content hash from the given group. A group left empty is
// removed from the tree.
func (t *Tree) Remove(key GroupKey, contentHash Hash) {
	t.mu.Lock()
	defer t.mu.Unlock()

	gkh := GroupKeyHash(key)
	g, ok := t.groups[gkh]
	if !ok {
		return
	}
	if _, present := g.leaves[contentHash]; !present {
		return
	}
	delete(g.leaves, contentHash)
	g.dirty = true
	t.dirty = true

	if len(g.leaves) == 0 {
		delete(t.groups, gkh)
	}
}

// Contains reports whether a content hash exists in any group. It scans
// every group.
func (t *Tree) Contains(contentHash Hash) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, g := range t.groups {
		if _, ok := g.leaves[contentHash]; ok {
			return true
		}
	}
	return false
}

// Root returns the current Merkle root hash. An empty tree has a zero hash.
func (t *Tree) Root() Hash {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.dirty {
		t.recompute()
	}
	return t.root
}

// GroupHashes returns group key hash → group hash for all groups.
// Peers exchange these to find divergent groups without transferring full
// attestation lists.
func (t *Tree) GroupHashes() map[Hash]Hash {
	t.mu.Lock()
	defer t.mu.Unlock()

	result := make(map[Hash]Hash, len(t.groups))
	for gkh, g := range t.groups {
		result[gkh] = g.currentHash()
	}
	return result
}

// FindGroupKey maps a group key hash back to its (actor, context) pair.
func (t *Tree) FindGroupKey(gkh Hash) (GroupKey, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	g, ok := t.groups[gkh]
	if !ok {
		return GroupKey{}, false
	}
	return g.key, true
}

// GroupLeaves returns a group's content hashes in ascending order, or nil
// if the group doesn't exist.
func (t *Tree) GroupLeaves(key GroupKey) []Hash {
	t.mu.Lock()
	defer t.mu.Unlock()

	g, ok := t.groups[GroupKeyHash(key)]
	if !ok {
		return nil
	}
	return g.sortedLeaves()
}

// Size returns the total number of content hashes across groups. A hash
// filed under several groups is counted once per group.
func (t *Tree) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, g := range t.groups {
		n += len(g.leaves)
	}
	return n
}

// GroupCount returns the number of (actor, context) groups in the tree.
func (t *Tree) GroupCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.groups)
}

// Diff compares this tree's group hashes against a peer's.
func (t *Tree) Diff(remoteGroups map[Hash]Hash) DiffResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	var d DiffResult
	for gkh, g := range t.groups {
		switch remote, ok := remoteGroups[gkh]; {
		case !ok:
			d.LocalOnly = append(d.LocalOnly, gkh)
		case remote != g.currentHash():
			d.Divergent = append(d.Divergent, gkh)
		}
	}
	for gkh := range remoteGroups {
		if _, ok := t.groups[gkh]; !ok {
			d.RemoteOnly = append(d.RemoteOnly, gkh)
		}
	}

	sortHashes(d.LocalOnly)
	sortHashes(d.RemoteOnly)
	sortHashes(d.Divergent)
	return d
}

// recompute recalculates the root from group hashes taken in ascending
// group key hash order. Caller must hold t.mu.
func (t *Tree) recompute() {
	t.dirty = false
	if len(t.groups) == 0 {
		t.root = Hash{}
		return
	}

	keys := make([]Hash, 0, len(t.groups))
	for gkh := range t.groups {
		keys = append(keys, gkh)
	}
	sortHashes(keys)

	h := sha256.New()
	h.Write([]byte(tagRoot))
	for _, gkh := range keys {
		gh := t.groups[gkh].currentHash()
		h.Write(gh[:])
	}
	h.Sum(t.root[:0])
}

// currentHash returns the group hash, recomputing it first if dirty.
func (g *group) currentHash() Hash {
	if g.dirty {
		g.recomputeHash()
	}
	return g.hash
}

// recomputeHash recalculates the group hash from its sorted leaves.
func (g *group) recomputeHash() {
	g.dirty = false
	if len(g.leaves) == 0 {
		g.hash = Hash{}
		return
	}

	// Same leaves under another (actor, context) must hash differently.
	h := sha256.New()
	h.Write([]byte(tagGroup))
	g.key.writeTo(h)
	h.Write([]byte{0})
	for _, leaf := range g.sortedLeaves() {
		h.Write(leaf[:])
	}
	h.Sum(g.hash[:0])
}

func (g *group) sortedLeaves() []Hash {
	leaves := make([]Hash, 0, len(g.leaves))
	for h := range g.leaves {
		leaves = append(leaves, h)
	}
	sortHashes(leaves)
	return leaves
}

// sortHashes sorts a slice of hashes lexicographically.
func sortHashes(hashes []Hash) {
	sort.Slice(hashes, func(i, j int) bool {
		return bytes.Compare(hashes[i][:], hashes[j][:]) < 0
	})
}
