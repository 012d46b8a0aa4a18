package sync

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/teranos/qntx-core/ats/types"
	"github.com/teranos/qntx-core/errors"
)

// ProtocolVersion is the sync message format spoken by this build. Peers are
// compatible when they share a major version.
const ProtocolVersion = "1.0.0"

// Sync protocol message types exchanged between peers.
//
// The reconciliation protocol is symmetric: both sides run the same state
// machine. Carrying the messages is the caller's business.
//
// Protocol flow:
//
//	1. Both send SyncHello (root hash, protocol version)
//	2. If roots match → SyncDone, nothing transferred
//	3. If roots differ → both send SyncGroupHashes (all group hashes)
//	4. Each side runs Plan over the peer's group hashes
//	5. Each side sends SyncNeed (group keys it wants attestations for)
//	6. Each side answers the peer's need with SyncAttestations
//	7. Both send SyncDone

// MsgType identifies the sync protocol message kind.
type MsgType string

const (
	// MsgHello is the initial handshake: "here's my root hash."
	MsgHello MsgType = "sync_hello"

	// MsgGroupHashes carries all (group key hash → group hash) pairs.
	MsgGroupHashes MsgType = "sync_group_hashes"

	// MsgNeed requests attestations for specific group key hashes.
	MsgNeed MsgType = "sync_need"

	// MsgAttestations answers a need: member digests per group and, when
	// the sender has a store, the attestations themselves.
	MsgAttestations MsgType = "sync_attestations"

	// MsgDone signals reconciliation is complete.
	MsgDone MsgType = "sync_done"
)

// Msg is the envelope for all sync protocol messages. Hashes travel as hex.
type Msg struct {
	Type MsgType `json:"type"`

	// Hello
	RootHash string `json:"root_hash,omitempty"`
	Name     string `json:"name,omitempty"` // self-identified node name (from [sync] name)
	Version  string `json:"version,omitempty"`

	// GroupHashes: group key hash → group hash
	Groups map[string]string `json:"groups,omitempty"`

	// Need: group key hashes the sender wants
	Need []string `json:"need,omitempty"`

	// Attestations: per requested group key hash
	Digests      map[string][]string   `json:"digests,omitempty"`
	Attestations map[string][]types.As `json:"attestations,omitempty"`

	// Stats (on Done): how many attestations were exchanged
	Sent     int `json:"sent,omitempty"`
	Received int `json:"received,omitempty"`
}

// CheckPeerVersion returns ErrIncompatiblePeer unless remote shares local's
// major version.
func CheckPeerVersion(local, remote string) error {
	localVer, err := semver.NewVersion(local)
	if err != nil {
		return errors.Wrapf(err, "invalid local protocol version %s", local)
	}

	remoteVer, err := semver.NewVersion(remote)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "invalid peer protocol version %s", remote), errors.ErrIncompatiblePeer)
	}

	constraint, err := semver.NewConstraint(fmt.Sprintf(">= %d.0.0, < %d.0.0", localVer.Major(), localVer.Major()+1))
	if err != nil {
		return errors.Wrap(err, "build protocol constraint")
	}

	if !constraint.Check(remoteVer) {
		return errors.Wrapf(errors.ErrIncompatiblePeer, "peer speaks sync protocol %s, this node speaks %s", remote, local)
	}
	return nil
}

// NewHello builds the opening message for a session.
func NewHello(tree *Tree, name string) Msg {
	return Msg{
		Type:     MsgHello,
		RootHash: HexHash(tree.Root()),
		Name:     name,
		Version:  ProtocolVersion,
	}
}

// NewGroupHashes builds the group hash exchange message.
func NewGroupHashes(tree *Tree) Msg {
	return Msg{
		Type:   MsgGroupHashes,
		Groups: EncodeGroupHashes(tree.GroupHashes()),
	}
}

// EncodeGroupHashes converts group hashes to their hex wire form.
func EncodeGroupHashes(groups map[Hash]Hash) map[string]string {
	out := make(map[string]string, len(groups))
	for gkh, gh := range groups {
		out[HexHash(gkh)] = HexHash(gh)
	}
	return out
}

// DecodeGroupHashes parses hex group hashes received from a peer.
func DecodeGroupHashes(groups map[string]string) (map[Hash]Hash, error) {
	out := make(map[Hash]Hash, len(groups))
	for gkhHex, ghHex := range groups {
		gkh, err := ParseHash(gkhHex)
		if err != nil {
			return nil, errors.Wrap(err, "group key hash")
		}
		gh, err := ParseHash(ghHex)
		if err != nil {
			return nil, errors.Wrapf(err, "group hash for %s", gkhHex)
		}
		out[gkh] = gh
	}
	return out, nil
}
