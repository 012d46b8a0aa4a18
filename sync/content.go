// Package sync provides content-addressed attestation identity and Merkle tree
// state digests for peer-to-peer attestation synchronization.
//
// Content hashing produces a deterministic digest from an attestation's semantic
// fields (subjects, predicates, contexts, actors, timestamp, source). Two nodes
// creating the same claim independently will produce the same content hash,
// enabling deduplication and set reconciliation without sharing ASIDs.
//
// The Merkle tree groups digests by (actor, context) and lets two replicas
// find divergent groups by exchanging one hash per group. Nothing here touches
// the network; Plan turns a peer's group hashes into what to request and offer.
package sync

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/mr-tron/base58"

	"github.com/teranos/qntx-core/ats/types"
	"github.com/teranos/qntx-core/errors"
)

// Hash is a SHA-256 digest used for content hashes, group hashes and roots.
type Hash = [32]byte

// ContentHash computes a deterministic SHA-256 digest from an attestation's
// semantic fields. The hash covers subjects, predicates, contexts, actors,
// timestamp (Unix milliseconds), and source. ID, Attributes and CreatedAt
// are excluded: the ID is storage identity, attributes are mutable metadata,
// and CreatedAt is a local ingestion artifact.
func ContentHash(as *types.As) Hash {
	h := sha256.New()

	// Each field carries its own tag so that values cannot bleed across
	// fields (e.g. subject "a\x00b" vs subjects ["a","b"]).
	h.Write([]byte("s:"))
	h.Write(canonical(as.Subjects))
	h.Write([]byte("\np:"))
	h.Write(canonical(as.Predicates))
	h.Write([]byte("\nc:"))
	h.Write(canonical(as.Contexts))
	h.Write([]byte("\na:"))
	h.Write(canonical(as.Actors))
	h.Write([]byte("\nt:"))
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(as.TimestampMs()))
	h.Write(ts[:])
	h.Write([]byte("\nrc:"))
	h.Write([]byte(as.Source))

	var out Hash
	h.Sum(out[:0])
	return out
}

// ContentHashHex returns the content hash as 64 lowercase hex characters.
func ContentHashHex(as *types.As) string {
	return HexHash(ContentHash(as))
}

// canonical sorts a copy of the slice and joins elements with null bytes.
func canonical(ss []string) []byte {
	sorted := make([]string, len(ss))
	copy(sorted, ss)
	sort.Strings(sorted)
	return []byte(strings.Join(sorted, "\x00"))
}

// HexHash returns the lowercase hex encoding of a Hash.
func HexHash(h Hash) string {
	return hex.EncodeToString(h[:])
}

// Base58Hash returns the compact base58 form of a Hash, used for display.
func Base58Hash(h Hash) string {
	return base58.Encode(h[:])
}

// ParseHash decodes 64 hex characters (either case) into a Hash.
func ParseHash(s string) (Hash, error) {
	var h Hash
	if len(s) != 2*len(h) {
		return h, errors.Wrapf(errors.ErrInvalidInput, "hash must be %d hex characters, got %d", 2*len(h), len(s))
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return Hash{}, errors.Wrapf(errors.ErrInvalidInput, "invalid hex hash %q: %v", s, err)
	}
	return h, nil
}
