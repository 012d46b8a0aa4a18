package bridge

import (
	"encoding/json"

	"github.com/teranos/qntx-core/errors"
)

// TreeClient is a typed Go view of the engine's sync_merkle_* entry points.
// Each method serializes its arguments as JSON, dispatches through
// Engine.Call and decodes the JSON result, exactly as an out-of-process
// host would.
type TreeClient struct {
	engine *Engine
}

// NewTreeClient wraps an engine.
func NewTreeClient(engine *Engine) *TreeClient {
	return &TreeClient{engine: engine}
}

// RootInfo is the decoded sync_merkle_root result.
type RootInfo struct {
	Root   string `json:"root"`
	Size   int    `json:"size"`
	Groups int    `json:"groups"`
}

// Diff is the decoded sync_merkle_diff result, hashes in hex.
type Diff struct {
	LocalOnly  []string `json:"local_only"`
	RemoteOnly []string `json:"remote_only"`
	Divergent  []string `json:"divergent"`
}

// callJSON marshals input (nil sends ""), calls fn and decodes the result
// into T, surfacing an {"error": ...} reply as a Go error.
func callJSON[T any](e *Engine, fn string, input interface{}) (T, error) {
	var zero T

	payload := ""
	if input != nil {
		raw, err := json.Marshal(input)
		if err != nil {
			return zero, errors.Wrapf(err, "marshal %s input", fn)
		}
		payload = string(raw)
	}

	raw, err := e.Call(fn, payload)
	if err != nil {
		return zero, errors.Wrap(err, fn)
	}

	var reply struct {
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		return zero, errors.Wrapf(err, "unmarshal %s: %s", fn, raw)
	}
	if reply.Error != "" {
		return zero, errors.Newf("%s: %s", fn, reply.Error)
	}

	var result T
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return zero, errors.Wrapf(err, "unmarshal %s: %s", fn, raw)
	}
	return result, nil
}

// Root returns the hex root with the tree's size and group count.
func (c *TreeClient) Root() (RootInfo, error) {
	return callJSON[RootInfo](c.engine, FnMerkleRoot, nil)
}

// GroupHashes returns group-key hash → group hash, both hex.
func (c *TreeClient) GroupHashes() (map[string]string, error) {
	result, err := callJSON[merkleGroupsOutput](c.engine, FnMerkleGroups, nil)
	return result.Groups, err
}

// Diff compares the tree against a peer's group hashes.
func (c *TreeClient) Diff(remoteGroups map[string]string) (Diff, error) {
	if remoteGroups == nil {
		remoteGroups = map[string]string{}
	}
	return callJSON[Diff](c.engine, FnMerkleDiff, merkleDiffInput{Remote: remoteGroups})
}

// Contains reports whether any group holds the content hash.
func (c *TreeClient) Contains(contentHashHex string) (bool, error) {
	result, err := callJSON[merkleContainsOutput](c.engine, FnMerkleContains, merkleContainsInput{ContentHash: contentHashHex})
	return result.Exists, err
}

// FindGroupKey resolves a group-key hash to its (actor, context) pair.
func (c *TreeClient) FindGroupKey(gkhHex string) (actor, context string, err error) {
	result, err := callJSON[merkleEntryInput](c.engine, FnMerkleFindGroup, merkleFindInput{GroupKeyHash: gkhHex})
	return result.Actor, result.Context, err
}

// Insert adds a content hash under (actor, context).
func (c *TreeClient) Insert(actor, context, contentHashHex string) error {
	_, err := callJSON[empty](c.engine, FnMerkleInsert, merkleEntryInput{Actor: actor, Context: context, ContentHash: contentHashHex})
	return err
}

// Remove drops a content hash from (actor, context).
func (c *TreeClient) Remove(actor, context, contentHashHex string) error {
	_, err := callJSON[empty](c.engine, FnMerkleRemove, merkleEntryInput{Actor: actor, Context: context, ContentHash: contentHashHex})
	return err
}

// ContentHash hashes an attestation given as JSON.
func (c *TreeClient) ContentHash(attestationJSON string) (string, error) {
	raw, err := c.engine.Call(FnSyncContentHash, attestationJSON)
	if err != nil {
		return "", errors.Wrap(err, FnSyncContentHash)
	}
	var result struct {
		Hash  string `json:"hash"`
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return "", errors.Wrapf(err, "unmarshal %s: %s", FnSyncContentHash, raw)
	}
	if result.Error != "" {
		return "", errors.Newf("%s: %s", FnSyncContentHash, result.Error)
	}
	return result.Hash, nil
}
