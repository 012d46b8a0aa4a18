// Package bridge exposes qntx-core through string-in, string-out JSON entry
// points, the contract shared with every host that embeds the core.
//
// Every entry point validates its input against an embedded JSON Schema
// before decoding it. Malformed input yields {"error": "..."}; entry points
// never panic.
//
// Stateless functions (classification, expansion, hashing) are plain
// package functions. The sync Merkle tree is the one piece of state, owned
// by an Engine that serializes calls behind a mutex:
//
//	engine := bridge.NewEngine(logger.ComponentLogger("bridge"))
//	out, err := engine.Call("sync_merkle_root", "")
package bridge

import (
	"sort"
	gosync "sync"
	"time"

	"github.com/teranos/qntx-core/errors"
	"github.com/teranos/qntx-core/logger"
	"github.com/teranos/qntx-core/sync"
	"go.uber.org/zap"
)

// Entry point names accepted by Engine.Call.
const (
	FnClassifyClaims  = "classify_claims"
	FnExpandClaims    = "expand_claims_json"
	FnGroupClaims     = "group_claims_json"
	FnDedupSourceIDs  = "dedup_source_ids_json"
	FnContentHash     = "content_hash_json"
	FnSyncContentHash = "sync_content_hash"
	FnMerkleInsert    = "sync_merkle_insert"
	FnMerkleRemove    = "sync_merkle_remove"
	FnMerkleContains  = "sync_merkle_contains"
	FnMerkleRoot      = "sync_merkle_root"
	FnMerkleGroups    = "sync_merkle_group_hashes"
	FnMerkleDiff      = "sync_merkle_diff"
	FnMerkleFindGroup = "sync_merkle_find_group_key"
)

// ErrUnknownFunction is returned by Call for a name no entry point carries.
var ErrUnknownFunction = errors.New("unknown bridge function")

// Engine owns a sync tree and dispatches named calls. A single tree instance
// is reused for all calls; access is serialized by a mutex.
type Engine struct {
	tree      *sync.Tree
	functions map[string]func(string) string
	logger    *zap.SugaredLogger

	mu gosync.Mutex
}

// NewEngine creates an engine over a fresh, empty tree.
func NewEngine(log *zap.SugaredLogger) *Engine {
	return NewEngineWithTree(sync.NewTree(), log)
}

// NewEngineWithTree creates an engine over an existing tree, e.g. one fed by
// an ingestion observer. The caller must not mutate the tree concurrently
// with Call.
func NewEngineWithTree(tree *sync.Tree, log *zap.SugaredLogger) *Engine {
	if log == nil {
		log = logger.Logger
	}
	e := &Engine{tree: tree, logger: log}
	e.functions = map[string]func(string) string{
		FnClassifyClaims:  ClassifyClaims,
		FnExpandClaims:    ExpandClaimsJSON,
		FnGroupClaims:     GroupClaimsJSON,
		FnDedupSourceIDs:  DedupSourceIDsJSON,
		FnContentHash:     ContentHashJSON,
		FnSyncContentHash: ContentHashJSON,
		FnMerkleInsert:    e.merkleInsert,
		FnMerkleRemove:    e.merkleRemove,
		FnMerkleContains:  e.merkleContains,
		FnMerkleRoot:      e.merkleRoot,
		FnMerkleGroups:    e.merkleGroupHashes,
		FnMerkleDiff:      e.merkleDiff,
		FnMerkleFindGroup: e.merkleFindGroupKey,
	}
	return e
}

// Call invokes a named entry point with a JSON input and returns its JSON
// output. Input errors come back inside the output as {"error": ...}; the
// returned error only reports an unknown function name.
func (e *Engine) Call(fnName string, input string) (string, error) {
	fn, ok := e.functions[fnName]
	if !ok {
		return "", errors.Wrapf(ErrUnknownFunction, "%q", fnName)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	out := fn(input)
	e.logger.Debugw("bridge call",
		logger.FieldFunction, fnName,
		logger.FieldSize, len(input),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return out, nil
}

// Functions lists the entry point names Call accepts, sorted.
func (e *Engine) Functions() []string {
	names := make([]string, 0, len(e.functions))
	for name := range e.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tree returns the engine's tree for read access outside Call.
func (e *Engine) Tree() *sync.Tree {
	return e.tree
}
