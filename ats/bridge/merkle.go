package bridge

import (
	"github.com/teranos/qntx-core/errors"
	"github.com/teranos/qntx-core/sync"
)

type merkleEntryInput struct {
	Actor       string `json:"actor"`
	Context     string `json:"context"`
	ContentHash string `json:"content_hash"`
}

type merkleContainsInput struct {
	ContentHash string `json:"content_hash"`
}

type merkleDiffInput struct {
	Remote map[string]string `json:"remote"`
}

type merkleFindInput struct {
	GroupKeyHash string `json:"group_key_hash"`
}

type merkleRootOutput struct {
	Root   string `json:"root"`
	Size   int    `json:"size"`
	Groups int    `json:"groups"`
}

type merkleGroupsOutput struct {
	Groups map[string]string `json:"groups"`
}

type merkleDiffOutput struct {
	LocalOnly  []string `json:"local_only"`
	RemoteOnly []string `json:"remote_only"`
	Divergent  []string `json:"divergent"`
}

type merkleContainsOutput struct {
	Exists bool `json:"exists"`
}

type empty struct{}

func (e *Engine) merkleInsert(input string) string {
	return respond("invalid insert input", func() (interface{}, error) {
		key, h, err := decodeEntry(input)
		if err != nil {
			return nil, err
		}
		e.tree.Insert(key, h)
		return empty{}, nil
	})
}

func (e *Engine) merkleRemove(input string) string {
	return respond("invalid remove input", func() (interface{}, error) {
		key, h, err := decodeEntry(input)
		if err != nil {
			return nil, err
		}
		e.tree.Remove(key, h)
		return empty{}, nil
	})
}

func (e *Engine) merkleContains(input string) string {
	return respond("invalid contains input", func() (interface{}, error) {
		var in merkleContainsInput
		if err := decode(schemaMerkleContains, input, &in); err != nil {
			return nil, err
		}
		h, err := sync.ParseHash(in.ContentHash)
		if err != nil {
			return nil, err
		}
		return merkleContainsOutput{Exists: e.tree.Contains(h)}, nil
	})
}

// merkleRoot ignores its input.
func (e *Engine) merkleRoot(string) string {
	return respond("root", func() (interface{}, error) {
		return merkleRootOutput{
			Root:   sync.HexHash(e.tree.Root()),
			Size:   e.tree.Size(),
			Groups: e.tree.GroupCount(),
		}, nil
	})
}

// merkleGroupHashes ignores its input.
func (e *Engine) merkleGroupHashes(string) string {
	return respond("group hashes", func() (interface{}, error) {
		return merkleGroupsOutput{Groups: sync.EncodeGroupHashes(e.tree.GroupHashes())}, nil
	})
}

func (e *Engine) merkleDiff(input string) string {
	return respond("invalid diff input", func() (interface{}, error) {
		var in merkleDiffInput
		if err := decode(schemaMerkleDiff, input, &in); err != nil {
			return nil, err
		}
		remote, err := sync.DecodeGroupHashes(in.Remote)
		if err != nil {
			return nil, err
		}

		diff := e.tree.Diff(remote)
		return merkleDiffOutput{
			LocalOnly:  hexAll(diff.LocalOnly),
			RemoteOnly: hexAll(diff.RemoteOnly),
			Divergent:  hexAll(diff.Divergent),
		}, nil
	})
}

func (e *Engine) merkleFindGroupKey(input string) string {
	return respond("invalid find input", func() (interface{}, error) {
		var in merkleFindInput
		if err := decode(schemaMerkleFind, input, &in); err != nil {
			return nil, err
		}
		gkh, err := sync.ParseHash(in.GroupKeyHash)
		if err != nil {
			return nil, err
		}

		key, ok := e.tree.FindGroupKey(gkh)
		if !ok {
			return nil, errors.Mark(errors.Newf("group key %s not found", in.GroupKeyHash), errors.ErrNotFound)
		}
		return key, nil
	})
}

func decodeEntry(input string) (sync.GroupKey, sync.Hash, error) {
	var in merkleEntryInput
	if err := decode(schemaMerkleEntry, input, &in); err != nil {
		return sync.GroupKey{}, sync.Hash{}, err
	}
	h, err := sync.ParseHash(in.ContentHash)
	if err != nil {
		return sync.GroupKey{}, sync.Hash{}, err
	}
	return sync.GroupKey{Actor: in.Actor, Context: in.Context}, h, nil
}

func hexAll(hashes []sync.Hash) []string {
	out := make([]string, len(hashes))
	for i, h := range hashes {
		out[i] = sync.HexHash(h)
	}
	return out
}
