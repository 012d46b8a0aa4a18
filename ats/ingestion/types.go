// Package ingestion feeds attestations from NDJSON files into the sync tree.
// It sits outside the pure core: it reads files, assigns storage ids and
// watches the filesystem, then hands attestations to a sync.TreeObserver.
package ingestion

import "github.com/teranos/qntx-core/sync"

// Stats captures one pass over an attestation file.
type Stats struct {
	ReadCount  int   `json:"read_count"` // attestations decoded, duplicates included
	Added      int   `json:"added"`      // content hashes new to the tree
	Removed    int   `json:"removed"`    // content hashes no longer in the file
	DurationMs int64 `json:"duration_ms"`
}

// Update is reported after each pass that was applied to the tree.
type Update struct {
	Root  sync.Hash `json:"-"`
	Size  int       `json:"size"`
	Stats Stats     `json:"stats"`
}
