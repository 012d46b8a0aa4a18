package ingestion

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/qntx-core/ats/types"
	"github.com/teranos/qntx-core/errors"
	"github.com/teranos/qntx-core/logger"
	"github.com/teranos/qntx-core/sync"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 500 * time.Millisecond

// Feed mirrors an NDJSON attestation file into a sync tree. Each pass diffs
// the file's content hashes against the previous pass and applies only the
// additions and removals through the observer.
//
// A Feed is driven by a single goroutine: call Sync directly, or Run.
type Feed struct {
	path     string
	observer *sync.TreeObserver
	onUpdate func(Update)
	logger   *zap.SugaredLogger

	// Debounce delays a pass after the last filesystem event. Zero means DefaultDebounce.
	Debounce time.Duration

	known map[sync.Hash]types.As
}

// NewFeed creates a feed for path. onUpdate may be nil.
func NewFeed(path string, observer *sync.TreeObserver, onUpdate func(Update), log *zap.SugaredLogger) *Feed {
	if log == nil {
		log = logger.Logger
	}
	return &Feed{
		path:     filepath.Clean(path),
		observer: observer,
		onUpdate: onUpdate,
		logger:   log,
		known:    make(map[sync.Hash]types.As),
	}
}

// Sync reads the file once and applies the difference to the tree.
func (f *Feed) Sync() (Update, error) {
	start := time.Now()

	attestations, err := ReadNDJSONFile(f.path)
	if err != nil {
		return Update{}, err
	}

	current := make(map[sync.Hash]types.As, len(attestations))
	for i := range attestations {
		current[sync.ContentHash(&attestations[i])] = attestations[i]
	}

	stats := Stats{ReadCount: len(attestations)}
	for h, as := range f.known {
		if _, ok := current[h]; !ok {
			f.observer.OnAttestationDeleted(&as)
			stats.Removed++
		}
	}
	for h, as := range current {
		if _, ok := f.known[h]; !ok {
			f.observer.OnAttestationCreated(&as)
			stats.Added++
		}
	}
	f.known = current
	stats.DurationMs = time.Since(start).Milliseconds()

	tree := f.observer.Tree()
	update := Update{Root: tree.Root(), Size: tree.Size(), Stats: stats}

	f.logger.Infow("ingested attestations",
		logger.FieldFile, f.path,
		logger.FieldCount, stats.ReadCount,
		"added", stats.Added,
		"removed", stats.Removed,
		logger.FieldRoot, sync.HexHash(update.Root),
		logger.FieldDurationMS, stats.DurationMs)

	if f.onUpdate != nil {
		f.onUpdate(update)
	}
	return update, nil
}

// Run syncs once, then re-syncs after every change to the file until ctx is
// done. The parent directory is watched so that editors replacing the file
// by rename are followed. A pass that fails to parse is logged and skipped;
// the tree keeps the last good state.
func (f *Feed) Run(ctx context.Context) error {
	if _, err := f.Sync(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create fsnotify watcher")
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		return errors.Wrapf(err, "failed to watch %s", filepath.Dir(f.path))
	}

	debounce := f.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != f.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			f.logger.Debugw("attestation file changed",
				logger.FieldFile, event.Name,
				"op", event.Op.String())
			pending = time.After(debounce)

		case <-pending:
			pending = nil
			if _, err := f.Sync(); err != nil {
				f.logger.Warnw("attestation file sync failed",
					logger.FieldFile, f.path,
					logger.FieldError, err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.logger.Warnw("attestation watcher error",
				logger.FieldError, err)
		}
	}
}
