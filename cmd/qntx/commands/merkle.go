package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teranos/qntx-core/ats/bridge"
	"github.com/teranos/qntx-core/ats/ingestion"
	"github.com/teranos/qntx-core/display"
	"github.com/teranos/qntx-core/logger"
	"github.com/teranos/qntx-core/sym"
	"github.com/teranos/qntx-core/sync"
)

func newMerkleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merkle",
		Short: sym.Sync + " Merkle roots, diffs and live feeds",
		Long: sym.Sync + ` merkle - Merkle trees over NDJSON attestation files

Each file is read one attestation per line and inserted into a tree keyed by
(actor, context). Two files with the same attestations have the same root,
whatever their order.

Examples:
  qntx merkle root feed.ndjson
  qntx merkle diff local.ndjson peer.ndjson
  qntx merkle watch feed.ndjson`,
	}

	cmd.AddCommand(newMerkleRootCmd())
	cmd.AddCommand(newMerkleDiffCmd())
	cmd.AddCommand(newMerkleWatchCmd())
	return cmd
}

// loadTree ingests an NDJSON file into a fresh tree behind a bridge engine
func loadTree(path string, log *zap.SugaredLogger) (*bridge.TreeClient, error) {
	tree := sync.NewTree()
	feed := ingestion.NewFeed(path, sync.NewTreeObserver(tree), nil, log.Named("ingestion"))
	if _, err := feed.Sync(); err != nil {
		return nil, err
	}
	return bridge.NewTreeClient(bridge.NewEngineWithTree(tree, log.Named("bridge"))), nil
}

func newMerkleRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "root FILE",
		Short: "Print the merkle root of an attestation file",
		Args:  cobra.ExactArgs(1),
		RunE:  runMerkleRoot,
	}
}

func runMerkleRoot(cmd *cobra.Command, args []string) error {
	client, err := loadTree(args[0], appFrom(cmd).log)
	if err != nil {
		return err
	}

	root, err := client.Root()
	if err != nil {
		return err
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), root)
	}
	return display.KeyValues(cmd.OutOrStdout(), [][2]string{
		{"Root", root.Root},
		{"Attestations", strconv.Itoa(root.Size)},
		{"Groups", strconv.Itoa(root.Groups)},
	})
}

func newMerkleDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff LOCAL REMOTE",
		Short: "Compare two attestation files group by group",
		Long: `Compare two attestation files group by group.

REMOTE plays the peer: its group hashes are what a peer would send. Groups are
reported as local-only, remote-only or divergent, with their (actor, context).
--peer-version checks protocol compatibility first, as a sync session would.`,
		Args: cobra.ExactArgs(2),
		RunE: runMerkleDiff,
	}
	cmd.Flags().String("peer-version", sync.ProtocolVersion, "Protocol version the peer advertises")
	return cmd
}

// diffRow is one group in a diff report
type diffRow struct {
	Category     string `json:"category"`
	GroupKeyHash string `json:"group_key_hash"`
	Actor        string `json:"actor"`
	Context      string `json:"context"`
}

func runMerkleDiff(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)

	peerVersion, _ := cmd.Flags().GetString("peer-version")
	if err := sync.CheckPeerVersion(a.cfg.Sync.ProtocolVersion, peerVersion); err != nil {
		return err
	}

	local, err := loadTree(args[0], a.log)
	if err != nil {
		return err
	}
	remote, err := loadTree(args[1], a.log)
	if err != nil {
		return err
	}

	remoteGroups, err := remote.GroupHashes()
	if err != nil {
		return err
	}
	diff, err := local.Diff(remoteGroups)
	if err != nil {
		return err
	}

	var rows []diffRow
	resolve := func(category string, client *bridge.TreeClient, hashes []string) error {
		for _, gkh := range hashes {
			actor, ctxName, err := client.FindGroupKey(gkh)
			if err != nil {
				return err
			}
			rows = append(rows, diffRow{Category: category, GroupKeyHash: gkh, Actor: actor, Context: ctxName})
		}
		return nil
	}
	if err := resolve("local_only", local, diff.LocalOnly); err != nil {
		return err
	}
	if err := resolve("remote_only", remote, diff.RemoteOnly); err != nil {
		return err
	}
	if err := resolve("divergent", local, diff.Divergent); err != nil {
		return err
	}

	a.log.Infow("Diffed attestation files",
		logger.FieldPeer, args[1],
		"local_only", len(diff.LocalOnly),
		"remote_only", len(diff.RemoteOnly),
		"divergent", len(diff.Divergent))

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), map[string]interface{}{
			"in_sync": len(rows) == 0,
			"groups":  rows,
		})
	}

	w := cmd.OutOrStdout()
	if len(rows) == 0 {
		display.Success(w, "In sync")
		return nil
	}
	fmt.Fprintf(w, "%s %d local-only, %d remote-only, %d divergent\n\n",
		sym.Sync, len(diff.LocalOnly), len(diff.RemoteOnly), len(diff.Divergent))

	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		table = append(table, []string{r.Category, r.GroupKeyHash[:12], r.Actor, r.Context})
	}
	return display.Table(w, []string{"CATEGORY", "GROUP", "ACTOR", "CONTEXT"}, table)
}

func newMerkleWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Follow an attestation file and print the root after every change",
		Long: `Follow an attestation file and print the root after every change.

Runs until interrupted. A write that leaves the file unparseable is logged and
skipped; the tree keeps its last good state.`,
		Args: cobra.ExactArgs(1),
		RunE: runMerkleWatch,
	}
	cmd.Flags().Duration("debounce", ingestion.DefaultDebounce, "Quiet period after a change before re-reading")
	return cmd
}

func runMerkleWatch(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)
	w := cmd.OutOrStdout()
	asJSON := display.ShouldOutputJSON(cmd)

	onUpdate := func(u ingestion.Update) {
		root := sync.HexHash(u.Root)
		if asJSON {
			_ = display.OutputJSON(w, map[string]interface{}{"root": root, "size": u.Size, "stats": u.Stats})
			return
		}
		fmt.Fprintf(w, "%s %s  size %d  +%d -%d\n", sym.Change, root, u.Size, u.Stats.Added, u.Stats.Removed)
	}

	tree := sync.NewTree()
	feed := ingestion.NewFeed(args[0], sync.NewTreeObserver(tree), onUpdate, a.log.Named("ingestion"))
	feed.Debounce, _ = cmd.Flags().GetDuration("debounce")

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return feed.Run(ctx)
}
