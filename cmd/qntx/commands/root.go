// Package commands implements the qntx command line.
package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teranos/qntx-core/am"
	"github.com/teranos/qntx-core/display"
	"github.com/teranos/qntx-core/errors"
	"github.com/teranos/qntx-core/logger"
)

// app is the per-invocation state set up before any command runs
type app struct {
	cfg       *am.Config
	log       *zap.SugaredLogger
	requestID string
	started   time.Time
}

type appKey struct{}

// appFrom returns the state prepared by the root's PersistentPreRunE.
// Commands run outside the root (tests calling RunE directly) get defaults.
func appFrom(cmd *cobra.Command) *app {
	if ctx := cmd.Context(); ctx != nil {
		if a, ok := ctx.Value(appKey{}).(*app); ok {
			return a
		}
	}
	return &app{cfg: am.Default(), log: logger.Logger, started: time.Now()}
}

// NewRootCmd builds the qntx command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "qntx",
		Short: "qntx - attestation conflict classification and sync",
		Long: `qntx - attestation conflict classification and sync.

Expands attestations into claims, classifies conflicting claims, and keeps
content-addressed merkle trees for reconciling attestation sets between peers.

Available commands:
  am       - Manage qntx configuration ("I am")
  as       - Append an attestation to an NDJSON feed
  classify - Classify conflicting claim groups
  expand   - Expand attestations into individual claims
  group    - Group claims by subject|predicate|context
  dedup    - Collapse claims to unique source ids
  hash     - Content hash of an attestation
  merkle   - Merkle roots, diffs and live feeds

Examples:
  qntx am show                       # Show current configuration
  qntx classify groups.json          # Classify claim groups from a file
  cat a.json | qntx hash --encoding base58
  qntx merkle diff local.ndjson peer.ndjson
  qntx merkle watch feed.ndjson`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a := appFrom(cmd)
			a.log.Debugw("Command finished",
				logger.FieldCommand, cmd.CommandPath(),
				logger.FieldDurationMS, time.Since(a.started).Milliseconds())
			logger.Cleanup()
		},
	}

	root.PersistentFlags().CountP("verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	root.PersistentFlags().Bool("json", false, "Output raw JSON instead of tables")
	root.PersistentFlags().Bool("log-json", false, "Write logs as JSON (overrides log.json)")

	root.AddCommand(newAmCmd())
	root.AddCommand(newAsCmd())
	root.AddCommand(newClassifyCmd())
	root.AddCommand(newExpandCmd())
	root.AddCommand(newGroupCmd())
	root.AddCommand(newDedupCmd())
	root.AddCommand(newHashCmd())
	root.AddCommand(newMerkleCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// setup loads configuration, initializes the logger and tags the invocation
// with a request id
func setup(cmd *cobra.Command, args []string) error {
	started := time.Now()

	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	verbosity, _ := cmd.Flags().GetCount("verbose")
	jsonLogs := cfg.Log.JSON
	if f := cmd.Flags().Lookup("log-json"); f != nil && f.Changed {
		jsonLogs, _ = cmd.Flags().GetBool("log-json")
	}
	if err := logger.Initialize(jsonLogs, verbosity); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	display.ConfigureColor(false)

	requestID := uuid.NewString()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithRequestID(ctx, requestID)
	ctx = logger.WithComponent(ctx, "cli")

	a := &app{
		cfg:       cfg,
		log:       logger.LoggerFromContext(ctx),
		requestID: requestID,
		started:   started,
	}
	cmd.SetContext(context.WithValue(ctx, appKey{}, a))

	a.log.Debugw("Command started", logger.FieldCommand, cmd.CommandPath(), "args", len(args))
	return nil
}

// Execute runs the qntx command line with ctx
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
