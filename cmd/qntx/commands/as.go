package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/teranos/qntx-core/ats"
	"github.com/teranos/qntx-core/ats/ingestion"
	"github.com/teranos/qntx-core/ats/types"
	"github.com/teranos/qntx-core/display"
	"github.com/teranos/qntx-core/errors"
	"github.com/teranos/qntx-core/logger"
	"github.com/teranos/qntx-core/sym"
	"github.com/teranos/qntx-core/sync"
)

func newAsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "as SUBJECTS... [--is PREDICATES] [--of CONTEXTS] [--by ACTOR] [--on DATE]",
		Short: sym.AS + " Append an attestation to an NDJSON feed",
		Long: sym.AS + ` as - Append an attestation to an NDJSON feed

Writes one attestation line to --file (created if missing). The attestation
gets an ASID; without --by it is attributed to the person at the terminal.
A running "qntx merkle watch" on the same file picks it up.

Examples:
  qntx as ALICE --file feed.ndjson                          # Existence attestation
  qntx as ALICE BOB --is member --of PROJECT --file feed.ndjson
  qntx as ALICE --is lead --of PROJECT --by github --on 2025-01-15 --file feed.ndjson`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAs,
	}

	cmd.Flags().StringSlice("is", nil, "Predicates (default: existence)")
	cmd.Flags().StringSlice("of", nil, "Contexts (default: existence)")
	cmd.Flags().StringSlice("by", nil, "Actors (default: human:user@host)")
	cmd.Flags().String("on", "", "Timestamp as RFC 3339 or YYYY-MM-DD (default: now)")
	cmd.Flags().String("source", "cli", "How the attestation was created")
	cmd.Flags().String("file", "", "NDJSON feed to append to")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runAs(cmd *cobra.Command, args []string) error {
	predicates, _ := cmd.Flags().GetStringSlice("is")
	contexts, _ := cmd.Flags().GetStringSlice("of")
	actors, _ := cmd.Flags().GetStringSlice("by")
	on, _ := cmd.Flags().GetString("on")
	source, _ := cmd.Flags().GetString("source")
	path, _ := cmd.Flags().GetString("file")

	if len(predicates) == 0 {
		predicates = []string{"_"}
	}
	if len(contexts) == 0 {
		contexts = []string{"_"}
	}
	if len(actors) == 0 {
		actors = []string{(&ats.DefaultActorDetector{}).DefaultActor()}
	}

	timestamp, err := parseTimestamp(on, time.Now())
	if err != nil {
		return err
	}

	as := types.As{
		Subjects:   args,
		Predicates: predicates,
		Contexts:   contexts,
		Actors:     actors,
		Timestamp:  timestamp,
		Source:     source,
		CreatedAt:  time.Now().UTC(),
	}
	if err := ingestion.AssignID(&as); err != nil {
		return err
	}
	if err := ingestion.AppendNDJSONFile(path, as); err != nil {
		return err
	}

	hash := sync.ContentHashHex(&as)
	appFrom(cmd).log.Infow("Appended attestation",
		logger.FieldAttestation, as.ID,
		logger.FieldContentHash, hash,
		logger.FieldFile, path)

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), map[string]interface{}{
			"attestation":  as,
			"content_hash": hash,
			"claims":       as.CartesianCount(),
		})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s Created attestation: %s\n", sym.AS, as.ID)
	return display.KeyValues(w, [][2]string{
		{"Subjects", fmt.Sprint(as.Subjects)},
		{"Predicates", fmt.Sprint(as.Predicates)},
		{"Contexts", fmt.Sprint(as.Contexts)},
		{"Actors", fmt.Sprint(as.Actors)},
		{"Timestamp", as.Timestamp.Format(time.RFC3339)},
		{"Claims", fmt.Sprint(as.CartesianCount())},
		{"Content hash", hash},
	})
}

// parseTimestamp accepts RFC 3339 or a bare date; empty means now
func parseTimestamp(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return now.UTC().Truncate(time.Millisecond), nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.Mark(
		errors.Newf("invalid --on %q (want RFC 3339 or YYYY-MM-DD)", value),
		errors.ErrInvalidInput)
}
