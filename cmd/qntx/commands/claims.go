package commands

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/teranos/qntx-core/ats/ax/classification"
	"github.com/teranos/qntx-core/ats/bridge"
	"github.com/teranos/qntx-core/ats/types"
	"github.com/teranos/qntx-core/display"
	"github.com/teranos/qntx-core/errors"
	"github.com/teranos/qntx-core/logger"
	"github.com/teranos/qntx-core/sym"
)

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify [FILE]",
		Short: sym.AX + " Classify conflicting claim groups",
		Long: sym.AX + ` classify - Classify conflicting claim groups

Reads {"claim_groups": [...]} from FILE or stdin. Windows, review threshold and
workers default to the [classify] section; now_ms defaults to the current time.
Fields present in the input win.

Examples:
  qntx classify groups.json
  qntx group claims.json --json | qntx classify --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runClassify,
	}
}

func runClassify(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)

	raw, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	input, err := withClassifyDefaults(raw, a.cfg.ClassifierOptions(), time.Now().UnixMilli())
	if err != nil {
		return err
	}

	out := bridge.ClassifyClaims(input)
	var result classification.ClassificationResult
	if err := decodeReply(out, &result); err != nil {
		return err
	}

	a.log.Infow("Classified claim groups",
		logger.FieldGroups, result.TotalAnalyzed,
		"auto_resolved", result.AutoResolved,
		"review_required", result.ReviewRequired)

	if display.ShouldOutputJSON(cmd) {
		return display.OutputRawJSON(cmd.OutOrStdout(), out)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s Analyzed %d groups: %d auto-resolved, %d need review\n\n",
		sym.AX, result.TotalAnalyzed, result.AutoResolved, result.ReviewRequired)
	if len(result.Conflicts) == 0 {
		return nil
	}

	rows := make([][]string, 0, len(result.Conflicts))
	for _, c := range result.Conflicts {
		rows = append(rows, []string{
			strings.Join([]string{c.Subject, c.Predicate, c.Context}, "|"),
			string(c.Type),
			c.Strategy,
			fmt.Sprintf("%.2f (%s)", c.Confidence, classification.Level(c.Confidence)),
			c.TemporalPattern,
			strconv.FormatBool(c.AutoResolved),
			strings.Join(c.SourceIDs, ","),
		})
	}
	return display.Table(w, []string{"KEY", "TYPE", "STRATEGY", "CONFIDENCE", "PATTERN", "AUTO", "SOURCES"}, rows)
}

// withClassifyDefaults fills config, review_threshold, workers and now_ms
// from opts when the input leaves them out. A partial config merges over
// opts.Config.
func withClassifyDefaults(raw string, opts classification.Options, nowMs int64) (string, error) {
	var in map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return "", errors.Mark(errors.Wrap(err, "invalid classify input"), errors.ErrInvalidInput)
	}
	if in == nil {
		return "", errors.Mark(errors.New("invalid classify input: expected an object"), errors.ErrInvalidInput)
	}

	temporal := opts.Config
	if cfg, ok := in["config"]; ok {
		if err := json.Unmarshal(cfg, &temporal); err != nil {
			return "", errors.Mark(errors.Wrap(err, "invalid classify input: config"), errors.ErrInvalidInput)
		}
	}

	set := func(key string, v interface{}) {
		data, _ := json.Marshal(v)
		in[key] = data
	}
	set("config", temporal)
	if _, ok := in["review_threshold"]; !ok && opts.ReviewThreshold != nil {
		set("review_threshold", *opts.ReviewThreshold)
	}
	if _, ok := in["workers"]; !ok && opts.Workers != 0 {
		set("workers", opts.Workers)
	}
	if _, ok := in["now_ms"]; !ok {
		set("now_ms", nowMs)
	}

	data, err := json.Marshal(in)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode classify input")
	}
	return string(data), nil
}

func newExpandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expand [FILE]",
		Short: sym.AX + " Expand attestations into individual claims",
		Long: sym.AX + ` expand - Expand attestations into individual claims

Reads {"attestations": [...]} (timestamps as timestamp_ms) from FILE or stdin
and prints one claim per subject × predicate × context × actor.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runExpand,
	}
}

func runExpand(cmd *cobra.Command, args []string) error {
	raw, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	out := bridge.ExpandClaimsJSON(raw)
	var result struct {
		Claims []types.IndividualClaim `json:"claims"`
		Total  int                     `json:"total"`
	}
	if err := decodeReply(out, &result); err != nil {
		return err
	}
	appFrom(cmd).log.Infow("Expanded attestations", logger.FieldCount, result.Total)

	if display.ShouldOutputJSON(cmd) {
		return display.OutputRawJSON(cmd.OutOrStdout(), out)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s %d claims\n\n", sym.AX, result.Total)
	if result.Total == 0 {
		return nil
	}
	return display.Table(w, []string{"SUBJECT", "PREDICATE", "CONTEXT", "ACTOR", "TIMESTAMP", "SOURCE"}, claimRows(result.Claims))
}

func newGroupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "group [FILE]",
		Short: sym.AX + " Group claims by subject|predicate|context",
		Long: sym.AX + ` group - Group claims by subject|predicate|context

Reads {"claims": [...]} from FILE or stdin. Groups are ordered by key; the
--json output is valid classify input once now_ms is added (classify adds it).`,
		Args: cobra.MaximumNArgs(1),
		RunE: runGroup,
	}
}

func runGroup(cmd *cobra.Command, args []string) error {
	raw, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	out := bridge.GroupClaimsJSON(raw)
	var result struct {
		Groups      []types.ClaimGroup `json:"groups"`
		TotalGroups int                `json:"total_groups"`
	}
	if err := decodeReply(out, &result); err != nil {
		return err
	}
	appFrom(cmd).log.Infow("Grouped claims", logger.FieldGroups, result.TotalGroups)

	if display.ShouldOutputJSON(cmd) {
		// Shaped as classify input
		return display.OutputJSON(cmd.OutOrStdout(), map[string]interface{}{"claim_groups": result.Groups})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s %d groups\n\n", sym.AX, result.TotalGroups)
	if result.TotalGroups == 0 {
		return nil
	}

	rows := make([][]string, 0, len(result.Groups))
	for _, g := range result.Groups {
		conflict := ""
		if g.IsConflict() {
			conflict = "yes"
		}
		rows = append(rows, []string{g.Key, strconv.Itoa(len(g.Claims)), conflict})
	}
	return display.Table(w, []string{"KEY", "CLAIMS", "CONFLICT"}, rows)
}

func newDedupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dedup [FILE]",
		Short: sym.AX + " Collapse claims to unique source ids",
		Long: sym.AX + ` dedup - Collapse claims to unique source ids

Reads {"claims": [...]} from FILE or stdin and prints each source attestation
id once, in first-seen order.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runDedup,
	}
}

func runDedup(cmd *cobra.Command, args []string) error {
	raw, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	out := bridge.DedupSourceIDsJSON(raw)
	var result struct {
		IDs   []string `json:"ids"`
		Total int      `json:"total"`
	}
	if err := decodeReply(out, &result); err != nil {
		return err
	}
	appFrom(cmd).log.Infow("Deduplicated source ids", logger.FieldCount, result.Total)

	if display.ShouldOutputJSON(cmd) {
		return display.OutputRawJSON(cmd.OutOrStdout(), out)
	}

	w := cmd.OutOrStdout()
	for _, id := range result.IDs {
		fmt.Fprintln(w, id)
	}
	return nil
}

func claimRows(claims []types.IndividualClaim) [][]string {
	rows := make([][]string, 0, len(claims))
	for _, c := range claims {
		rows = append(rows, []string{
			c.Subject, c.Predicate, c.Context, c.Actor,
			time.UnixMilli(c.TimestampMs).UTC().Format(time.RFC3339),
			c.SourceID,
		})
	}
	return rows
}
