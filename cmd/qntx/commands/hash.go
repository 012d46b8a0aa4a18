package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/qntx-core/ats/bridge"
	"github.com/teranos/qntx-core/display"
	"github.com/teranos/qntx-core/errors"
	"github.com/teranos/qntx-core/logger"
	"github.com/teranos/qntx-core/sym"
	"github.com/teranos/qntx-core/sync"
)

// Hash encodings accepted by --encoding
const (
	encodingHex    = "hex"
	encodingBase58 = "base58"
)

func newHashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash [FILE]",
		Short: sym.Hash + " Content hash of an attestation",
		Long: sym.Hash + ` hash - Content hash of an attestation

Reads one attestation (timestamps in Unix milliseconds) from FILE or stdin and
prints its content hash. The hash ignores id, attributes and created_at, and
the order of subjects, predicates, contexts and actors.

Examples:
  qntx hash attestation.json
  qntx hash --encoding base58 < attestation.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHash,
	}
	cmd.Flags().String("encoding", encodingHex, "Hash encoding: hex or base58")
	return cmd
}

func runHash(cmd *cobra.Command, args []string) error {
	encoding, _ := cmd.Flags().GetString("encoding")
	if encoding != encodingHex && encoding != encodingBase58 {
		return errors.Mark(errors.Newf("unknown encoding %q (want hex or base58)", encoding), errors.ErrInvalidInput)
	}

	raw, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	var result struct {
		Hash string `json:"hash"`
	}
	if err := decodeReply(bridge.ContentHashJSON(raw), &result); err != nil {
		return err
	}

	encoded := result.Hash
	if encoding == encodingBase58 {
		h, err := sync.ParseHash(result.Hash)
		if err != nil {
			return err
		}
		encoded = sync.Base58Hash(h)
	}
	appFrom(cmd).log.Debugw("Hashed attestation", logger.FieldContentHash, result.Hash)

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), map[string]string{"hash": encoded, "encoding": encoding})
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), encoded)
	return err
}
