package commands

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/qntx-core/errors"
)

// readInput returns the contents of args[0], or stdin when no file (or "-") is given
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", errors.Wrap(err, "failed to read stdin")
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s", args[0])
	}
	return string(data), nil
}

// decodeReply decodes a bridge reply into out, turning {"error": ...} into
// an ErrInvalidInput error
func decodeReply(raw string, out interface{}) error {
	var reply struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		return errors.Wrapf(err, "unexpected bridge reply %q", raw)
	}
	if reply.Error != nil {
		return errors.Mark(errors.New(*reply.Error), errors.ErrInvalidInput)
	}
	if out == nil {
		return nil
	}
	return errors.Wrap(json.Unmarshal([]byte(raw), out), "failed to decode bridge reply")
}
