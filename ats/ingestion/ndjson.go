package ingestion

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"strings"

	id "github.com/teranos/vanity-id"

	"github.com/teranos/qntx-core/ats/types"
	"github.com/teranos/qntx-core/errors"
)

// maxLineBytes bounds a single NDJSON record.
const maxLineBytes = 4 << 20

// ReadNDJSON decodes one attestation per line; blank lines are skipped.
// Attestations without an id receive an ASID seeded from their first
// subject, predicate, context and actor. Errors name the offending line.
func ReadNDJSON(r io.Reader) ([]types.As, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLineBytes)

	var attestations []types.As
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var as types.As
		if err := json.Unmarshal([]byte(text), &as); err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "line %d", line), errors.ErrInvalidInput)
		}
		if err := AssignID(&as); err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		attestations = append(attestations, as)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "read line %d", line+1)
	}

	return attestations, nil
}

// ReadNDJSONFile opens path and decodes it with ReadNDJSON.
func ReadNDJSONFile(path string) ([]types.As, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	attestations, err := ReadNDJSON(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return attestations, nil
}

// AssignID gives as an ASID when it has none.
func AssignID(as *types.As) error {
	if as.ID != "" {
		return nil
	}
	asid, err := id.GenerateASID(first(as.Subjects), first(as.Predicates), first(as.Contexts), first(as.Actors))
	if err != nil {
		return errors.Wrap(err, "generate ASID")
	}
	as.ID = asid
	return nil
}

// AppendNDJSONFile appends attestations to path, one JSON object per line,
// creating the file if needed. Attestations without an id get an ASID first.
func AppendNDJSONFile(path string, attestations ...types.As) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for i := range attestations {
		if err := AssignID(&attestations[i]); err != nil {
			f.Close()
			return err
		}
		if err := enc.Encode(attestations[i]); err != nil {
			f.Close()
			return errors.Wrapf(err, "encode attestation %d", i)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}

// first returns the seed for one ASID component; "_" marks an empty dimension.
func first(values []string) string {
	if len(values) == 0 || values[0] == "" {
		return "_"
	}
	return values[0]
}
