package display

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/teranos/qntx-core/errors"
)

// MarshalJSON marshals v with two-space indentation
func MarshalJSON(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// OutputJSON writes v to w as indented JSON followed by a newline
func OutputJSON(w io.Writer, v interface{}) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return errors.Wrap(err, "failed to marshal JSON")
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// OutputRawJSON writes an already-encoded JSON document to w, re-indented
// when it parses
func OutputRawJSON(w io.Writer, raw string) error {
	var v interface{}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		_, err = fmt.Fprintln(w, raw)
		return err
	}
	return OutputJSON(w, v)
}
