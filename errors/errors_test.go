package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap_KeepsCause(t *testing.T) {
	original := New("bad hex")
	wrapped := Wrapf(original, "invalid content_hash %q", "zz")

	assert.Contains(t, wrapped.Error(), `invalid content_hash "zz"`)
	assert.Contains(t, wrapped.Error(), "bad hex")
	assert.True(t, Is(wrapped, original))
}

func TestSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		check    func(error) bool
	}{
		{"invalid input", NewInvalidInputError("hash must be %d bytes", 32), ErrInvalidInput, IsInvalidInput},
		{"not found", NewNotFoundError("group %s", "ae4f"), ErrNotFound, IsNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, Is(tt.err, tt.sentinel))
			assert.True(t, tt.check(tt.err))
			assert.True(t, tt.check(Wrap(tt.err, "outer")))
			assert.False(t, tt.check(nil))
			assert.False(t, tt.check(New("unrelated")))
		})
	}
}

func TestMark(t *testing.T) {
	cause := New("malformed version")
	err := Mark(cause, ErrIncompatiblePeer)

	assert.True(t, Is(err, ErrIncompatiblePeer))
	assert.Equal(t, "malformed version", err.Error())
	assert.False(t, Is(err, ErrInvalidInput))
}

type decodeError struct {
	line int
}

func (e *decodeError) Error() string {
	return fmt.Sprintf("line %d", e.line)
}

func TestAs(t *testing.T) {
	wrapped := Wrap(&decodeError{line: 7}, "read attestations")

	var target *decodeError
	require.True(t, As(wrapped, &target))
	assert.Equal(t, 7, target.line)
}

func TestHintsAndDetails(t *testing.T) {
	err := New("peer refused")
	err = WithHint(err, "upgrade the remote node")
	err = WithDetailf(err, "remote version %s", "2.0.0")
	err = Wrap(err, "sync session")

	assert.Contains(t, GetAllHints(err), "upgrade the remote node")
	assert.Contains(t, GetAllDetails(err), "remote version 2.0.0")
}

func TestStackTrace(t *testing.T) {
	err := New("with stack")
	assert.Contains(t, fmt.Sprintf("%+v", err), "errors_test.go")
}

func TestNilHandling(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
	assert.Nil(t, Wrapf(nil, "context %d", 1))
	assert.Nil(t, WithStack(nil))
	assert.Nil(t, WithHint(nil, "hint"))
	assert.Nil(t, WithDetail(nil, "detail"))
}

func ExampleWrap() {
	err := Wrap(New("unexpected end of JSON input"), "invalid classify input")
	fmt.Println(err)
	// Output: invalid classify input: unexpected end of JSON input
}
