package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindPredicates(t *testing.T) {
	t.Parallel()
	cause := stderrors.New("boom")
	te := NewTypeError("bad %s", "value").CausedBy(cause)
	wrapped := fmt.Errorf("op: %w", te)

	assert.True(t, IsTypeError(wrapped))
	assert.False(t, IsRangeError(wrapped))
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, "TypeError: bad value", te.Error())

	re := NewRangeError("index %d", 5)
	assert.True(t, IsRangeError(re))
	assert.Equal(t, "Range", re.Kind())

	ie := NewInternalError("broken")
	assert.Equal(t, "internal error: broken", ie.Error())
	assert.False(t, IsTypeError(ie))
}

func TestDisplay(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	Display(&buf, []error{
		NewRangeError("invalid array length -1"),
		nil,
		fmt.Errorf("length(-1): %w", NewRangeError("invalid array length -1")),
		stderrors.New("plain"),
	})
	assert.Equal(t, "Range Error: invalid array length -1\n"+
		"length(-1): RangeError: invalid array length -1\n"+
		"plain\n", buf.String())
}
