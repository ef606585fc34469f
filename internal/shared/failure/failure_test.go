package failure

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFailureMatchesSentinelByReason(t *testing.T) {
	err := New(InsufficientCapacity, "need %d, have %d", 6, 4).WithAvailable(4)
	wrapped := fmt.Errorf("create hold: %w", err)

	assert.True(t, errors.Is(wrapped, ErrInsufficientCapacity))
	assert.False(t, errors.Is(wrapped, ErrDuplicateHold))

	f, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, 4, *f.Available)
	assert.Equal(t, InsufficientCapacity, ReasonOf(wrapped))
}

func TestReasonOfPlainError(t *testing.T) {
	assert.Equal(t, Reason(""), ReasonOf(errors.New("connection reset")))
	_, ok := As(nil)
	assert.False(t, ok)
}

func TestErrorString(t *testing.T) {
	err := New(WouldGoNegative, "max blockable is %d", 3)
	assert.Equal(t, "WOULD_GO_NEGATIVE: max blockable is 3", err.Error())
}
