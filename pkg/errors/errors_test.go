package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	e := New(CodeInvalidShape, "empty offset set")
	assert.Equal(t, "[INVALID_SHAPE] empty offset set", e.Error())

	wrapped := Wrap(CodeIoError, "write plan", fmt.Errorf("disk full"))
	assert.Equal(t, "[IO_ERROR] write plan: disk full", wrapped.Error())
}

func TestAppError_Is(t *testing.T) {
	err := Wrap(CodeQueueOverflow, "staging queue at capacity", nil)
	assert.True(t, stderrors.Is(err, ErrQueueOverflow))
	assert.False(t, stderrors.Is(err, ErrBadPlan))
	assert.True(t, IsQueueOverflow(err))
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("no such file")
	err := Wrap(CodeBadPlan, "read sync data", inner)
	assert.Equal(t, inner, stderrors.Unwrap(err))
	assert.True(t, IsBadPlan(err))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, CodeUnsetFlag, GetErrorCode(ErrUnsetFlag))
	assert.Equal(t, CodeUnknown, GetErrorCode(fmt.Errorf("plain")))

	deep := fmt.Errorf("outer: %w", Newf(CodeExtentMismatch, "dim %d", 2))
	assert.Equal(t, CodeExtentMismatch, GetErrorCode(deep))
}
