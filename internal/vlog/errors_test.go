package vlog

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorHelpers(t *testing.T) {
	err := fmt.Errorf("readLog: %w", NotFoundf("log not found"))

	assert.True(t, IsNotFound(err))
	assert.False(t, IsInvalidArgument(err))
	assert.False(t, IsInconsistent(err))
	assert.Equal(t, ErrCodeNotFound, CodeOf(err))
	assert.Equal(t, ErrorCode(""), CodeOf(fmt.Errorf("plain")))
	assert.EqualError(t, InvalidArgumentf("limit %d", -1), "INVALID_ARGUMENT: limit -1")
	assert.True(t, IsInconsistent(Inconsistentf("x")))
}
