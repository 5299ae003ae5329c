package apperr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesWrappedCode(t *testing.T) {
	base := NotFound("snapshot missing")
	wrapped := fmt.Errorf("loading history: %w", base)

	assert.True(t, Is(wrapped, CodeNotFound))
	assert.False(t, Is(wrapped, CodeForbidden))
}

func TestWrapPreservesUnderlyingError(t *testing.T) {
	underlying := fmt.Errorf("disk full")
	err := Wrap(underlying, CodeInternal, "failed to write blob")

	assert.Equal(t, CodeInternal, CodeOf(err))
	assert.ErrorIs(t, err, underlying)
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, CodeInternal, "noop"))
}

func TestCodeOfNonAppErrorIsInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(fmt.Errorf("plain error")))
}

func TestWithDetails(t *testing.T) {
	err := Conflict("repo exists").WithDetails("repo", "demo")
	assert.Equal(t, "demo", err.Details["repo"])
}
