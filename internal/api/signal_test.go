// ABOUTME: Tests for the single-slot unauthorized signal
// ABOUTME: Verifies replacement semantics and safety with no handler

package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnauthorizedSignal_NoHandler(t *testing.T) {
	signal := NewUnauthorizedSignal()
	signal.invoke() // must not panic
}

func TestUnauthorizedSignal_ReplacesHandler(t *testing.T) {
	signal := NewUnauthorizedSignal()

	var first, second int
	signal.Register(func() { first++ })
	signal.Register(func() { second++ })

	signal.invoke()
	signal.invoke()

	assert.Equal(t, 0, first, "replaced handler must not run")
	assert.Equal(t, 2, second)
}
