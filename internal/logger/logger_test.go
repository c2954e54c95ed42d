package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	log, err := New(true, true)
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(-1)) // debug

	log, err = New(false, false)
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(-1))
}
