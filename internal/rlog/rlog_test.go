package rlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBuildsAUsableLogger(t *testing.T) {
	log := New()
	require.NotNil(t, log)
	assert.NotPanics(t, func() {
		log.Debug("probe")
		log.Sync()
	})
}
