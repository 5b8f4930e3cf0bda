package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCommandTakesNoArgs(t *testing.T) {
	cmd := newRootCommand()
	assert.Equal(t, "relayd", cmd.Use)
	assert.NoError(t, cmd.Args(cmd, nil))
	assert.Error(t, cmd.Args(cmd, []string{"extra"}))
}
