package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCappedReplicationFactor(t *testing.T) {
	assert.Equal(t, int16(1), cappedReplicationFactor(1))
	assert.Equal(t, int16(3), cappedReplicationFactor(3))
	assert.Equal(t, int16(3), cappedReplicationFactor(5))
}
