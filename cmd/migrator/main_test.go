package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimScheme(t *testing.T) {
	const rest = "shop:secret@db:5432/shop?sslmode=disable"
	assert.Equal(t, rest, trimScheme("postgres://"+rest))
	assert.Equal(t, rest, trimScheme("postgresql://"+rest))
	assert.Equal(t, rest, trimScheme(rest))
}
