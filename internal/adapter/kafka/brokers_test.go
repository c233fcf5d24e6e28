package kafka

import (
	"crypto/tls"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTLSConfig(t *testing.T) {
	t.Run("Plaintext", func(t *testing.T) {
		cfg, err := LoadTLSConfig("", "", "")
		require.NoError(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("Partial", func(t *testing.T) {
		_, err := LoadTLSConfig("ca.pem", "", "")
		assert.Error(t, err)
	})

	t.Run("MissingFile", func(t *testing.T) {
		dir := t.TempDir()
		_, err := LoadTLSConfig(
			filepath.Join(dir, "ca.pem"),
			filepath.Join(dir, "cert.pem"),
			filepath.Join(dir, "key.pem"),
		)
		assert.ErrorContains(t, err, "failed to read CA certificate file")
	})
}

func TestBrokersClientOpts(t *testing.T) {
	plain := Brokers{Seeds: []string{"localhost:9092"}}
	assert.Len(t, plain.clientOpts(), 1)

	secure := Brokers{Seeds: []string{"localhost:9093"}, TLS: &tls.Config{}}
	assert.Len(t, secure.clientOpts(), 2)
}
