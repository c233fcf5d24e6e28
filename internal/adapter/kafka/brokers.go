package kafka

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Brokers addresses a Kafka cluster. A nil TLS config means plaintext.
type Brokers struct {
	Seeds []string
	TLS   *tls.Config
}

func (b Brokers) clientOpts(extra ...kgo.Opt) []kgo.Opt {
	opts := []kgo.Opt{kgo.SeedBrokers(b.Seeds...)}
	if b.TLS != nil {
		opts = append(opts, kgo.DialTLSConfig(b.TLS))
	}
	return append(opts, extra...)
}

// NewAdminClient returns a cluster admin client.
func NewAdminClient(b Brokers) (*kadm.Client, error) {
	return kadm.NewOptClient(b.clientOpts()...)
}

// LoadTLSConfig builds a mutual TLS client config from PEM files.
// It returns nil when no file is given.
func LoadTLSConfig(ca, cert, key string) (*tls.Config, error) {
	const op = "kafka.LoadTLSConfig"

	if ca == "" && cert == "" && key == "" {
		return nil, nil
	}
	if ca == "" || cert == "" || key == "" {
		return nil, fmt.Errorf("%s: %w", op, errors.New("ca, cert and key are required together"))
	}

	caCert, err := os.ReadFile(ca)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read CA certificate file: %w", op, err)
	}

	caCertPool := x509.NewCertPool()
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("%s: %s", op, "failed to parse CA certificate")
	}

	clientCert, err := tls.LoadX509KeyPair(cert, key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &tls.Config{
		RootCAs:      caCertPool,
		Certificates: []tls.Certificate{clientCert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
