package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/niksmo/storefront/config"
	"github.com/niksmo/storefront/internal/adapter/kafka"
	"github.com/niksmo/storefront/pkg/retry"
	"github.com/niksmo/storefront/pkg/sigctx"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
)

const (
	partitions           = 3
	maxReplicationFactor = 3
	brokerWaitAttempts   = 15
	brokerWaitDelay      = 2 * time.Second
	delete               = "delete"
	compact              = "compact"
)

func main() {
	sigCtx, closeApp := sigctx.NotifyContext()
	defer closeApp()

	cfg := config.Load()
	if !cfg.Broker.Enabled() {
		printFail(errors.New("broker.seed_brokers is empty"))
		return
	}

	cl := createClient(cfg)
	defer cl.Close()

	printStart(cfg)
	defer printComplete(time.Now())

	// order history is kept by time
	err := makeTopics(sigCtx, cl, delete, cfg.Broker.Topics.Orders)
	if err != nil {
		printFail(err)
		return
	}

	// product events are keyed by product id, the latest state is enough
	err = makeTopics(sigCtx, cl, compact, cfg.Broker.Topics.Products)
	if err != nil {
		printFail(err)
		return
	}
}

func createClient(cfg config.Config) *kadm.Client {
	t := cfg.Broker.TLS
	tlsConfig, err := kafka.LoadTLSConfig(t.CA, t.Cert, t.Key)
	if err != nil {
		panic(err)
	}

	cl, err := kafka.NewAdminClient(kafka.Brokers{
		Seeds: cfg.Broker.SeedBrokers,
		TLS:   tlsConfig,
	})
	if err != nil {
		panic(err) // develop mistake
	}
	return cl
}

func makeTopics(
	ctx context.Context, cl *kadm.Client, cleanupPolicy string, topics ...string,
) error {
	var (
		minISR = "1"
	)

	rf, err := replicationFactor(ctx, cl)
	if err != nil {
		return err
	}

	config := map[string]*string{
		"cleanup.policy":      &cleanupPolicy,
		"min.insync.replicas": &minISR,
	}

	responses, err := cl.CreateTopics(
		ctx,
		partitions,
		rf,
		config,
		topics...,
	)

	if err != nil {
		return err
	}

	var errs []error
	for _, res := range responses.Sorted() {
		err := res.Err
		if err != nil {
			if errors.Is(res.Err, kerr.TopicAlreadyExists) {
				fmt.Printf("topic: %q already exists\n", res.Topic)
			} else {
				errs = append(errs, err)
			}
			continue
		}
		fmt.Printf("topic: %q successfully created (%s)\n", res.Topic, cleanupPolicy)
	}

	return errors.Join(errs...)
}

// replicationFactor never asks for more replicas than there are brokers,
// so a single broker dev cluster works too. It waits for a cluster that is
// still starting up.
func replicationFactor(ctx context.Context, cl *kadm.Client) (int16, error) {
	retryCfg := retry.Config{
		MaxAttempts: brokerWaitAttempts,
		Backoff:     retry.ConstantBackoff(brokerWaitDelay),
	}
	brokers, err := retry.DoWithResult(ctx, retryCfg, func() (kadm.BrokerDetails, error) {
		brokers, err := cl.ListBrokers(ctx)
		if err == nil && len(brokers) == 0 {
			err = errors.New("no brokers in cluster metadata")
		}
		return brokers, err
	})
	if err != nil {
		return 0, err
	}
	return cappedReplicationFactor(len(brokers)), nil
}

func cappedReplicationFactor(brokers int) int16 {
	return int16(min(brokers, maxReplicationFactor))
}

func printStart(cfg config.Config) {
	fmt.Printf(`initializing topics...
	- %q
	- %q

`,
		cfg.Broker.Topics.Products,
		cfg.Broker.Topics.Orders,
	)
}

func printComplete(start time.Time) {
	fmt.Printf("\ncomplete in %s\n", time.Since(start))
}

func printFail(err error) {
	fmt.Printf("failed to create topics: \n%s\n", err)
}
