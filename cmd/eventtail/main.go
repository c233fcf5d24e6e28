// Command eventtail follows the storefront event topics and prints every
// event as a JSON line on stdout.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/niksmo/storefront/config"
	"github.com/niksmo/storefront/internal/adapter/kafka"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/niksmo/storefront/pkg/sigctx"
	"github.com/spf13/pflag"
)

type flags struct {
	group    string
	products bool
	orders   bool
}

func main() {
	sigCtx, stop := sigctx.NotifyContext()
	defer stop()

	f := getFlagsValues()
	cfg := config.Load()
	if !cfg.Broker.Enabled() {
		die("main", fmt.Errorf("broker.seed_brokers is empty"))
	}

	consumer := createConsumer(sigCtx, cfg, f)
	defer consumer.Close()

	consumer.Run(sigCtx)
}

func getFlagsValues() flags {
	var f flags
	pflag.String("config", "./config/config.yaml", "config file")
	pflag.StringVarP(&f.group, "group", "g", "storefront-eventtail", "consumer group")
	pflag.BoolVar(&f.products, "products", true, "follow product events")
	pflag.BoolVar(&f.orders, "orders", true, "follow order events")
	pflag.Parse()
	if !f.products && !f.orders {
		die("main", fmt.Errorf("nothing to follow, enable --products or --orders"))
	}
	return f
}

func createConsumer(ctx context.Context, cfg config.Config, f flags) kafka.EventsConsumer {
	const op = "main.createConsumer"

	schemaCreater, err := schema.NewSchemaCreater(cfg.Broker.SchemaRegistryURLs)
	if err != nil {
		die(op, err)
	}

	topics := cfg.Broker.Topics
	opts := []kafka.ConsumerOpt{kafka.ConsumerHandlerOpt(newPrinter(os.Stdout))}
	var follow []string

	if f.products {
		serde, err := schema.NewSerdeProductEventV1(
			ctx,
			schema.SubjectOpt(topics.Products+"-value"),
			schema.SchemaIdentifierOpt(schemaCreater),
		)
		if err != nil {
			die(op, err)
		}
		opts = append(opts, kafka.ConsumerProductEventsOpt(topics.Products, serde))
		follow = append(follow, topics.Products)
	}

	if f.orders {
		serde, err := schema.NewSerdeOrderEventV1(
			ctx,
			schema.SubjectOpt(topics.Orders+"-value"),
			schema.SchemaIdentifierOpt(schemaCreater),
		)
		if err != nil {
			die(op, err)
		}
		opts = append(opts, kafka.ConsumerOrderEventsOpt(topics.Orders, serde))
		follow = append(follow, topics.Orders)
	}

	t := cfg.Broker.TLS
	tlsConfig, err := kafka.LoadTLSConfig(t.CA, t.Cert, t.Key)
	if err != nil {
		die(op, err)
	}
	cl, err := kafka.NewConsumerClient(
		kafka.Brokers{Seeds: cfg.Broker.SeedBrokers, TLS: tlsConfig}, f.group, follow...,
	)
	if err != nil {
		die(op, err)
	}
	opts = append(opts, kafka.ConsumerClientOpt(cl))

	consumer, err := kafka.NewEventsConsumer(opts...)
	if err != nil {
		cl.Close()
		die(op, err)
	}
	return consumer
}

func die(op string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", op, err)
	os.Exit(2)
}
