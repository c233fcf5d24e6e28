package kafka

import (
	"context"
	"log/slog"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/twmb/franz-go/pkg/kgo"
)

var (
	_ port.ProductEventsProducer = ProductEventsProducer{}
	_ port.OrderEventsProducer   = OrderEventsProducer{}
	_ port.ProductEventsProducer = Discard{}
	_ port.OrderEventsProducer   = Discard{}
)

// A producer is used for composition.
//
// Producing records to kafka broker and closing underlying [kgo.Client].
type producer struct {
	opPrefix string
	cl       ProducerClient
	encoder  Encoder
}

func newProducer(opPrefix string, opts ...ProducerOpt) (producer, error) {
	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return producer{}, err
		}
	}
	if options.cl == nil || options.encoder == nil {
		return producer{}, ErrTooFewOpts
	}
	return producer{opPrefix, options.cl, options.encoder}, nil
}

func (p producer) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))
	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

// produce encodes v and sends it keyed by key, waiting for the broker ack.
func (p producer) produce(ctx context.Context, key string, v any) error {
	const op = "produce"

	if err := ctx.Err(); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	b, err := p.encoder.Encode(v)
	if err != nil {
		return opErr(err, p.opPrefix, op)
	}

	r := &kgo.Record{Key: []byte(key), Value: b}
	res := p.cl.ProduceSync(ctx, r)
	if err := res.FirstErr(); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

// A ProductEventsProducer publishes [domain.ProductEvent] keyed by product
// id, so every change of a product lands in one partition in order.
type ProductEventsProducer struct {
	producer producer
}

func NewProductEventsProducer(opts ...ProducerOpt) (ProductEventsProducer, error) {
	const op = "NewProductEventsProducer"

	p, err := newProducer("ProductEventsProducer", opts...)
	if err != nil {
		return ProductEventsProducer{}, opErr(err, op)
	}
	return ProductEventsProducer{p}, nil
}

func (p ProductEventsProducer) Close() {
	p.producer.close()
}

func (p ProductEventsProducer) ProduceProductEvent(
	ctx context.Context, e domain.ProductEvent,
) error {
	const op = "ProduceProductEvent"

	s := productEventToSchemaV1(e)
	if err := p.producer.produce(ctx, s.ProductID, s); err != nil {
		return opErr(err, p.producer.opPrefix, op)
	}
	return nil
}

// An OrderEventsProducer publishes [domain.OrderEvent] keyed by order id.
type OrderEventsProducer struct {
	producer producer
}

func NewOrderEventsProducer(opts ...ProducerOpt) (OrderEventsProducer, error) {
	const op = "NewOrderEventsProducer"

	p, err := newProducer("OrderEventsProducer", opts...)
	if err != nil {
		return OrderEventsProducer{}, opErr(err, op)
	}
	return OrderEventsProducer{p}, nil
}

func (p OrderEventsProducer) Close() {
	p.producer.close()
}

func (p OrderEventsProducer) ProduceOrderEvent(
	ctx context.Context, e domain.OrderEvent,
) error {
	const op = "ProduceOrderEvent"

	s := orderEventToSchemaV1(e)
	if err := p.producer.produce(ctx, s.OrderID, s); err != nil {
		return opErr(err, p.producer.opPrefix, op)
	}
	return nil
}

// Discard drops every event. It stands in for the producers when no
// brokers are configured.
type Discard struct{}

func (Discard) ProduceProductEvent(context.Context, domain.ProductEvent) error {
	return nil
}

func (Discard) ProduceOrderEvent(context.Context, domain.OrderEvent) error {
	return nil
}

func (Discard) Close() {}
