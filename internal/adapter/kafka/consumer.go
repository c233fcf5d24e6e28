package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

var errHandler = errors.New("event handler failed")

// An EventHandler receives decoded events.
type EventHandler interface {
	HandleProductEvent(context.Context, domain.ProductEvent) error
	HandleOrderEvent(context.Context, domain.OrderEvent) error
}

type ConsumerOpt func(*consumerOpts) error

type consumerOpts struct {
	cl       ConsumerClient
	handler  EventHandler
	decoders map[string]recordDecoder
}

// recordDecoder turns a record value into a call of the handler.
type recordDecoder func(context.Context, EventHandler, []byte) error

// NewConsumerClient returns a client reading topics as a member of group.
// Only records marked as handled are committed, and only when the consumer
// commits them itself.
func NewConsumerClient(
	b Brokers, group string, topics ...string,
) (*kgo.Client, error) {
	return kgo.NewClient(b.clientOpts(
		kgo.ConsumeTopics(topics...),
		kgo.ConsumerGroup(group),
		kgo.DisableAutoCommit(),
		kgo.AutoCommitMarks(),
	)...)
}

func ConsumerClientOpt(cl ConsumerClient) ConsumerOpt {
	return func(co *consumerOpts) error {
		if cl == nil {
			return errors.New("consumer client is nil")
		}
		co.cl = cl
		return nil
	}
}

func ConsumerHandlerOpt(h EventHandler) ConsumerOpt {
	return func(co *consumerOpts) error {
		if h == nil {
			return errors.New("event handler is nil")
		}
		co.handler = h
		return nil
	}
}

// ConsumerProductEventsOpt reads topic as product events.
func ConsumerProductEventsOpt(topic string, d Decoder) ConsumerOpt {
	return decoderOpt(topic, d, func(
		ctx context.Context, h EventHandler, b []byte,
	) error {
		var s schema.ProductEventV1
		if err := d.Decode(b, &s); err != nil {
			return err
		}
		e, err := schemaV1ToProductEvent(s)
		if err != nil {
			return err
		}
		if err := h.HandleProductEvent(ctx, e); err != nil {
			return fmt.Errorf("%w: %w", errHandler, err)
		}
		return nil
	})
}

// ConsumerOrderEventsOpt reads topic as order events.
func ConsumerOrderEventsOpt(topic string, d Decoder) ConsumerOpt {
	return decoderOpt(topic, d, func(
		ctx context.Context, h EventHandler, b []byte,
	) error {
		var s schema.OrderEventV1
		if err := d.Decode(b, &s); err != nil {
			return err
		}
		e, err := schemaV1ToOrderEvent(s)
		if err != nil {
			return err
		}
		if err := h.HandleOrderEvent(ctx, e); err != nil {
			return fmt.Errorf("%w: %w", errHandler, err)
		}
		return nil
	})
}

func decoderOpt(topic string, d Decoder, rd recordDecoder) ConsumerOpt {
	return func(co *consumerOpts) error {
		if topic == "" {
			return errors.New("topic is empty string")
		}
		if d == nil {
			return errors.New("decoder is nil")
		}
		if co.decoders == nil {
			co.decoders = make(map[string]recordDecoder)
		}
		co.decoders[topic] = rd
		return nil
	}
}

// An EventsConsumer polls product and order topics and hands every decoded
// event to its handler. Undecodable records are logged and skipped.
type EventsConsumer struct {
	opPrefix      string
	cl            ConsumerClient
	handler       EventHandler
	decoders      map[string]recordDecoder
	slowDownTimer *time.Timer
}

func NewEventsConsumer(opts ...ConsumerOpt) (EventsConsumer, error) {
	const op = "NewEventsConsumer"

	var options consumerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return EventsConsumer{}, opErr(err, op)
		}
	}
	if options.cl == nil || options.handler == nil || len(options.decoders) == 0 {
		return EventsConsumer{}, opErr(ErrTooFewOpts, op)
	}

	return EventsConsumer{
		opPrefix:      "EventsConsumer",
		cl:            options.cl,
		handler:       options.handler,
		decoders:      options.decoders,
		slowDownTimer: time.NewTimer(0),
	}, nil
}

// Run consumes until ctx is done.
func (c EventsConsumer) Run(ctx context.Context) {
	const op = "Run"
	log := slog.With("op", makeOp(c.opPrefix, op))

	log.Info("running")

	for {
		select {
		case <-ctx.Done():
			return
		default:
			err := c.consume(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					continue
				}
				log.Error("failed to consume", "err", err)
				c.slowDown()
			}
		}
	}
}

func (c EventsConsumer) Close() {
	const op = "Close"
	log := slog.With("op", makeOp(c.opPrefix, op))

	c.slowDownTimer.Stop()

	log.Info("closing consumer...")
	c.cl.Close()
	log.Info("consumer is closed")
}

func (c EventsConsumer) consume(ctx context.Context) error {
	const op = "consume"

	fetches, err := c.pollFetches(ctx)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}

	if fetches.Empty() {
		return nil
	}

	err = c.processFetches(ctx, fetches)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}

	err = c.commit(ctx)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}
	return nil
}

func (c EventsConsumer) pollFetches(ctx context.Context) (kgo.Fetches, error) {
	const op = "pollFetches"

	fetches := c.cl.PollFetches(ctx)
	if err := fetches.Err0(); err != nil {
		return nil, opErr(err, c.opPrefix, op)
	}

	var errsMessages []string
	fetches.EachError(func(t string, p int32, err error) {
		errsMessages = append(errsMessages, fmt.Sprintf(
			"topic %q partition %d: %q", t, p, err,
		))
	})
	if len(errsMessages) != 0 {
		return nil, opErr(errors.New(strings.Join(errsMessages, "; ")), c.opPrefix, op)
	}

	return fetches, nil
}

// processFetches marks every record it is done with. On the first handler
// error it stops and rewinds each partition to its first unhandled record,
// so those records are polled again and never committed before that.
func (c EventsConsumer) processFetches(ctx context.Context, fetches kgo.Fetches) error {
	const op = "processFetches"

	var handleErr error
	rewind := make(map[string]map[int32]kgo.EpochOffset)
	fetches.EachPartition(func(p kgo.FetchTopicPartition) {
		for _, r := range p.Records {
			if handleErr == nil {
				handleErr = c.processRecord(ctx, r)
			}
			if handleErr != nil {
				if rewind[r.Topic] == nil {
					rewind[r.Topic] = make(map[int32]kgo.EpochOffset)
				}
				rewind[r.Topic][r.Partition] = kgo.EpochOffset{
					Epoch: r.LeaderEpoch, Offset: r.Offset,
				}
				return
			}
			c.cl.MarkCommitRecords(r)
		}
	})
	if handleErr != nil {
		c.cl.SetOffsets(rewind)
		return opErr(handleErr, c.opPrefix, op)
	}
	return nil
}

// processRecord returns only handler errors. Records that cannot be decoded
// are logged and count as handled.
func (c EventsConsumer) processRecord(ctx context.Context, r *kgo.Record) error {
	const op = "processRecord"
	log := slog.With("op", makeOp(c.opPrefix, op))

	decode, ok := c.decoders[r.Topic]
	if !ok {
		log.Warn("record from unexpected topic", "topic", r.Topic)
		return nil
	}

	err := decode(ctx, c.handler, r.Value)
	switch {
	case err == nil:
	case errors.Is(err, errHandler):
		return err
	default:
		log.Error("failed to decode value",
			"topic", r.Topic, "partition", r.Partition, "offset", r.Offset, "err", err)
	}
	return nil
}

func (c EventsConsumer) commit(ctx context.Context) error {
	const op = "commit"

	if err := ctx.Err(); err != nil {
		return opErr(err, c.opPrefix, op)
	}
	if err := c.cl.CommitMarkedOffsets(ctx); err != nil {
		return opErr(err, c.opPrefix, op)
	}
	return nil
}

func (c EventsConsumer) slowDown() {
	c.slowDownTimer.Reset(1 * time.Second)
	<-c.slowDownTimer.C
}
