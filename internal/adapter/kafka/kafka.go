// Package kafka publishes storefront events to Kafka and reads them back.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/pkg/retry"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/shopspring/decimal"
	"github.com/twmb/franz-go/pkg/kgo"
)

var (
	ErrTooFewOpts       = errors.New("too few options")
	ErrInvalidValueType = errors.New("invalid value type")
)

type ProducerOpt func(*producerOpts) error

type producerOpts struct {
	cl      ProducerClient
	encoder Encoder
}

// ProducerClientOpt connects to the cluster and fails when no broker answers
// a ping.
func ProducerClientOpt(
	ctx context.Context, b Brokers, topic string,
) ProducerOpt {
	return func(opts *producerOpts) error {
		cl, err := kgo.NewClient(b.clientOpts(
			kgo.DefaultProduceTopicAlways(),
			kgo.DefaultProduceTopic(topic),
			kgo.RequiredAcks(kgo.AllISRAcks()),
			kgo.AllowAutoTopicCreation(),
			kgo.ProduceRequestTimeout(5*time.Second),
		)...)
		if err != nil {
			return err
		}

		pingCfg := retry.Config{
			MaxAttempts: 3,
			Backoff:     retry.ExponentialBackoff(250 * time.Millisecond),
		}
		if err := retry.Do(ctx, pingCfg, func() error {
			return cl.Ping(ctx)
		}); err != nil {
			cl.Close()
			return err
		}
		opts.cl = cl
		return nil
	}
}

// ProducerOfClientOpt uses an existing client, mainly for tests.
func ProducerOfClientOpt(cl ProducerClient) ProducerOpt {
	return func(opts *producerOpts) error {
		if cl == nil {
			return errors.New("producer client is nil")
		}
		opts.cl = cl
		return nil
	}
}

func ProducerEncoderOpt(encoder Encoder) ProducerOpt {
	return func(opts *producerOpts) error {
		if encoder == nil {
			return errors.New("encoder is nil")
		}
		opts.encoder = encoder
		return nil
	}
}

type ProducerClient interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

type ConsumerClient interface {
	PollFetches(context.Context) kgo.Fetches
	MarkCommitRecords(...*kgo.Record)
	CommitMarkedOffsets(context.Context) error
	SetOffsets(map[string]map[int32]kgo.EpochOffset)
	Close()
}

type Encoder interface {
	Encode(v any) ([]byte, error)
}

type Decoder interface {
	Decode(b []byte, v any) error
}

type Serde interface {
	Encoder
	Decoder
}

func makeOp(s ...string) string {
	return strings.Join(s, ".")
}

func opErr(err error, op ...string) error {
	return fmt.Errorf("%s: %w", makeOp(op...), err)
}

func productEventToSchemaV1(e domain.ProductEvent) (s schema.ProductEventV1) {
	p := e.Product
	s.EventType = string(e.Type)
	s.OccurredAt = e.OccurredAt
	s.ProductID = p.ID
	s.Name = p.Name
	s.Description = p.Description
	s.Brand = p.Brand
	s.Category = p.Category
	s.Pattern = p.Pattern
	s.Material = p.Material
	s.Fit = p.Fit
	s.Sleeve = p.Sleeve
	s.Price = p.Price.String()
	if p.SalePrice.Valid {
		sale := p.SalePrice.Decimal.String()
		s.SalePrice = &sale
	}
	s.Stock = int64(p.Stock)
	s.Colors = p.Colors
	s.Sizes = p.Sizes
	s.Images = p.Images
	s.Rating = p.Rating
	s.ReviewCount = int64(p.ReviewCount)
	s.IsActive = p.IsActive
	s.CreatedAt = p.CreatedAt
	return
}

func schemaV1ToProductEvent(s schema.ProductEventV1) (domain.ProductEvent, error) {
	price, err := decimal.NewFromString(s.Price)
	if err != nil {
		return domain.ProductEvent{}, err
	}
	var sale decimal.NullDecimal
	if s.SalePrice != nil {
		d, err := decimal.NewFromString(*s.SalePrice)
		if err != nil {
			return domain.ProductEvent{}, err
		}
		sale = decimal.NewNullDecimal(d)
	}

	return domain.ProductEvent{
		Type:       domain.ProductEventType(s.EventType),
		OccurredAt: s.OccurredAt,
		Product: domain.Product{
			ID:          s.ProductID,
			Name:        s.Name,
			Description: s.Description,
			Brand:       s.Brand,
			Category:    s.Category,
			Pattern:     s.Pattern,
			Material:    s.Material,
			Fit:         s.Fit,
			Sleeve:      s.Sleeve,
			Price:       price,
			SalePrice:   sale,
			Stock:       int(s.Stock),
			Colors:      s.Colors,
			Sizes:       s.Sizes,
			Images:      s.Images,
			Rating:      s.Rating,
			ReviewCount: int(s.ReviewCount),
			IsActive:    s.IsActive,
			CreatedAt:   s.CreatedAt,
		},
	}, nil
}

func orderEventToSchemaV1(e domain.OrderEvent) (s schema.OrderEventV1) {
	o := e.Order
	s.EventType = string(e.Type)
	s.OccurredAt = e.OccurredAt
	s.OrderID = o.ID
	s.UserID = o.UserID
	s.Status = string(o.Status)
	s.PaymentStatus = string(o.PaymentStatus)
	s.PaymentMethod = string(o.PaymentMethod)
	s.Subtotal = o.Subtotal.String()
	s.ShippingFee = o.ShippingFee.String()
	s.Tax = o.Tax.String()
	s.TotalAmount = o.TotalAmount.String()
	s.ShippingAddress = schema.ShippingAddressV1{
		FirstName:  o.ShippingAddress.FirstName,
		LastName:   o.ShippingAddress.LastName,
		Email:      o.ShippingAddress.Email,
		Phone:      o.ShippingAddress.Phone,
		Address:    o.ShippingAddress.Address,
		City:       o.ShippingAddress.City,
		State:      o.ShippingAddress.State,
		PostalCode: o.ShippingAddress.PostalCode,
		Country:    o.ShippingAddress.Country,
	}
	s.CreatedAt = o.CreatedAt
	s.UpdatedAt = o.UpdatedAt

	s.Items = make([]schema.OrderItemV1, len(e.Items))
	for i, item := range e.Items {
		s.Items[i] = schema.OrderItemV1{
			ItemID:    item.ID,
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  int64(item.Quantity),
			Price:     item.Price.String(),
		}
	}
	return
}

func schemaV1ToOrderEvent(s schema.OrderEventV1) (domain.OrderEvent, error) {
	var errs []error
	amount := func(v string) decimal.Decimal {
		d, err := decimal.NewFromString(v)
		if err != nil {
			errs = append(errs, err)
		}
		return d
	}

	e := domain.OrderEvent{
		Type:       domain.OrderEventType(s.EventType),
		OccurredAt: s.OccurredAt,
		Order: domain.Order{
			ID:            s.OrderID,
			UserID:        s.UserID,
			Status:        domain.OrderStatus(s.Status),
			Subtotal:      amount(s.Subtotal),
			ShippingFee:   amount(s.ShippingFee),
			Tax:           amount(s.Tax),
			TotalAmount:   amount(s.TotalAmount),
			PaymentMethod: domain.PaymentMethod(s.PaymentMethod),
			PaymentStatus: domain.PaymentStatus(s.PaymentStatus),
			ShippingAddress: domain.ShippingAddress{
				FirstName:  s.ShippingAddress.FirstName,
				LastName:   s.ShippingAddress.LastName,
				Email:      s.ShippingAddress.Email,
				Phone:      s.ShippingAddress.Phone,
				Address:    s.ShippingAddress.Address,
				City:       s.ShippingAddress.City,
				State:      s.ShippingAddress.State,
				PostalCode: s.ShippingAddress.PostalCode,
				Country:    s.ShippingAddress.Country,
			},
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		},
	}
	for _, item := range s.Items {
		e.Items = append(e.Items, domain.OrderItem{
			ID:        item.ItemID,
			OrderID:   s.OrderID,
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  int(item.Quantity),
			Price:     amount(item.Price),
		})
	}
	if err := errors.Join(errs...); err != nil {
		return domain.OrderEvent{}, err
	}
	return e, nil
}
