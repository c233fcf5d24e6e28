// Package schema holds the Avro contracts of the events the storefront
// publishes and the schema registry serdes encoding them.
package schema

import (
	"context"
	"fmt"

	"github.com/hamba/avro/v2"
	"github.com/twmb/franz-go/pkg/sr"
)

func AvroEncodeFn(s avro.Schema) func(v any) ([]byte, error) {
	return func(v any) ([]byte, error) {
		return avro.Marshal(s, v)
	}
}

func AvroDecodeFn(s avro.Schema) func([]byte, any) error {
	return func(data []byte, v any) error {
		return avro.Unmarshal(s, data, v)
	}
}

// A SchemaIdentifier resolves the registry id of a schema under subject.
type SchemaIdentifier interface {
	DetermineID(ctx context.Context, subject string, avroSchemaText string) (int, error)
}

type registryClient interface {
	CreateSchema(ctx context.Context, subject string, s sr.Schema) (sr.SubjectSchema, error)
}

// A SchemaCreater registers schemas in the schema registry. Registering a
// schema that already exists returns its id.
type SchemaCreater struct {
	cl registryClient
}

func NewSchemaCreater(urls []string) (SchemaCreater, error) {
	const op = "NewSchemaCreater"

	cl, err := sr.NewClient(sr.URLs(urls...))
	if err != nil {
		return SchemaCreater{}, fmt.Errorf("%s: %w", op, err)
	}
	return SchemaCreater{cl}, nil
}

func (sc SchemaCreater) DetermineID(
	ctx context.Context, subject string, avroSchemaText string,
) (int, error) {
	const op = "SchemaCreater.DetermineID"

	ss, err := sc.cl.CreateSchema(ctx, subject, sr.Schema{
		Schema: avroSchemaText,
		Type:   sr.TypeAvro,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return ss.ID, nil
}
