package processors

import (
	// Go Internal Packages
	"context"

	// Local Packages
	errors "fraud-stream/errors"
	metrics "fraud-stream/metrics"
	models "fraud-stream/models"

	// External Packages
	"go.uber.org/zap"
)

type Decoder interface {
	Decode(raw []byte) (models.Transaction, error)
}

type PointWriter interface {
	Write(ctx context.Context, tx models.Transaction, src models.Record) error
}

// FraudProcessor runs decode, filter and write for one record at a time.
type FraudProcessor struct {
	Logger  *zap.Logger
	Decoder Decoder
	Filter  *FilterStage
	Writer  PointWriter
	Metrics *metrics.Pipeline
}

func NewFraudProcessor(logger *zap.Logger, decoder Decoder, filter *FilterStage, writer PointWriter, m *metrics.Pipeline) *FraudProcessor {
	return &FraudProcessor{Logger: logger, Decoder: decoder, Filter: filter, Writer: writer, Metrics: m}
}

// ProcessRecord handles a single record. Record-level failures are logged and
// counted and nil is returned so the caller moves on. Only an aborted write is
// returned, meaning the record must not be acknowledged.
func (p *FraudProcessor) ProcessRecord(ctx context.Context, record models.Record) error {
	p.Metrics.Consumed.Inc()

	tx, err := p.Decoder.Decode(record.Value)
	if err != nil {
		p.Metrics.DecodeFailures.Inc()
		p.Logger.Warn("dropping record: failed to decode transaction",
			zap.String("topic", record.Topic),
			zap.Int32("partition", record.Partition),
			zap.Int64("offset", record.Offset),
			zap.ByteString("key", record.Key),
			zap.Error(err),
		)
		return nil
	}

	if !p.Filter.Forward(tx, record) {
		return nil
	}

	err = p.Writer.Write(ctx, tx, record)
	if errors.Is(err, errors.ErrWriteAborted) {
		return err
	}
	// exhausted writes are logged and dead-lettered by the writer
	return nil
}

// ProcessRecords handles records in order and stops at the first aborted write.
// It returns how many records were fully handled.
func (p *FraudProcessor) ProcessRecords(ctx context.Context, records []models.Record) (int, error) {
	for i, record := range records {
		if err := p.ProcessRecord(ctx, record); err != nil {
			return i, err
		}
	}
	return len(records), nil
}
