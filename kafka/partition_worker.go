package kafka

import (
	// Go Internal Packages
	"time"

	// Local Packages
	models "fraud-stream/models"

	// External Packages
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"
)

type topicPartition struct {
	topic     string
	partition int32
}

// partitionWorker processes the records of one partition strictly in order.
type partitionWorker struct {
	topic     string
	partition int32
	logger    *zap.Logger

	handle func(models.Record) error
	mark   func(...*kgo.Record)

	quit chan struct{}
	done chan struct{}
	recs chan []*kgo.Record
}

func newPartitionWorker(topic string, partition int32, chanSize int, handle func(models.Record) error, mark func(...*kgo.Record), logger *zap.Logger) *partitionWorker {
	return &partitionWorker{
		topic:     topic,
		partition: partition,
		logger:    logger,
		handle:    handle,
		mark:      mark,
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
		recs:      make(chan []*kgo.Record, chanSize),
	}
}

// consume runs until quit is closed or a record cannot be acknowledged. Quit is
// honoured between records, never in the middle of one.
func (w *partitionWorker) consume() {
	defer close(w.done)
	for {
		select {
		case <-w.quit:
			return
		case recs := <-w.recs:
			for _, r := range recs {
				select {
				case <-w.quit:
					return
				default:
				}

				if err := w.handle(toRecord(r)); err != nil {
					w.logger.Warn("stopping partition worker, record left uncommitted",
						zap.String("topic", r.Topic),
						zap.Int32("partition", r.Partition),
						zap.Int64("offset", r.Offset),
						zap.Error(err),
					)
					return
				}
				w.mark(r)
			}
		}
	}
}

func (w *partitionWorker) stop() {
	select {
	case <-w.quit:
	default:
		close(w.quit)
	}
}

func toRecord(r *kgo.Record) models.Record {
	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return models.Record{
		Key:       r.Key,
		Value:     r.Value,
		Topic:     r.Topic,
		Partition: r.Partition,
		Offset:    r.Offset,
		Timestamp: ts,
	}
}
