package writer

import (
	// Go Internal Packages
	"context"
	"fmt"
	"time"

	// Local Packages
	errors "fraud-stream/errors"
	metrics "fraud-stream/metrics"
	models "fraud-stream/models"

	// External Packages
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

type PointStore interface {
	WritePoint(ctx context.Context, dp models.DataPoint) error
}

type DeadLetterQueue interface {
	Send(ctx context.Context, fp models.FailedPoint) error
}

type Options struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxElapsed     time.Duration
	AttemptTimeout time.Duration
	// EventTime stamps points with the transaction's own timestamp instead of the write time.
	EventTime bool
}

// Writer turns flagged transactions into data points and writes them with retries.
// It is safe for concurrent use by every partition worker.
type Writer struct {
	store   PointStore
	dlq     DeadLetterQueue
	opts    Options
	logger  *zap.Logger
	metrics *metrics.Pipeline
	now     func() time.Time
}

// NewWriter creates a writer. dlq may be nil.
func NewWriter(store PointStore, dlq DeadLetterQueue, opts Options, logger *zap.Logger, m *metrics.Pipeline) *Writer {
	return &Writer{store: store, dlq: dlq, opts: opts, logger: logger, metrics: m, now: time.Now}
}

// Write persists exactly one point for tx. src identifies the record for logs and replay.
//
// The point is built once, so every retry sends the same (measurement, tag, timestamp).
// A cancelled ctx aborts the write and returns errors.ErrWriteAborted. Any other
// failure after the last retry is returned as an exhausted *errors.WriteError.
func (w *Writer) Write(ctx context.Context, tx models.Transaction, src models.Record) error {
	ts := w.now()
	if w.opts.EventTime {
		ts = tx.Timestamp
	}
	dp := models.NewDataPoint(tx, ts)

	attempts := 0
	op := func() error {
		attempts++
		attemptCtx, cancel := context.WithTimeout(ctx, w.opts.AttemptTimeout)
		defer cancel()

		err := w.store.WritePoint(attemptCtx, dp)
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return err
	}
	notify := func(err error, next time.Duration) {
		w.metrics.WriteRetries.Inc()
		w.logger.Warn("write attempt failed, retrying",
			zap.String("userId", dp.UserID),
			zap.Int64("amount", dp.Amount),
			zap.Int("attempt", attempts),
			zap.Duration("backoff", next),
			zap.Error(err),
		)
	}

	err := backoff.RetryNotify(op, w.newBackOff(ctx), notify)
	if err == nil {
		w.metrics.Written.Inc()
		return nil
	}

	if ctx.Err() != nil {
		w.metrics.WritesAborted.Inc()
		w.logger.Error("write aborted, record left unacknowledged",
			append(recordFields(src), zap.String("userId", dp.UserID), zap.Int64("amount", dp.Amount))...,
		)
		return fmt.Errorf("%w: %w", errors.ErrWriteAborted, err)
	}

	werr := &errors.WriteError{Attempts: attempts, Exhausted: true, Err: err}
	w.metrics.WriteFailures.Inc()
	w.logger.Error("dropping fraud point after exhausting retries",
		append(recordFields(src),
			zap.String("userId", dp.UserID),
			zap.Int64("amount", dp.Amount),
			zap.Time("point_timestamp", dp.Timestamp),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)...,
	)
	w.deadLetter(ctx, dp, src, werr)
	return werr
}

func (w *Writer) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = w.opts.InitialBackoff
	b.MaxInterval = w.opts.MaxBackoff
	b.MaxElapsedTime = w.opts.MaxElapsed
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(w.opts.MaxRetries)), ctx)
}

func (w *Writer) deadLetter(ctx context.Context, dp models.DataPoint, src models.Record, werr *errors.WriteError) {
	if w.dlq == nil {
		return
	}

	fp := models.FailedPoint{
		UserID:    dp.UserID,
		Amount:    dp.Amount,
		Timestamp: dp.Timestamp,
		Topic:     src.Topic,
		Partition: src.Partition,
		Offset:    src.Offset,
		Attempts:  werr.Attempts,
		Error:     werr.Err.Error(),
		FailedAt:  w.now(),
	}

	dlqCtx, cancel := context.WithTimeout(ctx, w.opts.AttemptTimeout)
	defer cancel()
	if err := w.dlq.Send(dlqCtx, fp); err != nil {
		w.logger.Error("failed to dead-letter fraud point",
			append(recordFields(src), zap.String("userId", dp.UserID), zap.Int64("amount", dp.Amount), zap.Error(err))...,
		)
		return
	}
	w.metrics.DeadLettered.Inc()
}

func recordFields(src models.Record) []zap.Field {
	return []zap.Field{
		zap.String("topic", src.Topic),
		zap.Int32("partition", src.Partition),
		zap.Int64("offset", src.Offset),
	}
}
