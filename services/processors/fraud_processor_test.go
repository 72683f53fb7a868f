package processors

import (
	// Go Internal Packages
	"context"
	"sync"
	"testing"
	"time"

	// Local Packages
	errors "fraud-stream/errors"
	metrics "fraud-stream/metrics"
	models "fraud-stream/models"
	codec "fraud-stream/services/codec"
	fraud "fraud-stream/services/fraud"
	writer "fraud-stream/services/writer"

	// External Packages
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryStore struct {
	mu     sync.Mutex
	points []models.DataPoint
	fail   bool
}

func (s *memoryStore) WritePoint(_ context.Context, dp models.DataPoint) error {
	if s.fail {
		return errors.New("store rejected write")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = append(s.points, dp)
	return nil
}

func newPipeline(store *memoryStore, predicate fraud.Predicate) (*FraudProcessor, *metrics.Pipeline) {
	m := metrics.Noop()
	logger := zap.NewNop()
	w := writer.NewWriter(store, nil, writer.Options{
		MaxRetries:     1,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
		MaxElapsed:     time.Second,
		AttemptTimeout: time.Second,
	}, logger, m)
	return NewFraudProcessor(logger, codec.NewCodec(), NewFilterStage(predicate, logger, m), w, m), m
}

func record(offset int64, value string) models.Record {
	return models.Record{Topic: "transactions", Partition: 0, Offset: offset, Value: []byte(value)}
}

func TestProcessRecordScenarios(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		points  int
	}{
		{name: "above threshold", payload: `{"userId":"54321","amount":15000,"timestamp":"2025-01-08T12:00:00Z"}`, points: 1},
		{name: "below threshold", payload: `{"userId":"11111","amount":500}`, points: 0},
		{name: "at threshold", payload: `{"userId":"11111","amount":10000}`, points: 0},
		{name: "malformed", payload: `{"userId":"bad","amount":"notanumber"}`, points: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memoryStore{}
			p, _ := newPipeline(store, fraud.NewThreshold(fraud.DefaultThreshold))

			require.NoError(t, p.ProcessRecord(context.Background(), record(0, tt.payload)))
			assert.Len(t, store.points, tt.points)
		})
	}
}

func TestProcessRecordsKeepsOrderAndSkipsBadRecords(t *testing.T) {
	store := &memoryStore{}
	p, m := newPipeline(store, fraud.NewThreshold(fraud.DefaultThreshold))

	records := []models.Record{
		record(0, `{"userId":"a","amount":20000}`),
		record(1, `{"userId":"bad","amount":"notanumber"}`),
		record(2, `{"userId":"b","amount":300}`),
		record(3, `{"userId":"c","amount":10001}`),
		record(4, `not json at all`),
		record(5, `{"userId":54321,"amount":15000}`),
	}

	n, err := p.ProcessRecords(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, len(records), n)

	require.Len(t, store.points, 3)
	assert.Equal(t, "a", store.points[0].UserID)
	assert.Equal(t, "c", store.points[1].UserID)
	assert.Equal(t, "54321", store.points[2].UserID)
	assert.Equal(t, int64(15000), store.points[2].Amount)

	assert.Equal(t, 6.0, testutil.ToFloat64(m.Consumed))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DecodeFailures))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Flagged))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Written))
}

func TestProcessRecordWriteFailureContinues(t *testing.T) {
	store := &memoryStore{fail: true}
	p, m := newPipeline(store, fraud.NewThreshold(fraud.DefaultThreshold))

	n, err := p.ProcessRecords(context.Background(), []models.Record{
		record(0, `{"userId":"a","amount":20000}`),
		record(1, `{"userId":"b","amount":30000}`),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.WriteFailures))
}

func TestProcessRecordPredicateFailureIsNotFraud(t *testing.T) {
	store := &memoryStore{}
	broken := fraud.PredicateFunc(func(models.Transaction) (bool, error) {
		return true, errors.New("rules engine offline")
	})
	p, m := newPipeline(store, broken)

	require.NoError(t, p.ProcessRecord(context.Background(), record(0, `{"userId":"a","amount":20000}`)))
	assert.Empty(t, store.points)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PredicateErrors))
}

func TestProcessRecordsStopsOnAbortedWrite(t *testing.T) {
	store := &memoryStore{fail: true}
	p, _ := newPipeline(store, fraud.NewThreshold(fraud.DefaultThreshold))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := p.ProcessRecords(ctx, []models.Record{
		record(0, `{"userId":"b","amount":3}`),
		record(1, `{"userId":"a","amount":20000}`),
		record(2, `{"userId":"c","amount":20000}`),
	})
	assert.True(t, errors.Is(err, errors.ErrWriteAborted))
	assert.Equal(t, 1, n)
}
