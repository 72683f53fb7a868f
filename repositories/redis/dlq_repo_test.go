package redis

import (
	// Go Internal Packages
	"context"
	"encoding/json"
	"testing"
	"time"

	// Local Packages
	models "fraud-stream/models"

	// External Packages
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDeadLetterQueue(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	q := NewDeadLetterQueue(mr.Addr(), "", "", zap.NewNop())
	require.NoError(t, q.Open(ctx))
	defer func() { _ = q.Close(ctx) }()

	ts := time.Date(2025, 1, 8, 12, 0, 0, 0, time.UTC)
	for i, user := range []string{"54321", "777"} {
		require.NoError(t, q.Send(ctx, models.FailedPoint{
			UserID:    user,
			Amount:    15000,
			Timestamp: ts,
			Topic:     "transactions",
			Partition: 2,
			Offset:    int64(i),
			Attempts:  6,
			Error:     "connection refused",
		}))
	}

	pending, err := q.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pending)

	items, err := mr.List("failed-fraud-points")
	require.NoError(t, err)
	require.Len(t, items, 2)

	var first models.FailedPoint
	require.NoError(t, json.Unmarshal([]byte(items[0]), &first))
	assert.Equal(t, "54321", first.UserID)
	assert.Equal(t, int64(15000), first.Amount)
	assert.True(t, ts.Equal(first.Timestamp))
	assert.Equal(t, int32(2), first.Partition)
}

func TestDeadLetterQueueOpenFails(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireAuth("secret")

	q := NewDeadLetterQueue(mr.Addr(), "wrong", "dlq", zap.NewNop())
	assert.Error(t, q.Open(context.Background()))
}
