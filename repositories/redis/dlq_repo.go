package redis

import (
	// Go Internal Packages
	"context"
	"encoding/json"
	"fmt"

	// Local Packages
	models "fraud-stream/models"

	// External Packages
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DeadLetterQueue keeps points that could not be written so they can be replayed by hand.
type DeadLetterQueue struct {
	uri      string
	password string
	listName string
	client   *redis.Client
	logger   *zap.Logger
}

func NewDeadLetterQueue(uri, password, listName string, logger *zap.Logger) *DeadLetterQueue {
	if listName == "" {
		listName = "failed-fraud-points"
	}
	return &DeadLetterQueue{uri: uri, password: password, listName: listName, logger: logger}
}

func (q *DeadLetterQueue) Name() string { return "redis" }

func (q *DeadLetterQueue) Open(ctx context.Context) error {
	client, err := Connect(ctx, q.uri, q.password)
	if err != nil {
		return err
	}
	q.client = client
	return nil
}

// Send appends the failed point to the tail of the list, keeping failure order.
func (q *DeadLetterQueue) Send(ctx context.Context, fp models.FailedPoint) error {
	jsonData, err := json.Marshal(fp)
	if err != nil {
		return fmt.Errorf("failed to marshal failed point: %w", err)
	}

	if err = q.client.RPush(ctx, q.listName, jsonData).Err(); err != nil {
		return fmt.Errorf("failed to push to %s: %w", q.listName, err)
	}

	q.logger.Info("sent point to dead letter queue",
		zap.String("list", q.listName),
		zap.String("userId", fp.UserID),
		zap.Int64("offset", fp.Offset),
	)
	return nil
}

// Pending returns the number of points waiting for replay.
func (q *DeadLetterQueue) Pending(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.listName).Result()
}

func (q *DeadLetterQueue) Close(_ context.Context) error {
	if q.client == nil {
		return nil
	}
	return q.client.Close()
}
