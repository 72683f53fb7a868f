package mongodb

import (
	// Go Internal Packages
	"context"
	"testing"
	"time"

	// Local Packages
	models "fraud-stream/models"

	// External Packages
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestPointsRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	dp := models.NewDataPoint(models.Transaction{UserID: "54321", Amount: 15000}, time.Now())

	mt.Run("creates collection and inserts", func(mt *mtest.T) {
		repo := NewPointsRepository("", "fraud", "fraud_transactions")
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		require.NoError(mt, repo.attach(ctx, mt.Client))

		mt.AddMockResponses(mtest.CreateSuccessResponse())
		assert.NoError(mt, repo.WritePoint(ctx, dp))
	})

	mt.Run("existing collection is reused", func(mt *mtest.T) {
		repo := NewPointsRepository("", "fraud", "fraud_transactions")
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    namespaceExists,
			Name:    "NamespaceExists",
			Message: "collection already exists",
		}))
		assert.NoError(mt, repo.attach(ctx, mt.Client))
	})

	mt.Run("create failure is surfaced", func(mt *mtest.T) {
		repo := NewPointsRepository("", "fraud", "fraud_transactions")
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Name:    "Unauthorized",
			Message: "not authorized",
		}))
		assert.Error(mt, repo.attach(ctx, mt.Client))
	})

	mt.Run("write error", func(mt *mtest.T) {
		repo := NewPointsRepository("", "fraud", "fraud_transactions")
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		require.NoError(mt, repo.attach(ctx, mt.Client))

		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))
		assert.Error(mt, repo.WritePoint(ctx, dp))
	})
}
