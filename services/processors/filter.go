package processors

import (
	// Local Packages
	metrics "fraud-stream/metrics"
	models "fraud-stream/models"
	fraud "fraud-stream/services/fraud"

	// External Packages
	"go.uber.org/zap"
)

// FilterStage forwards only the transactions the predicate flags. A failing
// predicate counts as not fraud.
type FilterStage struct {
	predicate fraud.Predicate
	logger    *zap.Logger
	metrics   *metrics.Pipeline
}

func NewFilterStage(predicate fraud.Predicate, logger *zap.Logger, m *metrics.Pipeline) *FilterStage {
	return &FilterStage{predicate: predicate, logger: logger, metrics: m}
}

// Forward reports whether tx should be persisted.
func (f *FilterStage) Forward(tx models.Transaction, src models.Record) bool {
	verdict, err := fraud.Evaluate(f.predicate, tx)
	if err != nil {
		f.metrics.PredicateErrors.Inc()
		f.logger.Warn("dropping record: predicate failed",
			zap.String("topic", src.Topic),
			zap.Int32("partition", src.Partition),
			zap.Int64("offset", src.Offset),
			zap.String("userId", tx.UserID),
			zap.Int64("amount", tx.Amount),
			zap.Error(err),
		)
		return false
	}

	if verdict {
		f.metrics.Flagged.Inc()
	}
	return verdict
}
