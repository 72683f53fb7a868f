package models

import (
	// Go Internal Packages
	"time"
)

const FraudMeasurement = "fraud_transactions"

// Transaction is a decoded transaction event. Amount is in currency minor units.
type Transaction struct {
	UserID    string
	Amount    int64
	Timestamp time.Time
}

// DataPoint is the time-series shape persisted for a flagged transaction.
type DataPoint struct {
	Measurement string
	UserID      string
	Amount      int64
	Timestamp   time.Time
}

// NewDataPoint maps a flagged transaction to its point at ts, truncated to milliseconds.
func NewDataPoint(tx Transaction, ts time.Time) DataPoint {
	return DataPoint{
		Measurement: FraudMeasurement,
		UserID:      tx.UserID,
		Amount:      tx.Amount,
		Timestamp:   ts.Truncate(time.Millisecond),
	}
}

// FailedPoint is a dead-lettered point kept for manual replay.
type FailedPoint struct {
	UserID    string    `json:"userId"`
	Amount    int64     `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
	Topic     string    `json:"topic"`
	Partition int32     `json:"partition"`
	Offset    int64     `json:"offset"`
	Attempts  int       `json:"attempts"`
	Error     string    `json:"error"`
	FailedAt  time.Time `json:"failed_at"`
}

type MongoDataPoint struct {
	Timestamp   time.Time `json:"timestamp" bson:"timestamp"`
	UserID      string    `json:"userId" bson:"userId"`
	Amount      int64     `json:"amount" bson:"amount"`
	Measurement string    `json:"measurement" bson:"measurement"`
}

func ToMongoDataPoint(dp DataPoint) MongoDataPoint {
	return MongoDataPoint{
		Timestamp:   dp.Timestamp,
		UserID:      dp.UserID,
		Amount:      dp.Amount,
		Measurement: dp.Measurement,
	}
}
