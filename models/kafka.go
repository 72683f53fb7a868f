package models

import (
	// Go Internal Packages
	"time"
)

// Record is a single message delivered by the event source.
type Record struct {
	Key       []byte
	Value     []byte
	Topic     string
	Partition int32
	Offset    int64
	Timestamp time.Time
}

type ConsumerConfig struct {
	Brokers               []string
	Name                  string
	Topic                 string
	EachPartitionChanSize int
	RecordsPerPoll        int
	// MaxFetchRetries is the number of consecutive fetch errors tolerated on a
	// partition before its worker is halted.
	MaxFetchRetries int
	FetchBackoff    time.Duration
}
