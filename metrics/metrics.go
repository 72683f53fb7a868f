package metrics

import (
	// External Packages
	"github.com/prometheus/client_golang/prometheus"
)

// Pipeline holds the counters exported by the fraud pipeline.
type Pipeline struct {
	Consumed         prometheus.Counter
	DecodeFailures   prometheus.Counter
	PredicateErrors  prometheus.Counter
	Flagged          prometheus.Counter
	Written          prometheus.Counter
	WriteRetries     prometheus.Counter
	WriteFailures    prometheus.Counter
	WritesAborted    prometheus.Counter
	DeadLettered     prometheus.Counter
	HaltedPartitions prometheus.Gauge
}

// NewPipeline creates the counters and registers them with reg.
func NewPipeline(namespace string, reg prometheus.Registerer) *Pipeline {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help})
	}

	p := &Pipeline{
		Consumed:        counter("records_consumed_total", "Records received from the event source."),
		DecodeFailures:  counter("decode_failures_total", "Records dropped because the payload could not be decoded."),
		PredicateErrors: counter("predicate_failures_total", "Records dropped because the fraud predicate failed."),
		Flagged:         counter("flagged_transactions_total", "Transactions flagged as fraud."),
		Written:         counter("points_written_total", "Data points acknowledged by the backing store."),
		WriteRetries:    counter("write_retries_total", "Write attempts that failed and were retried."),
		WriteFailures:   counter("write_failures_total", "Writes that failed after exhausting retries."),
		WritesAborted:   counter("writes_aborted_total", "In-flight writes cut off by a forced shutdown."),
		DeadLettered:    counter("dead_lettered_total", "Failed points pushed to the dead letter queue."),
		HaltedPartitions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "halted_partitions",
			Help:      "Partitions whose worker was halted after repeated fetch failures.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			p.Consumed, p.DecodeFailures, p.PredicateErrors, p.Flagged, p.Written,
			p.WriteRetries, p.WriteFailures, p.WritesAborted, p.DeadLettered, p.HaltedPartitions,
		)
	}
	return p
}

// Noop returns unregistered counters, handy in tests.
func Noop() *Pipeline {
	return NewPipeline("test", nil)
}
