package kafka

import (
	// Go Internal Packages
	"context"
	"sync"
	"time"

	// Local Packages
	errors "fraud-stream/errors"
	metrics "fraud-stream/metrics"
	models "fraud-stream/models"
	utils "fraud-stream/utils"

	// External Packages
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kprom"
	"go.uber.org/zap"
)

// Consumer reads the transactions topic with one worker goroutine per assigned
// partition. Offsets are marked only after a record is fully handled and are
// committed periodically, on revoke and on shutdown.
type Consumer struct {
	Client  *kgo.Client
	Config  *models.ConsumerConfig
	Logger  *zap.Logger
	Metrics *metrics.Pipeline
	hooks   *kprom.Metrics

	mu        sync.Mutex
	handle    func(models.Record) error
	workers   map[topicPartition]*partitionWorker
	fetchErrs map[topicPartition]*fetchFailures
	halted    map[topicPartition]bool
	now       func() time.Time
}

// NewFraudConsumer creates a consumer. Open must be called before Consume.
func NewFraudConsumer(conf *models.ConsumerConfig, hooks *kprom.Metrics, m *metrics.Pipeline, logger *zap.Logger) *Consumer {
	return &Consumer{
		Config:    conf,
		Logger:    logger,
		Metrics:   m,
		hooks:     hooks,
		workers:   make(map[topicPartition]*partitionWorker),
		fetchErrs: make(map[topicPartition]*fetchFailures),
		halted:    make(map[topicPartition]bool),
		now:       time.Now,
	}
}

// fetchFailures tracks one episode of consecutive fetch errors on a partition.
type fetchFailures struct {
	count int
	last  time.Time
}

func (c *Consumer) Name() string { return "kafka" }

// Open creates the client and checks that a broker is reachable.
func (c *Consumer) Open(ctx context.Context) error {
	opts := []kgo.Opt{
		kgo.SeedBrokers(c.Config.Brokers...),
		kgo.ConsumerGroup(c.Config.Name),
		kgo.ConsumeTopics(c.Config.Topic),
		kgo.AutoCommitMarks(),
		kgo.BlockRebalanceOnPoll(),
		kgo.OnPartitionsAssigned(c.assigned),
		kgo.OnPartitionsRevoked(c.revoked),
		kgo.OnPartitionsLost(c.lost),
	}
	if c.hooks != nil {
		opts = append(opts, kgo.WithHooks(c.hooks))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return err
	}
	if err = client.Ping(ctx); err != nil {
		client.Close()
		return err
	}

	c.Client = client
	return nil
}

// Consume polls until ctx is cancelled, handing each partition's records to its
// worker. On return every worker has finished its current record; marked
// offsets are committed by the periodic autocommit, on revoke and in Close.
func (c *Consumer) Consume(ctx context.Context, handle func(models.Record) error) error {
	c.mu.Lock()
	c.handle = handle
	c.mu.Unlock()
	defer c.shutdownWorkers()

	for {
		if ctx.Err() != nil {
			c.Logger.Info("polling stopped: context canceled")
			return nil
		}

		fetches := c.Client.PollRecords(ctx, c.Config.RecordsPerPoll)
		if fetches.IsClientClosed() {
			return errors.UnavailableErr("kafka", errors.New("client closed"))
		}
		if ctx.Err() != nil {
			c.Client.AllowRebalance()
			c.Logger.Info("polling stopped: context canceled")
			return nil
		}

		fetches.EachError(func(topic string, partition int32, err error) {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			if partition < 0 {
				c.Logger.Warn("fetch failed", zap.String("topic", topic), zap.Error(err))
				return
			}
			c.fetchFailed(topicPartition{topic, partition}, err)
		})

		fetches.EachPartition(func(p kgo.FetchTopicPartition) {
			if p.Err != nil || len(p.Records) == 0 {
				return
			}
			c.dispatch(ctx, p)
		})

		c.Client.AllowRebalance()
	}
}

func (c *Consumer) dispatch(ctx context.Context, p kgo.FetchTopicPartition) {
	tp := topicPartition{p.Topic, p.Partition}

	c.mu.Lock()
	delete(c.fetchErrs, tp)
	w, ok := c.workers[tp]
	c.mu.Unlock()
	if !ok {
		return
	}

	select {
	case w.recs <- p.Records:
	case <-w.done:
	case <-ctx.Done():
	}
}

// fetchFailed backs a partition off after a fetch error and halts it once the
// configured number of consecutive failures is reached. An error arriving after
// the whole backoff window has passed quietly starts a new episode. Other
// partitions keep going.
func (c *Consumer) fetchFailed(tp topicPartition, err error) {
	now := c.now()

	c.mu.Lock()
	ff, ok := c.fetchErrs[tp]
	if !ok || now.Sub(ff.last) > c.episodeWindow() {
		ff = &fetchFailures{}
		c.fetchErrs[tp] = ff
	}
	ff.count++
	ff.last = now
	attempt := ff.count
	c.mu.Unlock()

	paused := map[string][]int32{tp.topic: {tp.partition}}
	c.Client.PauseFetchPartitions(paused)

	if attempt > c.Config.MaxFetchRetries {
		c.Logger.Error("halting partition after repeated fetch failures",
			zap.String("topic", tp.topic),
			zap.Int32("partition", tp.partition),
			zap.Int("attempts", attempt),
			zap.Error(err),
		)
		c.halt(tp)
		return
	}

	delay := c.Config.FetchBackoff << (attempt - 1)
	c.Logger.Warn("fetch failed, backing off partition",
		zap.String("topic", tp.topic),
		zap.Int32("partition", tp.partition),
		zap.Int("attempt", attempt),
		zap.Duration("backoff", delay),
		zap.Error(err),
	)
	time.AfterFunc(delay, func() {
		c.mu.Lock()
		halted := c.halted[tp]
		c.mu.Unlock()
		if !halted {
			c.Client.ResumeFetchPartitions(paused)
		}
	})
}

// episodeWindow is the longest quiet gap that still counts as the same failure episode.
func (c *Consumer) episodeWindow() time.Duration {
	return c.Config.FetchBackoff << c.Config.MaxFetchRetries
}

func (c *Consumer) halt(tp topicPartition) {
	c.mu.Lock()
	if c.halted[tp] {
		c.mu.Unlock()
		return
	}
	c.halted[tp] = true
	c.mu.Unlock()

	c.Metrics.HaltedPartitions.Inc()
	c.killWorkers(map[string][]int32{tp.topic: {tp.partition}})
}

func (c *Consumer) assigned(_ context.Context, cl *kgo.Client, assigned map[string][]int32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Logger.Info("partitions assigned", zap.String("assignment", utils.FormatAssignment(assigned)))
	for topic, partitions := range assigned {
		for _, partition := range partitions {
			tp := topicPartition{topic, partition}
			if c.halted[tp] {
				continue
			}
			w := newPartitionWorker(topic, partition, c.Config.EachPartitionChanSize, c.process, cl.MarkCommitRecords, c.Logger)
			c.workers[tp] = w
			go w.consume()
		}
	}
}

func (c *Consumer) revoked(ctx context.Context, cl *kgo.Client, revoked map[string][]int32) {
	c.killWorkers(revoked)
	if err := cl.CommitMarkedOffsets(ctx); err != nil {
		c.Logger.Error("failed to commit offsets on revoke", zap.Error(err))
	}
}

func (c *Consumer) lost(_ context.Context, _ *kgo.Client, lost map[string][]int32) {
	c.killWorkers(lost)
}

// process forwards to the handler given to Consume. Records only reach workers
// after it is set.
func (c *Consumer) process(r models.Record) error {
	c.mu.Lock()
	handle := c.handle
	c.mu.Unlock()
	return handle(r)
}

// killWorkers stops the workers of the given partitions and waits for them to
// finish their current record.
func (c *Consumer) killWorkers(partitions map[string][]int32) {
	var stopped []*partitionWorker

	c.Logger.Info("stopping partition workers", zap.String("assignment", utils.FormatAssignment(partitions)))
	c.mu.Lock()
	for topic, ps := range partitions {
		for _, partition := range ps {
			tp := topicPartition{topic, partition}
			w, ok := c.workers[tp]
			if !ok {
				continue
			}
			delete(c.workers, tp)
			w.stop()
			stopped = append(stopped, w)
		}
	}
	c.mu.Unlock()

	for _, w := range stopped {
		<-w.done
	}
}

func (c *Consumer) shutdownWorkers() {
	all := make(map[string][]int32)
	c.mu.Lock()
	for tp := range c.workers {
		all[tp.topic] = append(all[tp.topic], tp.partition)
	}
	c.mu.Unlock()
	c.killWorkers(all)
}

// Close commits marked offsets and leaves the group, both bounded by ctx. The
// supervisor passes what is left of the shutdown grace period; if it runs out
// the client keeps closing in the background and uncommitted records are redelivered.
func (c *Consumer) Close(ctx context.Context) error {
	if c.Client == nil {
		return nil
	}
	if err := c.Client.CommitMarkedOffsets(ctx); err != nil {
		c.Logger.Error("failed to commit offsets on shutdown", zap.Error(err))
	}

	closed := make(chan struct{})
	go func() {
		c.Client.Close()
		close(closed)
	}()

	select {
	case <-closed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
