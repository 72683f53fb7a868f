package config

import (
	// Go Internal Packages
	"fmt"
	"time"

	// Local Packages
	errors "fraud-stream/errors"
)

var DefaultConfig = []byte(`
application: "fraud-stream"

logger:
  level: "debug"

is_prod_mode: false

kafka:
  brokers:
    - "localhost:9092"
  topic: "transactions"
  consumer_name: "fraud-stream"
  channel_size: 2
  records_per_poll: 500
  max_fetch_retries: 5
  fetch_backoff: 1s

store:
  backend: "influxdb"
  timestamp_mode: "processing"

influxdb:
  url: "http://localhost:8086"
  token: ""
  org: "fraud"
  bucket: "fraud_bucket"

mongo:
  uri: "mongodb://localhost:27017"
  database: "fraud"
  collection: "fraud_transactions"

redis:
  enabled: false
  uri: "localhost:6379"
  password: ""
  list: "failed-fraud-points"

fraud:
  predicate: "threshold"
  threshold: 10000

writer:
  max_retries: 5
  initial_backoff: 100ms
  max_backoff: 5s
  max_elapsed: 30s
  attempt_timeout: 5s

shutdown:
  grace_period: 15s

metrics:
  listen: ":9090"
`)

const (
	BackendInfluxDB = "influxdb"
	BackendMongoDB  = "mongodb"

	TimestampProcessing = "processing"
	TimestampEvent      = "event"

	// Partition backoff doubles per failure, these bounds keep FetchBackoff<<MaxFetchRetries finite.
	MaxFetchRetries = 16
	MaxFetchBackoff = time.Minute
)

type Config struct {
	Application string   `koanf:"application"`
	Logger      Logger   `koanf:"logger"`
	IsProdMode  bool     `koanf:"is_prod_mode"`
	Kafka       Kafka    `koanf:"kafka"`
	Store       Store    `koanf:"store"`
	InfluxDB    InfluxDB `koanf:"influxdb"`
	Mongo       Mongo    `koanf:"mongo"`
	Redis       Redis    `koanf:"redis"`
	Fraud       Fraud    `koanf:"fraud"`
	Writer      Writer   `koanf:"writer"`
	Shutdown    Shutdown `koanf:"shutdown"`
	Metrics     Metrics  `koanf:"metrics"`
}

type Logger struct {
	Level string `koanf:"level"`
}

type Kafka struct {
	Brokers         []string      `koanf:"brokers"`
	Topic           string        `koanf:"topic"`
	ConsumerName    string        `koanf:"consumer_name"`
	ChannelSize     int           `koanf:"channel_size"`
	RecordsPerPoll  int           `koanf:"records_per_poll"`
	MaxFetchRetries int           `koanf:"max_fetch_retries"`
	FetchBackoff    time.Duration `koanf:"fetch_backoff"`
}

type Store struct {
	Backend       string `koanf:"backend"`
	TimestampMode string `koanf:"timestamp_mode"`
}

type InfluxDB struct {
	URL    string `koanf:"url"`
	Token  string `koanf:"token"`
	Org    string `koanf:"org"`
	Bucket string `koanf:"bucket"`
}

type Mongo struct {
	URI        string `koanf:"uri"`
	Database   string `koanf:"database"`
	Collection string `koanf:"collection"`
}

type Redis struct {
	Enabled  bool   `koanf:"enabled"`
	URI      string `koanf:"uri"`
	Password string `koanf:"password"`
	List     string `koanf:"list"`
}

type Fraud struct {
	Predicate string `koanf:"predicate"`
	Threshold int64  `koanf:"threshold"`
}

type Writer struct {
	MaxRetries     int           `koanf:"max_retries"`
	InitialBackoff time.Duration `koanf:"initial_backoff"`
	MaxBackoff     time.Duration `koanf:"max_backoff"`
	MaxElapsed     time.Duration `koanf:"max_elapsed"`
	AttemptTimeout time.Duration `koanf:"attempt_timeout"`
}

type Shutdown struct {
	GracePeriod time.Duration `koanf:"grace_period"`
}

type Metrics struct {
	Listen string `koanf:"listen"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	ve := errors.ValidationErrs()

	if c.Application == "" {
		ve.Add("application", "cannot be empty")
	}
	if c.Logger.Level == "" {
		ve.Add("logger.level", "cannot be empty")
	}
	if len(c.Kafka.Brokers) == 0 {
		ve.Add("kafka.brokers", "cannot be empty")
	}
	if c.Kafka.Topic == "" {
		ve.Add("kafka.topic", "cannot be empty")
	}
	if c.Kafka.ConsumerName == "" {
		ve.Add("kafka.consumer_name", "cannot be empty")
	}
	if c.Kafka.RecordsPerPoll <= 0 {
		ve.Add("kafka.records_per_poll", "must be positive")
	}
	if c.Kafka.ChannelSize < 0 {
		ve.Add("kafka.channel_size", "cannot be negative")
	}
	if c.Kafka.MaxFetchRetries < 0 || c.Kafka.MaxFetchRetries > MaxFetchRetries {
		ve.Add("kafka.max_fetch_retries", fmt.Sprintf("must be between 0 and %d", MaxFetchRetries))
	}
	if c.Kafka.FetchBackoff <= 0 || c.Kafka.FetchBackoff > MaxFetchBackoff {
		ve.Add("kafka.fetch_backoff", fmt.Sprintf("must be positive and at most %s", MaxFetchBackoff))
	}

	switch c.Store.Backend {
	case BackendInfluxDB:
		if c.InfluxDB.URL == "" {
			ve.Add("influxdb.url", "cannot be empty")
		}
		if c.InfluxDB.Token == "" {
			ve.Add("influxdb.token", "cannot be empty")
		}
		if c.InfluxDB.Org == "" {
			ve.Add("influxdb.org", "cannot be empty")
		}
		if c.InfluxDB.Bucket == "" {
			ve.Add("influxdb.bucket", "cannot be empty")
		}
	case BackendMongoDB:
		if c.Mongo.URI == "" {
			ve.Add("mongo.uri", "cannot be empty")
		}
		if c.Mongo.Database == "" {
			ve.Add("mongo.database", "cannot be empty")
		}
		if c.Mongo.Collection == "" {
			ve.Add("mongo.collection", "cannot be empty")
		}
	default:
		ve.Add("store.backend", "must be one of influxdb, mongodb")
	}

	if c.Store.TimestampMode != TimestampProcessing && c.Store.TimestampMode != TimestampEvent {
		ve.Add("store.timestamp_mode", "must be one of processing, event")
	}
	if c.Redis.Enabled && c.Redis.URI == "" {
		ve.Add("redis.uri", "cannot be empty when redis is enabled")
	}
	if c.Fraud.Predicate == "" {
		ve.Add("fraud.predicate", "cannot be empty")
	}
	if c.Fraud.Threshold < 0 {
		ve.Add("fraud.threshold", "cannot be negative")
	}
	if c.Writer.MaxRetries < 0 {
		ve.Add("writer.max_retries", "cannot be negative")
	}
	if c.Writer.InitialBackoff <= 0 || c.Writer.MaxBackoff < c.Writer.InitialBackoff {
		ve.Add("writer.initial_backoff", "must be positive and not above writer.max_backoff")
	}
	if c.Writer.MaxElapsed <= 0 {
		ve.Add("writer.max_elapsed", "must be positive")
	}
	if c.Writer.AttemptTimeout <= 0 {
		ve.Add("writer.attempt_timeout", "must be positive")
	}
	if c.Shutdown.GracePeriod <= 0 {
		ve.Add("shutdown.grace_period", "must be positive")
	}

	if err := ve.Err(); err != nil {
		return errors.InvalidConfigErr(err)
	}
	return nil
}
