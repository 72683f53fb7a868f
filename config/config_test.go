package config

import (
	// Go Internal Packages
	"testing"
	"time"

	// Local Packages
	errors "fraud-stream/errors"

	// External Packages
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadDefault(t *testing.T) Config {
	t.Helper()
	k := koanf.New(".")
	require.NoError(t, k.Load(rawbytes.Provider(DefaultConfig), yaml.Parser()))

	var c Config
	require.NoError(t, k.Unmarshal("", &c))
	return c
}

func TestDefaultConfig(t *testing.T) {
	c := loadDefault(t)

	assert.Equal(t, "fraud-stream", c.Application)
	assert.Equal(t, []string{"localhost:9092"}, c.Kafka.Brokers)
	assert.Equal(t, int64(10000), c.Fraud.Threshold)
	assert.Equal(t, 100*time.Millisecond, c.Writer.InitialBackoff)
	assert.Equal(t, 15*time.Second, c.Shutdown.GracePeriod)
	assert.Equal(t, TimestampProcessing, c.Store.TimestampMode)

	// the token is a secret and only arrives from the environment
	err := c.Validate()
	require.Error(t, err)
	assert.Equal(t, errors.Invalid, errors.KindOf(err))
	assert.Contains(t, err.Error(), "influxdb.token")

	c.InfluxDB.Token = "secret"
	assert.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{name: "no brokers", mutate: func(c *Config) { c.Kafka.Brokers = nil }, field: "kafka.brokers"},
		{name: "unknown backend", mutate: func(c *Config) { c.Store.Backend = "sqlite" }, field: "store.backend"},
		{name: "mongo without uri", mutate: func(c *Config) { c.Store.Backend = BackendMongoDB; c.Mongo.URI = "" }, field: "mongo.uri"},
		{name: "bad timestamp mode", mutate: func(c *Config) { c.Store.TimestampMode = "wall" }, field: "store.timestamp_mode"},
		{name: "redis without uri", mutate: func(c *Config) { c.Redis.Enabled = true; c.Redis.URI = "" }, field: "redis.uri"},
		{name: "negative threshold", mutate: func(c *Config) { c.Fraud.Threshold = -1 }, field: "fraud.threshold"},
		{name: "backoff bounds", mutate: func(c *Config) { c.Writer.MaxBackoff = time.Millisecond }, field: "writer.initial_backoff"},
		{name: "negative fetch retries", mutate: func(c *Config) { c.Kafka.MaxFetchRetries = -1 }, field: "kafka.max_fetch_retries"},
		{name: "fetch retries overflow backoff", mutate: func(c *Config) { c.Kafka.MaxFetchRetries = 63 }, field: "kafka.max_fetch_retries"},
		{name: "zero fetch backoff", mutate: func(c *Config) { c.Kafka.FetchBackoff = 0 }, field: "kafka.fetch_backoff"},
		{name: "huge fetch backoff", mutate: func(c *Config) { c.Kafka.FetchBackoff = time.Hour }, field: "kafka.fetch_backoff"},
		{name: "unbounded retry elapsed", mutate: func(c *Config) { c.Writer.MaxElapsed = 0 }, field: "writer.max_elapsed"},
		{name: "no grace period", mutate: func(c *Config) { c.Shutdown.GracePeriod = 0 }, field: "shutdown.grace_period"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := loadDefault(t)
			c.InfluxDB.Token = "secret"
			tt.mutate(&c)

			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}
