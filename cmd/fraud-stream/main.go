package main

import (
	// Go Internal Packages
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	// Local Packages
	config "fraud-stream/config"
	kafka "fraud-stream/kafka"
	metrics "fraud-stream/metrics"
	models "fraud-stream/models"
	pipeline "fraud-stream/pipeline"
	influxdb "fraud-stream/repositories/influxdb"
	mongodb "fraud-stream/repositories/mongodb"
	redis "fraud-stream/repositories/redis"
	server "fraud-stream/server"
	codec "fraud-stream/services/codec"
	fraud "fraud-stream/services/fraud"
	processors "fraud-stream/services/processors"
	writer "fraud-stream/services/writer"

	// External Packages
	"github.com/alecthomas/kingpin/v2"
	_ "github.com/jsternberg/zap-logfmt"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/twmb/franz-go/plugin/kprom"
	"go.uber.org/zap"
)

// LoadSecrets Loads the secret variables and overrides the config
func LoadSecrets(k config.Config) config.Config {
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		k.Kafka.Brokers = strings.Split(brokers, ",")
	}
	if token := os.Getenv("INFLUX_TOKEN"); token != "" {
		k.InfluxDB.Token = token
	}
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		k.Mongo.URI = uri
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		k.Redis.Password = password
	}
	if prod := os.Getenv("IS_PROD_MODE"); prod != "" {
		k.IsProdMode = prod == "true"
	}
	return k
}

// LoadConfig loads the default configuration and overrides it with the config file
// specified by the path defined in the config flag
func LoadConfig() *koanf.Koanf {
	configPathMsg := "Path to the application config file"
	configPath := kingpin.Flag("config", configPathMsg).Short('c').Default("config.yml").String()

	kingpin.Parse()
	k := koanf.New(".")
	_ = k.Load(rawbytes.Provider(config.DefaultConfig), yaml.Parser())
	if *configPath != "" {
		_ = k.Load(file.Provider(*configPath), yaml.Parser())
	}
	return k
}

func newStore(appKonf config.Config) interface {
	pipeline.Resource
	writer.PointStore
} {
	if appKonf.Store.Backend == config.BackendMongoDB {
		return mongodb.NewPointsRepository(appKonf.Mongo.URI, appKonf.Mongo.Database, appKonf.Mongo.Collection)
	}
	return influxdb.NewPointsRepository(appKonf.InfluxDB.URL, appKonf.InfluxDB.Token, appKonf.InfluxDB.Org, appKonf.InfluxDB.Bucket)
}

func main() {
	k := LoadConfig()
	appKonf := config.Config{}

	// Unmarshalling config into struct
	err := k.Unmarshal("", &appKonf)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Update and Validate config before starting the pipeline
	appKonf = LoadSecrets(appKonf)
	if err = appKonf.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if !appKonf.IsProdMode {
		k.Print()
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "logfmt"
	_ = cfg.Level.UnmarshalText([]byte(appKonf.Logger.Level))
	cfg.InitialFields = make(map[string]any)
	cfg.InitialFields["host"], _ = os.Hostname()
	cfg.InitialFields["service"] = appKonf.Application
	cfg.OutputPaths = []string{"stdout"}
	logger, _ := cfg.Build()
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	pipelineMetrics := metrics.NewPipeline("fraudstream", reg)
	kafkaMetrics := kprom.NewMetrics("fraudstream")

	predicate, err := fraud.New(appKonf.Fraud.Predicate, fraud.Options{Threshold: appKonf.Fraud.Threshold})
	if err != nil {
		logger.Fatal("cannot create fraud predicate", zap.Error(err))
	}

	store := newStore(appKonf)
	resources := []pipeline.Resource{store}

	var dlq writer.DeadLetterQueue
	var backlog server.Backlog
	if appKonf.Redis.Enabled {
		dlQueue := redis.NewDeadLetterQueue(appKonf.Redis.URI, appKonf.Redis.Password, appKonf.Redis.List, logger)
		resources = append(resources, dlQueue)
		dlq = dlQueue
		backlog = dlQueue
	}

	pointWriter := writer.NewWriter(store, dlq, writer.Options{
		MaxRetries:     appKonf.Writer.MaxRetries,
		InitialBackoff: appKonf.Writer.InitialBackoff,
		MaxBackoff:     appKonf.Writer.MaxBackoff,
		MaxElapsed:     appKonf.Writer.MaxElapsed,
		AttemptTimeout: appKonf.Writer.AttemptTimeout,
		EventTime:      appKonf.Store.TimestampMode == config.TimestampEvent,
	}, logger, pipelineMetrics)

	filter := processors.NewFilterStage(predicate, logger, pipelineMetrics)
	decoder := codec.NewCodec(codec.WithStrictTimestamps(appKonf.Store.TimestampMode == config.TimestampEvent))
	fraudProcessor := processors.NewFraudProcessor(logger, decoder, filter, pointWriter, pipelineMetrics)

	conf := &models.ConsumerConfig{
		Brokers:               appKonf.Kafka.Brokers,
		Name:                  appKonf.Kafka.ConsumerName,
		Topic:                 appKonf.Kafka.Topic,
		EachPartitionChanSize: appKonf.Kafka.ChannelSize,
		RecordsPerPoll:        appKonf.Kafka.RecordsPerPoll,
		MaxFetchRetries:       appKonf.Kafka.MaxFetchRetries,
		FetchBackoff:          appKonf.Kafka.FetchBackoff,
	}
	consumer := kafka.NewFraudConsumer(conf, kafkaMetrics, pipelineMetrics, logger)

	supervisor := pipeline.NewSupervisor(consumer, fraudProcessor, appKonf.Shutdown.GracePeriod, logger, resources...)

	metricsServer := server.NewServer(appKonf.Metrics.Listen, server.NewRouter(reg, kafkaMetrics.Handler(), supervisor, backlog), logger)
	metricsServer.Start()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	if err = supervisor.Run(ctx); err != nil {
		logger.Fatal("fraud pipeline failed", zap.Error(err))
	}
	logger.Info("fraud pipeline stopped")
}
