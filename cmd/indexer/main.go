package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"social-content/config"
	"social-content/db"
	"social-content/eventbus"
	"social-content/logger"
	"social-content/repositories"
	"social-content/search"
)

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	lg := logger.InitFromEnv("LOG_LEVEL", cfg.Logging.Level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MongoDB 초기화
	if err := db.Init(ctx, cfg.Mongo); err != nil {
		lg.Errorf("failed to initialize MongoDB: %v", err)
		os.Exit(1)
	}
	database := db.Database()

	es, err := search.NewElasticClient(cfg.Elasticsearch)
	if err != nil {
		lg.Errorf("failed to create elasticsearch client: %v", err)
		os.Exit(1)
	}

	// EventBus 초기화 및 토픽 보장
	brokers := eventbus.GetBrokers()
	if err := eventbus.EnsureTopics(ctx, brokers, eventbus.TopicContentEvents, 3); err != nil {
		lg.Errorf("failed to ensure eventbus topics: %v", err)
	}
	bus, err := eventbus.NewKafkaEventBus(brokers, lg)
	if err != nil {
		lg.Errorf("failed to create event bus: %v", err)
		os.Exit(1)
	}
	defer bus.Close()

	svc := search.NewService(
		search.NewElasticEngine(es),
		repositories.NewContentRepository(database),
		repositories.NewFailedProcessLogRepository(database),
		search.ServiceConfig{
			Indices:      search.NewIndices(cfg.Elasticsearch.Namespace),
			MaxRetries:   cfg.Elasticsearch.MaxRetries,
			RetryBackoff: 200 * time.Millisecond,
		},
		lg,
		logger.NewReporter(lg),
	)
	consumer := search.NewConsumer(svc, lg)

	groupID := eventbus.GetGroupID() + "-indexer"

	lg.Info("starting search indexer with eventbus...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := bus.Subscribe(ctx, groupID, eventbus.TopicContentEvents, consumer.HandleEvent)
		if err != nil && !errors.Is(err, context.Canceled) {
			lg.Errorf("eventbus subscribe error: %v", err)
			cancel()
		}
	}()

	select {
	case <-sigChan:
		lg.Info("received shutdown signal, shutting down search indexer...")
	case <-ctx.Done():
	}

	cancel()
	wg.Wait()
	_ = db.Client().Disconnect(context.Background())

	lg.Info("search indexer stopped")
}
