package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"social-content/cmd/api/auth"
	"social-content/cmd/api/clients/groupclient"
	"social-content/cmd/api/clients/mediaclient"
	"social-content/cmd/api/handlers"
	"social-content/cmd/api/httpclient"
	"social-content/cmd/api/router"
	"social-content/config"
	"social-content/db"
	"social-content/eventbus"
	"social-content/logger"
	"social-content/repositories"
	"social-content/search"
	"social-content/services"
)

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	lg := logger.InitFromEnv("LOG_LEVEL", cfg.Logging.Level)
	gin.SetMode(gin.ReleaseMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := db.Init(ctx, cfg.Mongo); err != nil {
		lg.Errorf("failed to initialize MongoDB: %v", err)
		os.Exit(1)
	}
	database := db.Database()

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

	jwtManager, err := auth.NewJWTManagerFromEnv()
	if err != nil {
		lg.Errorf("failed to configure jwt: %v", err)
		os.Exit(1)
	}

	es, err := search.NewElasticClient(cfg.Elasticsearch)
	if err != nil {
		lg.Errorf("failed to create elasticsearch client: %v", err)
		os.Exit(1)
	}

	contents := repositories.NewContentRepository(database)
	groups := groupclient.New(httpclient.Config{BaseURL: cfg.Clients.GroupBaseURL, Timeout: cfg.Clients.Timeout}, lg)
	reporter := logger.NewReporter(lg)

	deps := services.Deps{
		Contents:        contents,
		Media:           mediaclient.New(httpclient.Config{BaseURL: cfg.Clients.MediaBaseURL, Timeout: cfg.Clients.Timeout}, lg),
		Groups:          groups,
		Users:           groups,
		Tags:            repositories.NewTagRepository(database),
		LinkPreviews:    repositories.NewLinkPreviewRepository(database),
		Markers:         repositories.NewContentMarkerRepository(database),
		Authorizer:      services.AllowAll{},
		Publisher:       services.NewEventDispatcher(bus, eventbus.TopicContentEvents, lg),
		Logger:          lg,
		Reporter:        reporter,
		MinScheduleLead: cfg.Publishing.MinScheduleLead,
	}

	deadLetters := repositories.NewFailedProcessLogRepository(database)
	searchSvc := search.NewService(
		search.NewElasticEngine(es),
		contents,
		deadLetters,
		search.ServiceConfig{
			Indices:    search.NewIndices(cfg.Elasticsearch.Namespace),
			MaxRetries: cfg.Elasticsearch.MaxRetries,
		},
		lg,
		reporter,
	)

	handler := router.New(router.Deps{
		Posts:       handlers.NewPostHandler(services.NewPostService(deps)),
		Articles:    handlers.NewArticleHandler(services.NewArticleService(deps)),
		Series:      handlers.NewSeriesHandler(services.NewSeriesService(deps)),
		Search:      handlers.NewSearchHandler(searchSvc),
		DeadLetters: handlers.NewDeadLetterHandler(deadLetters),
		JWT:         jwtManager,
		Logger:      lg,
		Health: func(ctx context.Context) error {
			return db.Client().Ping(ctx, nil)
		},
		AllowedOrigins: cfg.API.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.API.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		lg.Infof("starting api server on %s", cfg.API.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Errorf("api server error: %v", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
		lg.Info("received shutdown signal, shutting down api server...")
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Errorf("api server shutdown error: %v", err)
	}
	_ = db.Client().Disconnect(shutdownCtx)

	lg.Info("api server stopped")
}
