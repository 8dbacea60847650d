package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/spacesedan/sentiflow-kv/config"
	"github.com/spacesedan/sentiflow-kv/internal/analysis"
	"github.com/spacesedan/sentiflow-kv/internal/cache"
	"github.com/spacesedan/sentiflow-kv/internal/clients"
	"github.com/spacesedan/sentiflow-kv/internal/clients/kafka_client"
	"github.com/spacesedan/sentiflow-kv/internal/db"
	"github.com/spacesedan/sentiflow-kv/internal/monitoring"
	"github.com/spacesedan/sentiflow-kv/internal/producer"
	"github.com/spacesedan/sentiflow-kv/internal/sentiment"
)

// App holds the analysis service and the background workers that support it.
type App struct {
	Service *analysis.Service

	// ModelHealthy is nil when the model backend cannot be probed.
	ModelHealthy *atomic.Bool

	cfg       *config.Config
	checker   monitoring.HealthChecker
	publisher *producer.ResultPublisher
	closers   []func()
	wg        sync.WaitGroup
}

// New connects the configured model backend, cache store and results feed.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}

	generator, err := a.newGenerator(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	if checker, ok := generator.(monitoring.HealthChecker); ok {
		a.checker = checker
		a.ModelHealthy = &atomic.Bool{}
	}

	store, err := a.newStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := []analysis.Option{analysis.WithProvider(cfg.ModelProvider)}
	if cfg.KafkaBroker != "" {
		p, err := kafka_client.NewProducer(kafka_client.KafkaConfig{Broker: cfg.KafkaBroker})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, p.Close)
		a.publisher = producer.NewResultPublisher(p, cfg.KafkaResultsTopic)
		opts = append(opts, analysis.WithResultSink(a.publisher))
	}

	classifier := sentiment.NewClassifier(generator,
		sentiment.WithMaxTokens(cfg.ModelMaxTokens),
		sentiment.WithTimeout(cfg.ModelTimeout))

	a.Service = analysis.NewService(cache.NewSentimentCache(db.WithPrefix(store, cfg.StoreKeyPrefix)), classifier, opts...)

	slog.Info("[App] Initialized",
		slog.String("provider", cfg.ModelProvider),
		slog.String("model", cfg.Model()),
		slog.String("store", cfg.StoreBackend),
		slog.Bool("results_feed", a.publisher != nil))
	return a, nil
}

// Start launches the health monitor and the results publisher. They stop
// when ctx is cancelled.
func (a *App) Start(ctx context.Context) {
	if a.checker != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			monitoring.MonitorModelHealth(ctx, a.checker, a.cfg.HealthCheckInterval, a.ModelHealthy)
		}()
	}
	if a.publisher != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.publisher.Run(ctx)
		}()
	}
}

// Close waits for background workers, publishes any results still buffered
// and releases client connections.
func (a *App) Close() {
	a.wg.Wait()
	if a.publisher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), kafka_client.DELIVERY_WAIT)
		a.publisher.Flush(ctx)
		cancel()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) newGenerator(ctx context.Context) (sentiment.Generator, error) {
	cfg := a.cfg
	switch cfg.ModelProvider {
	case config.ProviderOpenAI:
		return clients.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.Model()), nil
	case config.ProviderHuggingFace:
		return clients.NewHuggingFaceClient(cfg.HFEndpoint, cfg.Model(), cfg.HFAPIToken, cfg.ModelTimeout), nil
	case config.ProviderGemini:
		g, err := clients.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.Model())
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, g.Close)
		return g, nil
	case config.ProviderVader:
		return sentiment.NewVaderGenerator(), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.ModelProvider)
	}
}

func (a *App) newStore(ctx context.Context) (db.Store, error) {
	cfg := a.cfg
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return db.NewMemoryStore(), nil
	case config.BackendValkey:
		client, err := clients.NewValkeyClient(ctx, clients.ValkeyOptions{
			Address:  cfg.ValkeyAddress,
			Password: cfg.ValkeyPassword,
			TLS:      cfg.ValkeyTLS,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return db.NewValkeyStore(client), nil
	case config.BackendDynamoDB:
		client, err := clients.NewDynamoDBClient(ctx, cfg.AWSRegion, cfg.AWSEndpoint)
		if err != nil {
			return nil, err
		}
		return db.NewDynamoDBStore(client, cfg.DynamoDBTable), nil
	case config.BackendPostgres:
		pool, err := clients.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		store := db.NewPostgresStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
