package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"

	"csvchat/internal/config"
	"csvchat/internal/gateway"
	"csvchat/internal/ratelimit"
	"csvchat/internal/usage"
	"csvchat/internal/utils"
)

// QAGateway is the slice of the gateway the HTTP layer needs.
type QAGateway interface {
	AnswerQuestion(ctx context.Context, req gateway.ChatRequest) (*gateway.ChatAnswer, error)
	DetectProvider() (gateway.ProviderDescriptor, bool)
	Catalog() []gateway.ProviderDescriptor
}

// Dependencies aggregates all services the HTTP layer needs.
type Dependencies struct {
	Gateway   QAGateway
	RateLimit ratelimit.Limiter
	Usage     usage.Recorder

	maxUploadBytes int64
	creds          gateway.Credentials
	logger         *utils.Logger

	redisClient *redis.Client
	repo        *usage.Repository
}

// NewRouter creates the HTTP handler with all dependencies wired up.
func NewRouter(cfg *config.Config) (http.Handler, *Dependencies, error) {
	catalog := gateway.NewCatalog(gateway.CatalogOptions{
		AnthropicModel:  cfg.Provider.AnthropicModel,
		OpenAIModel:     cfg.Provider.OpenAIModel,
		GoogleModel:     cfg.Provider.GoogleModel,
		AzureEndpoint:   cfg.Provider.AzureEndpoint,
		AzureDeployment: cfg.Provider.AzureDeployment,
		AzureAPIVersion: cfg.Provider.AzureAPIVersion,
	})
	creds := gateway.Credentials{
		gateway.KindAnthropic:   cfg.Provider.AnthropicAPIKey,
		gateway.KindOpenAI:      cfg.Provider.OpenAIAPIKey,
		gateway.KindAzureOpenAI: cfg.Provider.AzureAPIKey,
		gateway.KindGoogle:      cfg.Provider.GoogleAPIKey,
	}

	deps := &Dependencies{
		Gateway: gateway.New(gateway.Options{
			Catalog:     catalog,
			Credentials: creds,
			Timeout:     cfg.Provider.RequestTimeout,
		}),
		RateLimit:      ratelimit.NewNoopLimiter(),
		Usage:          usage.NewNoopRecorder(),
		maxUploadBytes: cfg.MaxUploadBytes,
		creds:          creds,
		logger:         utils.NewLogger("httpapi"),
	}

	// Redis is optional; it enables rate limiting and the shared usage
	// queue.
	if cfg.Redis.Address != "" {
		deps.redisClient = redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Address,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if cfg.RateLimit.PerMinute > 0 {
			deps.RateLimit = ratelimit.NewRateLimiter(deps.redisClient, cfg.RateLimit.PerMinute)
		}
	}

	if err := deps.initUsageRecorder(cfg); err != nil {
		return nil, nil, err
	}

	mux := http.NewServeMux()
	registerRoutes(mux, deps)

	return corsMiddleware(mux), deps, nil
}

// initUsageRecorder wires the usage pipeline when the database or S3 sink
// is configured; otherwise recording stays a noop.
func (d *Dependencies) initUsageRecorder(cfg *config.Config) error {
	var writers []usage.Writer

	if cfg.Database.URL != "" {
		repo, err := usage.NewRepository(usage.DBConfig{
			DSN:             cfg.Database.URL,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize usage database: %w", err)
		}
		d.repo = repo
		writers = append(writers, repo)
	}

	if cfg.UsageSink.Enabled && cfg.UsageSink.S3Bucket != "" {
		sink, err := usage.NewS3Sink(context.Background(),
			cfg.UsageSink.S3Bucket, cfg.UsageSink.S3Region, cfg.UsageSink.S3Prefix, cfg.UsageSink.PodName)
		if err != nil {
			return fmt.Errorf("failed to initialize usage S3 sink: %w", err)
		}
		writers = append(writers, sink)
	}

	if len(writers) == 0 {
		return nil
	}

	qcfg := usage.DefaultQueueConfig()
	qcfg.BufferSize = cfg.UsageSink.BufferSize
	if cfg.UsageSink.FlushSize > 0 {
		qcfg.BatchSize = cfg.UsageSink.FlushSize
	}
	if cfg.UsageSink.FlushInterval > 0 {
		qcfg.BatchTimeout = cfg.UsageSink.FlushInterval
	}

	var q usage.Queue
	if d.redisClient != nil {
		rq, err := usage.NewRedisQueue(d.redisClient)
		if err != nil {
			return fmt.Errorf("failed to initialize usage queue: %w", err)
		}
		q = rq
	} else {
		q = usage.NewMemoryQueue(qcfg)
	}

	worker := usage.NewWorker(q, qcfg, writers...)
	worker.Start(context.Background())
	d.Usage = usage.NewQueueRecorder(q, worker)
	return nil
}

// Shutdown flushes and closes everything the router owns.
func (d *Dependencies) Shutdown(ctx context.Context) error {
	var firstErr error
	if err := d.Usage.Shutdown(ctx); err != nil {
		firstErr = err
	}
	if d.repo != nil {
		if err := d.repo.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if d.redisClient != nil {
		if err := d.redisClient.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func registerRoutes(mux *http.ServeMux, deps *Dependencies) {
	mux.HandleFunc("/chat", deps.handleChat)
	mux.HandleFunc("/health", deps.handleHealth)
	mux.HandleFunc("/upload-info", deps.handleUploadInfo)
	mux.HandleFunc("/debug-env", deps.handleDebugEnv)
}
