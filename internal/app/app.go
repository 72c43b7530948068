// Package app wires configuration, storage, caches, services and
// transport into a runnable server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"questionflow/internal/cache"
	"questionflow/internal/config"
	"questionflow/internal/metrics"
	"questionflow/internal/repository"
	"questionflow/internal/service"
	"questionflow/internal/transport/rest"
	"questionflow/internal/transport/ws"
)

const pingTimeout = 5 * time.Second

// App is the composed server
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	QuestionnaireRepo repository.QuestionnaireRepo
	SessionCache      cache.SessionCache
	TokenCache        cache.TokenCache

	AuthService          *service.AuthService
	QuestionnaireService *service.QuestionnaireService
	EditorService        *service.EditorService
	WSHub                *ws.Hub

	redis   *redis.Client
	closers []func()
}

// New connects every backend named by cfg and builds the services
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	policy, err := cfg.EditorPolicy()
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Logger: logger, Metrics: metrics.New()}

	repo, closeRepo, err := OpenRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.QuestionnaireRepo = repo
	a.closers = append(a.closers, closeRepo)

	a.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr()})
	a.closers = append(a.closers, func() { a.redis.Close() })
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := a.redis.Ping(pingCtx).Err(); err != nil {
		a.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	logger.Info("connected to redis", "addr", cfg.RedisAddr())

	a.SessionCache = cache.NewSessionCache(a.redis, cfg.Editor.SessionTTL)
	a.TokenCache = cache.NewTokenCache(a.redis)

	a.WSHub = ws.NewHub(logger, a.Metrics)
	a.closers = append(a.closers, a.WSHub.Close)

	a.AuthService = service.NewAuthService(cfg.Auth, a.TokenCache)
	a.QuestionnaireService = service.NewQuestionnaireService(repo, logger)
	a.EditorService = service.NewEditorService(a.QuestionnaireService, a.SessionCache, policy, logger)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	a.QuestionnaireService.SetBroadcaster(a.WSHub)
	a.QuestionnaireService.SetMetrics(a.Metrics)
	a.EditorService.SetBroadcaster(a.WSHub)
	a.EditorService.SetMetrics(a.Metrics)

	logger.Info("editor policy",
		"type_switch", policy.TypeSwitch,
		"validation", policy.Validation,
		"reconcile", policy.Reconcile,
		"session_ttl", cfg.Editor.SessionTTL)
	return a, nil
}

// OpenRepository connects the configured questionnaire store. The returned
// func releases its connections.
func OpenRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.QuestionnaireRepo, func(), error) {
	switch cfg.Store {
	case config.StoreMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongodb: %w", err)
		}
		closeFn := func() { client.Disconnect(context.Background()) }

		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("ping mongodb: %w", err)
		}
		db := client.Database(cfg.MongoDatabase)
		if err := repository.EnsureIndexes(ctx, db); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("ensure mongodb indexes: %w", err)
		}
		logger.Info("connected to mongodb", "database", cfg.MongoDatabase)
		return repository.NewQuestionnaireRepo(db), closeFn, nil

	case config.StorePostgres:
		pool, err := repository.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := repository.EnsurePostgresSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ensure postgres schema: %w", err)
		}
		logger.Info("connected to postgres")
		return repository.NewPostgresQuestionnaireRepo(pool), pool.Close, nil

	case config.StoreMemory:
		logger.Warn("using in-memory questionnaire store; data is lost on restart")
		return repository.NewMemoryQuestionnaireRepo(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
}

// Handler builds the HTTP router
func (a *App) Handler() http.Handler {
	return rest.NewRouter(&rest.Container{
		AuthService:          a.AuthService,
		QuestionnaireService: a.QuestionnaireService,
		EditorService:        a.EditorService,
		WSHub:                a.WSHub,
		Metrics:              a.Metrics,
		CORS:                 a.Config.CORS,
		Logger:               a.Logger,
	})
}

// Close releases backends in reverse order of acquisition
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
