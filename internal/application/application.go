package application

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"prodi/internal/config"
	"prodi/internal/domain/entity"
	"prodi/internal/domain/service/deal"
	"prodi/internal/domain/service/profile"
	"prodi/internal/domain/service/search"
	"prodi/internal/domain/service/wallet"
	"prodi/internal/infrastructure/ledger"
	"prodi/internal/infrastructure/notifier"
	"prodi/internal/infrastructure/persistence"
	"prodi/internal/infrastructure/postgrest"
	"prodi/internal/infrastructure/session"
	"prodi/internal/server"
	"prodi/internal/transport/bot"
	"prodi/internal/transport/bot/handler"
	"prodi/internal/worker"
	"prodi/pkg/application/connectors"
	"prodi/pkg/application/modules"
	"prodi/pkg/contextx"
	"prodi/pkg/httpx"
	"prodi/pkg/logx"
	"prodi/pkg/middlewarex"
	"prodi/pkg/probe"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const (
	httpServerReadHeaderTimeout = 5 * time.Second
	dealEventsBuffer            = 100
)

type profileRepository interface {
	profile.Repository
	search.Repository
}

type datastore struct {
	profiles profileRepository
	deals    deal.Repository
}

func Run(ctx context.Context, cfg config.Config) error {
	g, ctx := errgroup.WithContext(ctx)

	postgres := &connectors.Postgres{
		DSN:             cfg.Postgres.DSN,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	}
	defer postgres.Close(ctx)

	redis := &connectors.Redis{
		Address:        cfg.Redis.Address,
		Username:       cfg.Redis.Username,
		Password:       cfg.Redis.Password,
		DatabaseNumber: cfg.Redis.DatabaseNumber,
		PoolSize:       cfg.Redis.PoolSize,
	}
	defer redis.Close(ctx)

	snapshotCache := &connectors.MemoryCache{
		DefaultExpiration: cfg.Search.SnapshotTTL,
		CleanupInterval:   time.Minute,
	}

	store := newDatastore(ctx, cfg, postgres)

	searchService := search.NewService(store.profiles, snapshotCache.Client(ctx), cfg.Search.SnapshotTTL, cfg.Search.Limit)
	profileService := profile.NewService(store.profiles).WithSnapshotInvalidator(searchService)
	walletService := wallet.NewService(newSessionStore(ctx, cfg, redis), cfg.App.Name, cfg.Wallet.ChallengeTTL, cfg.Wallet.SessionTTL)
	dealService := deal.NewService(store.deals, store.profiles).
		WithMetrics(deal.NewMetrics(cfg.Metrics.Namespace, prometheus.DefaultRegisterer))

	if err := setupLedger(ctx, g, cfg, redis, dealService); err != nil {
		return err
	}

	if err := setupNotifier(ctx, g, cfg, dealService); err != nil {
		return err
	}

	warmer := worker.NewSnapshotWarmer(searchService, cfg.Search.WarmInterval)

	if cfg.Search.WarmInterval > 0 {
		if err := warmer.Start(ctx); err != nil {
			return fmt.Errorf("warmer.Start: %w", err)
		}
		defer warmer.Stop()
	}

	if err := setupDesk(ctx, g, cfg, handler.New(profileService, searchService).WithStatus(warmer)); err != nil {
		return err
	}

	router := server.NewRouter(
		server.NewServer(
			server.NewWalletServer(walletService),
			server.NewProfileServer(profileService, searchService),
			server.NewDealServer(dealService),
		),
		server.RouterOptions{
			SensitiveDataMasker: logx.NewSensitiveDataMasker(),
			LogFieldMaxLen:      cfg.HTTP.LogFieldMaxLen,
			Metrics:             middlewarex.NewHTTPMetrics(cfg.Metrics.Namespace, prometheus.DefaultRegisterer),
		},
	)

	httpServer := &http.Server{
		//nolint:exhaustruct
		Addr:              cfg.HTTP.ListenAddress,
		Handler:           router,
		ReadHeaderTimeout: httpServerReadHeaderTimeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	modules.HTTPServer{ShutdownTimeout: cfg.HTTP.ShutdownTimeout}.Run(ctx, g, httpServer)
	modules.ProbeServer{
		Name:          cfg.App.Name,
		Version:       cfg.App.Version,
		ListenAddress: cfg.Probe.ListenAddress,
		Checks:        readinessChecks(cfg, postgres, redis),
	}.Run(ctx, g)
	modules.MetricServer{ListenAddress: cfg.Metrics.ListenAddress}.Run(ctx, g)

	if err := g.Wait(); err != nil {
		return fmt.Errorf("g.Wait: %w", err)
	}

	return nil
}

// readinessChecks covers the connectors the configuration actually uses.
func readinessChecks(cfg config.Config, postgres *connectors.Postgres, redis *connectors.Redis) map[string]probe.Check {
	checks := map[string]probe.Check{}

	if cfg.Datastore.Driver == config.DriverPostgres {
		checks["postgres"] = postgres.Ping
	}

	if cfg.Wallet.SessionStore == config.StoreRedis ||
		(cfg.Ledger.Enabled() && cfg.Ledger.MemoMode == config.MemoModeQueued) {
		checks["redis"] = redis.Ping
	}

	return checks
}

func newDatastore(ctx context.Context, cfg config.Config, postgres *connectors.Postgres) datastore {
	if cfg.Datastore.Driver == config.DriverREST {
		client := postgrest.NewClient(
			cfg.Datastore.RESTURL,
			postgrest.NewTransport(
				cfg.Datastore.RESTAPIKey,
				httpx.WithSensitiveDataMasker(logx.NewSensitiveDataMasker()),
				httpx.WithLogFieldMaxLen(cfg.HTTP.LogFieldMaxLen),
			),
			cfg.Datastore.RESTTimeout,
		)

		logger(ctx).Info("datastore selected", slog.String("driver", config.DriverREST))

		return datastore{
			profiles: postgrest.NewProfileRepository(client),
			deals:    postgrest.NewDealRepository(client),
		}
	}

	db := postgres.Client(ctx)

	logger(ctx).Info("datastore selected", slog.String("driver", config.DriverPostgres))

	return datastore{
		profiles: persistence.NewProfileRepository(db),
		deals:    persistence.NewDealRepository(db),
	}
}

func newSessionStore(ctx context.Context, cfg config.Config, redis *connectors.Redis) wallet.Store {
	if cfg.Wallet.SessionStore == config.StoreRedis {
		return session.NewRedisStore(redis.Client(ctx), cfg.Wallet.RedisPrefix)
	}

	sessions := &connectors.MemoryCache{
		DefaultExpiration: cfg.Wallet.SessionTTL,
		CleanupInterval:   time.Minute,
	}

	return session.NewMemoryStore(sessions.Client(ctx))
}

func setupLedger(
	ctx context.Context,
	g *errgroup.Group,
	cfg config.Config,
	redis *connectors.Redis,
	dealService *deal.Service,
) error {
	if !cfg.Ledger.Enabled() {
		logger(ctx).Warn("ledger is not configured, deal memos are disabled")

		return nil
	}

	l, err := ledger.NewFromConfig(
		cfg.Ledger.RPCURL,
		cfg.Ledger.PrivateKey,
		ledger.WithAirdropTarget(cfg.Ledger.AirdropTarget),
		ledger.WithMaxRetries(cfg.Ledger.MaxRetries),
		ledger.WithConfirmation(time.Second, cfg.Ledger.ConfirmTimeout),
	)
	if err != nil {
		return fmt.Errorf("ledger.NewFromConfig: %w", err)
	}

	logger(ctx).Info(
		"ledger configured",
		logx.Stringer("signer", l.Signer()),
		slog.String("memo-mode", cfg.Ledger.MemoMode),
	)

	dealService.WithLedger(l)

	if cfg.Ledger.MemoMode != config.MemoModeQueued {
		return nil
	}

	client := asynq.NewClientFromRedisClient(redis.Client(ctx))

	dealService.WithMemoQueue(worker.NewMemoQueue(client).WithRetry(cfg.Worker.MaxRetry, cfg.Worker.TaskTimeout))

	modules.AsynqServer{
		RedisUsername:   cfg.Redis.Username,
		RedisPassword:   cfg.Redis.Password,
		RedisAddress:    cfg.Redis.Address,
		RedisDB:         cfg.Redis.DatabaseNumber,
		Concurrency:     cfg.Worker.Concurrency,
		ShutdownTimeout: cfg.Worker.ShutdownTimeout,
	}.Run(ctx, g, modules.AsynqQueues{worker.QueueLedger: 1}, worker.NewMemoHandler(dealService).Handler())

	return nil
}

func setupNotifier(ctx context.Context, g *errgroup.Group, cfg config.Config, dealService *deal.Service) error {
	if !cfg.Bot.Enabled() {
		return nil
	}

	bot, err := notifier.NewTelegramBot(ctx, cfg.Bot.Token, cfg.Bot.ChatID)
	if err != nil {
		return fmt.Errorf("notifier.NewTelegramBot: %w", err)
	}

	events := make(chan entity.DealEvent, dealEventsBuffer)

	dealService.WithEvents(events)

	g.Go(func() error {
		logger(ctx).Info("notifier started")

		if err := bot.Run(ctx, events); err != nil {
			return fmt.Errorf("bot.Run: %w", err)
		}

		return nil
	})

	return nil
}

func setupDesk(ctx context.Context, g *errgroup.Group, cfg config.Config, deskHandler *handler.Handler) error {
	if !cfg.Bot.DeskEnabled() {
		return nil
	}

	desk, err := bot.New(
		cfg.Bot.Token,
		cfg.Bot.AdminID,
		deskHandler.WithPageSize(cfg.Bot.PageSize),
	)
	if err != nil {
		return fmt.Errorf("bot.New: %w", err)
	}

	g.Go(func() error {
		if err := desk.Run(ctx); err != nil {
			return fmt.Errorf("desk.Run: %w", err)
		}

		return nil
	})

	return nil
}
