package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/twmb/franz-go/pkg/kgo"

	accounthandler "peerhelp/internal/account/handler"
	accountmetrics "peerhelp/internal/account/metrics"
	accountservice "peerhelp/internal/account/service"
	accountstore "peerhelp/internal/account/store"
	deletionhandler "peerhelp/internal/deletion/handler"
	deletionmetrics "peerhelp/internal/deletion/metrics"
	deletionservice "peerhelp/internal/deletion/service"
	deletionstore "peerhelp/internal/deletion/store"
	"peerhelp/internal/ipreputation"
	jwttoken "peerhelp/internal/jwt_token"
	moderationhandler "peerhelp/internal/moderation/handler"
	moderationmetrics "peerhelp/internal/moderation/metrics"
	moderationservice "peerhelp/internal/moderation/service"
	"peerhelp/internal/notification/channel/push"
	"peerhelp/internal/notification/channel/telegram"
	"peerhelp/internal/notification/dispatcher"
	notificationhandler "peerhelp/internal/notification/handler"
	notificationmetrics "peerhelp/internal/notification/metrics"
	notificationservice "peerhelp/internal/notification/service"
	notificationstore "peerhelp/internal/notification/store"
	"peerhelp/internal/platform/config"
	"peerhelp/internal/platform/httpserver"
	"peerhelp/internal/platform/kafka"
	"peerhelp/internal/platform/logger"
	"peerhelp/internal/platform/metrics"
	"peerhelp/internal/platform/postgres"
	redisclient "peerhelp/internal/platform/redis"
	"peerhelp/internal/scoring/signals"
	httptransport "peerhelp/internal/transport/http"
	"peerhelp/pkg/platform/audit"
	"peerhelp/pkg/platform/audit/publisher"
	kafkaaudit "peerhelp/pkg/platform/audit/store/kafka"
	auditmemory "peerhelp/pkg/platform/audit/store/memory"
	postgresaudit "peerhelp/pkg/platform/audit/store/postgres"
	"peerhelp/pkg/platform/circuit"
)

const (
	auditBufferSize  = 1024
	auditPartitions  = 3
	auditReplication = 1
)

type accountStore interface {
	accountservice.Store
}

type notificationStore interface {
	notificationservice.Store
	dispatcher.FeedWriter
	dispatcher.SubscriptionStore
}

type deletionStore interface {
	deletionservice.Store
}

// infra holds optional backing services. A nil field means the in-memory or
// disabled variant is used.
type infra struct {
	db     *sql.DB
	pool   *pgxpool.Pool
	redis  *redisclient.Client
	kafka  *kgo.Client
	health map[string]httptransport.HealthCheck
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	inf, err := connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer inf.close()

	reg := metrics.NewRegistry()
	auditPublisher := publisher.NewPublisher(auditStore(cfg, inf, log),
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithLogger(log),
	)
	defer func() { _ = auditPublisher.Close() }()

	var (
		accounts accountStore
		feed     notificationStore
		pending  deletionStore
	)
	if inf.db != nil {
		accounts = accountstore.NewPostgres(inf.db)
		feed = notificationstore.NewPostgres(inf.pool)
	} else {
		accounts = accountstore.NewInMemory()
		feed = notificationstore.NewInMemory()
	}
	if inf.redis != nil {
		pending = deletionstore.NewRedis(inf.redis.Client)
	} else {
		pending = deletionstore.NewInMemory()
	}

	notificationMetrics := notificationmetrics.New(reg)
	notifications, err := buildDispatcher(cfg, feed, accounts, auditPublisher, notificationMetrics, log)
	if err != nil {
		return err
	}

	moderationSvc := moderationservice.New(accounts, notifications,
		moderationservice.WithLogger(log),
		moderationservice.WithAuditPublisher(auditPublisher),
		moderationservice.WithMetrics(moderationmetrics.New(reg)),
	)
	notificationSvc := notificationservice.New(feed, notifications,
		notificationservice.WithLogger(log),
		notificationservice.WithAuditPublisher(auditPublisher),
		notificationservice.WithMetrics(notificationMetrics),
		notificationservice.WithStaleBanClearer(moderationSvc),
	)
	reputationBreaker := circuit.New("ip_reputation")
	metrics.RegisterBreaker(reg, reputationBreaker)
	deletionSvc := deletionservice.New(pending, accounts, notifications,
		deletionservice.WithLogger(log),
		deletionservice.WithAuditPublisher(auditPublisher),
		deletionservice.WithMetrics(deletionmetrics.New(reg)),
		deletionservice.WithCodeTTL(cfg.Deletion.CodeTTL),
		deletionservice.WithMaxAttempts(cfg.Deletion.MaxAttempts),
	)
	accountSvc := accountservice.New(accounts,
		accountservice.WithLogger(log),
		accountservice.WithAuditPublisher(auditPublisher),
		accountservice.WithMetrics(accountmetrics.New(reg)),
		accountservice.WithSignalCollector(signals.New(reputationLookup(cfg, inf, log),
			signals.WithLogger(log),
			signals.WithBreaker(reputationBreaker),
		)),
		accountservice.WithDataPurger(notificationSvc),
		accountservice.WithDataPurger(deletionSvc),
	)

	jwtService := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer)
	router := httptransport.NewRouter(httptransport.Config{
		Logger:      log,
		Validator:   jwttoken.NewJWTServiceAdapter(jwtService),
		AdminToken:  cfg.Server.AdminAPIToken,
		Registry:    reg,
		HTTPMetrics: metrics.NewHTTPMetrics(reg),
		Health:      inf.health,

		RequestTimeout: cfg.Server.RequestTimeout,
	}, httptransport.Handlers{
		Accounts:      accounthandler.New(accountSvc, log),
		Moderation:    moderationhandler.New(moderationSvc, log),
		Notifications: notificationhandler.New(notificationSvc, log),
		Deletion:      deletionhandler.New(deletionSvc, accountSvc, log),
	})

	srv := httpserver.New(cfg.Server, router)
	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting peerhelp", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	if err := notifications.Drain(shutdownCtx); err != nil {
		log.Warn("direct messages still in flight at shutdown", "error", err)
	}
	return nil
}

func connect(ctx context.Context, cfg *config.Config, log *slog.Logger) (*infra, error) {
	inf := &infra{health: make(map[string]httptransport.HealthCheck)}

	if cfg.Database.URL != "" {
		db, err := postgres.Open(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		inf.db = db
		if err := postgres.Migrate(ctx, db); err != nil {
			inf.close()
			return nil, err
		}
		pool, err := postgres.Connect(ctx, cfg.Database.URL)
		if err != nil {
			inf.close()
			return nil, err
		}
		inf.pool = pool
		inf.health["postgres"] = db.PingContext
		log.Info("using postgres stores")
	}

	rc, err := redisclient.New(cfg.Redis)
	if err != nil {
		inf.close()
		return nil, err
	}
	if rc != nil {
		inf.redis = rc
		inf.health["redis"] = rc.Health
		log.Info("using redis for pending deletions and reputation cache")
	}

	kc, err := kafka.New(ctx, cfg.Kafka)
	if err != nil {
		inf.close()
		return nil, err
	}
	if kc != nil {
		inf.kafka = kc
		if err := kafka.EnsureTopic(ctx, kc, cfg.Kafka.AuditTopic, auditPartitions, auditReplication); err != nil {
			inf.close()
			return nil, err
		}
		inf.health["kafka"] = kc.Ping
		log.Info("streaming audit events to kafka", "topic", cfg.Kafka.AuditTopic)
	}
	return inf, nil
}

func (inf *infra) close() {
	if inf.kafka != nil {
		inf.kafka.Close()
	}
	if inf.redis != nil {
		_ = inf.redis.Close()
	}
	if inf.pool != nil {
		inf.pool.Close()
	}
	if inf.db != nil {
		_ = inf.db.Close()
	}
}

// auditStore prefers Kafka, then Postgres, then memory.
func auditStore(cfg *config.Config, inf *infra, log *slog.Logger) audit.Store {
	switch {
	case inf.kafka != nil:
		return kafkaaudit.New(inf.kafka, cfg.Kafka.AuditTopic)
	case inf.db != nil:
		return postgresaudit.New(inf.db)
	default:
		log.Warn("audit events are kept in memory only")
		return auditmemory.NewInMemoryStore()
	}
}

func reputationLookup(cfg *config.Config, inf *infra, log *slog.Logger) ipreputation.Lookuper {
	if cfg.IPReputation.URL == "" {
		return nil
	}
	var lookup ipreputation.Lookuper = ipreputation.NewClient(cfg.IPReputation.URL, cfg.IPReputation.Timeout)
	if inf.redis != nil {
		lookup = ipreputation.NewCachedClient(lookup, inf.redis.Client, cfg.IPReputation.CacheTTL, log)
	}
	return lookup
}

func buildDispatcher(cfg *config.Config, feed notificationStore, accounts accountStore, emitter audit.Emitter, m *notificationmetrics.Metrics, log *slog.Logger) (*dispatcher.Dispatcher, error) {
	opts := []dispatcher.Option{
		dispatcher.WithLogger(log),
		dispatcher.WithAuditPublisher(emitter),
		dispatcher.WithMetrics(m),
	}
	if cfg.Push.PushEnabled() {
		opts = append(opts,
			dispatcher.WithPush(feed, push.NewSender(cfg.Push)),
			dispatcher.WithPushConcurrency(cfg.Push.Concurrency),
		)
		log.Info("browser push enabled")
	}
	if cfg.Telegram.BotToken != "" {
		bot, err := telegram.New(cfg.Telegram, nil)
		if err != nil {
			return nil, err
		}
		opts = append(opts, dispatcher.WithDirect(bot, cfg.Telegram.SendTimeout))
		log.Info("telegram direct channel enabled")
	}
	return dispatcher.New(feed, dispatcher.NewAccountRecipients(accounts), opts...), nil
}
