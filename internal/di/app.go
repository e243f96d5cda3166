// Package di provides dependency injection and application bootstrapping.
package di

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/pannpers/go-logging/logging"

	"github.com/wavebreaker/backend/internal/infrastructure/cache/redis"
	"github.com/wavebreaker/backend/internal/infrastructure/database/rdb"
	"github.com/wavebreaker/backend/internal/infrastructure/messaging"
	"github.com/wavebreaker/backend/internal/infrastructure/music/musicbrainz"
	"github.com/wavebreaker/backend/internal/infrastructure/server"
	"github.com/wavebreaker/backend/internal/infrastructure/server/admin"
	"github.com/wavebreaker/backend/internal/infrastructure/server/legacy"
	"github.com/wavebreaker/backend/internal/infrastructure/steam"
	"github.com/wavebreaker/backend/internal/usecase"
	"github.com/wavebreaker/backend/pkg/config"
	"github.com/wavebreaker/backend/pkg/shutdown"
)

// App holds every long-running process Wavebreaker's API binary starts: the
// legacy game-protocol server, the JSON admin API, the enrichment router,
// and the Kubernetes health probe.
type App struct {
	LegacyServer *server.HTTPServer
	AdminServer  *server.HTTPServer
	HealthServer *server.HealthServer
	Router       *message.Router
	Logger       *logging.Logger
}

// Start launches every HTTP surface and the enrichment router in its own
// goroutine and returns a channel per surface so the caller can select on
// whichever exits first.
func (a *App) Start(ctx context.Context) (legacyErr, adminErr, healthErr, routerErr <-chan error) {
	legacyCh := make(chan error, 1)
	adminCh := make(chan error, 1)
	healthCh := make(chan error, 1)
	routerCh := make(chan error, 1)

	go func() { legacyCh <- a.LegacyServer.Start() }()
	go func() { adminCh <- a.AdminServer.Start() }()
	go func() { healthCh <- a.HealthServer.Start() }()
	go func() { routerCh <- a.Router.Run(ctx) }()

	return legacyCh, adminCh, healthCh, routerCh
}

// Shutdown gracefully shuts down every server and closes all resources via
// the phased shutdown sequence.
func (a *App) Shutdown(ctx context.Context) error {
	log.Println("Starting application shutdown...")

	var errs error
	if err := a.LegacyServer.Stop(); err != nil {
		errs = errors.Join(errs, fmt.Errorf("failed to stop legacy server: %w", err))
	}
	if err := a.AdminServer.Stop(); err != nil {
		errs = errors.Join(errs, fmt.Errorf("failed to stop admin server: %w", err))
	}

	if err := shutdown.Shutdown(ctx); err != nil {
		errs = errors.Join(errs, fmt.Errorf("phased shutdown failed: %w", err))
	}

	if errs != nil {
		return errs
	}

	log.Println("Application shutdown complete")
	return nil
}

// InitializeApp wires every repository, cache, external client, use case,
// and HTTP surface the API binary needs.
func InitializeApp(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := provideLogger(cfg)
	if err != nil {
		return nil, err
	}

	if len(cfg.Server.AllowedOrigins) == 0 {
		logger.Warn(ctx, "CORS not configured, browser requests will fail")
	}

	db, err := rdb.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	redisClient, err := redis.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	shutdown.Init(logger)

	// Repositories
	playerRepo := rdb.NewPlayerRepository(db)
	songRepo := rdb.NewSongRepository(db)
	extraInfoRepo := rdb.NewExtraSongInfoRepository(db)
	scoreRepo := rdb.NewScoreRepository(db)
	rivalryRepo := rdb.NewRivalryRepository(db)
	shoutRepo := rdb.NewShoutRepository(db)

	// Cache-store layers (§4.2, §4.6, §4.8, §5)
	ticketCache := redis.NewTicketCache(redisClient)
	sessionStore := redis.NewSessionStore(redisClient)
	leaderboardCache := redis.NewLeaderboard(redisClient)
	submitLock := redis.NewSubmitLock(redisClient)

	// External clients
	steamClient := steam.NewClient(nil, cfg.Steam.WebAPIKey, logger)
	steamOpenID := steam.NewOpenID(nil, cfg.OpenID.Realm, cfg.OpenID.ReturnTo)
	musicbrainzClient := musicbrainz.NewClient(nil, logger)

	// Enrichment dispatch: a GoChannel keeps §4.4 detached from the calling
	// request without needing an external broker.
	wmLogger := watermill.NewStdLogger(false, false)
	goChannel := messaging.NewGoChannel(wmLogger)
	publisher := messaging.NewPublisher(goChannel)
	subscriber := messaging.NewSubscriber(goChannel)
	enrichmentDispatcher := usecase.NewEnrichmentDispatcher(publisher, logger)

	router, err := messaging.NewRouter(wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create messaging router: %w", err)
	}
	enrichmentUC := usecase.NewEnrichmentUseCase(songRepo, extraInfoRepo, musicbrainzClient, logger)
	router.AddNoPublisherHandler(
		"enrich-song",
		messaging.TopicEnrichmentRequested,
		subscriber,
		usecase.NewEnrichmentHandler(enrichmentUC, logger),
	)

	// Use cases
	leaderboardUC := usecase.NewLeaderboardUseCase(leaderboardCache, playerRepo, logger)
	playerUC := usecase.NewPlayerUseCase(playerRepo, rivalryRepo, leaderboardUC, logger)
	rivalryUC := usecase.NewRivalryUseCase(rivalryRepo, playerRepo, logger)
	shoutUC := usecase.NewShoutUseCase(shoutRepo, playerRepo, logger)
	songResolverUC := usecase.NewSongResolverUseCase(songRepo, enrichmentDispatcher, logger)
	ridesUC := usecase.NewRidesUseCase(playerRepo, scoreRepo, rivalryRepo, cfg.Radio, logger)
	scoreUC := usecase.NewScoreUseCase(playerRepo, songRepo, scoreRepo, rivalryRepo, leaderboardCache, submitLock, enrichmentDispatcher, logger)
	ticketVerifierUC := usecase.NewTicketVerifierUseCase(ticketCache, steamClient, logger)
	sessionUC := usecase.NewSessionUseCase(sessionStore, playerRepo, logger)
	openIDUC := usecase.NewOpenIDUseCase(steamOpenID, playerRepo, sessionUC, logger)

	radioList := func(ctx context.Context) string { return ridesUC.RadioList(ctx) }

	// HTTP surfaces
	legacyHandler := legacy.NewHandler(
		ticketVerifierUC,
		playerUC,
		songResolverUC,
		scoreUC,
		ridesUC,
		shoutUC,
		steamClient,
		cfg.Radio.StaticDir,
		logger,
	)
	legacyServer := server.NewHTTPServer(
		"legacy",
		fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		legacyHandler.NewRouter(),
		cfg.Server.HandlerTimeout, cfg.Server.ReadHeaderTimeout, cfg.Server.ReadTimeout, cfg.Server.IdleTimeout, cfg.ShutdownTimeout,
		logger,
	)

	adminHandler := admin.NewHandler(admin.Deps{
		Players:     playerUC,
		Songs:       songRepo,
		ExtraInfo:   extraInfoRepo,
		Scores:      scoreUC,
		ScoreRepo:   scoreRepo,
		Shouts:      shoutUC,
		Rivalries:   rivalryUC,
		Leaderboard: leaderboardUC,
		Sessions:    sessionUC,
		OpenID:      openIDUC,
		RadioList:   radioList,
		Logger:      logger,
	})
	adminRouter := server.NewCORSHandler(adminHandler.NewRouter(), &cfg.Server)
	adminServer := server.NewHTTPServer(
		"admin",
		fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.AdminPort),
		adminRouter,
		cfg.Server.HandlerTimeout, cfg.Server.ReadHeaderTimeout, cfg.Server.ReadTimeout, cfg.Server.IdleTimeout, cfg.ShutdownTimeout,
		logger,
	)

	healthServer := server.NewHealthServer(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.AdminPort+1))

	// Register shutdown phases: drain stops the health probe and enrichment
	// router first, flush drains the publisher, external closes the Steam
	// and MusicBrainz clients, datastore closes Postgres and Redis last.
	shutdown.AddDrainPhase(healthServer, routerCloser{router})
	shutdown.AddFlushPhase(publisher)
	shutdown.AddExternalPhase(steamClient, musicbrainzClient)
	shutdown.AddDatastorePhase(db, redisClient)

	return &App{
		LegacyServer: legacyServer,
		AdminServer:  adminServer,
		HealthServer: healthServer,
		Router:       router,
		Logger:       logger,
	}, nil
}

// ManagementApp holds the dependencies the `cmd/admin` offline-operations
// CLI (component J) needs: just the store connections and the management
// use case, with none of the HTTP surfaces InitializeApp starts.
type ManagementApp struct {
	Management usecase.ManagementUseCase
	Logger     *logging.Logger

	db          *rdb.Database
	redisClient *redis.Client
}

// Close releases the Postgres pool and Redis connection. Unlike App.Shutdown
// there is no phased drain: a CLI invocation has no in-flight requests to
// wait out.
func (a *ManagementApp) Close() error {
	var errs error
	if err := a.db.Close(); err != nil {
		errs = errors.Join(errs, fmt.Errorf("failed to close database: %w", err))
	}
	if err := a.redisClient.Close(); err != nil {
		errs = errors.Join(errs, fmt.Errorf("failed to close redis: %w", err))
	}
	return errs
}

// InitializeManagementApp wires the store connections and repositories the
// management command dispatcher needs to run a single offline operation and
// exit, without starting any HTTP listener or the enrichment router.
func InitializeManagementApp(ctx context.Context) (*ManagementApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := provideLogger(cfg)
	if err != nil {
		return nil, err
	}

	db, err := rdb.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	redisClient, err := redis.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	playerRepo := rdb.NewPlayerRepository(db)
	songRepo := rdb.NewSongRepository(db)
	scoreRepo := rdb.NewScoreRepository(db)
	rivalryRepo := rdb.NewRivalryRepository(db)
	shoutRepo := rdb.NewShoutRepository(db)

	leaderboardCache := redis.NewLeaderboard(redisClient)
	submitLock := redis.NewSubmitLock(redisClient)
	searchIndexSync := redis.NewSearchIndexSync(redisClient)

	// Enrichment dispatch is wired but never subscribed to in this process:
	// RequestAutoEnrichment/RequestMBIDEnrichment publish onto a GoChannel
	// nothing drains, matching the management CLI's "offline, one operation,
	// then exit" scope (it never submits scores, only deletes/merges/recomputes).
	wmLogger := watermill.NewStdLogger(false, false)
	goChannel := messaging.NewGoChannel(wmLogger)
	publisher := messaging.NewPublisher(goChannel)
	enrichmentDispatcher := usecase.NewEnrichmentDispatcher(publisher, logger)

	leaderboardUC := usecase.NewLeaderboardUseCase(leaderboardCache, playerRepo, logger)
	scoreUC := usecase.NewScoreUseCase(playerRepo, songRepo, scoreRepo, rivalryRepo, leaderboardCache, submitLock, enrichmentDispatcher, logger)
	managementUC := usecase.NewManagementUseCase(songRepo, scoreRepo, scoreUC, shoutRepo, rivalryRepo, playerRepo, leaderboardUC, searchIndexSync, logger)

	return &ManagementApp{
		Management:  managementUC,
		Logger:      logger,
		db:          db,
		redisClient: redisClient,
	}, nil
}

// routerCloser adapts message.Router's Close to io.Closer so it can be
// registered with the shutdown package's drain phase.
type routerCloser struct{ router *message.Router }

func (r routerCloser) Close() error { return r.router.Close() }

func provideLogger(cfg *config.Config) (*logging.Logger, error) {
	var opts []logging.Option
	switch cfg.Logging.Level {
	case "debug":
		opts = append(opts, logging.WithLevel(slog.LevelDebug))
	case "info":
		opts = append(opts, logging.WithLevel(slog.LevelInfo))
	case "warn":
		opts = append(opts, logging.WithLevel(slog.LevelWarn))
	case "error":
		opts = append(opts, logging.WithLevel(slog.LevelError))
	}
	switch cfg.Logging.Format {
	case "text":
		opts = append(opts, logging.WithFormat(logging.FormatText))
	case "json":
		opts = append(opts, logging.WithFormat(logging.FormatJSON))
	}
	return logging.New(opts...)
}
