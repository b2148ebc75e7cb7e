package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/telesdesk/helpdesk-service/internal/api/http"
	"github.com/telesdesk/helpdesk-service/internal/api/http/handlers"
	"github.com/telesdesk/helpdesk-service/internal/auth"
	"github.com/telesdesk/helpdesk-service/internal/config"
	"github.com/telesdesk/helpdesk-service/internal/dashboard"
	"github.com/telesdesk/helpdesk-service/internal/events"
	"github.com/telesdesk/helpdesk-service/internal/observability"
	"github.com/telesdesk/helpdesk-service/internal/persistence"
	"github.com/telesdesk/helpdesk-service/internal/realtime"
	"github.com/telesdesk/helpdesk-service/internal/repository"
	"github.com/telesdesk/helpdesk-service/internal/service"
	"github.com/telesdesk/helpdesk-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	profileRepo := repository.NewProfileRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	messageRepo := repository.NewTicketMessageRepository(pool)
	historyRepo := repository.NewTicketHistoryRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	feed := realtime.NewRedisFeed(redis.Client, logger)

	authService := service.NewAuthService(*cfg, profileRepo)
	provisionService := service.NewProvisionService(*cfg, profileRepo)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		MessageRepo: messageRepo,
		HistoryRepo: historyRepo,
		Dispatcher:  dispatcher,
	})
	notificationService := service.NewNotificationService(dispatcher, feed, logger)
	worker.StartNotificationWorker(notificationService)

	dashboardService := dashboard.NewService(ticketRepo, logger)
	if err := dashboardService.Watch(ctx, feed, cfg.Dashboard.CoalesceWindow()); err != nil {
		logger.Warn("dashboard watch unavailable", zap.Error(err))
	}
	defer dashboardService.StopWatching()

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), profileRepo)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService, provisionService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
