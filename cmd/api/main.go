package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	recovermw "github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	apihttp "github.com/spec-kit/warehouse-ticketing/internal/api/http"
	"github.com/spec-kit/warehouse-ticketing/internal/api/http/handlers"
	"github.com/spec-kit/warehouse-ticketing/internal/auth"
	"github.com/spec-kit/warehouse-ticketing/internal/broadcast"
	"github.com/spec-kit/warehouse-ticketing/internal/config"
	"github.com/spec-kit/warehouse-ticketing/internal/events"
	"github.com/spec-kit/warehouse-ticketing/internal/observability"
	"github.com/spec-kit/warehouse-ticketing/internal/persistence"
	"github.com/spec-kit/warehouse-ticketing/internal/repository"
	"github.com/spec-kit/warehouse-ticketing/internal/service"
	"github.com/spec-kit/warehouse-ticketing/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	postgres, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("postgres connection failed", zap.Error(err))
	}
	defer postgres.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, postgres.PoolHandle(), logger); err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()

	pool := postgres.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	warehouseRepo := repository.NewWarehouseRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	viewStatusRepo := repository.NewViewStatusRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	broadcaster := broadcast.NewBroadcaster(cfg.Broadcast.QueueSize, logger, metrics)
	if cfg.Broadcast.BackplaneEnabled {
		backplane := broadcast.NewRedisBackplane(redis.Client, cfg.Broadcast.BackplaneChannel, broadcaster, logger)
		broadcaster.AttachBackplane(backplane)
		backplane.Start(ctx)
		logger.Info("broadcast backplane enabled", zap.String("channel", cfg.Broadcast.BackplaneChannel))
	}

	viewStatusService := service.NewViewStatusService(viewStatusRepo, commentRepo, logger)
	reconciliationService := service.NewReconciliationService(ticketRepo, commentRepo, logger)
	notificationService := service.NewNotificationService(dispatcher, broadcaster, logger)
	authService := service.NewAuthService(cfg.Auth, userRepo)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		CommentRepo:    commentRepo,
		AttachmentRepo: attachmentRepo,
		WarehouseRepo:  warehouseRepo,
		ViewStatus:     viewStatusService,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	adminService := service.NewAdminService(cfg.Auth, service.AdminDependencies{
		WarehouseRepo:  warehouseRepo,
		UserRepo:       userRepo,
		TicketRepo:     ticketRepo,
		CommentRepo:    commentRepo,
		AttachmentRepo: attachmentRepo,
	})

	worker.StartNotificationWorker(notificationService)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.App.RequestTimeout(),
		WriteTimeout: cfg.App.RequestTimeout(),
		ErrorHandler: apihttp.NewErrorHandler(logger, metrics),
	})
	app.Use(recovermw.New())
	app.Use(observability.RequestLogger(logger, metrics))

	authMW := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	apihttp.RegisterRoutes(apihttp.RouteConfig{
		App:     app,
		AuthMW:  authMW,
		Auth:    handlers.NewAuthHandler(authService),
		Tickets: handlers.NewTicketHandler(ticketService),
		Sync:    handlers.NewSyncHandler(reconciliationService, viewStatusService, ticketService),
		Ws:      handlers.NewWebsocketHandler(broadcaster),
		Admin:   handlers.NewAdminHandler(adminService, metrics),
		Health:  handlers.NewHealthHandler(postgres, redis, cfg.App.Version),
	})

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown incomplete", zap.Error(err))
	}
}
