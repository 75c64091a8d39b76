package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-cashbook-ws/internal/handler"
	"go-cashbook-ws/internal/invite"
	"go-cashbook-ws/internal/model"
	"go-cashbook-ws/internal/repository"
	"go-cashbook-ws/internal/service"
	"go-cashbook-ws/internal/syncer"
	"go-cashbook-ws/internal/ws"
	"go-cashbook-ws/pkg/config"
	"go-cashbook-ws/pkg/database"
	"go-cashbook-ws/pkg/docstore"
	"go-cashbook-ws/pkg/jwt"
	"go-cashbook-ws/pkg/mailer"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(log)

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// 2. Document store
	store, err := openStore(cfg)
	if err != nil {
		log.Error("failed to open document store", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	log.Info("document store ready", "driver", cfg.Storage.Driver)

	// 3. Cache, debounced writer, WebSocket hub
	cache := repository.NoCache()
	if rdb := database.ConnectRedis(cfg.Cache.RedisAddr); rdb != nil {
		cache = repository.NewRedisCache(rdb, cfg.Cache.TTL)
	}

	wsHub := ws.NewHub(log)
	go wsHub.Run()

	writer := syncer.New(cfg.Storage.SyncDebounce, log)
	writer.OnDone = func(userID string, status syncer.Status, err error) {
		ev := ws.Event{Type: "sync_status", Action: string(status)}
		if err != nil {
			ev.Message = err.Error()
		}
		wsHub.Publish(userID, ev)
	}

	var mail mailer.Mailer = mailer.NewLog(log)
	if cfg.Mail.ResendAPIKey != "" {
		mail = mailer.NewResend(cfg.Mail.ResendAPIKey)
	}

	// 4. Dependency Injection (Wiring Layers)
	tokens := jwt.NewManager(cfg.Auth.JWTSecret, "cashbooks", cfg.Auth.TokenTTL)
	workspaceRepo := repository.NewWorkspaceRepo(store, cache, writer, log)

	businessService := service.NewBusinessService(workspaceRepo, wsHub, log)
	invitationService := service.NewInvitationService(workspaceRepo, wsHub, log,
		invite.NewCodec(cfg.Auth.InviteSecret), mail,
		service.InvitationConfig{AppURL: cfg.Server.AppURL, MailFrom: cfg.Mail.From},
	)

	handlers := handler.Handlers{
		Auth:        handler.NewAuthHandler(service.NewAuthService(tokens)),
		User:        handler.NewUserHandler(service.NewUserService(workspaceRepo, wsHub, log)),
		Sync:        handler.NewSyncHandler(service.NewSyncService(workspaceRepo, wsHub, log)),
		Business:    handler.NewBusinessHandler(businessService),
		Team:        handler.NewTeamHandler(businessService, invitationService),
		Cashbook:    handler.NewCashbookHandler(service.NewCashbookService(workspaceRepo, wsHub, log)),
		Transaction: handler.NewTransactionHandler(service.NewTransactionService(workspaceRepo, wsHub, log)),
		Dashboard:   handler.NewDashboardHandler(service.NewDashboardService(workspaceRepo, log)),
	}

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Cashbooks API v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	handler.SetupRoutes(app, handlers, tokens, wsHub)

	// 6. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	// pending document writes must land before exit
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	workspaceRepo.Flush(ctx)

	log.Info("server exited")
}

func openStore(cfg *config.Config) (docstore.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		db, err := database.ConnectPostgres(cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := docstore.Migrate(db); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return docstore.NewGormStore(db, model.DocumentName), nil
	case config.DriverSQLite:
		db, err := database.ConnectSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := docstore.Migrate(db); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return docstore.NewGormStore(db, model.DocumentName), nil
	case config.DriverFile:
		return docstore.NewFileStore(cfg.Storage.FileDir, model.DocumentName)
	case config.DriverDrive:
		return docstore.NewDriveStore(model.DocumentName), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
