package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"gym_checkin_backend/internal/config"
	"gym_checkin_backend/internal/database"
	"gym_checkin_backend/internal/events"
	"gym_checkin_backend/internal/repositories/memstore"
	"gym_checkin_backend/internal/router"
	"gym_checkin_backend/internal/services"
	"gym_checkin_backend/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.InitLogger("info", "")
		utils.LogError(err, "Invalid configuration")
		os.Exit(1)
	}
	utils.InitLogger(cfg.LogLevel, cfg.LogFile)

	// "migrate" applies the schema and exits.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		db := mustOpenDB(cfg)
		defer db.Close()
		if err := database.Migrate(db); err != nil {
			utils.LogError(err, "Migration failed")
			os.Exit(1)
		}
		return
	}

	if err := serve(cfg); err != nil {
		utils.LogError(err, "Server stopped with error")
		os.Exit(1)
	}
}

func serve(cfg config.App) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	var stores router.Stores
	switch cfg.StoreDriver {
	case config.StoreMemory:
		utils.LogWarn("Using in-memory store, data is lost on restart")
		stores = router.MemoryStores(memstore.New())
	default:
		db := mustOpenDB(cfg)
		defer db.Close()
		if cfg.RunMigrations {
			if err := database.Migrate(db); err != nil {
				return err
			}
		}
		stores = router.PostgresStores(db)
	}

	var publisher events.EventPublisher = events.NoopPublisher{}
	if cfg.NATSURL != "" {
		nats, err := events.NewNatsPublisher(cfg.NATSURL)
		if err != nil {
			return err
		}
		publisher = nats
		utils.LogInfo("Publishing check-in events to NATS", map[string]interface{}{"url": cfg.NATSURL})
	}
	defer publisher.Close()

	gin.SetMode(gin.ReleaseMode)
	engine, err := router.NewEngine(router.Deps{
		Stores:    stores,
		Publisher: publisher,
		Options: services.Options{
			Location:          loc,
			MonthlyDailyLimit: cfg.MonthlyDailyLimit,
		},
		JWTSecret:          []byte(cfg.JWTSecret),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.LogInfo("Server starting", map[string]interface{}{
			"port":          cfg.Port,
			"store":         cfg.StoreDriver,
			"timezone":      loc.String(),
			"admin_enabled": cfg.AdminEnabled(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		utils.LogInfo("Shutting down", map[string]interface{}{"signal": sig.String()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func mustOpenDB(cfg config.App) *sql.DB {
	db, err := database.Open(cfg.DSN(), cfg.DBMaxOpenConns)
	if err != nil {
		utils.LogError(err, "Failed to connect to database")
		os.Exit(1)
	}
	return db
}
