package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"roombook-backend/config"
	"roombook-backend/controllers"
	"roombook-backend/routes"
	"roombook-backend/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ config: %v", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("❌ logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func openBackend(cfg config.Config, logger *zap.Logger) (services.RoomBackend, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMySQL:
		db, err := config.ConnectDatabase(cfg.Database)
		if err != nil {
			return nil, err
		}
		logger.Info("room store using mysql document")
		return services.NewDBBackend(db), nil
	default:
		logger.Info("room store using json file", zap.String("path", cfg.RoomsFile))
		return services.NewFileBackend(cfg.RoomsFile), nil
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	backend, err := openBackend(cfg, logger)
	if err != nil {
		return fmt.Errorf("open room store: %w", err)
	}

	ctx := context.Background()
	store := services.NewRoomStore(backend, time.Now, logger.Named("store"))
	if err := services.SeedRooms(ctx, store, cfg.SeedRooms, cfg.RoomNamePrefix, logger); err != nil {
		return err
	}

	scheduler := services.NewExpiryScheduler()
	defer scheduler.Stop()

	bookingService := services.NewBookingService(store, scheduler, time.Now, logger.Named("booking"))
	bookingService.Start(ctx)

	gin.SetMode(cfg.GinMode)
	roomController := controllers.NewRoomController(bookingService, logger.Named("http"))
	router := routes.SetupRouter(roomController, cfg.CORSOrigins, logger.Named("access"))

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-quit:
	}
	logger.Info("shutdown signal received, shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped gracefully", zap.Int("pending_timers", scheduler.Pending()))
	return nil
}
