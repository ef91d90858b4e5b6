package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/example/classroom-booking/internal/application"
	"github.com/example/classroom-booking/internal/config"
	httptransport "github.com/example/classroom-booking/internal/http"
	"github.com/example/classroom-booking/internal/notification"
	"github.com/example/classroom-booking/internal/store"
	"github.com/example/classroom-booking/internal/store/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	backing, closeStore, err := openStore(cfg)
	if err != nil {
		logger.Error("failed to open store", "error", err, "driver", cfg.StoreDriver)
		os.Exit(1)
	}
	defer func() {
		if cerr := closeStore(); cerr != nil {
			logger.Error("failed to close store", "error", cerr)
		}
	}()

	if cfg.SeedDemo {
		if err := seedDemoData(context.Background(), backing); err != nil {
			logger.Error("failed to seed demo data", "error", err)
			os.Exit(1)
		}
		logger.Info("demo data seeded")
	}

	idGenerator := uuid.NewString
	tokenGenerator := uuid.NewString
	gateway := notification.NewLogGateway(logger)

	authService := application.NewAuthServiceWithLogger(backing, tokenGenerator, time.Now, cfg.SessionTTL, logger)
	bookingService := application.NewBookingServiceWithLogger(backing, gateway, idGenerator, logger)
	classroomService := application.NewClassroomServiceWithLogger(backing, gateway, idGenerator, logger)
	userService := application.NewUserServiceWithLogger(backing, gateway, idGenerator, cfg.EmailDomain, logger)
	importService := application.NewImportServiceWithLogger(backing, idGenerator, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:       httptransport.NewAuthHandler(authService, logger),
		Users:      httptransport.NewUserHandler(userService, logger),
		Classrooms: httptransport.NewClassroomHandler(classroomService, logger),
		Bookings:   httptransport.NewBookingHandler(bookingService, logger),
		Imports:    httptransport.NewImportHandler(importService, logger),
		Sessions:   authService,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("booking API listening", "addr", server.Addr, "driver", cfg.StoreDriver)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func openStore(cfg config.Config) (store.Store, func() error, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		s, err := sqlite.Open(cfg.SQLiteDSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.DriverMemory:
		return store.NewMemory(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
