package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joseph-ayodele/lease-extractor/constants"
	"github.com/joseph-ayodele/lease-extractor/internal/async"
	"github.com/joseph-ayodele/lease-extractor/internal/common"
	"github.com/joseph-ayodele/lease-extractor/internal/export"
	"github.com/joseph-ayodele/lease-extractor/internal/extract"
	"github.com/joseph-ayodele/lease-extractor/internal/llm/providers"
	"github.com/joseph-ayodele/lease-extractor/internal/logging"
	repo "github.com/joseph-ayodele/lease-extractor/internal/repository"
	"github.com/joseph-ayodele/lease-extractor/internal/server"
)

func main() {
	if err := common.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}
	cfg := common.LoadConfig()

	logger, closeLog, err := logging.New(cfg.Log, cfg.AppName, os.Stdout)
	if err != nil {
		slog.Error("failed to build logger", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	code := 0
	if err := run(cfg, logger); err != nil {
		logger.Error("address extractor stopped", "error", err)
		code = 1
		if errors.Is(err, common.ErrInvalidInput) {
			code = 2
		}
	}
	// Flush the async Fluent client before exiting.
	_ = closeLog()
	os.Exit(code)
}

func run(cfg *common.Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", common.PublicMessage(err))
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	completer, err := providers.NewCompleter(cfg.LLM, logger)
	if err != nil {
		logger.Error("failed to build completion client", "error", err)
		return err
	}
	extractor := extract.NewExtractor(completer, logger)

	opts := server.Options{
		Extractor:      extractor,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger,
	}

	// Optional history
	var recorder *async.Recorder
	if cfg.History.Driver != constants.HistoryNone {
		db, err := repo.Open(ctx, repo.Config{
			Driver:          cfg.History.Driver,
			DSN:             cfg.History.DSN,
			AppName:         cfg.AppName,
			MaxConns:        10,
			MinConns:        1,
			MaxConnLifetime: 30 * time.Minute,
			MaxConnIdleTime: 5 * time.Minute,
			DialTimeout:     5 * time.Second,
		}, logger)
		if err != nil {
			logger.Error("failed to open history database", "driver", cfg.History.Driver, "error", err)
			return err
		}
		defer db.Close(logger)

		extractions := repo.NewExtractionRepository(db, logger)
		recorder = async.NewRecorder(extractions, logger,
			async.WithWorkers(cfg.History.Workers),
			async.WithQueueSize(cfg.History.QueueSize),
			async.WithSaveTimeout(10*time.Second),
		)
		opts.History = extractions
		opts.Recorder = recorder
		opts.Exporter = export.NewService(extractions, logger)
	}

	httpServer := server.NewHTTPServer(cfg.Server, server.NewRouter(opts))

	// Optional gRPC health
	var grpcHealth *server.HealthGRPC
	if cfg.Server.GRPCHealthAddr != "" {
		lis, err := net.Listen("tcp", cfg.Server.GRPCHealthAddr)
		if err != nil {
			logger.Error("failed to listen on address", "addr", cfg.Server.GRPCHealthAddr, "error", err)
			return err
		}
		grpcHealth = server.NewHealthGRPC(logger)
		go func() {
			if err := grpcHealth.Serve(lis); err != nil {
				logger.Error("grpc health serve error", "error", err)
			}
		}()
	}

	logger.Info("address extractor listening",
		"addr", httpServer.Addr,
		"provider", completer.Provider(),
		"model", completer.Model(),
		"history", cfg.History.Driver,
	)
	serveErr := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			logger.Error("http serve error", "error", err)
			runErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}
	if grpcHealth != nil {
		grpcHealth.Stop()
	}
	if recorder != nil {
		recorder.Shutdown(shutdownCtx)
	}
	logger.Info("shutdown complete")
	return runErr
}
