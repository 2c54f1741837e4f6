package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"doctemplates/internal/config"
	"doctemplates/internal/logging"
	"doctemplates/internal/scheduler"
	"doctemplates/internal/server"
	"doctemplates/internal/service"
	"doctemplates/internal/storage"
	"doctemplates/internal/storage/providers"
	httptransport "doctemplates/internal/transport/http"
)

func main() {
	cfg := config.MustLoad()
	logger := logging.Setup(cfg.Env)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	files, err := storage.NewLocal(cfg.Storage.TemplatesPath)
	if err != nil {
		logger.Error("failed to open template storage", "path", cfg.Storage.TemplatesPath, "err", err)
		os.Exit(1)
	}
	tmp, err := storage.NewLocal(cfg.Storage.TmpPath)
	if err != nil {
		logger.Error("failed to open tmp storage", "path", cfg.Storage.TmpPath, "err", err)
		os.Exit(1)
	}

	allProviders := providers.New(files, tmp, providers.WithSetupWorkers(cfg.Storage.SetupWorkers))
	if err := allProviders.TemplateProvider.SetupCache(ctx); err != nil {
		// broken templates are skipped, the rest is served
		logger.Warn("some templates failed to load", "err", err)
	}
	logger.Info("template cache ready", "root", files.Root(), "templates", allProviders.Cache.Len())

	scheduler.NewStagingJanitor(cfg.Storage.StagingTTL, cfg.Storage.JanitorInterval,
		scheduler.SweepTarget{Storage: tmp, Dir: "."},
		scheduler.SweepTarget{Storage: files, Dir: providers.IncomingDir},
	).Start(ctx)

	templateService := service.NewTemplateService(allProviders.TemplateProvider)
	router := httptransport.Router(templateService, cfg)

	addr := ":" + cfg.Server.Port
	logger.Info("listening", "addr", addr, "env", cfg.Env)
	if err := server.Start(ctx, addr, router, cfg.Server.CORSOrigins); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
