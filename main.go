package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msomdec/photo-gallery/internal/capture"
	"github.com/msomdec/photo-gallery/internal/config"
	"github.com/msomdec/photo-gallery/internal/handler"
	"github.com/msomdec/photo-gallery/internal/platform"
	"github.com/msomdec/photo-gallery/internal/repository/localfs"
	"github.com/msomdec/photo-gallery/internal/repository/sqlite"
	"github.com/msomdec/photo-gallery/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logOpts := &slog.HandlerOptions{Level: cfg.LogLevel}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	p, err := platform.Detect(cfg.Platform, cfg.DataDir)
	if err != nil {
		slog.Error("detect platform", "error", err)
		os.Exit(1)
	}
	slog.Info("platform detected", "platform", p)

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	blobs := capture.NewBlobs(cfg.PublicURL, cfg.BlobTTL)
	go sweepBlobs(ctx, blobs, cfg.BlobTTL)

	converter := platform.FileSrcConverter{Scheme: cfg.FileSrcScheme, Host: cfg.FileSrcHost}
	deps := service.PersistenceDeps{
		WebFiles:  db.Files(),
		Converter: converter,
		Fetcher:   blobs.Fetcher(service.NewHTTPFetcher(nil)),
	}

	var (
		cameras  *capture.Adapter
		appFiles *localfs.FS
	)
	if p == platform.Hybrid {
		appFiles, err = localfs.New(cfg.DataDir)
		if err != nil {
			slog.Error("failed to open data directory", "error", err)
			os.Exit(1)
		}
		deps.NativeFiles = appFiles
		cameras, err = capture.NewNative(cfg.CacheDir, converter)
		if err != nil {
			slog.Error("failed to open camera cache", "error", err)
			os.Exit(1)
		}
	} else {
		cameras = capture.NewWeb(blobs)
	}

	gallery := service.NewGalleryService(service.NewPersistence(platform.Static(p), deps), db.Preferences())

	report, err := gallery.LoadSaved(ctx)
	if err != nil {
		slog.Error("failed to load saved photos", "error", err)
		os.Exit(1)
	}
	slog.Info("saved photos loaded", "count", report.Loaded, "failed", len(report.Failed))

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, p,
		handler.NewGalleryHandler(gallery, cameras),
		handler.NewFileHandler(blobs, appFiles),
		service.NewTokenBucket(ctx, cfg.CaptureRate, cfg.CaptureBurst),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.SecurityHeaders(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	if err := gallery.Flush(shutdownCtx); err != nil {
		slog.Error("pending index writes not flushed", "error", err)
	}
	slog.Info("server stopped")
}

func sweepBlobs(ctx context.Context, blobs *capture.Blobs, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := blobs.Sweep(); n > 0 {
				slog.Debug("expired blobs swept", "count", n)
			}
		}
	}
}
