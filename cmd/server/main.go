package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AngelCh415/FUNNEL_GO/internal/config"
	"github.com/AngelCh415/FUNNEL_GO/internal/errs"
	"github.com/AngelCh415/FUNNEL_GO/internal/httpx"
	"github.com/AngelCh415/FUNNEL_GO/internal/ingest"
	"github.com/AngelCh415/FUNNEL_GO/internal/metrics"
	"github.com/AngelCh415/FUNNEL_GO/internal/store"
	"github.com/AngelCh415/FUNNEL_GO/internal/transform"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	col := metrics.NewCollectors()
	st := store.NewMemoryStore()
	if err := load(ctx, cfg, logger, st, col); err != nil {
		var md *errs.MalformedDatasetError
		if errors.As(err, &md) {
			logger.Error("dataset rejected", slog.String("path", md.Path), slog.String("err", md.Message))
		} else {
			logger.Error("dataset load failed", slog.String("err", err.Error()))
		}
		os.Exit(1)
	}

	sessions := store.NewSessions()
	r := httpx.NewRouter(httpx.Deps{
		Log:          logger,
		Store:        st,
		Sessions:     sessions,
		Service:      metrics.NewService(st, sessions),
		Collectors:   col,
		DismissDelay: cfg.PopupDismiss,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", slog.String("err", err.Error()))
		}
		n := sessions.CloseAll()
		logger.Info("sessions closed", slog.Int("count", n))
	}()

	logger.Info("starting server", slog.String("port", cfg.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
	<-done
}

func load(ctx context.Context, cfg config.Config, logger *slog.Logger, st *store.MemoryStore, col *metrics.Collectors) error {
	doc, err := ingest.Load(ctx, cfg, ingest.NewHTTPClient(cfg.HTTPTimeout), logger)
	if err != nil {
		return err
	}
	start := time.Now()
	res, err := transform.New(logger).Run(doc)
	if err != nil {
		return err
	}
	col.ObserveTransform(time.Since(start))
	st.Set(res)
	return nil
}
