package appbootstrap

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"threatwatch/api"
	"threatwatch/config"
	"threatwatch/core/store"
	"threatwatch/core/utils"
)

const shutdownGrace = 10 * time.Second

// Run owns the process lifecycle: open the database, migrate, compose the
// runtime, serve until SIGINT or SIGTERM, then drain.
func Run(cfg *config.AppConfig, logger *utils.Logger) error {
	db, err := store.NewDB(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DBDriver == "postgres" {
		err = store.ApplyPostgresMigrations(ctx, db, logger)
	} else {
		err = store.ApplyMigrations(ctx, db, logger)
	}
	if err != nil {
		return err
	}

	rt := composeRuntime(cfg, db, logger)
	for _, w := range rt.workers {
		w.Start(ctx)
	}

	server := api.NewServer(cfg, rt.serverDeps, logger)
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("listening on %s", cfg.ListenAddr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Printf("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("http shutdown: %v", err)
	}
	for _, w := range rt.workers {
		if err := w.Stop(shutdownCtx); err != nil {
			logger.Errorf("worker stop: %v", err)
		}
	}
	return nil
}
