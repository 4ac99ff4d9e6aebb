package appbootstrap

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Wazadriano/bow-tavira-sub002/api"
	"github.com/Wazadriano/bow-tavira-sub002/config"
	"github.com/Wazadriano/bow-tavira-sub002/core/bootstrap"
	"github.com/Wazadriano/bow-tavira-sub002/core/store"
	"github.com/Wazadriano/bow-tavira-sub002/core/utils"
)

const (
	shutdownTimeout      = 15 * time.Second
	sessionSweepInterval = 10 * time.Minute
)

// Run boots the whole application and blocks until SIGINT/SIGTERM.
func Run(configPath string) error {
	logger := utils.NewLogger()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	db, err := store.NewDB(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := store.ApplyMigrations(ctx, db, cfg.DBDriver, logger); err != nil {
		return err
	}

	comp, err := composeRuntime(cfg, db, logger)
	if err != nil {
		return err
	}
	if err := bootstrap.EnsureDefaultAdmin(ctx, comp.serverDeps.Users, cfg, logger); err != nil {
		return err
	}

	for _, worker := range comp.workers {
		if err := worker.StartWithContext(ctx); err != nil {
			return err
		}
	}

	sweepDone := make(chan struct{})
	go sweepSessions(ctx, comp.sessions, logger, sweepDone)

	server := api.NewServer(cfg, comp.serverDeps, logger)
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Printf("HTTP listening on %s", cfg.ListenAddr)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	logger.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP shutdown: %v", err)
	}
	for _, worker := range comp.workers {
		worker.StopWithContext(shutdownCtx)
	}
	// Let queued imports finish writing before the DB closes.
	comp.importRunner.Wait()
	<-sweepDone
	return nil
}

func sweepSessions(ctx context.Context, sessions store.SessionStore, logger *utils.Logger, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := sessions.DeleteExpired(ctx, time.Now().UTC()); err == nil && n > 0 {
				logger.Printf("AUTH removed %d expired sessions", n)
			}
		}
	}
}
