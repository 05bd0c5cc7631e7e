package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"feedback-backend/internal/auth"
	"feedback-backend/internal/config"
	"feedback-backend/internal/metrics"
	"feedback-backend/internal/notify"
	"feedback-backend/internal/server"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Runs the feedback HTTP API.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig(rootCmd.PersistentFlags())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(cctx); err != nil {
			log.WithError(err).Warn("could not close storage cleanly")
		}
	}()

	// Storage must be reachable and shaped before the listener opens.
	if err := prepareStore(ctx, cfg, store); err != nil {
		return err
	}

	router := server.NewRouter(server.Options{
		Store:          store,
		Gate:           auth.NewGate(cfg.AdminAPIKey),
		Notifier:       newNotifier(cfg),
		Metrics:        metrics.New(),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         log.StandardLogger(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("feedback backend listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "server failed")
	case <-ctx.Done():
	}

	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}

func newNotifier(cfg *config.Config) notify.Notifier {
	if cfg.Notify.Enabled() {
		log.WithField("to", cfg.Notify.To).Info("feedback e-mail notifications enabled")
		return notify.NewEmailNotifier(cfg.Notify.ResendAPIKey, cfg.Notify.From, cfg.Notify.To)
	}
	return notify.NewLogNotifier()
}
