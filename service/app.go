package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yatube/app/auth"
	"yatube/app/config"
	"yatube/app/middleware"
	"yatube/app/repositories"
	"yatube/app/routes"
	"yatube/app/services"
	"yatube/app/storage"
	"yatube/app/views"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	shutdownTimeout = 10 * time.Second
	limiterSweep    = 5 * time.Minute
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the blog web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if addr != "" {
				cfg.Addr = addr
			}
			log, err := config.NewLogger(cfg)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return RunAppServer(ctx, cfg, log)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides APP_ADDR")
	return cmd
}

// RunAppServer serves the blog until ctx is cancelled, then shuts the
// server down gracefully.
func RunAppServer(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.MediaDir, 0o755); err != nil {
		return fmt.Errorf("create media dir: %w", err)
	}

	db, err := repositories.Open(cfg.DataDir, log)
	if err != nil {
		return err
	}
	defer db.Close()

	renderer, err := views.New()
	if err != nil {
		return err
	}
	cache, err := middleware.NewPageCache(cfg.PageCacheTTL)
	if err != nil {
		return err
	}
	defer cache.Close()

	limiter := middleware.NewRateLimiter(cfg.LoginRatePerMinute, cfg.LoginRateBurst)
	go limiter.Run(ctx, limiterSweep)

	svc := services.New(repositories.NewStore(db), storage.NewImageStore(cfg.MediaDir, cfg.MaxUploadBytes))
	router, err := routes.SetupRoutes(routes.Deps{
		Services:     svc,
		Sessions:     auth.NewSessions(cfg.SessionSecret, cfg.SessionTTL, !cfg.Development()),
		Views:        renderer,
		Logger:       log,
		MediaDir:     cfg.MediaDir,
		MaxUpload:    cfg.MaxUploadBytes,
		PageCache:    cache,
		LoginLimiter: limiter,
		CSRF: middleware.CSRFConfig{
			Secret:         cfg.SessionSecret,
			Secure:         !cfg.Development(),
			TrustedOrigins: cfg.TrustedOrigins,
		},
	})
	if err != nil {
		return err
	}

	srv := routes.NewServer(cfg.Addr, router)
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting blog service", zap.String("addr", cfg.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
