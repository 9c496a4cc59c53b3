package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ayush/research-intelligence/internal/config"
	"github.com/ayush/research-intelligence/internal/logger"
	"github.com/ayush/research-intelligence/internal/middleware"
	"github.com/ayush/research-intelligence/internal/research"
	"github.com/ayush/research-intelligence/internal/session"
	"github.com/ayush/research-intelligence/internal/store"
	"github.com/ayush/research-intelligence/internal/web"
)

const pruneInterval = time.Minute

var (
	envFile string
	port    string
)

var rootCmd = &cobra.Command{
	Use:   "research-intelligence",
	Short: "Research report request form",
	Long: `Serves the research form, forwards each submission to the report
service (POST /api/research) and renders the returned report.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(envFile)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if port != "" {
			cfg.Port = port
		}
		return run(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	log.WithFields(logrus.Fields{"env": cfg.Env, "mode": cfg.ReportServiceMode}).Info("starting")

	// ── Report service ───────────────────────────────────────
	var svc research.ReportService
	switch cfg.ReportServiceMode {
	case config.ModeMock:
		svc = research.NewMockService(cfg.MockDelay)
	default:
		svc = research.NewServiceClient(cfg.ReportServiceURL, cfg.ReportTimeout)
	}

	// ── Sessions ─────────────────────────────────────────────
	var sessions session.Store
	if cfg.RedisAddr != "" {
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return err
		}
		defer rdb.Close()
		sessions = session.NewRedisStore(rdb, cfg.SessionTTL)
	} else {
		log.Warn("REDIS_ADDR not set, sessions are kept in memory")
		sessions = session.NewMemoryStore(cfg.SessionTTL)
	}

	ctrlLog := logger.Component(log, "controller")
	registry := session.NewRegistry(sessions, func() *research.Controller {
		return research.NewController(svc, ctrlLog, cfg.DefaultQuery)
	}, logger.Component(log, "session"))
	go registry.Run(ctx, pruneInterval)

	// ── Router ───────────────────────────────────────────────
	handler := web.NewRouter(web.Options{
		Registry:       registry,
		SessionTTL:     cfg.SessionTTL,
		SubmitLimiter:  middleware.NewSubmitLimiter(cfg.SubmitRatePerMin),
		AllowedOrigins: cfg.AllowedOrigins,
		Sanitize:       cfg.SanitizeReports,
		Log:            logger.Component(log, "http"),
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}
