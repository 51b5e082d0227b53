// Command qscached runs the response-cache server: an HTTP data plane for
// cache lookups and admissions, and a control plane for status, stats, and
// runtime eviction-policy switching.
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

	"github.com/spf13/cobra"

	qscache "github.com/amitzarchi/quality-score-eviction"
	"github.com/amitzarchi/quality-score-eviction/internal/accesslog"
	"github.com/amitzarchi/quality-score-eviction/internal/cache"
	"github.com/amitzarchi/quality-score-eviction/internal/logging"
	"github.com/amitzarchi/quality-score-eviction/internal/server"
	"github.com/amitzarchi/quality-score-eviction/internal/upstream"
	"github.com/amitzarchi/quality-score-eviction/internal/version"

	// Register cache metrics before the /metrics handler is mounted.
	_ "github.com/amitzarchi/quality-score-eviction/internal/metrics"
)

func main() {
	var (
		configPath string
		addr       string
	)

	rootCmd := &cobra.Command{
		Use:           "qscached",
		Short:         "LLM response cache with runtime-swappable eviction policies",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe(configPath, addr)
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file (JSON or YAML)")
	rootCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	validateCmd := &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := qscache.LoadConfig(args[0])
			if err != nil {
				return err
			}
			if err := qscache.ValidateConfig(*cfg); err != nil {
				return err
			}
			policyCfg, _ := cfg.Cache.PolicyConfig()
			cmd.Printf("✓ Config is valid\n")
			cmd.Printf("  Policy:    %s (maxsize=%d, clean_size=%d)\n",
				policyCfg.Kind, policyCfg.MaxSize, policyCfg.CleanSize)
			cmd.Printf("  Upstream:  %s\n", upstreamName(cfg.Upstream))
			return nil
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("qscached %s\n", version.String())
		},
	}

	rootCmd.AddCommand(validateCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runServe(configPath, addr string) error {
	cfg := qscache.DefaultConfig()
	if configPath != "" {
		loaded, err := qscache.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if err := qscache.ValidateConfig(*loaded); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		cfg = *loaded
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	log := logging.Logger

	policyCfg, err := cfg.Cache.PolicyConfig()
	if err != nil {
		return err
	}
	engine, err := cache.NewEngine(policyCfg,
		cache.WithEvictionHook(func(ev cache.Eviction) {
			log.Debug("entry evicted", "key", ev.Key, "reason", ev.Reason)
		}),
	)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	log.Info("engine ready",
		"policy", string(policyCfg.Kind),
		"maxsize", policyCfg.MaxSize,
		"clean_size", policyCfg.CleanSize,
	)

	responder, err := buildUpstream(cfg.Upstream)
	if err != nil {
		return err
	}
	log.Info("upstream responder configured", "provider", responder.Name())

	handlers := &server.Handlers{
		Engine:   engine,
		Upstream: responder,
	}
	switch cfg.AccessLog.Backend {
	case qscache.BackendSQLite:
		store, err := accesslog.NewSQLiteStore(cfg.AccessLog.DSN)
		if err != nil {
			return err
		}
		defer store.Close()
		handlers.Log, handlers.LogReader = store, store
		log.Info("access log enabled", "backend", qscache.BackendSQLite)
	case qscache.BackendPostgres:
		store, err := accesslog.NewPostgresStore(cfg.AccessLog.DSN)
		if err != nil {
			return err
		}
		defer store.Close()
		handlers.Log, handlers.LogReader = store, store
		log.Info("access log enabled", "backend", qscache.BackendPostgres)
	}

	if addr == "" {
		addr = cfg.Server.Addr
	}
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.NewRouter(handlers),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown error", "error", err)
		}
	}()

	log.Info("qscached listening", "version", version.Short(), "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	log.Info("server stopped")
	return nil
}

func buildUpstream(cfg qscache.UpstreamConfig) (upstream.Responder, error) {
	switch cfg.Provider {
	case "", qscache.UpstreamMock:
		return upstream.NewMock(), nil
	case qscache.UpstreamOpenAI:
		apiKey := os.Getenv(cfg.APIKeyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("environment variable %s is empty; the openai upstream needs an API key", cfg.APIKeyEnv)
		}
		return upstream.NewOpenAI(apiKey, cfg.BaseURL, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown upstream provider: %q", cfg.Provider)
	}
}

func upstreamName(cfg qscache.UpstreamConfig) string {
	if cfg.Provider == "" {
		return qscache.UpstreamMock
	}
	return cfg.Provider
}
