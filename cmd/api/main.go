package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/wolfman30/leadrelay/cmd/mainconfig"
	"github.com/wolfman30/leadrelay/internal/api/router"
	"github.com/wolfman30/leadrelay/internal/app/bootstrap"
	appconfig "github.com/wolfman30/leadrelay/internal/config"
	"github.com/wolfman30/leadrelay/internal/http/handlers"
	"github.com/wolfman30/leadrelay/internal/leads"
	"github.com/wolfman30/leadrelay/internal/notify"
	"github.com/wolfman30/leadrelay/internal/templates"
	"github.com/wolfman30/leadrelay/pkg/logging"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.NewWithOptions(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logger.Info("starting leadrelay API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"email_provider", cfg.EmailProvider,
		"templates_dir", cfg.TemplatesDir,
	)

	srv, cleanup, err := buildServer(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to initialize server", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// In-flight dispatches are bounded by DISPATCH_TIMEOUT.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DispatchTimeout+10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// buildServer wires templates, channels, rate limiting and routing into an
// HTTP server. The returned cleanup releases the limiter and Redis client.
func buildServer(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*http.Server, func(), error) {
	metricsHandler, leadMetrics := bootstrap.SetupMetrics()

	resolver := templates.LoadResolver(cfg.TemplatesDir, templates.EnvDefaults(cfg), logger)
	for _, purpose := range []templates.Purpose{templates.PurposeOrder, templates.PurposeAutoreply} {
		if _, err := resolver.Resolve(purpose); err != nil {
			logger.Warn("template set not configured", "purpose", purpose)
		}
	}

	ses, err := buildSESClient(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("ses client: %w", err)
	}
	dispatcher, err := bootstrap.BuildDispatcher(cfg, resolver, ses, leadMetrics, logger)
	if err != nil {
		return nil, nil, err
	}

	limits := leads.DefaultLimits()
	if cfg.MaxUploadFiles > 0 {
		limits.MaxFiles = cfg.MaxUploadFiles
	}
	if cfg.MaxUploadFileBytes > 0 {
		limits.MaxFileBytes = cfg.MaxUploadFileBytes
	}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	limiter, closeLimiter := bootstrap.BuildRateLimiter(cfg, redisClient)
	cleanup := func() {
		closeLimiter()
		if redisClient != nil {
			_ = redisClient.Close()
		}
	}
	logger.Info("rate limiting configured",
		"requests", cfg.RateLimitRequests,
		"window", cfg.RateLimitWindow.String(),
		"redis", redisClient != nil,
	)

	r := router.New(&router.Config{
		Logger:             logger,
		LeadIntake:         handlers.NewLeadIntakeHandler(dispatcher, limits, leadMetrics, logger),
		RateLimiter:        limiter,
		Metrics:            leadMetrics,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		TrustProxyHops:     cfg.TrustProxyHops,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.DispatchTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return srv, cleanup, nil
}

// buildSESClient returns nil unless SES is the selected email provider.
func buildSESClient(ctx context.Context, cfg *appconfig.Config) (notify.SESAPI, error) {
	if cfg.EmailProvider != notify.ProviderSES {
		return nil, nil
	}
	client, err := mainconfig.NewSESClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}
