package bootstrap

import (
	"context"
	"crypto/tls"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/leadrelay/internal/config"
	"github.com/wolfman30/leadrelay/internal/http/middleware"
	"github.com/wolfman30/leadrelay/internal/observability/metrics"
	"github.com/wolfman30/leadrelay/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available, falling back to in-memory rate limiting", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildRateLimiter returns a Redis-backed limiter when a client is supplied,
// otherwise a per-process one. The returned func releases limiter resources.
func BuildRateLimiter(cfg *appconfig.Config, redisClient *redis.Client) (middleware.Limiter, func()) {
	if cfg == nil || cfg.RateLimitRequests <= 0 || cfg.RateLimitWindow <= 0 {
		return nil, func() {}
	}
	if redisClient != nil {
		return middleware.NewRedisLimiter(redisClient, cfg.RateLimitRequests, cfg.RateLimitWindow), func() {}
	}
	ml := middleware.NewMemoryLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	return ml, ml.Close
}

// SetupMetrics builds a dedicated registry with the process collectors and
// the lead metrics, and returns the handler that serves it.
func SetupMetrics() (http.Handler, *metrics.LeadMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewLeadMetrics(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), m
}
