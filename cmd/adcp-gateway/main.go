/*
Copyright 2026 Altaira Labs.

SPDX-License-Identifier: Apache-2.0

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-logr/logr"

	"github.com/adcontextprotocol/gateway/internal/adapter"
	"github.com/adcontextprotocol/gateway/internal/adapter/gam"
	"github.com/adcontextprotocol/gateway/internal/adapter/kevel"
	"github.com/adcontextprotocol/gateway/internal/adapter/mock"
	"github.com/adcontextprotocol/gateway/internal/adapter/triton"
	"github.com/adcontextprotocol/gateway/internal/catalog"
	"github.com/adcontextprotocol/gateway/internal/convo"
	"github.com/adcontextprotocol/gateway/internal/executor"
	"github.com/adcontextprotocol/gateway/internal/facade/a2a"
	"github.com/adcontextprotocol/gateway/internal/facade/admin"
	"github.com/adcontextprotocol/gateway/internal/facade/mcp"
	"github.com/adcontextprotocol/gateway/internal/media"
	"github.com/adcontextprotocol/gateway/internal/model"
	"github.com/adcontextprotocol/gateway/internal/notify"
	"github.com/adcontextprotocol/gateway/internal/policyengine"
	"github.com/adcontextprotocol/gateway/internal/storage"
	"github.com/adcontextprotocol/gateway/internal/storage/postgres"
	"github.com/adcontextprotocol/gateway/internal/storage/redis"
	"github.com/adcontextprotocol/gateway/internal/tenant"
	"github.com/adcontextprotocol/gateway/internal/tracing"
	"github.com/adcontextprotocol/gateway/pkg/logging"
	"github.com/adcontextprotocol/gateway/pkg/metrics"
)

// flags groups all CLI flags for the adcp-gateway binary.
type flags struct {
	a2aAddr        string
	mcpAddr        string
	adminAddr      string
	mediaAddr      string
	healthAddr     string
	postgresConn   string
	allowedOrigins string
	mediaS3Bucket  string
	mediaS3Region  string
	mediaBasePath  string
	mediaBaseURL   string
	redisAddrs     string
	tracingEnabled bool
	otlpEndpoint   string
}

func parseFlags() *flags {
	f := &flags{}
	flag.StringVar(&f.a2aAddr, "a2a-addr", ":8091", "A2A facade listen address")
	flag.StringVar(&f.mcpAddr, "mcp-addr", ":8092", "MCP facade listen address")
	flag.StringVar(&f.adminAddr, "admin-addr", ":8093", "Superadmin facade listen address")
	flag.StringVar(&f.mediaAddr, "media-addr", ":8094", "Creative media upload/download listen address")
	flag.StringVar(&f.healthAddr, "health-addr", ":8081", "Health probe listen address")
	flag.StringVar(&f.postgresConn, "postgres-conn", "", "Postgres connection string")
	flag.StringVar(&f.allowedOrigins, "allowed-origins", "", "CORS allow-list for the A2A facade (comma-separated)")
	flag.StringVar(&f.mediaS3Bucket, "media-s3-bucket", "", "S3 bucket for creative media (local disk storage if empty)")
	flag.StringVar(&f.mediaS3Region, "media-s3-region", "us-east-1", "S3 region for creative media")
	flag.StringVar(&f.mediaBasePath, "media-base-path", "/var/lib/adcp-gateway/media", "Local disk root for creative media when no S3 bucket is configured")
	flag.StringVar(&f.mediaBaseURL, "media-base-url", "http://localhost:8094", "Base URL this binary is reachable at, for local media download links")
	flag.StringVar(&f.redisAddrs, "redis-addrs", "", "Comma-separated Redis addresses for the conversation hot cache (disabled if empty)")
	flag.BoolVar(&f.tracingEnabled, "tracing-enabled", false, "Enable OpenTelemetry tracing")
	flag.StringVar(&f.otlpEndpoint, "otlp-endpoint", "localhost:4317", "OTLP gRPC collector endpoint")
	flag.Parse()

	f.applyEnvFallbacks()
	return f
}

func (f *flags) applyEnvFallbacks() {
	envFallback(&f.a2aAddr, ":8091", "A2A_ADDR")
	envFallback(&f.mcpAddr, ":8092", "MCP_ADDR")
	envFallback(&f.adminAddr, ":8093", "ADMIN_ADDR")
	envFallback(&f.mediaAddr, ":8094", "MEDIA_ADDR")
	envFallback(&f.healthAddr, ":8081", "HEALTH_ADDR")
	envFallback(&f.postgresConn, "", "POSTGRES_CONN")
	envFallback(&f.allowedOrigins, "", "ALLOWED_ORIGINS")
	envFallback(&f.mediaS3Bucket, "", "MEDIA_S3_BUCKET")
	envFallback(&f.mediaS3Region, "us-east-1", "MEDIA_S3_REGION")
	envFallback(&f.mediaBasePath, "/var/lib/adcp-gateway/media", "MEDIA_BASE_PATH")
	envFallback(&f.mediaBaseURL, "http://localhost:8094", "MEDIA_BASE_URL")
	envFallback(&f.redisAddrs, "", "ADCP_REDIS_ADDRS")
	envFallback(&f.otlpEndpoint, "localhost:4317", "ADCP_OTLP_ENDPOINT")
	if !f.tracingEnabled && os.Getenv("ADCP_TRACING_ENABLED") == "true" {
		f.tracingEnabled = true
	}
}

func envFallback(dst *string, defaultVal, envKey string) {
	if *dst == defaultVal {
		if v := os.Getenv(envKey); v != "" {
			*dst = v
		}
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	f := parseFlags()

	log, syncLog, err := logging.NewLogger()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer syncLog()

	if f.postgresConn == "" {
		return fmt.Errorf("--postgres-conn or POSTGRES_CONN is required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := runMigrations(f.postgresConn, log); err != nil {
		return err
	}
	log.V(1).Info("migrations complete")

	store, err := postgres.New(ctx, postgres.Config{
		ConnString: f.postgresConn,
		MaxConns:   envInt32("PG_MAX_CONNS", 25),
		MinConns:   envInt32("PG_MIN_CONNS", 5),
	})
	if err != nil {
		return fmt.Errorf("creating postgres provider: %w", err)
	}
	defer store.Close()

	registry := storage.NewRegistry(
		store.AsTenantRepository(),
		store.AsPrincipalRepository(),
		store.AsProductRepository(),
		store.AsMediaBuyRepository(),
		store.AsCreativeRepository(),
		store.AsTaskRepository(),
		store.AsContextRepository(),
		store.AsAuditRepository(),
		store.AsSyncJobRepository(),
		store.AsAdminConfigRepository(),
	)

	hotCache, err := buildHotCache(f, log)
	if err != nil {
		return fmt.Errorf("creating hot cache: %w", err)
	}
	if hotCache != nil {
		defer hotCache.Close()
	}

	gatewayMetrics := metrics.New(metrics.Config{})

	tracer, err := tracing.NewProvider(ctx, tracing.Config{
		Enabled:     f.tracingEnabled,
		Endpoint:    f.otlpEndpoint,
		ServiceName: "adcp-gateway",
		Insecure:    true,
	})
	if err != nil {
		return fmt.Errorf("creating tracing provider: %w", err)
	}
	defer func() {
		shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutCancel()
		_ = tracer.Shutdown(shutCtx)
	}()

	tenants := tenant.New(registry.Tenants, registry.Principals, log)
	catalogs := catalog.NewDatabase(registry.Products)
	convoMgr := convo.New(registry.Contexts, hotCache, log)
	policy := policyengine.New()
	adapters := buildAdapterRegistry(log, gatewayMetrics, tracer)
	notifier := notify.New(nil, log)

	mediaStorage, err := buildMediaStorage(ctx, f)
	if err != nil {
		return fmt.Errorf("creating media storage: %w", err)
	}
	defer mediaStorage.Close()
	mediaMux := http.NewServeMux()
	media.NewHandler(mediaStorage, log).RegisterRoutes(mediaMux)

	exec := executor.New(registry, policy, catalogs, convoMgr, adapters, notifier, log, time.Now, tracer, mediaStorage)

	origins := []string{}
	if f.allowedOrigins != "" {
		origins = strings.Split(f.allowedOrigins, ",")
	}

	a2aSrv := a2a.New(exec, tenants, log, origins)
	mcpSrv := mcp.New(exec, tenants, log)
	adminSrv := admin.New(registry, log)

	gamSyncCron := startGAMSyncScheduler(ctx, registry.Tenants, exec, log)
	defer gamSyncCron.Stop()

	a2aHTTP := &http.Server{Addr: f.a2aAddr, Handler: instrumentHandler("a2a", a2aSrv.Handler(), gatewayMetrics)}
	mcpHTTP := &http.Server{Addr: f.mcpAddr, Handler: instrumentHandler("mcp", mcpSrv.Handler(), gatewayMetrics)}
	adminHTTP := &http.Server{Addr: f.adminAddr, Handler: instrumentHandler("admin", adminSrv.Handler(), gatewayMetrics)}
	mediaHTTP := &http.Server{Addr: f.mediaAddr, Handler: instrumentHandler("media", mediaMux, gatewayMetrics)}
	healthHTTP := newHealthServer(f.healthAddr)

	startHTTPServer(log, "a2a", f.a2aAddr, a2aHTTP)
	startHTTPServer(log, "mcp", f.mcpAddr, mcpHTTP)
	startHTTPServer(log, "admin", f.adminAddr, adminHTTP)
	startHTTPServer(log, "media", f.mediaAddr, mediaHTTP)
	startHTTPServer(log, "health", f.healthAddr, healthHTTP)

	log.Info("adcp-gateway ready",
		"a2a", f.a2aAddr,
		"mcp", f.mcpAddr,
		"admin", f.adminAddr,
		"media", f.mediaAddr,
		"health", f.healthAddr,
	)

	<-ctx.Done()
	log.Info("shutting down")
	shutdownServers(log, a2aHTTP, mcpHTTP, adminHTTP, mediaHTTP, healthHTTP)
	return nil
}

// buildMediaStorage picks an S3-backed creative media store when a bucket is
// configured, falling back to a local-disk store (suitable for single-instance
// or development deployments) otherwise.
func buildMediaStorage(ctx context.Context, f *flags) (media.Storage, error) {
	if f.mediaS3Bucket != "" {
		return media.NewS3Storage(ctx, media.DefaultS3Config(f.mediaS3Bucket, f.mediaS3Region))
	}
	return media.NewLocalStorage(media.DefaultLocalStorageConfig(f.mediaBasePath, f.mediaBaseURL))
}

// buildHotCache returns a Redis-backed write-through cache for the Context
// Manager when redis-addrs is set, or nil (Manager falls back to the warm
// store alone) when it isn't.
func buildHotCache(f *flags, log logr.Logger) (storage.HotCache, error) {
	if f.redisAddrs == "" {
		return nil, nil
	}
	cfg := redis.DefaultConfig()
	cfg.Addrs = strings.Split(f.redisAddrs, ",")
	cache, err := redis.New(cfg)
	if err != nil {
		return nil, err
	}
	log.V(1).Info("hot cache enabled", "addrs", cfg.Addrs)
	return cache, nil
}

// buildAdapterRegistry registers every sales-platform adapter this binary
// ships with; per-tenant credentials for google_ad_manager are read from the
// tenant's adapter_config at dispatch time via the gam factory closure. Every
// adapter is wrapped with adapter.InstrumentWithTracing so upstream call
// counts, latency, and spans are exported regardless of which ad server a
// tenant is on.
func buildAdapterRegistry(log logr.Logger, m *metrics.GatewayMetrics, tracer *tracing.Provider) *adapter.Registry {
	adapters := adapter.NewRegistry(log)
	adapters.Register("mock", func(_ *model.Tenant, _ *model.Principal) (adapter.Adapter, error) {
		return adapter.InstrumentWithTracing(mock.New(log), m, tracer), nil
	})
	adapters.Register("google_ad_manager", func(t *model.Tenant, _ *model.Principal) (adapter.Adapter, error) {
		cfg := gam.Config{
			Auth: gam.AuthConfig{
				RefreshToken: configString(t, "google_ad_manager", "gam_refresh_token"),
			},
			NetworkCode:  configString(t, "google_ad_manager", "gam_network_code"),
			AdvertiserID: configString(t, "google_ad_manager", "gam_company_id"),
			TraffickerID: configString(t, "google_ad_manager", "gam_trafficker_id"),
		}
		return adapter.InstrumentWithTracing(gam.New(cfg, log), m, tracer), nil
	})
	adapters.Register("kevel", func(_ *model.Tenant, _ *model.Principal) (adapter.Adapter, error) {
		return adapter.InstrumentWithTracing(kevel.New(log), m, tracer), nil
	})
	adapters.Register("triton_digital", func(_ *model.Tenant, _ *model.Principal) (adapter.Adapter, error) {
		return adapter.InstrumentWithTracing(triton.New(log), m, tracer), nil
	})
	return adapters
}

// instrumentHandler wraps next so every request's duration and response
// status are recorded against protocol/path labels.
func instrumentHandler(protocol string, next http.Handler, m *metrics.GatewayMetrics) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.RecordRequest(metrics.RequestMetrics{
			Protocol:        protocol,
			Method:          r.URL.Path,
			DurationSeconds: time.Since(start).Seconds(),
			Success:         rec.status < 500,
		})
	})
}

// statusRecorder captures the status code a handler writes, since
// http.ResponseWriter doesn't expose it after the fact.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// configString reads a string field out of Tenant.AdapterConfig[adServer].
func configString(t *model.Tenant, adServer, key string) string {
	cfg, ok := t.AdapterConfig[adServer]
	if !ok {
		return ""
	}
	v, _ := cfg[key].(string)
	return v
}

func startHTTPServer(log logr.Logger, name, addr string, srv *http.Server) {
	go func() {
		log.Info("starting server", "server", name, "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "server error", "server", name)
		}
	}()
}

func shutdownServers(log logr.Logger, servers ...*http.Server) {
	shutCtx, shutCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutCancel()
	for _, s := range servers {
		if err := s.Shutdown(shutCtx); err != nil {
			log.Error(err, "server shutdown error", "addr", s.Addr)
		}
	}
}

func newHealthServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func runMigrations(connStr string, log logr.Logger) error {
	migrator, err := postgres.NewMigrator(connStr, log)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		return fmt.Errorf("running migrations: %w", err)
	}
	_ = migrator.Close()
	return nil
}

func envInt32(key string, def int32) int32 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return def
	}
	return int32(n)
}
