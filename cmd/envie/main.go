package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/envie-local/envie/internal/config"
	dbRedis "github.com/envie-local/envie/internal/db/redis"
	"github.com/envie-local/envie/internal/db/sqldb"
	"github.com/envie-local/envie/internal/domain/geo"
	"github.com/envie-local/envie/internal/domain/search/keyword"
	logpkg "github.com/envie-local/envie/internal/logger"
	"github.com/envie-local/envie/internal/metrics"
	establishmentrepo "github.com/envie-local/envie/internal/repository/establishment"
	"github.com/envie-local/envie/internal/repository/geocache"
	chiTransport "github.com/envie-local/envie/internal/transport/chi"
	"github.com/envie-local/envie/internal/transport/nominatim"
	healthuc "github.com/envie-local/envie/internal/usecase/health"
	searchuc "github.com/envie-local/envie/internal/usecase/search"
	"github.com/envie-local/envie/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting envie API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Bool("cache", cfg.Cache.Enabled()),
	)

	ctx := context.Background()

	database, err := sqldb.Open(sqldb.Config{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
	})
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer func() { _ = database.Close() }()

	if err := database.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	repo := establishmentrepo.New(database, logger)
	if cfg.Database.Migrate {
		if err := repo.Migrate(ctx); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	// Optional cache: geocode results and rate limit counters.
	// Nil interfaces (not typed nil pointers) when disabled.
	var (
		cache     *dbRedis.Store
		cachePing healthuc.Pinger
	)
	if cfg.Cache.Enabled() {
		cache, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer cache.Close()

		if err := cache.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		cachePing = cache
		logger.Info("Connected to cache")
	}

	geocoder := buildGeocoder(cfg, cache, logger)

	loc, err := cfg.Search.Location()
	if err != nil {
		logger.Fatal("Invalid timezone", zap.Error(err))
	}

	weights := searchuc.DefaultWeights()
	if cfg.Search.WeightsFile != "" {
		if err := config.LoadWeights(cfg.Search.WeightsFile, &weights); err != nil {
			logger.Fatal("Failed to load scoring weights", zap.Error(err))
		}
		logger.Info("Loaded scoring weights", zap.String("file", cfg.Search.WeightsFile))
	}

	extractor := keyword.NewExtractor(keyword.Options{
		MinTokenLength:     cfg.Search.MinTokenLength,
		KeepTwoLetterWords: cfg.Search.KeepTwoLetterWords(),
	})

	searchSvc := searchuc.New(repo, geocoder, extractor, searchuc.SystemClock{Location: loc}, searchuc.Config{
		DefaultOrigin: geo.Coordinates{
			Lat: cfg.Search.DefaultOrigin.Lat,
			Lng: cfg.Search.DefaultOrigin.Lng,
		},
		ResultLimit:       cfg.Search.ResultLimit,
		GeocodeTimeout:    cfg.Geocoder.Timeout(),
		ParallelThreshold: cfg.Search.ParallelThreshold,
		Weights:           weights,
		Logger:            logger,
	})
	healthSvc := healthuc.New(repo, cachePing)

	server := chiTransport.NewServer(searchSvc, healthSvc, cfg.Search.DefaultRadiusKm, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	if cfg.HTTP.TrustProxyHeaders {
		r.Use(chiMiddleware.RealIP)
	}
	r.Use(wideEventMiddleware(logger))
	if cache != nil {
		r.Use(chiTransport.RateLimitMiddleware(cache, chiTransport.RateLimitConfig{
			Requests: cfg.RateLimit.Requests,
			Window:   time.Duration(cfg.RateLimit.WindowSec) * time.Second,
		}))
	}
	r.Use(metrics.Middleware())
	server.Mount(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildGeocoder assembles the chain: Nominatim -> Cached. Returns nil when geocoding is disabled.
func buildGeocoder(cfg config.Config, cache *dbRedis.Store, logger *zap.Logger) searchuc.Geocoder {
	if !cfg.Geocoder.IsEnabled() {
		return nil
	}

	// Base provider (with transport metrics built-in)
	base := nominatim.NewGeocoder(&nominatim.Config{
		BaseURL:      cfg.Geocoder.BaseURL,
		UserAgent:    cfg.Geocoder.UserAgent,
		CountryCodes: cfg.Geocoder.CountryCodes,
		Timeout:      cfg.Geocoder.Timeout(),
		Logger:       logger,
	})
	if cache == nil {
		return base
	}

	return geocache.New(
		base, cache, time.Duration(cfg.Cache.GeocodeTTLSec)*time.Second,
		metrics.GeocodeCacheTotal, logger,
	)
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"error":   "Erreur lors de la recherche",
						"details": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line. The raw query is omitted: envie text is user input.
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
