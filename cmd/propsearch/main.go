package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/rueidis"
	"go.uber.org/zap"

	"github.com/kailas-cloud/propsearch/internal/config"
	"github.com/kailas-cloud/propsearch/internal/domain"
	logpkg "github.com/kailas-cloud/propsearch/internal/logger"
	"github.com/kailas-cloud/propsearch/internal/metrics"
	"github.com/kailas-cloud/propsearch/internal/repository/candidates"
	"github.com/kailas-cloud/propsearch/internal/repository/embcache"
	"github.com/kailas-cloud/propsearch/internal/repository/valuation"
	chiTransport "github.com/kailas-cloud/propsearch/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/propsearch/internal/transport/openai"
	"github.com/kailas-cloud/propsearch/internal/usecase/engine"
	"github.com/kailas-cloud/propsearch/internal/usecase/rerank"
	"github.com/kailas-cloud/propsearch/internal/version"
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

	logger.Info("Starting propsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("redis_addrs", cfg.Redis.Addrs),
	)

	client, err := candidates.NewClient(candidates.ClientConfig{
		Addrs:    cfg.Redis.Addrs,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create redis client", zap.Error(err))
	}
	defer client.Close()

	// Wait for the listing index to be ready
	ctx := context.Background()
	if err := candidates.WaitForReady(ctx, client, time.Duration(cfg.Redis.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Listing index not ready", zap.Error(err))
	}
	logger.Info("Connected to listing index")

	// Register domain metrics explicitly (no init())
	metrics.RegisterSearchMetrics()
	metrics.RegisterEmbeddingMetrics()

	embedder := buildEmbedder(cfg.Embedding, client, logger)
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Bool("cache", cfg.Embedding.CacheOn()),
	)

	source := candidates.New(client, embedder, candidates.Config{
		Index:  cfg.Engine.Index,
		Alpha:  cfg.Engine.HybridAlpha,
		Lambda: cfg.Engine.MMRLambda,
	}, logger)

	valuer := valuation.New(valuation.Config{
		Baselines:       cfg.Valuation.Baselines,
		DefaultBaseline: cfg.Valuation.DefaultBaseline,
	})

	reranker := rerank.New(rerank.Config{
		ExactMatchWeight: cfg.Engine.ExactMatchWeight,
		PreferenceWeight: cfg.Engine.PreferenceWeight,
		QualityWeight:    cfg.Engine.QualityWeight,
		DiversityPenalty: cfg.Engine.DiversityPenalty,
	}, valuer, logger)

	svc := engine.New(source, reranker, logger)

	server := chiTransport.NewServer(svc, indexPinger{client: client}, logger)
	handler := server.Router(cfg.Auth.APIKeys, wideEventMiddleware(logger))

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
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

// buildEmbedder assembles the embedder chain: OpenAI -> Cached.
func buildEmbedder(cfg config.EmbeddingConfig, client rueidis.Client, logger *zap.Logger) domain.Embedder {
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Provider:   cfg.Provider,
		Logger:     logger,
	})

	if !cfg.CacheOn() {
		return base
	}

	ttl := time.Duration(cfg.CacheTTLHrs) * time.Hour
	store := embcache.NewRedisStore(client, ttl)
	return embcache.New(base, store, metrics.EmbeddingCacheTotal, logger)
}

// indexPinger adapts the rueidis client to the health endpoint.
type indexPinger struct {
	client rueidis.Client
}

func (p indexPinger) Ping(ctx context.Context) error {
	return candidates.Ping(ctx, p.client)
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
