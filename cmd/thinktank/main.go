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
	"github.com/nidhogg/think-tank/internal/advisor"
	"github.com/nidhogg/think-tank/internal/api"
	"github.com/nidhogg/think-tank/internal/capability"
	"github.com/nidhogg/think-tank/internal/config"
	"github.com/nidhogg/think-tank/internal/embedding"
	"github.com/nidhogg/think-tank/internal/history"
	"github.com/nidhogg/think-tank/internal/memstore"
	"github.com/nidhogg/think-tank/internal/reasoning"
	"github.com/nidhogg/think-tank/internal/retrieval"
	"github.com/nidhogg/think-tank/internal/vectorstore"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	logger.Info("Starting Think Tank...")

	// Load configuration
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/thinktank.json"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.String("path", cfgPath), zap.Error(err))
	}
	logger.Info("Config loaded", zap.String("path", cfgPath))

	// Initialize advisor router
	router := advisor.NewRouter(logger)
	for _, ac := range cfg.Advisors {
		advCfg := advisor.Config{
			ID: ac.ID, Type: ac.Type,
			Endpoint: ac.Endpoint, APIKey: ac.APIKey, Model: ac.Model,
		}
		switch ac.Type {
		case "openai", "openai-compatible", "":
			router.Register(advisor.NewOpenAIAdvisor(advCfg, logger))
		default:
			logger.Warn("unknown advisor type", zap.String("id", ac.ID), zap.String("type", ac.Type))
		}
	}

	// Wrap the router in a Redis answer cache when available. The engine
	// runs on the heuristic fallback if no advisor is configured at all.
	var adv advisor.Advisor
	var cache *advisor.CachedAdvisor
	if len(cfg.Advisors) > 0 {
		adv = router
		if cfg.Database.Redis.URL != "" {
			ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
			cached, cErr := advisor.NewCachedAdvisor(router, cfg.Database.Redis.URL, ttl, logger)
			if cErr != nil {
				logger.Warn("Redis unavailable, running without advisor cache", zap.Error(cErr))
			} else {
				adv = cached
				cache = cached
			}
		}
	} else {
		logger.Warn("no advisors configured, reasoning runs on heuristic fallback")
	}

	// Initialize memory store
	memStore, err := memstore.NewStore(cfg.Database.Neo4j.URI, cfg.Database.Neo4j.User, cfg.Database.Neo4j.Password, logger)
	if err != nil {
		logger.Warn("Neo4j unavailable, running without memories", zap.Error(err))
		memStore = nil
	}

	// Initialize conversation store
	var convos *history.Store
	if cfg.Database.Postgres.DSN != "" {
		hs, pgErr := history.New(cfg.Database.Postgres.DSN, logger)
		if pgErr != nil {
			logger.Warn("PostgreSQL unavailable, running without conversation history", zap.Error(pgErr))
		} else {
			if mErr := hs.Migrate(context.Background(), "migrations"); mErr != nil {
				logger.Fatal("migration failed", zap.Error(mErr))
			}
			convos = hs
		}
	}

	// Initialize vector search
	var vectors *vectorstore.Searcher
	var qdrant *vectorstore.Client
	if cfg.Database.Qdrant.Host != "" {
		embedder, eErr := embedding.New(embedding.Config{
			Provider: cfg.Embedding.Provider,
			Endpoint: cfg.Embedding.Endpoint,
			Model:    cfg.Embedding.Model,
			APIKey:   cfg.Embedding.APIKey,
		})
		if eErr != nil {
			logger.Warn("embedding provider misconfigured, running without vector search", zap.Error(eErr))
		} else {
			qc, qErr := vectorstore.NewClient(vectorstore.Config{
				Host: cfg.Database.Qdrant.Host,
				Port: cfg.Database.Qdrant.Port,
			})
			if qErr != nil {
				logger.Warn("Qdrant unavailable, running without vector search", zap.Error(qErr))
			} else {
				qdrant = qc
				vectors = vectorstore.NewSearcher(embedder, qc, vectorstore.CollKnowledge)
				if iErr := vectors.Init(context.Background()); iErr != nil {
					logger.Warn("Qdrant collection init failed", zap.Error(iErr))
				}
			}
		}
	}

	// Assemble retrieval sources. Nil stores are tolerated per pool.
	var memSearcher retrieval.MemorySearcher
	if memStore != nil {
		memSearcher = memStore
	}
	var vecSearcher retrieval.VectorSearcher
	if vectors != nil {
		vecSearcher = vectors
	}
	var convSearcher retrieval.ConversationSearcher
	if convos != nil {
		convSearcher = convos
	}
	sources := retrieval.NewSources(vecSearcher, memSearcher, convSearcher, logger)

	// Capability registry and workflow runner
	registry := capability.NewRegistry(logger)
	capability.RegisterBuiltins(registry, adv, sources, memSearcher)
	runner := capability.NewRunner(registry, logger)

	// Reasoning engine
	engine := reasoning.NewEngine(adv, registry, logger)

	// Build HTTP handler
	handler := api.NewHandler(engine, registry, runner, sources, convos, logger)

	// Start server
	port := fmt.Sprintf("%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("Think Tank listening", zap.String("port", port))
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down Think Tank...")
	ctx := context.Background()
	srv.Shutdown(ctx)
	if memStore != nil {
		memStore.Close(ctx)
	}
	if convos != nil {
		convos.Close()
	}
	if qdrant != nil {
		qdrant.Close()
	}
	if cache != nil {
		cache.Close()
	}
}
