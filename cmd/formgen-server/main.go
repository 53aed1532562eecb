/*-------------------------------------------------------------------------
 *
 * main.go
 *    Main entry point for the FormGen server
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    cmd/formgen-server/main.go
 *
 *-------------------------------------------------------------------------
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/formgen/server/internal/api"
	"github.com/formgen/server/internal/auth"
	"github.com/formgen/server/internal/config"
	"github.com/formgen/server/internal/db"
	"github.com/formgen/server/internal/embedding"
	"github.com/formgen/server/internal/generator"
	"github.com/formgen/server/internal/jobs"
	"github.com/formgen/server/internal/memory"
	"github.com/formgen/server/internal/metrics"
	"github.com/formgen/server/internal/vectorstore"
	"github.com/formgen/server/internal/webhooks"
)

var (
	version   = "dev"
	buildDate = "unknown"
	gitCommit = "unknown"
)

func main() {
	var (
		showVersion    = flag.Bool("version", false, "Show version information")
		configPath     = flag.String("c", "", "Path to configuration file")
		configPathLong = flag.String("config", "", "Path to configuration file")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "FormGen Server - AI-assisted form builder backend\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                    Start server with default configuration\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -c config.yaml     Start server with custom config file\n", os.Args[0])
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("formgen-server version %s\n", version)
		fmt.Printf("Build date: %s\n", buildDate)
		fmt.Printf("Git commit: %s\n", gitCommit)
		os.Exit(0)
	}

	/* Load configuration: flag takes precedence over CONFIG_PATH */
	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = *configPathLong
	}
	if cfgPath == "" {
		cfgPath = os.Getenv("CONFIG_PATH")
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load config: %v\n", err)
		os.Exit(1)
	}

	metrics.InitLogging(cfg.Logging.Level, cfg.Logging.Format)

	/* Connect to database with retry */
	database, err := db.NewDBWithRetry(cfg.Database.URL, db.PoolConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: 10 * time.Minute,
	}, 3, 2*time.Second)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	/* Run migrations */
	if migrationRunner, err := db.NewMigrationRunner(database.DB, cfg.Database.MigrationsDir); err == nil {
		if err := migrationRunner.Run(context.Background()); err != nil {
			log.Warn().Err(err).Msg("Migration failed")
		}
	}

	queries := db.NewQueries(database.DB)
	queries.SetConnInfoFunc(database.GetConnInfoString)

	/* Embedding + vector store. When Pinecone is disabled (or no index
	 * host is configured) the memory service runs without a vector
	 * backend and generation falls back to keyword search. */
	var provider embedding.Provider
	var store vectorstore.Store
	if cfg.Pinecone.Enabled && cfg.Pinecone.IndexHost != "" {
		provider, err = embedding.NewProvider(
			cfg.Embedding.Provider,
			cfg.Gemini.APIKey, cfg.Gemini.EmbeddingModel,
			cfg.Pinecone.APIKey, cfg.Pinecone.EmbeddingModel,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize embedding provider")
		}
		store = vectorstore.NewPineconeClient(cfg.Pinecone.APIKey, cfg.Pinecone.IndexHost)
	} else {
		log.Warn().Msg("Vector backend disabled, using keyword search for form context")
	}

	memoryService := memory.NewService(provider, store, queries, cfg.Pinecone.TopK)

	llm, err := generator.NewGenAILLM(cfg.Gemini.APIKey, cfg.Gemini.GenerationModel)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize LLM client")
	}
	generatorService := generator.NewService(llm, memoryService)

	/* Background workers */
	webhookService := webhooks.NewService(queries, cfg.Webhooks.Workers)
	webhookService.Start()
	defer webhookService.Stop()

	jobRunner := jobs.NewRunner(2, 30*time.Second)
	jobRunner.Start()
	defer jobRunner.Stop()

	/* Auth */
	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize token manager")
	}
	var rateLimiter *auth.RateLimiter
	requestsPerMin := 0
	if cfg.RateLimit.Enabled {
		rateLimiter = auth.NewRateLimiter()
		requestsPerMin = cfg.RateLimit.RequestsPerMin
	}

	handlers := api.NewHandlers(queries, database, generatorService, memoryService, webhookService, jobRunner)
	router := api.NewRouter(handlers, tokens, rateLimiter, requestsPerMin)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	embeddingName := "none"
	if provider != nil {
		embeddingName = provider.Name()
	}

	go func() {
		log.Info().
			Str("addr", cfg.Server.Addr()).
			Str("version", version).
			Str("embedding_provider", embeddingName).
			Msg("FormGen server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	/* Graceful shutdown */
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
}
