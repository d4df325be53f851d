package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	rediscache "safebite/internal/cache/redis"
	"safebite/internal/config"
	"safebite/internal/engine"
	"safebite/internal/handler"
	"safebite/internal/llm"
	"safebite/internal/llm/providers"
	"safebite/internal/logger"
	"safebite/internal/metrics"
	"safebite/internal/port"
	"safebite/internal/repository/postgres"
	"safebite/internal/router"
	"safebite/internal/service"
	s3storage "safebite/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	lg, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	allergenRepo := postgres.NewAllergenRepo(db)
	candidateRepo := postgres.NewCandidateRepo(db)
	docRepo := postgres.NewLabelDocumentRepo(db)
	aliasRepo := postgres.NewAliasRepo(db)

	// Initialize storage
	labelStore, err := s3storage.NewLabelStore(ctx, &cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	resolver, err := buildResolver(ctx, &cfg.Matching, aliasRepo, lg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Reasoning gateway and text extractor
	providers.Register()

	var adviceCache port.AdviceCache
	if cfg.Redis.Enabled {
		rdb, redisErr := rediscache.NewClient(ctx, &cfg.Redis)
		if redisErr != nil {
			return fmt.Errorf("failed to connect to redis: %w", redisErr)
		}
		defer func() { _ = rdb.Close() }()
		adviceCache = rediscache.NewAdviceCache(rdb, cfg.Gateway.CacheTTL)
	}

	gateway, err := llm.BuildGateway(&cfg.Gateway, adviceCache, m, lg.Named("gateway"))
	if err != nil {
		return fmt.Errorf("failed to build reasoning gateway: %w", err)
	}
	if gateway == nil {
		lg.Info("reasoning gateway disabled; inconclusive checks stay UNCERTAIN")
	}

	extractor, err := llm.NewExtractor(&cfg.Extractor)
	if err != nil {
		return fmt.Errorf("failed to build text extractor: %w", err)
	}

	eng := engine.New(engine.Config{
		FuzzyThreshold:    cfg.Matching.FuzzyThreshold,
		AliasScore:        cfg.Matching.AliasScore,
		MinEvidenceTokens: cfg.Matching.MinEvidenceTokens,
		MinTokenLength:    cfg.Matching.MinTokenLength,
		GatewayTimeout:    cfg.Gateway.Timeout,
	}, resolver, gateway, lg)

	// Initialize services
	authSvc := service.NewAuthService(&cfg.JWT)
	allergenSvc := service.NewAllergenService(allergenRepo, resolver, lg)
	checkSvc := service.NewCheckService(allergenRepo, eng, m, cfg.Matching.BatchConcurrency, lg)
	documentSvc := service.NewDocumentService(
		docRepo, candidateRepo, allergenRepo, allergenSvc,
		labelStore, extractor, eng, m, &cfg.S3, lg,
	)

	// Setup router
	r := router.Setup(lg, authSvc, router.Handlers{
		Allergen:  handler.NewAllergenHandler(allergenSvc),
		Document:  handler.NewDocumentHandler(documentSvc),
		Candidate: handler.NewCandidateHandler(documentSvc),
		Check:     handler.NewCheckHandler(checkSvc),
		Health:    handler.NewHealthHandler(db),
	}, reg, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("server starting", zap.String("addr", cfg.Server.Port), zap.String("env", cfg.Server.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	lg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// buildResolver merges the embedded alias table, the optional alias file
// and the aliases stored in the database.
func buildResolver(ctx context.Context, cfg *config.MatchingConfig, aliasRepo port.AliasRepository, lg *zap.Logger) (*engine.Resolver, error) {
	table := engine.DefaultTable()

	if cfg.AliasFile != "" {
		fileTable, err := engine.LoadTableFile(cfg.AliasFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load alias file: %w", err)
		}
		table.Merge(fileTable)
	}

	entries, err := aliasRepo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored aliases: %w", err)
	}
	table.Merge(engine.TableFromEntries(entries))

	resolver, err := engine.NewResolver(table)
	if err != nil {
		return nil, fmt.Errorf("failed to build alias resolver: %w", err)
	}
	lg.Info("alias table loaded", zap.Int("families", len(resolver.Families())), zap.Int("stored_aliases", len(entries)))
	return resolver, nil
}
