package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/docassist/internal/domain/qa"
	"github.com/yanqian/docassist/internal/domain/summarizer"
	"github.com/yanqian/docassist/internal/domain/workspace"
	"github.com/yanqian/docassist/internal/infra/config"
	"github.com/yanqian/docassist/internal/infra/inference"
	"github.com/yanqian/docassist/internal/infra/querylog"
	"github.com/yanqian/docassist/internal/infra/reader"
	"github.com/yanqian/docassist/internal/infra/session"
	"github.com/yanqian/docassist/internal/infra/storage"
	"github.com/yanqian/docassist/pkg/metrics"
)

func provideSummarizerConfig(cfg *config.Config) summarizer.Config {
	return summarizer.Config{
		ChunkChars:  cfg.Segment.SummaryChunkChars,
		Concurrency: cfg.Segment.Concurrency,
	}
}

func provideQAConfig(cfg *config.Config) qa.Config {
	return qa.Config{
		ChunkChars:  cfg.Segment.AnswerChunkChars,
		Concurrency: cfg.Segment.Concurrency,
	}
}

func provideWorkspaceConfig(cfg *config.Config) workspace.Config {
	return workspace.Config{MaxUploadBytes: cfg.HTTP.MaxUploadBytes}
}

func provideInferenceProvider(cfg *config.Config, recorder *metrics.Recorder, logger *slog.Logger) *inference.Provider {
	return inference.NewProvider(inference.Options{
		APIKey:        cfg.LLM.APIKey,
		BaseURL:       cfg.LLM.BaseURL,
		Model:         cfg.LLM.Model,
		Temperature:   cfg.LLM.Temperature,
		Timeout:       cfg.LLM.Timeout,
		SummaryPrompt: cfg.Summary.Prompt,
		AnswerPrompt:  cfg.Answer.Prompt,
		Encoding:      cfg.LLM.Encoding,
		Bounds: inference.SummaryBounds{
			MinLength:      cfg.Summary.MinLength,
			MaxLength:      cfg.Summary.MaxLength,
			MaxInputTokens: cfg.Summary.MaxInputTokens,
		},
	}, recorder, logger)
}

func provideDocumentReader(logger *slog.Logger) workspace.DocumentReader {
	return reader.New(logger)
}

func provideObjectStorage(cfg *config.Config, logger *slog.Logger) workspace.ObjectStorage {
	r2 := cfg.Storage.R2
	if !r2.Enabled {
		logger.Info("r2 storage disabled, archiving uploads in memory")
		return storage.NewMemoryStorage()
	}
	store, err := storage.NewR2Storage(storage.R2Options{
		Endpoint:  r2.Endpoint,
		AccessKey: r2.AccessKey,
		SecretKey: r2.SecretKey,
		Bucket:    r2.Bucket,
		Region:    r2.Region,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize r2 storage, archiving uploads in memory", "error", err)
		return storage.NewMemoryStorage()
	}
	logger.Info("r2 storage enabled", "bucket", r2.Bucket)
	return store
}

func provideSessionStore(cfg *config.Config, logger *slog.Logger) (workspace.SessionStore, func()) {
	fallback := func() (workspace.SessionStore, func()) {
		return session.NewMemoryStore(cfg.Session.TTL), func() {}
	}
	if !cfg.Session.Redis.Enabled {
		return fallback()
	}
	opt, err := buildValkeyOptions(cfg.Session.Redis.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
		return fallback()
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory store", "error", err)
		return fallback()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory store", "error", err)
		client.Close()
		return fallback()
	}
	logger.Info("valkey session store enabled", "addr", cfg.Session.Redis.Addr)
	return session.NewValkeyStore(client, cfg.Session.Redis.Prefix, cfg.Session.TTL), client.Close
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideQueryLogRepository(cfg *config.Config, logger *slog.Logger) (workspace.QueryLogRepository, func()) {
	fallback := querylog.NewMemoryRepository()
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory query log")
		return fallback, func() {}
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory query log", "error", err)
		return fallback, func() {}
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory query log", "error", err)
		return fallback, func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory query log", "error", err)
		pool.Close()
		return fallback, func() {}
	}
	repo := querylog.NewPostgresRepository(pool)
	if err := repo.Migrate(ctx); err != nil {
		logger.Error("query log migration failed, using memory query log", "error", err)
		pool.Close()
		return fallback, func() {}
	}
	logger.Info("postgres query log enabled")
	return repo, pool.Close
}
