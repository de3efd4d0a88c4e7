package cmd

import (
	"fmt"
	"time"

	"github.com/adocshq/adocs/internal/cache"
	"github.com/adocshq/adocs/internal/config"
	"github.com/adocshq/adocs/internal/embeddings"
	"github.com/adocshq/adocs/internal/generation"
	"github.com/adocshq/adocs/internal/history"
	"github.com/adocshq/adocs/internal/injection"
	"github.com/adocshq/adocs/internal/knowledge"
	"github.com/adocshq/adocs/internal/llm"
	"github.com/adocshq/adocs/internal/pipeline"
	"github.com/adocshq/adocs/internal/storage"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `adocs init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// app bundles the wired pipeline for command use.
type app struct {
	cfg       *config.Config
	store     *storage.LocalStore
	service   *pipeline.Service
	rebuilder *pipeline.Rebuilder
	history   *history.Store
	historyDB *history.DB
}

func (a *app) Close() {
	if a.historyDB != nil {
		a.historyDB.Close()
	}
}

// buildApp wires the full pipeline from configuration. withHistory keeps
// one-shot commands from touching the SQLite file.
func buildApp(cfg *config.Config, withHistory bool) (*app, error) {
	store, err := storage.NewLocalStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening data dir: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(cfg.EmbeddingProvider, cfg.EmbeddingModel)
	if err != nil {
		return nil, err
	}

	client, err := llm.NewClient(cfg.Provider, cfg.Model)
	if err != nil {
		return nil, err
	}
	if cfg.RateLimitRPM > 0 {
		client = llm.NewRateLimitedClient(client, cfg.RateLimitRPM)
	}

	executor := generation.NewExecutor(client, cfg.Model, cfg.Temperature)
	executor.Retry.MaxAttempts = cfg.MaxRetries

	a := &app{
		cfg:   cfg,
		store: store,
	}
	if withHistory {
		db, err := history.Open(cfg.HistoryDBPath)
		if err != nil {
			return nil, fmt.Errorf("opening history db: %w", err)
		}
		a.historyDB = db
		a.history = history.NewStore(db)
	}

	holder := &knowledge.Holder{}
	a.service = &pipeline.Service{
		Embedder:  embedder,
		Executor:  executor,
		Injector:  injection.NewEngine(store),
		Snapshots: holder,
		Repos:     config.NewRepoConfigStore(cfg.RepoConfigPath),
		Cache:     cache.New(store),
		History:   a.history,
		TopK:      cfg.TopK,
		Timeout:   time.Duration(cfg.RequestTimeoutSecs) * time.Second,
	}
	a.rebuilder = &pipeline.Rebuilder{
		Builder:   knowledge.NewBuilder(embedder),
		Store:     store,
		Snapshots: holder,
	}
	return a, nil
}
