package backend

import (
	"context"
	"fmt"
	"log/slog"

	"syndicpulse/internal/ledger"
	"syndicpulse/internal/ledger/memory"
	"syndicpulse/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	seed, err := ledger.SeedFromFile(config.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load seed: %w", err)
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config, seed)
	case MemoryBackend:
		return f.createMemoryBackend(config, seed)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config, seed ledger.Seed) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	if err := repo.Bootstrap(ctx, seed, config.ReferenceMonth); err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to bootstrap SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"reference_month", config.ReferenceMonth.String())

	return &BackendResult{
		Store:   repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config, seed ledger.Seed) (*BackendResult, error) {
	store, err := memory.NewFromSeed(seed, config.ReferenceMonth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize memory backend: %w", err)
	}

	source := config.SeedFile
	if source == "" {
		source = "embedded"
	}
	f.logger.Info("Initialized memory backend",
		"seed", source,
		"buildings", len(seed.Buildings))

	return &BackendResult{
		Store:   store,
		Cleanup: store.Close,
	}, nil
}
