package dictionary

import (
	"context"
	"fmt"

	"github.com/mizuki-dev/subrefine/internal/config"
	"github.com/mizuki-dev/subrefine/internal/repository"
)

// ServiceFactory creates dictionary repository instances
type ServiceFactory struct{}

// NewServiceFactory creates a new service factory
func NewServiceFactory() *ServiceFactory {
	return &ServiceFactory{}
}

// CreateRepository creates a dictionary repository with a live database connection
func (f *ServiceFactory) CreateRepository(ctx context.Context) (repository.DictionaryRepository, func(), error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	dbPool, err := config.NewDatabasePool(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repo := repository.NewDictionaryRepository(dbPool)

	cleanup := func() {
		dbPool.Close()
	}

	return repo, cleanup, nil
}

// resolveRepository returns the injected repository (for testing) or builds a
// real one from configuration.
func resolveRepository(ctx context.Context, injected repository.DictionaryRepository) (repository.DictionaryRepository, func(), error) {
	if injected != nil {
		return injected, func() {}, nil
	}
	return NewServiceFactory().CreateRepository(ctx)
}
