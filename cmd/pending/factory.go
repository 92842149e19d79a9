package pending

import (
	"context"
	"fmt"

	"github.com/mizuki-dev/subrefine/internal/config"
	"github.com/mizuki-dev/subrefine/internal/repository"
	"github.com/mizuki-dev/subrefine/internal/service/learning"
)

// Services bundles what the pending commands need: the pending repository
// for listing and the tracker for promote/reject decisions.
type Services struct {
	Pending repository.PendingRepository
	Tracker *learning.Tracker
}

// ServiceFactory creates pending-suggestion service instances
type ServiceFactory struct{}

// NewServiceFactory creates a new service factory
func NewServiceFactory() *ServiceFactory {
	return &ServiceFactory{}
}

// CreateServices creates the pending services with a live database connection
func (f *ServiceFactory) CreateServices(ctx context.Context) (*Services, func(), error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	dbPool, err := config.NewDatabasePool(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	pendingRepo := repository.NewPendingRepository(dbPool)
	dictRepo := repository.NewDictionaryRepository(dbPool)

	services := &Services{
		Pending: pendingRepo,
		Tracker: learning.NewTracker(pendingRepo, dictRepo),
	}

	cleanup := func() {
		dbPool.Close()
	}

	return services, cleanup, nil
}

// resolveServices returns the injected services (for testing) or builds real
// ones from configuration.
func resolveServices(ctx context.Context, injected *Services) (*Services, func(), error) {
	if injected != nil {
		return injected, func() {}, nil
	}
	return NewServiceFactory().CreateServices(ctx)
}
