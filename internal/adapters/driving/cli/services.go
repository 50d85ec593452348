package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/custodia-labs/repoqa/internal/core/domain"
	"github.com/custodia-labs/repoqa/internal/core/ports/driven"
	"github.com/custodia-labs/repoqa/internal/core/ports/driving"
)

// Services bundles the ports the repository commands drive.
type Services struct {
	Sessions driving.SessionService
	Ingest   driving.IngestService
	Question driving.QuestionService

	// Metrics serves the Prometheus exposition. Nil disables /metrics.
	Metrics http.Handler

	Server domain.ServerSettings

	// Warnings are non-fatal start-up issues shown to the user.
	Warnings []string

	// Close releases provider clients and caches. Optional.
	Close func()
}

// ServiceFactory builds Services on first use.
type ServiceFactory func(ctx context.Context) (*Services, error)

var (
	servicesMu     sync.Mutex
	serviceFactory ServiceFactory
	services       *Services

	// configStore backs the config commands.
	configStore driven.ConfigStore
)

// SetServiceFactory sets the builder used by commands that need the core
// services.
func SetServiceFactory(f ServiceFactory) {
	servicesMu.Lock()
	defer servicesMu.Unlock()
	serviceFactory = f
}

// SetConfigStore sets the settings store used by the config commands.
func SetConfigStore(store driven.ConfigStore) {
	configStore = store
}

// loadServices returns the shared Services, building them once.
func loadServices(ctx context.Context) (*Services, error) {
	servicesMu.Lock()
	defer servicesMu.Unlock()

	if services != nil {
		return services, nil
	}
	if serviceFactory == nil {
		return nil, errors.New("services not configured")
	}
	svc, err := serviceFactory(ctx)
	if err != nil {
		return nil, err
	}
	services = svc
	return services, nil
}

func closeServices() {
	servicesMu.Lock()
	defer servicesMu.Unlock()
	if services != nil && services.Close != nil {
		services.Close()
	}
	services = nil
}

// localUser names the session owner for terminal commands.
func localUser() string {
	for _, key := range []string{"USER", "USERNAME"} {
		if u := os.Getenv(key); u != "" {
			return u
		}
	}
	return "local"
}

// startSession creates a session for the local user.
func startSession(ctx context.Context, svc *Services, credential string) (*domain.Session, error) {
	return svc.Sessions.Start(ctx, localUser(), credential)
}
