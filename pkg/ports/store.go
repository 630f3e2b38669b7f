package ports

import (
	"context"

	"github.com/halden-bio/catalyst/pkg/domain"
)

// StateStore defines the interface for persisting session state between
// requests. The default memory store keeps everything in process, matching
// the single-page origin of the pipeline; redis and file stores exist for
// deployments that outlive a process.
type StateStore interface {
	// Save persists the state for a given session ID.
	Save(ctx context.Context, sessionID string, state *domain.State) error

	// Load retrieves the state for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.State, error)

	// Delete removes the state for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}
