package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/halden-bio/catalyst/internal/config"
	"github.com/halden-bio/catalyst/internal/logging"
	"github.com/halden-bio/catalyst/pkg/domain"
	"github.com/halden-bio/catalyst/pkg/session"
)

// ListSessions prints the IDs of every stored session.
func ListSessions(configPath string) error {
	manager, err := managerFromConfig(configPath)
	if err != nil {
		return err
	}

	ids, err := manager.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(ids) == 0 {
		printSystemMessage("No sessions found.")
		return nil
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

// ResetSession deletes the stored state for a session.
func ResetSession(configPath, sessionID string) error {
	manager, err := managerFromConfig(configPath)
	if err != nil {
		return err
	}

	if err := manager.Delete(context.Background(), sessionID); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			printSystemMessage("Session '%s' not found.", sessionID)
			return nil
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	printSystemMessage("Session '%s' deleted.", sessionID)
	return nil
}

func managerFromConfig(configPath string) (*session.Manager, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return createSessionManager(cfg.Session, logging.NewNop())
}
