package service

import (
	"context"
	"fmt"

	"github.com/uschtwill/trackd/internal/types"
)

// ListUsers returns all users ordered by name ascending, for assignee
// pickers. No authentication required.
func (s *Service) ListUsers(ctx context.Context) ([]*types.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}
