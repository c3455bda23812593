package service

import (
	"context"
	"fmt"

	"github.com/uschtwill/trackd/internal/auth"
	"github.com/uschtwill/trackd/internal/types"
	"github.com/uschtwill/trackd/internal/validation"
)

// CreateLabel validates and stores a label, optionally associating it
// with one existing issue.
func (s *Service) CreateLabel(ctx context.Context, session *auth.Session, body []byte) (*types.Label, error) {
	if session == nil {
		return nil, ErrUnauthenticated
	}
	payload, err := validation.ParseLabelCreate(body)
	if err != nil {
		return nil, err
	}

	label := &types.Label{Name: payload.Name, Color: payload.Color}
	if err := s.store.CreateLabel(ctx, label, payload.IssueID); err != nil {
		return nil, fmt.Errorf("creating label: %w", err)
	}
	s.log.WithField("label", label.ID).Info("label created")
	return label, nil
}

// ListLabels returns all labels in store-defined order.
func (s *Service) ListLabels(ctx context.Context) ([]*types.Label, error) {
	labels, err := s.store.ListLabels(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing labels: %w", err)
	}
	return labels, nil
}
