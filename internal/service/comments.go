package service

import (
	"context"
	"fmt"

	"github.com/uschtwill/trackd/internal/auth"
	"github.com/uschtwill/trackd/internal/types"
	"github.com/uschtwill/trackd/internal/validation"
)

// CreateComment stores a comment on an issue, attributed to the User
// matching the session's email. The check order mirrors the rest of the
// API: authentication, then author resolution, then payload validation.
func (s *Service) CreateComment(ctx context.Context, session *auth.Session, issueID int64, body []byte) (*types.Comment, error) {
	if session == nil || session.Email == "" {
		return nil, ErrUnauthenticated
	}

	user, err := s.store.GetUserByEmail(ctx, session.Email)
	if err != nil {
		return nil, fmt.Errorf("resolving author: %w", err)
	}
	if user == nil {
		return nil, &NotFoundError{Resource: "user"}
	}

	payload, err := validation.ParseCommentCreate(body)
	if err != nil {
		return nil, err
	}

	comment := &types.Comment{
		IssueID: issueID,
		UserID:  user.ID,
		Content: payload.Content,
	}
	// A missing issue surfaces here as a store error; the boundary reports
	// it as a generic creation failure.
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}
	comment.User = user
	s.log.WithField("issue", issueID).Info("comment created")
	return comment, nil
}

// ListComments returns all comments for an issue with their authors,
// ordered by creation time descending. No authentication required.
func (s *Service) ListComments(ctx context.Context, issueID int64) ([]*types.Comment, error) {
	comments, err := s.store.ListComments(ctx, issueID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	return comments, nil
}
