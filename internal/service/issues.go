package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/uschtwill/trackd/internal/auth"
	"github.com/uschtwill/trackd/internal/storage"
	"github.com/uschtwill/trackd/internal/types"
	"github.com/uschtwill/trackd/internal/validation"
)

// CreateIssue validates the payload and inserts a new issue with default
// status OPEN. No assignee or status is settable at creation.
func (s *Service) CreateIssue(ctx context.Context, session *auth.Session, body []byte) (*types.Issue, error) {
	if session == nil {
		return nil, ErrUnauthenticated
	}
	payload, err := validation.ParseIssueCreate(body)
	if err != nil {
		return nil, err
	}

	issue := &types.Issue{
		Title:       payload.Title,
		Description: payload.Description,
		Priority:    payload.Priority,
		Status:      types.StatusOpen,
	}
	if err := s.store.CreateIssue(ctx, issue); err != nil {
		return nil, fmt.Errorf("creating issue: %w", err)
	}
	s.log.WithField("issue", issue.ID).Info("issue created")
	return issue, nil
}

// PatchIssue applies a partial update. Fields not present in the payload
// are left untouched. A non-null assignedToUserId must reference an
// existing user; the target issue must exist.
func (s *Service) PatchIssue(ctx context.Context, session *auth.Session, id int64, body []byte) (*types.Issue, error) {
	if session == nil {
		return nil, ErrUnauthenticated
	}
	patch, err := validation.ParseIssuePatch(body)
	if err != nil {
		return nil, err
	}

	if patch.AssignedToUserID != nil {
		user, err := s.store.GetUser(ctx, *patch.AssignedToUserID)
		if err != nil {
			return nil, fmt.Errorf("checking assignee: %w", err)
		}
		if user == nil {
			return nil, &ReferentialError{Field: "assignedToUserId", Message: "Invalid user."}
		}
	}

	issue, err := s.store.GetIssue(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching issue: %w", err)
	}
	if issue == nil {
		return nil, &NotFoundError{Resource: "issue", ID: strconv.FormatInt(id, 10)}
	}

	updates := map[string]interface{}{}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Status != nil {
		updates["status"] = string(*patch.Status)
	}
	if patch.Priority != nil {
		updates["priority"] = string(*patch.Priority)
	}
	if patch.AssignedToUserID != nil {
		updates["assigned_to_user_id"] = *patch.AssignedToUserID
	} else if patch.ClearAssignee {
		updates["assigned_to_user_id"] = nil
	}

	updated, err := s.store.UpdateIssue(ctx, id, updates)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &NotFoundError{Resource: "issue", ID: strconv.FormatInt(id, 10)}
		}
		return nil, fmt.Errorf("updating issue: %w", err)
	}
	s.log.WithField("issue", id).Info("issue updated")
	return updated, nil
}

// DeleteIssue removes an issue. Comment and label associations cascade in
// the store.
func (s *Service) DeleteIssue(ctx context.Context, session *auth.Session, id int64) error {
	if session == nil {
		return ErrUnauthenticated
	}

	issue, err := s.store.GetIssue(ctx, id)
	if err != nil {
		return fmt.Errorf("fetching issue: %w", err)
	}
	if issue == nil {
		return &NotFoundError{Resource: "issue", ID: strconv.FormatInt(id, 10)}
	}

	if err := s.store.DeleteIssue(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &NotFoundError{Resource: "issue", ID: strconv.FormatInt(id, 10)}
		}
		return fmt.Errorf("deleting issue: %w", err)
	}
	s.log.WithField("issue", id).Info("issue deleted")
	return nil
}

// GetIssue fetches an issue with labels, assignee, and comments. No
// authentication required.
func (s *Service) GetIssue(ctx context.Context, id int64) (*types.IssueDetails, error) {
	details, err := s.store.GetIssueDetails(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching issue: %w", err)
	}
	if details == nil {
		return nil, &NotFoundError{Resource: "issue", ID: strconv.FormatInt(id, 10)}
	}
	return details, nil
}

// ListQuery carries raw issue listing parameters as received from the
// client. Unrecognized values are ignored rather than rejected.
type ListQuery struct {
	Status  string
	OrderBy string
	Page    string
}

// ListResult is one page of issues plus the pagination envelope.
type ListResult struct {
	Issues   []*types.Issue `json:"issues"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}

// ListIssues returns a filtered, sorted page of issues. The total count
// is computed against the same filter predicate, independent of paging.
func (s *Service) ListIssues(ctx context.Context, q ListQuery) (*ListResult, error) {
	filter := types.IssueFilter{PageSize: s.pageSize}

	if status := types.Status(q.Status); status.IsValid() {
		filter.Status = &status
	}
	if _, ok := types.SortColumns[q.OrderBy]; ok {
		filter.OrderBy = q.OrderBy
	}
	filter.Page = 1
	if page, err := strconv.Atoi(q.Page); err == nil && page >= 1 {
		filter.Page = page
	}

	issues, total, err := s.store.ListIssues(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing issues: %w", err)
	}
	return &ListResult{
		Issues:   issues,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}
