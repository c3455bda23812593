// Package storage defines the interface for trackd storage backends.
package storage

import (
	"context"
	"errors"

	"github.com/uschtwill/trackd/internal/types"
)

// ErrNotFound is returned by mutations targeting a record that does not
// exist. Read operations return (nil, nil) for missing records instead.
var ErrNotFound = errors.New("not found")

// Storage is the persistence accessor for the four record kinds.
//
// Get* methods return (nil, nil) when the record is absent; mutation
// methods wrap ErrNotFound. All other failures are backend errors and
// surface as generic persistence errors at the operation boundary.
type Storage interface {
	// Issues

	// CreateIssue inserts a new issue and fills its ID and timestamps.
	CreateIssue(ctx context.Context, issue *types.Issue) error

	// GetIssue fetches a bare issue row by id.
	GetIssue(ctx context.Context, id int64) (*types.Issue, error)

	// GetIssueDetails fetches an issue with its labels, assigned user, and
	// comments (each with author), comments ordered by created_at descending.
	GetIssueDetails(ctx context.Context, id int64) (*types.IssueDetails, error)

	// UpdateIssue applies the given column updates and returns the updated
	// row. Keys must be in the allowed update set for the backend.
	UpdateIssue(ctx context.Context, id int64, updates map[string]interface{}) (*types.Issue, error)

	// DeleteIssue removes an issue; comment and label associations cascade.
	DeleteIssue(ctx context.Context, id int64) error

	// ListIssues returns one page of issues matching the filter plus the
	// total count of all matching rows, computed against the same predicate.
	ListIssues(ctx context.Context, filter types.IssueFilter) ([]*types.Issue, int, error)

	// Comments

	// CreateComment inserts a comment and fills its ID and CreatedAt.
	// The referenced issue and user must exist.
	CreateComment(ctx context.Context, comment *types.Comment) error

	// ListComments returns all comments for an issue with their authors,
	// ordered by created_at descending. Empty slice if none.
	ListComments(ctx context.Context, issueID int64) ([]*types.Comment, error)

	// Labels

	// CreateLabel inserts a label, optionally associating it with one issue.
	CreateLabel(ctx context.Context, label *types.Label, issueID *int64) error

	// ListLabels returns all labels in store-defined order.
	ListLabels(ctx context.Context) ([]*types.Label, error)

	// GetIssueLabels returns the labels attached to an issue.
	GetIssueLabels(ctx context.Context, issueID int64) ([]*types.Label, error)

	// Users

	// CreateUser inserts a user row. Email must be unique.
	CreateUser(ctx context.Context, user *types.User) error

	// GetUser fetches a user by id.
	GetUser(ctx context.Context, id string) (*types.User, error)

	// GetUserByEmail fetches a user by email.
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)

	// ListUsers returns all users ordered by name ascending.
	ListUsers(ctx context.Context) ([]*types.User, error)

	// Close releases the backend's resources.
	Close() error
}
