// Package memory implements the storage interface using in-memory data
// structures. It backs tests and deployments that select the memory
// backend in metadata.json; semantics mirror the sqlite backend,
// including referential checks and cascade on delete.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/uschtwill/trackd/internal/storage"
	"github.com/uschtwill/trackd/internal/types"
)

// Verify MemoryStorage implements storage.Storage at compile time
var _ storage.Storage = (*MemoryStorage)(nil)

// MemoryStorage implements the Storage interface using maps.
type MemoryStorage struct {
	mu sync.RWMutex // Protects all maps

	issues      map[int64]*types.Issue
	comments    map[int64][]*types.Comment // IssueID -> comments
	labels      map[int64]*types.Label
	issueLabels map[int64][]int64 // IssueID -> label IDs
	users       map[string]*types.User
	usersByMail map[string]string // email -> user ID

	nextIssueID   int64
	nextCommentID int64
	nextLabelID   int64
}

// New creates a new in-memory storage backend
func New() *MemoryStorage {
	return &MemoryStorage{
		issues:      make(map[int64]*types.Issue),
		comments:    make(map[int64][]*types.Comment),
		labels:      make(map[int64]*types.Label),
		issueLabels: make(map[int64][]int64),
		users:       make(map[string]*types.User),
		usersByMail: make(map[string]string),
	}
}

// CreateIssue inserts a new issue and fills its ID and timestamps.
func (m *MemoryStorage) CreateIssue(ctx context.Context, issue *types.Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if issue.CreatedAt.IsZero() {
		issue.CreatedAt = now
	}
	if issue.UpdatedAt.IsZero() {
		issue.UpdatedAt = now
	}
	if issue.Status == "" {
		issue.Status = types.StatusOpen
	}
	if err := issue.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if issue.AssignedToUserID != nil {
		if _, ok := m.users[*issue.AssignedToUserID]; !ok {
			return fmt.Errorf("create issue: user %s does not exist", *issue.AssignedToUserID)
		}
	}

	m.nextIssueID++
	issue.ID = m.nextIssueID
	stored := *issue
	m.issues[issue.ID] = &stored
	return nil
}

// GetIssue fetches a bare issue. Returns (nil, nil) when absent.
func (m *MemoryStorage) GetIssue(ctx context.Context, id int64) (*types.Issue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	issue, ok := m.issues[id]
	if !ok {
		return nil, nil
	}
	copied := *issue
	return &copied, nil
}

// GetIssueDetails fetches an issue with labels, assignee, and comments.
func (m *MemoryStorage) GetIssueDetails(ctx context.Context, id int64) (*types.IssueDetails, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	issue, ok := m.issues[id]
	if !ok {
		return nil, nil
	}

	details := &types.IssueDetails{Issue: *issue, Labels: []*types.Label{}, Comments: []*types.Comment{}}

	for _, labelID := range m.issueLabels[id] {
		if l, ok := m.labels[labelID]; ok {
			copied := *l
			details.Labels = append(details.Labels, &copied)
		}
	}
	sort.Slice(details.Labels, func(i, j int) bool { return details.Labels[i].Name < details.Labels[j].Name })

	if issue.AssignedToUserID != nil {
		if u, ok := m.users[*issue.AssignedToUserID]; ok {
			copied := *u
			details.AssignedTo = &copied
		}
	}

	details.Comments = m.commentsLocked(id)
	return details, nil
}

// UpdateIssue applies the given column updates and returns the updated row.
func (m *MemoryStorage) UpdateIssue(ctx context.Context, id int64, updates map[string]interface{}) (*types.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	issue, ok := m.issues[id]
	if !ok {
		return nil, fmt.Errorf("issue %d: %w", id, storage.ErrNotFound)
	}

	for key, value := range updates {
		switch key {
		case "title":
			issue.Title = asString(value)
		case "description":
			issue.Description = asString(value)
		case "status":
			issue.Status = types.Status(asString(value))
		case "priority":
			issue.Priority = types.Priority(asString(value))
		case "assigned_to_user_id":
			if value == nil {
				issue.AssignedToUserID = nil
			} else {
				s := asString(value)
				issue.AssignedToUserID = &s
			}
		default:
			return nil, fmt.Errorf("invalid field for update: %s", key)
		}
	}
	issue.UpdatedAt = time.Now()

	copied := *issue
	return &copied, nil
}

func asString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case types.Status:
		return string(s)
	case types.Priority:
		return string(s)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// DeleteIssue removes an issue and cascades to comments and associations.
func (m *MemoryStorage) DeleteIssue(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.issues[id]; !ok {
		return fmt.Errorf("issue %d: %w", id, storage.ErrNotFound)
	}
	delete(m.issues, id)
	delete(m.comments, id)
	delete(m.issueLabels, id)
	return nil
}

// ListIssues returns one page of issues plus the total matching count.
func (m *MemoryStorage) ListIssues(ctx context.Context, filter types.IssueFilter) ([]*types.Issue, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matching := make([]*types.Issue, 0, len(m.issues))
	for _, issue := range m.issues {
		if filter.Status != nil && issue.Status != *filter.Status {
			continue
		}
		copied := *issue
		matching = append(matching, &copied)
	}
	total := len(matching)

	// Stable baseline order by id, then the requested column if whitelisted.
	sort.Slice(matching, func(i, j int) bool { return matching[i].ID < matching[j].ID })
	if _, ok := types.SortColumns[filter.OrderBy]; ok {
		switch filter.OrderBy {
		case "title":
			sort.SliceStable(matching, func(i, j int) bool { return matching[i].Title < matching[j].Title })
		case "status":
			sort.SliceStable(matching, func(i, j int) bool { return matching[i].Status < matching[j].Status })
		case "createdAt":
			sort.SliceStable(matching, func(i, j int) bool { return matching[i].CreatedAt.Before(matching[j].CreatedAt) })
		}
	}

	if filter.PageSize > 0 {
		start := filter.Offset()
		if start > len(matching) {
			start = len(matching)
		}
		end := start + filter.PageSize
		if end > len(matching) {
			end = len(matching)
		}
		matching = matching[start:end]
	}
	return matching, total, nil
}

// CreateComment inserts a comment after checking both references.
func (m *MemoryStorage) CreateComment(ctx context.Context, comment *types.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.issues[comment.IssueID]; !ok {
		return fmt.Errorf("create comment: issue %d does not exist", comment.IssueID)
	}
	if _, ok := m.users[comment.UserID]; !ok {
		return fmt.Errorf("create comment: user %s does not exist", comment.UserID)
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}

	m.nextCommentID++
	comment.ID = m.nextCommentID
	stored := *comment
	stored.User = nil
	m.comments[comment.IssueID] = append(m.comments[comment.IssueID], &stored)
	return nil
}

// ListComments returns all comments for an issue with authors, newest first.
func (m *MemoryStorage) ListComments(ctx context.Context, issueID int64) ([]*types.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.commentsLocked(issueID), nil
}

func (m *MemoryStorage) commentsLocked(issueID int64) []*types.Comment {
	comments := make([]*types.Comment, 0, len(m.comments[issueID]))
	for _, c := range m.comments[issueID] {
		copied := *c
		if u, ok := m.users[c.UserID]; ok {
			user := *u
			copied.User = &user
		}
		comments = append(comments, &copied)
	}
	sort.SliceStable(comments, func(i, j int) bool {
		if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].ID > comments[j].ID
		}
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
	return comments
}

// CreateLabel inserts a label, optionally associating it with one issue.
func (m *MemoryStorage) CreateLabel(ctx context.Context, label *types.Label, issueID *int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if issueID != nil {
		if _, ok := m.issues[*issueID]; !ok {
			return fmt.Errorf("associate label: issue %d does not exist", *issueID)
		}
	}

	m.nextLabelID++
	label.ID = m.nextLabelID
	stored := *label
	m.labels[label.ID] = &stored
	if issueID != nil {
		m.issueLabels[*issueID] = append(m.issueLabels[*issueID], label.ID)
	}
	return nil
}

// ListLabels returns all labels ordered by id.
func (m *MemoryStorage) ListLabels(ctx context.Context) ([]*types.Label, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	labels := make([]*types.Label, 0, len(m.labels))
	for _, l := range m.labels {
		copied := *l
		labels = append(labels, &copied)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i].ID < labels[j].ID })
	return labels, nil
}

// GetIssueLabels returns the labels attached to an issue, by name.
func (m *MemoryStorage) GetIssueLabels(ctx context.Context, issueID int64) ([]*types.Label, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	labels := []*types.Label{}
	for _, labelID := range m.issueLabels[issueID] {
		if l, ok := m.labels[labelID]; ok {
			copied := *l
			labels = append(labels, &copied)
		}
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i].Name < labels[j].Name })
	return labels, nil
}

// CreateUser inserts a user row. Email must be unique.
func (m *MemoryStorage) CreateUser(ctx context.Context, user *types.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; ok {
		return fmt.Errorf("create user: id %s already exists", user.ID)
	}
	if _, ok := m.usersByMail[user.Email]; ok {
		return fmt.Errorf("create user: email %s already exists", user.Email)
	}
	stored := *user
	m.users[user.ID] = &stored
	m.usersByMail[user.Email] = user.ID
	return nil
}

// GetUser fetches a user by id. Returns (nil, nil) when absent.
func (m *MemoryStorage) GetUser(ctx context.Context, id string) (*types.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

// GetUserByEmail fetches a user by email. Returns (nil, nil) when absent.
func (m *MemoryStorage) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.usersByMail[email]
	if !ok {
		return nil, nil
	}
	copied := *m.users[id]
	return &copied, nil
}

// ListUsers returns all users ordered by name ascending.
func (m *MemoryStorage) ListUsers(ctx context.Context) ([]*types.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]*types.User, 0, len(m.users))
	for _, u := range m.users {
		copied := *u
		users = append(users, &copied)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

// Close is a no-op for the in-memory backend.
func (m *MemoryStorage) Close() error {
	return nil
}
