// Package types defines core data structures for the trackd issue tracker.
package types

import (
	"fmt"
	"time"
)

// Issue represents a trackable work item.
type Issue struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority,omitempty"`

	// AssignedToUserID references a users row. Nil means unassigned.
	AssignedToUserID *string `json:"assignedToUserId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Field length limits shared by validation and storage.
const (
	MaxTitleLen       = 255
	MaxDescriptionLen = 65535
	MaxContentLen     = 65535
	MaxLabelNameLen   = 50
	MaxUserIDLen      = 255
)

// Validate checks if the issue has valid field values.
func (i *Issue) Validate() error {
	if len(i.Title) == 0 {
		return fmt.Errorf("title is required")
	}
	if len(i.Title) > MaxTitleLen {
		return fmt.Errorf("title must be %d characters or less (got %d)", MaxTitleLen, len(i.Title))
	}
	if len(i.Description) == 0 {
		return fmt.Errorf("description is required")
	}
	if len(i.Description) > MaxDescriptionLen {
		return fmt.Errorf("description must be %d characters or less (got %d)", MaxDescriptionLen, len(i.Description))
	}
	if !i.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", i.Status)
	}
	if i.Priority != "" && !i.Priority.IsValid() {
		return fmt.Errorf("invalid priority: %s", i.Priority)
	}
	if i.AssignedToUserID != nil && *i.AssignedToUserID == "" {
		return fmt.Errorf("assignedToUserId cannot be empty")
	}
	return nil
}

// Status represents the current lifecycle state of an issue
type Status string

// Issue status constants
const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusClosed     Status = "CLOSED"
)

// IsValid checks if the status value is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusClosed:
		return true
	}
	return false
}

// Priority ranks issue severity. Empty means unset.
type Priority string

// Issue priority constants
const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// IsValid checks if the priority value is one of the four known ranks.
// The empty value is not valid here; callers treat "" as unset.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// User is owned by the external identity collaborator; trackd reads it
// for assignment and comment attribution.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image,omitempty"`
}

// Comment represents a timestamped note on an issue
type Comment struct {
	ID        int64     `json:"id"`
	IssueID   int64     `json:"issueId"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`

	// User is the authoring user, populated on read paths that join users.
	User *User `json:"user,omitempty"`
}

// Label represents a named, colored tag attachable to issues
type Label struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// IssueDetails extends Issue with labels, assignee, and comments.
// Used for JSON serialization of the issue detail endpoint.
type IssueDetails struct {
	Issue
	Labels     []*Label   `json:"labels"`
	AssignedTo *User      `json:"assignedTo,omitempty"`
	Comments   []*Comment `json:"comments"`
}

// IssueFilter is used to filter and page issue list queries.
type IssueFilter struct {
	Status *Status // nil = all statuses

	// OrderBy is one of the SortColumns keys; empty = store-defined order.
	OrderBy string

	Page     int // 1-based; callers normalize to >= 1
	PageSize int
}

// SortColumns whitelists the orderBy values accepted by issue listing,
// mapped to their storage column names. Unknown values fall back to
// unsorted rather than erroring.
var SortColumns = map[string]string{
	"title":     "title",
	"status":    "status",
	"createdAt": "created_at",
}

// Offset returns the row offset for the filter's page.
func (f IssueFilter) Offset() int {
	page := f.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * f.PageSize
}
