package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/uschtwill/trackd/internal/storage"
	"github.com/uschtwill/trackd/internal/types"
)

// allowedUpdateFields whitelists column names accepted by UpdateIssue.
var allowedUpdateFields = map[string]bool{
	"title":               true,
	"description":         true,
	"status":              true,
	"priority":            true,
	"assigned_to_user_id": true,
}

const issueColumns = `id, title, description, status, priority, assigned_to_user_id, created_at, updated_at`

// CreateIssue inserts a new issue and fills its ID and timestamps.
func (s *SQLiteStorage) CreateIssue(ctx context.Context, issue *types.Issue) error {
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

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO issues (title, description, status, priority, assigned_to_user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, issue.Title, issue.Description, string(issue.Status), string(issue.Priority),
		issue.AssignedToUserID, formatTime(issue.CreatedAt), formatTime(issue.UpdatedAt))
	if err != nil {
		return wrapDBError("create issue", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return wrapDBError("get issue id", err)
	}
	issue.ID = id
	return nil
}

// GetIssue fetches a bare issue row. Returns (nil, nil) when absent.
func (s *SQLiteStorage) GetIssue(ctx context.Context, id int64) (*types.Issue, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+issueColumns+` FROM issues WHERE id = ?
	`, id)
	issue, err := scanIssue(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDBError("get issue", err)
	}
	return issue, nil
}

// GetIssueDetails fetches an issue with labels, assignee, and comments.
func (s *SQLiteStorage) GetIssueDetails(ctx context.Context, id int64) (*types.IssueDetails, error) {
	issue, err := s.GetIssue(ctx, id)
	if err != nil || issue == nil {
		return nil, err
	}

	details := &types.IssueDetails{Issue: *issue, Labels: []*types.Label{}, Comments: []*types.Comment{}}

	labels, err := s.GetIssueLabels(ctx, id)
	if err != nil {
		return nil, err
	}
	details.Labels = labels

	if issue.AssignedToUserID != nil {
		user, err := s.GetUser(ctx, *issue.AssignedToUserID)
		if err != nil {
			return nil, err
		}
		details.AssignedTo = user
	}

	comments, err := s.ListComments(ctx, id)
	if err != nil {
		return nil, err
	}
	details.Comments = comments

	return details, nil
}

// UpdateIssue applies the given column updates and returns the updated row.
func (s *SQLiteStorage) UpdateIssue(ctx context.Context, id int64, updates map[string]interface{}) (*types.Issue, error) {
	setClauses := []string{"updated_at = ?"}
	args := []interface{}{formatTime(time.Now())}

	for key, value := range updates {
		// Prevent SQL injection by validating field names
		if !allowedUpdateFields[key] {
			return nil, fmt.Errorf("invalid field for update: %s", key)
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = ?", key))
		args = append(args, value)
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE issues SET %s WHERE id = ?", strings.Join(setClauses, ", ")) // #nosec G201 - column names validated above
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError("update issue", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, wrapDBError("check rows affected", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("issue %d: %w", id, storage.ErrNotFound)
	}

	return s.GetIssue(ctx, id)
}

// DeleteIssue removes an issue. Comments and label associations cascade.
func (s *SQLiteStorage) DeleteIssue(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM issues WHERE id = ?`, id)
	if err != nil {
		return wrapDBError("delete issue", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return wrapDBError("check rows affected", err)
	}
	if rows == 0 {
		return fmt.Errorf("issue %d: %w", id, storage.ErrNotFound)
	}
	return nil
}

// ListIssues returns one page of issues plus the total matching count.
func (s *SQLiteStorage) ListIssues(ctx context.Context, filter types.IssueFilter) ([]*types.Issue, int, error) {
	where := ""
	var args []interface{}
	if filter.Status != nil {
		where = " WHERE status = ?"
		args = append(args, string(*filter.Status))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM issues`+where, args...).Scan(&total); err != nil {
		return nil, 0, wrapDBError("count issues", err)
	}

	query := `SELECT ` + issueColumns + ` FROM issues` + where
	if col, ok := types.SortColumns[filter.OrderBy]; ok {
		query += " ORDER BY " + col // #nosec G202 - column from fixed whitelist
	}
	pageSize := filter.PageSize
	if pageSize > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, pageSize, filter.Offset())
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, wrapDBError("list issues", err)
	}
	defer func() { _ = rows.Close() }()

	issues := []*types.Issue{}
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, 0, wrapDBError("scan issue", err)
		}
		issues = append(issues, issue)
	}
	return issues, total, wrapDBError("iterate issues", rows.Err())
}

// scanner abstracts sql.Row and sql.Rows for scanIssue.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanIssue(row scanner) (*types.Issue, error) {
	var (
		issue     types.Issue
		status    string
		priority  string
		assignee  sql.NullString
		createdAt string
		updatedAt string
	)
	err := row.Scan(&issue.ID, &issue.Title, &issue.Description, &status, &priority,
		&assignee, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	issue.Status = types.Status(status)
	issue.Priority = types.Priority(priority)
	if assignee.Valid {
		issue.AssignedToUserID = &assignee.String
	}
	issue.CreatedAt = parseTimeString(createdAt)
	issue.UpdatedAt = parseTimeString(updatedAt)
	return &issue, nil
}
