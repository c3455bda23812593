package sqlite

import (
	"context"
	"time"

	"github.com/uschtwill/trackd/internal/types"
)

// CreateComment inserts a comment. The referenced issue and user must
// exist; missing references surface as foreign key errors.
func (s *SQLiteStorage) CreateComment(ctx context.Context, comment *types.Comment) error {
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (issue_id, user_id, content, created_at)
		VALUES (?, ?, ?, ?)
	`, comment.IssueID, comment.UserID, comment.Content, formatTime(comment.CreatedAt))
	if err != nil {
		return wrapDBError("create comment", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return wrapDBError("get comment id", err)
	}
	comment.ID = id
	return nil
}

// ListComments returns all comments for an issue with their authors,
// newest first. Ties on created_at break by id so insertion order holds.
func (s *SQLiteStorage) ListComments(ctx context.Context, issueID int64) ([]*types.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.issue_id, c.user_id, c.content, c.created_at,
		       u.id, u.name, u.email, u.image
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.issue_id = ?
		ORDER BY c.created_at DESC, c.id DESC
	`, issueID)
	if err != nil {
		return nil, wrapDBError("list comments", err)
	}
	defer func() { _ = rows.Close() }()

	comments := []*types.Comment{}
	for rows.Next() {
		var (
			c         types.Comment
			u         types.User
			createdAt string
		)
		if err := rows.Scan(&c.ID, &c.IssueID, &c.UserID, &c.Content, &createdAt,
			&u.ID, &u.Name, &u.Email, &u.Image); err != nil {
			return nil, wrapDBError("scan comment", err)
		}
		c.CreatedAt = parseTimeString(createdAt)
		c.User = &u
		comments = append(comments, &c)
	}
	return comments, wrapDBError("iterate comments", rows.Err())
}
