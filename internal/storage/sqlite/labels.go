package sqlite

import (
	"context"
	"database/sql"

	"github.com/uschtwill/trackd/internal/types"
)

// CreateLabel inserts a label, optionally associating it with one issue.
// The insert and the association commit atomically: a bad issue reference
// rolls back the label as well.
func (s *SQLiteStorage) CreateLabel(ctx context.Context, label *types.Label, issueID *int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO labels (name, color) VALUES (?, ?)
		`, label.Name, label.Color)
		if err != nil {
			return wrapDBError("create label", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return wrapDBError("get label id", err)
		}
		label.ID = id

		if issueID != nil {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO issue_labels (issue_id, label_id) VALUES (?, ?)
			`, *issueID, id)
			if err != nil {
				return wrapDBError("associate label", err)
			}
		}
		return nil
	})
}

// ListLabels returns all labels in store-defined order.
func (s *SQLiteStorage) ListLabels(ctx context.Context) ([]*types.Label, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, color FROM labels`)
	if err != nil {
		return nil, wrapDBError("list labels", err)
	}
	defer func() { _ = rows.Close() }()
	return scanLabels(rows)
}

// GetIssueLabels returns the labels attached to an issue.
func (s *SQLiteStorage) GetIssueLabels(ctx context.Context, issueID int64) ([]*types.Label, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.id, l.name, l.color
		FROM labels l
		JOIN issue_labels il ON il.label_id = l.id
		WHERE il.issue_id = ?
		ORDER BY l.name
	`, issueID)
	if err != nil {
		return nil, wrapDBError("get issue labels", err)
	}
	defer func() { _ = rows.Close() }()
	return scanLabels(rows)
}

func scanLabels(rows *sql.Rows) ([]*types.Label, error) {
	labels := []*types.Label{}
	for rows.Next() {
		var l types.Label
		if err := rows.Scan(&l.ID, &l.Name, &l.Color); err != nil {
			return nil, wrapDBError("scan label", err)
		}
		labels = append(labels, &l)
	}
	return labels, wrapDBError("iterate labels", rows.Err())
}
