package sqlite

// schema is the database DDL, applied idempotently at open.
//
// Timestamps are stored as RFC3339Nano TEXT. Foreign keys are enforced via
// the foreign_keys pragma set in the DSN; issue deletion cascades to
// comments and label associations.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id    TEXT PRIMARY KEY,
	name  TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL UNIQUE,
	image TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS issues (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	title               TEXT NOT NULL,
	description         TEXT NOT NULL,
	status              TEXT NOT NULL DEFAULT 'OPEN',
	priority            TEXT NOT NULL DEFAULT '',
	assigned_to_user_id TEXT REFERENCES users(id),
	created_at          TEXT NOT NULL,
	updated_at          TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_issues_status ON issues(status);
CREATE INDEX IF NOT EXISTS idx_issues_assignee ON issues(assigned_to_user_id);

CREATE TABLE IF NOT EXISTS comments (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	issue_id   INTEGER NOT NULL REFERENCES issues(id) ON DELETE CASCADE,
	user_id    TEXT NOT NULL REFERENCES users(id),
	content    TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_comments_issue ON comments(issue_id, created_at);

CREATE TABLE IF NOT EXISTS labels (
	id    INTEGER PRIMARY KEY AUTOINCREMENT,
	name  TEXT NOT NULL,
	color TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS issue_labels (
	issue_id INTEGER NOT NULL REFERENCES issues(id) ON DELETE CASCADE,
	label_id INTEGER NOT NULL REFERENCES labels(id) ON DELETE CASCADE,
	PRIMARY KEY (issue_id, label_id)
);
`
