// Package service implements the issue lifecycle, comment, label, user,
// and listing operations. It enforces the check order shared by every
// mutation: authentication, then payload validation, then existence and
// referential checks, then the persistence call. Validation failure never
// mutates state.
package service

import (
	"github.com/sirupsen/logrus"

	"github.com/uschtwill/trackd/internal/storage"
)

// DefaultPageSize is the fixed issue listing page size.
const DefaultPageSize = 10

// Service wires the storage backend to the operation set. It holds no
// mutable state; all state lives in the store.
type Service struct {
	store    storage.Storage
	log      *logrus.Entry
	pageSize int
}

// New creates a Service. pageSize <= 0 falls back to DefaultPageSize.
func New(store storage.Storage, log *logrus.Entry, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Service{store: store, log: log, pageSize: pageSize}
}
