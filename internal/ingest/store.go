package ingest

import (
	"context"

	"talenttrack/internal/storage"
)

type sqlStore struct {
	db *storage.DB
}

// NewSQLStore runs units of work as Postgres transactions.
func NewSQLStore(db *storage.DB) Store {
	return &sqlStore{db: db}
}

func (s *sqlStore) InTx(ctx context.Context, fn func(Repository) error) error {
	return s.db.InTx(ctx, func(r *storage.Repo) error {
		return fn(r)
	})
}
