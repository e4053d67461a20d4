package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

func (r *Repo) GetVacancy(ctx context.Context, id int64) (*Vacancy, error) {
	query, args, err := psql.Select("id", "title", "description", "created_at").
		From("vacancies").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build vacancy query: %w", err)
	}

	v := &Vacancy{}
	err = r.q.QueryRowContext(ctx, query, args...).Scan(&v.ID, &v.Title, &v.Description, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("vacancy %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get vacancy %d: %w", id, err)
	}
	return v, nil
}
