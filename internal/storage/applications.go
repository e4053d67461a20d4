package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

var applicationColumns = []string{
	"id", "candidate_id", "vacancy_id", "status", "ai_reason", "created_at", "updated_at",
}

// DefaultListLimit applies when ApplicationFilter.Limit is zero.
const DefaultListLimit = 50

func createApplicationQuery(a *Application) (string, []any, error) {
	return psql.Insert("applications").
		Columns("candidate_id", "vacancy_id", "status", "ai_reason").
		Values(a.CandidateID, a.VacancyID, a.Status, a.AIReason).
		Suffix("ON CONFLICT (candidate_id, vacancy_id) DO NOTHING RETURNING " + strings.Join(applicationColumns, ", ")).
		ToSql()
}

// CreateApplication inserts a new application. It returns ErrApplicationExists
// when the candidate already applied to the vacancy; the existing row is left untouched.
func (r *Repo) CreateApplication(ctx context.Context, a *Application) (*Application, error) {
	query, args, err := createApplicationQuery(a)
	if err != nil {
		return nil, fmt.Errorf("build application insert: %w", err)
	}

	created, err := scanApplication(r.q.QueryRowContext(ctx, query, args...))
	switch {
	case errors.Is(err, sql.ErrNoRows), isUniqueViolation(err):
		return nil, ErrApplicationExists
	case err != nil:
		return nil, fmt.Errorf("create application: %w", err)
	}
	return created, nil
}

func (r *Repo) FindApplication(ctx context.Context, candidateID, vacancyID int64) (*Application, error) {
	query, args, err := psql.Select(applicationColumns...).
		From("applications").
		Where(sq.Eq{"candidate_id": candidateID, "vacancy_id": vacancyID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build application query: %w", err)
	}

	a, err := scanApplication(r.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("application for candidate %d, vacancy %d: %w", candidateID, vacancyID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find application: %w", err)
	}
	return a, nil
}

func listApplicationsQuery(f ApplicationFilter) (string, []any, error) {
	cols := append(joinedColumns("a", applicationColumns), joinedColumns("c", candidateColumns)...)

	limit := f.Limit
	if limit == 0 {
		limit = DefaultListLimit
	}

	qb := psql.Select(cols...).
		From("applications a").
		Join("candidates c ON c.id = a.candidate_id").
		Where(sq.Eq{"a.vacancy_id": f.VacancyID}).
		OrderBy("a.created_at", "a.id").
		Limit(limit).
		Offset(f.Offset)
	if f.Status != "" {
		qb = qb.Where(sq.Eq{"a.status": f.Status})
	}
	return qb.ToSql()
}

// ListApplications returns the applications of one vacancy with their candidates.
func (r *Repo) ListApplications(ctx context.Context, f ApplicationFilter) ([]ApplicationView, error) {
	query, args, err := listApplicationsQuery(f)
	if err != nil {
		return nil, fmt.Errorf("build application list: %w", err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	views := []ApplicationView{}
	for rows.Next() {
		var v ApplicationView
		var experience, skills, languages, education []byte
		a, c := &v.Application, &v.Candidate
		if err := rows.Scan(
			&a.ID, &a.CandidateID, &a.VacancyID, &a.Status, &a.AIReason, &a.CreatedAt, &a.UpdatedAt,
			&c.ID, &c.Name, &c.Email, &c.Phone, &c.DateOfBirth, &c.Occupation, &c.Summary,
			&experience, &skills, &languages, &education, &c.GeneralExperience, &c.Notes,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		c.Experience, c.Skills, c.Languages, c.Education = experience, skills, languages, education
		views = append(views, v)
	}
	return views, rows.Err()
}

func scanApplication(row rowScanner) (*Application, error) {
	a := &Application{}
	if err := row.Scan(&a.ID, &a.CandidateID, &a.VacancyID, &a.Status, &a.AIReason, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return a, nil
}

func joinedColumns(alias string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c
	}
	return out
}
