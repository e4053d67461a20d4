package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

var candidateColumns = []string{
	"id", "name", "email", "phone", "date_of_birth", "occupation", "summary",
	"experience", "skills", "languages", "education", "general_experience", "notes",
	"created_at", "updated_at",
}

const candidateUpsertSuffix = `ON CONFLICT (email) DO UPDATE SET
	name = EXCLUDED.name,
	phone = EXCLUDED.phone,
	date_of_birth = EXCLUDED.date_of_birth,
	occupation = EXCLUDED.occupation,
	summary = EXCLUDED.summary,
	experience = EXCLUDED.experience,
	skills = EXCLUDED.skills,
	languages = EXCLUDED.languages,
	education = EXCLUDED.education,
	general_experience = EXCLUDED.general_experience,
	notes = EXCLUDED.notes,
	updated_at = NOW()
RETURNING id`

func upsertCandidateQuery(c *Candidate) (string, []any, error) {
	return psql.Insert("candidates").
		Columns("name", "email", "phone", "date_of_birth", "occupation", "summary",
			"experience", "skills", "languages", "education", "general_experience", "notes").
		Values(c.Name, c.Email, c.Phone, c.DateOfBirth, c.Occupation, c.Summary,
			jsonArg(c.Experience), jsonArg(c.Skills), jsonArg(c.Languages), jsonArg(c.Education),
			c.GeneralExperience, c.Notes).
		Suffix(candidateUpsertSuffix).
		ToSql()
}

// UpsertCandidateByEmail inserts the candidate or merges its fields into the
// existing row with the same email, returning the row id either way.
func (r *Repo) UpsertCandidateByEmail(ctx context.Context, c *Candidate) (int64, error) {
	query, args, err := upsertCandidateQuery(c)
	if err != nil {
		return 0, fmt.Errorf("build candidate upsert: %w", err)
	}

	var id int64
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert candidate %s: %w", c.Email, err)
	}
	return id, nil
}

func (r *Repo) FindCandidateByID(ctx context.Context, id int64) (*Candidate, error) {
	query, args, err := psql.Select(candidateColumns...).
		From("candidates").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build candidate query: %w", err)
	}

	c, err := scanCandidate(r.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("candidate %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find candidate %d: %w", id, err)
	}
	return c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (*Candidate, error) {
	c := &Candidate{}
	var experience, skills, languages, education []byte
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.DateOfBirth, &c.Occupation, &c.Summary,
		&experience, &skills, &languages, &education, &c.GeneralExperience, &c.Notes,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Experience = experience
	c.Skills = skills
	c.Languages = languages
	c.Education = education
	return c, nil
}

func searchCandidatesQuery(criteria *Criteria) (string, []any, error) {
	if criteria == nil {
		criteria = &Criteria{}
	}
	limit := criteria.Limit
	if limit == 0 {
		limit = DefaultListLimit
	}

	qb := psql.Select(candidateColumns...).
		From("candidates").
		OrderBy("updated_at DESC", "id").
		Limit(limit)

	if criteria.Name != "" {
		qb = qb.Where(sq.ILike{"name": "%" + criteria.Name + "%"})
	}
	if criteria.Occupation != "" {
		qb = qb.Where(sq.ILike{"occupation": "%" + criteria.Occupation + "%"})
	}
	if len(criteria.Skills) > 0 {
		anySkill := sq.Or{}
		for _, s := range criteria.Skills {
			anySkill = append(anySkill, sq.Expr("skills::text ILIKE ?", "%"+s+"%"))
		}
		qb = qb.Where(anySkill)
	}
	return qb.ToSql()
}

// SearchCandidates matches name and occupation by substring and returns
// candidates having any of the given skills.
func (r *Repo) SearchCandidates(ctx context.Context, criteria *Criteria) ([]Candidate, error) {
	query, args, err := searchCandidatesQuery(criteria)
	if err != nil {
		return nil, fmt.Errorf("build candidate search: %w", err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search candidates: %w", err)
	}
	defer rows.Close()

	res := []Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		res = append(res, *c)
	}
	return res, rows.Err()
}
