package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertCandidateQuery(t *testing.T) {
	c := &Candidate{
		Name:   "Jane Doe",
		Email:  "jane@x.com",
		Skills: json.RawMessage(`["Go"]`),
	}

	query, args, err := upsertCandidateQuery(c)
	require.NoError(t, err)

	assert.Contains(t, query, "INSERT INTO candidates")
	assert.Contains(t, query, "ON CONFLICT (email) DO UPDATE SET")
	assert.Contains(t, query, "RETURNING id")
	assert.Contains(t, query, "$12")
	require.Len(t, args, 12)
	assert.Equal(t, "jane@x.com", args[1])
	assert.Nil(t, args[6], "absent experience is stored as NULL")
	assert.Equal(t, `["Go"]`, args[7])
}

func TestCreateApplicationQuery(t *testing.T) {
	query, args, err := createApplicationQuery(&Application{CandidateID: 7, VacancyID: 3, Status: StatusPending})
	require.NoError(t, err)

	assert.Contains(t, query, "ON CONFLICT (candidate_id, vacancy_id) DO NOTHING")
	assert.Contains(t, query, "RETURNING id, candidate_id, vacancy_id, status, ai_reason, created_at, updated_at")
	assert.Equal(t, []any{int64(7), int64(3), StatusPending, ""}, args)
}

func TestListApplicationsQuery(t *testing.T) {
	tests := []struct {
		name      string
		filter    ApplicationFilter
		wantArgs  []any
		contains  []string
		excluding []string
	}{
		{
			name:      "vacancy only",
			filter:    ApplicationFilter{VacancyID: 4},
			wantArgs:  []any{int64(4)},
			contains:  []string{"JOIN candidates c ON c.id = a.candidate_id", "WHERE a.vacancy_id = $1", "LIMIT 50", "OFFSET 0"},
			excluding: []string{"a.status ="},
		},
		{
			name:     "status and paging",
			filter:   ApplicationFilter{VacancyID: 4, Status: StatusInterview, Limit: 10, Offset: 20},
			wantArgs: []any{int64(4), StatusInterview},
			contains: []string{"a.vacancy_id = $1", "a.status = $2", "LIMIT 10", "OFFSET 20", "ORDER BY a.created_at, a.id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := listApplicationsQuery(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantArgs, args)
			for _, s := range tt.contains {
				assert.Contains(t, query, s)
			}
			for _, s := range tt.excluding {
				assert.NotContains(t, query, s)
			}
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
	assert.False(t, isUniqueViolation(nil))
}

func TestValidApplicationStatus(t *testing.T) {
	for _, s := range []string{"pending", "interview", "offered", "accepted", "rejected"} {
		assert.True(t, ValidApplicationStatus(s), s)
	}
	for _, s := range []string{"approved", "", "PENDING", "hired"} {
		assert.False(t, ValidApplicationStatus(s), s)
	}
}

func TestSearchCandidatesQuery(t *testing.T) {
	query, args, err := searchCandidatesQuery(&Criteria{Name: "ana", Skills: []string{"Go", "SQL"}})
	require.NoError(t, err)

	assert.Contains(t, query, "name ILIKE $1")
	assert.Contains(t, query, "(skills::text ILIKE $2 OR skills::text ILIKE $3)")
	assert.NotContains(t, query, "occupation ILIKE")
	assert.Contains(t, query, "LIMIT 50")
	assert.Equal(t, []any{"%ana%", "%Go%", "%SQL%"}, args)

	query, args, err = searchCandidatesQuery(nil)
	require.NoError(t, err)
	assert.NotContains(t, query, "WHERE")
	assert.Empty(t, args)
}
