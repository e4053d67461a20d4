//go:build integration

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("TALENTTRACK_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TALENTTRACK_TEST_DATABASE_URL not set")
	}

	db, err := NewDB(dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.Migrate(context.Background()))
	return db
}

func createVacancy(t *testing.T, db *DB, title string) int64 {
	t.Helper()
	var id int64
	err := db.connection.QueryRow(`INSERT INTO vacancies (title) VALUES ($1) RETURNING id`, title).Scan(&id)
	require.NoError(t, err)
	return id
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}

func TestCandidateUpsertMerges(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := db.Repo()
	email := uniqueEmail("merge")

	id1, err := repo.UpsertCandidateByEmail(ctx, &Candidate{Name: "First", Email: email, Skills: json.RawMessage(`["Go"]`)})
	require.NoError(t, err)
	id2, err := repo.UpsertCandidateByEmail(ctx, &Candidate{Name: "Second", Email: email, GeneralExperience: 3})
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	c, err := repo.FindCandidateByID(ctx, id1)
	require.NoError(t, err)
	assert.Equal(t, "Second", c.Name)
	assert.Equal(t, 3, c.GeneralExperience)
	assert.Nil(t, c.Skills)
}

func TestCreateApplicationConflict(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := db.Repo()
	vacancyID := createVacancy(t, db, "Backend Engineer")

	candidateID, err := repo.UpsertCandidateByEmail(ctx, &Candidate{Name: "A", Email: uniqueEmail("app")})
	require.NoError(t, err)

	created, err := repo.CreateApplication(ctx, &Application{CandidateID: candidateID, VacancyID: vacancyID, Status: StatusPending, AIReason: "first"})
	require.NoError(t, err)

	_, err = repo.CreateApplication(ctx, &Application{CandidateID: candidateID, VacancyID: vacancyID, Status: StatusRejected, AIReason: "second"})
	assert.ErrorIs(t, err, ErrApplicationExists)

	found, err := repo.FindApplication(ctx, candidateID, vacancyID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "first", found.AIReason)
	assert.Equal(t, StatusPending, found.Status)

	views, err := repo.ListApplications(ctx, ApplicationFilter{VacancyID: vacancyID})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, candidateID, views[0].Candidate.ID)
}

func TestInTxRollsBack(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	email := uniqueEmail("rollback")
	boom := errors.New("boom")

	var id int64
	err := db.InTx(ctx, func(r *Repo) error {
		var err error
		id, err = r.UpsertCandidateByEmail(ctx, &Candidate{Name: "Gone", Email: email})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = db.Repo().FindCandidateByID(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetVacancyNotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Repo().GetVacancy(context.Background(), -1)
	assert.ErrorIs(t, err, ErrNotFound)
}
