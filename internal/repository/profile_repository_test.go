package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileRepositoryHasInstructorProfile(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM profiles WHERE uid = $1 AND type = $2")).
		WithArgs(int64(7), "instructor").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM profiles")).
		WithArgs(int64(8), "instructor").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	has, err := repo.HasInstructorProfile(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = repo.HasInstructorProfile(context.Background(), 8)
	require.NoError(t, err)
	assert.False(t, has)
	require.NoError(t, mock.ExpectationsWereMet())
}
