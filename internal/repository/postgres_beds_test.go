package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBedsMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresBedsRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewPostgresBedsRepository(db)
}

func TestListByHospital_JoinsBedTypeName(t *testing.T) {
	db, mock, repo := setupBedsMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "hospital_id", "name", "total_beds", "available_beds"}).
		AddRow("b1", "h1", "General", 20, 12).
		AddRow("b2", "h1", "ICU", 10, 6)

	mock.ExpectQuery(`SELECT hb.id`).
		WithArgs("h1").
		WillReturnRows(rows)

	records, err := repo.ListByHospital(context.Background(), "h1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "General", records[0].BedTypeName)
	assert.Equal(t, 12, records[0].AvailableBeds)
	assert.Equal(t, "ICU", records[1].BedTypeName)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByHospital_EmptyResult(t *testing.T) {
	db, mock, repo := setupBedsMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "hospital_id", "name", "total_beds", "available_beds"})
	mock.ExpectQuery(`SELECT hb.id`).
		WithArgs("h-empty").
		WillReturnRows(rows)

	records, err := repo.ListByHospital(context.Background(), "h-empty")
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NotNil(t, records)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByHospital_BlankIDSkipsQuery(t *testing.T) {
	db, mock, repo := setupBedsMock(t)
	defer db.Close()

	records, err := repo.ListByHospital(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, records)

	// No statement reached the database.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBedRecord_NotFound(t *testing.T) {
	db, mock, repo := setupBedsMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT hb.id`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetBedRecord(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAvailability_ScopedByHospital(t *testing.T) {
	db, mock, repo := setupBedsMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE hospital_beds SET available_beds`).
		WithArgs(3, "b1", "h1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.UpdateAvailability(context.Background(), "b1", "h1", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAvailability_ZeroRowsForForeignRecord(t *testing.T) {
	db, mock, repo := setupBedsMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE hospital_beds SET available_beds`).
		WithArgs(3, "b1", "other-hospital").
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err := repo.UpdateAvailability(context.Background(), "b1", "other-hospital", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	assert.NoError(t, mock.ExpectationsWereMet())
}
