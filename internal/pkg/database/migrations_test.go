package database

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations_AppliesEachFileInOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	for _, table := range []string{"products", "users", "product_likes"} {
		mock.ExpectBegin()
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS " + table).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()
	}

	err = RunMigrations(sqlx.NewDb(db, "sqlmock"))

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_RollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS products").WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	err = RunMigrations(sqlx.NewDb(db, "sqlmock"))

	assert.ErrorContains(t, err, "000001_create_products_table")
	assert.NoError(t, mock.ExpectationsWereMet())
}
