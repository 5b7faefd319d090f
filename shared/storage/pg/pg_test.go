package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/itchan-dev/authgate/shared/config"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTx_Commit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE accounts").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = WithTx(context.Background(), db, func(tx *sql.Tx) error {
		_, err := tx.Exec("UPDATE accounts SET verified = TRUE")
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollbackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectRollback()

	err = WithTx(context.Background(), db, func(tx *sql.Tx) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_BeginError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin().WillReturnError(errors.New("conn refused"))

	err = WithTx(context.Background(), db, func(tx *sql.Tx) error {
		t.Fatal("fn must not run")
		return nil
	})
	assert.ErrorContains(t, err, "failed to begin transaction")
}

func TestUniqueViolation(t *testing.T) {
	dup := &pq.Error{Code: "23505", Constraint: "accounts_email_key"}

	constraint, ok := UniqueViolation(fmt.Errorf("insert: %w", dup))
	assert.True(t, ok)
	assert.Equal(t, "accounts_email_key", constraint)

	_, ok = UniqueViolation(&pq.Error{Code: "23503"})
	assert.False(t, ok)

	_, ok = UniqueViolation(errors.New("plain"))
	assert.False(t, ok)
}

func TestConnString(t *testing.T) {
	cfg := config.Pg{Host: "db", Port: 5432, User: "u", Password: "p", Dbname: "authgate"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=authgate sslmode=disable", ConnString(cfg))

	cfg.SSLMode = "require"
	assert.Contains(t, ConnString(cfg), "sslmode=require")
}
