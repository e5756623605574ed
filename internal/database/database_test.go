package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"mta/internal/domain"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB_DirectoryCreation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
	logger := zerolog.Nop()

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, dbPath)
	assert.Equal(t, dbPath, db.Path())
}

func TestNewDB_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := zerolog.Nop()

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	seedItem(t, db, "Chair", 10)
	require.NoError(t, db.Close())

	db, err = NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	items, err := db.ListItems(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestDB_ForeignKeysEnabled(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	var enabled int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&enabled))
	assert.Equal(t, 1, enabled)
}

func TestTranslateError(t *testing.T) {
	assert.Nil(t, translateError(nil))

	unique := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}
	assert.ErrorIs(t, translateError(unique), domain.ErrDuplicateIdentifier)

	fk := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}
	assert.ErrorIs(t, translateError(fk), domain.ErrInUse)

	other := errors.New("boom")
	assert.Equal(t, other, translateError(other))
}

type stubResult struct {
	rows int64
	err  error
}

func (r stubResult) LastInsertId() (int64, error) { return 0, nil }
func (r stubResult) RowsAffected() (int64, error) { return r.rows, r.err }

func TestRequireAffected(t *testing.T) {
	assert.NoError(t, requireAffected(stubResult{rows: 1}, "update item", 1))
	assert.ErrorIs(t, requireAffected(stubResult{}, "update item", 1), domain.ErrNotFound)

	driverErr := errors.New("rows affected unsupported")
	err := requireAffected(stubResult{err: driverErr}, "delete booking", 7)
	require.Error(t, err)
	assert.ErrorIs(t, err, driverErr)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "delete booking 7")
}

func TestDB_ErrorPaths(t *testing.T) {
	db := setupTestDB(t)
	db.Close()

	ctx := context.Background()

	_, err := db.CommittedQuantity(ctx, 1, day("2024-01-01"), day("2024-01-02"), 0)
	assert.Error(t, err)

	_, err = db.ListBookingsWithLineItems(ctx)
	assert.Error(t, err)

	_, err = db.SweepExpired(ctx, day("2024-01-01"))
	assert.Error(t, err)

	_, err = db.ListItems(ctx)
	assert.Error(t, err)
}
