package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newItemsDB(t *testing.T) Database {
	t.Helper()
	ctx := context.Background()
	db, err := NewDatabase(ctx, "sqlite:///"+filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Session(ctx).Exec("CREATE TABLE test_items (id INTEGER PRIMARY KEY, name TEXT UNIQUE)").Error)
	return db
}

func countItems(t *testing.T, db Database) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Session(context.Background()).Raw("SELECT COUNT(*) FROM test_items").Scan(&count).Error)
	return count
}

func TestWithTransaction(t *testing.T) {
	ctx := context.Background()
	db := newItemsDB(t)

	err := WithTransaction(ctx, db, func(tx *gorm.DB) error {
		return tx.Exec("INSERT INTO test_items (name) VALUES (?)", "item1").Error
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), countItems(t, db))

	testErr := errors.New("test error")
	err = WithTransaction(ctx, db, func(tx *gorm.DB) error {
		if err := tx.Exec("INSERT INTO test_items (name) VALUES (?)", "item2").Error; err != nil {
			return err
		}
		return testErr
	})
	assert.ErrorIs(t, err, testErr)
	assert.Equal(t, int64(1), countItems(t, db))
}

func TestWithTransactionResult(t *testing.T) {
	ctx := context.Background()
	db := newItemsDB(t)

	result, err := WithTransactionResult(ctx, db, func(tx *gorm.DB) (int, error) {
		var val int
		err := tx.Raw("SELECT 42").Scan(&val).Error
		return val, err
	})
	require.NoError(t, err)
	assert.Equal(t, 42, result)
}

func TestWithTransactionResult_PanicRollsBack(t *testing.T) {
	ctx := context.Background()
	db := newItemsDB(t)

	assert.Panics(t, func() {
		_ = WithTransaction(ctx, db, func(tx *gorm.DB) error {
			_ = tx.Exec("INSERT INTO test_items (name) VALUES (?)", "item1").Error
			panic("boom")
		})
	})
	assert.Equal(t, int64(0), countItems(t, db))
}

func TestIsDuplicateKey(t *testing.T) {
	ctx := context.Background()
	db := newItemsDB(t)

	require.NoError(t, db.Session(ctx).Exec("INSERT INTO test_items (name) VALUES (?)", "dup").Error)
	err := db.Session(ctx).Exec("INSERT INTO test_items (name) VALUES (?)", "dup").Error
	require.Error(t, err)

	assert.True(t, IsDuplicateKey(err))
	assert.True(t, IsDuplicateKey(gorm.ErrDuplicatedKey))
	assert.False(t, IsDuplicateKey(errors.New("connection refused")))
	assert.False(t, IsDuplicateKey(nil))
}
