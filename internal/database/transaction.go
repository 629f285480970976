package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// WithTransaction executes fn within a transaction, committing on success or rolling back on error.
func WithTransaction(ctx context.Context, db Database, fn func(tx *gorm.DB) error) error {
	_, err := WithTransactionResult(ctx, db, func(tx *gorm.DB) (struct{}, error) {
		return struct{}{}, fn(tx)
	})
	return err
}

// WithTransactionResult executes fn within a transaction, returning the result on success.
// A panic inside fn rolls back before propagating.
func WithTransactionResult[T any](ctx context.Context, db Database, fn func(tx *gorm.DB) (T, error)) (result T, err error) {
	tx := db.Session(ctx).Begin()
	if tx.Error != nil {
		return result, fmt.Errorf("begin transaction: %w", tx.Error)
	}

	committed := false
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
		if !committed {
			tx.Rollback()
		}
	}()

	result, err = fn(tx)
	if err != nil {
		return result, err
	}

	if err := tx.Commit().Error; err != nil {
		return result, fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return result, nil
}
