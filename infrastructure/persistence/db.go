// Package persistence provides database storage implementations.
package persistence

import (
	"fmt"
	"log/slog"

	"github.com/claimsdesk/fnol/internal/database"
)

// PreMigrate prepares tables created before the unique indexes existed.
// Duplicate message ids keep only the oldest work item as their owner,
// duplicate (workitem_id, filename) attachment rows keep the oldest row and
// orphaned attachments are removed. Safe to run repeatedly.
func PreMigrate(db database.Database) error {
	gdb := db.GORM()
	migrator := gdb.Migrator()

	if !migrator.HasTable(&WorkItemModel{}) {
		return nil
	}

	if migrator.HasColumn(&WorkItemModel{}, "message_id") && !migrator.HasIndex(&WorkItemModel{}, "idx_fnol_work_items_message_id") {
		result := gdb.Exec(`
			UPDATE fnol_work_items SET message_id = NULL
			WHERE message_id IS NOT NULL
			AND id NOT IN (
				SELECT MIN(id) FROM fnol_work_items
				WHERE message_id IS NOT NULL
				GROUP BY message_id
			)
		`)
		if result.Error != nil {
			return fmt.Errorf("release duplicate message ids: %w", result.Error)
		}
		if result.RowsAffected > 0 {
			slog.Warn("released duplicate message ids before adding unique index", "rows", result.RowsAffected)
		}
	}

	if !migrator.HasTable(&AttachmentModel{}) {
		return nil
	}

	result := gdb.Exec(`
		DELETE FROM attachments
		WHERE workitem_id IS NULL
		OR workitem_id NOT IN (SELECT id FROM fnol_work_items)
	`)
	if result.Error != nil {
		return fmt.Errorf("remove orphaned attachments: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		slog.Warn("removed orphaned attachments", "rows", result.RowsAffected)
	}

	if !migrator.HasIndex(&AttachmentModel{}, "idx_attachments_workitem_filename") {
		result := gdb.Exec(`
			DELETE FROM attachments
			WHERE id NOT IN (
				SELECT MIN(id) FROM attachments
				GROUP BY workitem_id, filename
			)
		`)
		if result.Error != nil {
			return fmt.Errorf("remove duplicate attachments: %w", result.Error)
		}
		if result.RowsAffected > 0 {
			slog.Warn("removed duplicate attachments before adding unique index", "rows", result.RowsAffected)
		}
	}

	return nil
}

// AutoMigrate runs GORM auto migration for all models.
func AutoMigrate(db database.Database) error {
	if err := PreMigrate(db); err != nil {
		return fmt.Errorf("pre-migrate: %w", err)
	}
	if err := db.GORM().AutoMigrate(
		&WorkItemModel{},
		&AttachmentModel{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return postMigrate(db)
}

// postMigrate backfills columns that older tables did not have.
func postMigrate(db database.Database) error {
	gdb := db.GORM()
	stmts := []string{
		`UPDATE fnol_work_items SET status = 'pending' WHERE status IS NULL OR status = ''`,
		`UPDATE fnol_work_items SET created_at = CURRENT_TIMESTAMP WHERE created_at IS NULL`,
		`UPDATE fnol_work_items SET updated_at = created_at WHERE updated_at IS NULL`,
		`UPDATE attachments SET uploaded_at = CURRENT_TIMESTAMP WHERE uploaded_at IS NULL`,
		`UPDATE attachments SET blob_url = '' WHERE blob_url IS NULL`,
	}
	for _, stmt := range stmts {
		result := gdb.Exec(stmt)
		if result.Error != nil {
			return fmt.Errorf("backfill: %w", result.Error)
		}
		if result.RowsAffected > 0 {
			slog.Info("backfilled legacy rows", "sql", stmt, "rows", result.RowsAffected)
		}
	}
	return nil
}
