package persistence_test

import (
	"context"
	"testing"

	"github.com/claimsdesk/fnol/infrastructure/persistence"
	"github.com/claimsdesk/fnol/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreMigrate_CleansLegacyRows(t *testing.T) {
	ctx := context.Background()
	db := testdb.WithSchema(t,
		`CREATE TABLE fnol_work_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			message_id TEXT,
			email_subject TEXT NOT NULL,
			email_body TEXT NOT NULL,
			status TEXT DEFAULT 'pending',
			created_at DATETIME
		)`,
		`CREATE TABLE attachments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			workitem_id INTEGER,
			filename TEXT,
			blob_url TEXT,
			doc_type TEXT
		)`,
		`INSERT INTO fnol_work_items (message_id, email_subject, email_body) VALUES
			('M1', 's', 'b'), ('M1', 's', 'b'), ('M2', 's', 'b')`,
		`INSERT INTO attachments (workitem_id, filename, blob_url) VALUES
			(1, 'a.pdf', 'u1'), (1, 'a.pdf', 'u2'), (7, 'orphan.pdf', 'u3')`,
	)

	require.NoError(t, persistence.PreMigrate(db))
	require.NoError(t, persistence.PreMigrate(db), "pre-migration is repeatable")

	var owners []int64
	require.NoError(t, db.Session(ctx).Raw(
		`SELECT id FROM fnol_work_items WHERE message_id = 'M1'`).Scan(&owners).Error)
	assert.Equal(t, []int64{1}, owners)

	var urls []string
	require.NoError(t, db.Session(ctx).Raw(
		`SELECT blob_url FROM attachments ORDER BY id`).Scan(&urls).Error)
	assert.Equal(t, []string{"u1"}, urls)
}

func TestPreMigrate_NoTables(t *testing.T) {
	db := testdb.WithSchema(t)
	assert.NoError(t, persistence.PreMigrate(db))
}

func TestAutoMigrate_Repeatable(t *testing.T) {
	db := testdb.New(t)
	assert.NoError(t, persistence.AutoMigrate(db))
}
