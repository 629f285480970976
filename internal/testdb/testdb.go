// Package testdb provides a shared test database helper for fast,
// realistic testing against an in-memory SQLite database.
package testdb

import (
	"context"
	"testing"

	"github.com/claimsdesk/fnol/infrastructure/persistence"
	"github.com/claimsdesk/fnol/internal/database"
)

// New creates an in-memory SQLite database with all migrations applied.
// The database is automatically closed when the test finishes.
func New(t *testing.T) database.Database {
	t.Helper()
	return open(t, "sqlite:///:memory:", true)
}

// WithSchema creates an in-memory SQLite database and executes the given
// SQL statements without running migrations. Useful for migration tests
// that start from a legacy layout.
func WithSchema(t *testing.T, statements ...string) database.Database {
	t.Helper()
	ctx := context.Background()
	db := open(t, "sqlite:///:memory:", false)
	for _, stmt := range statements {
		if err := db.Session(ctx).Exec(stmt).Error; err != nil {
			t.Fatalf("testdb.WithSchema: %v\nSQL: %s", err, stmt)
		}
	}
	return db
}

func open(t *testing.T, url string, migrate bool) database.Database {
	t.Helper()
	db, err := database.NewDatabase(context.Background(), url)
	if err != nil {
		t.Fatalf("testdb: open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if migrate {
		if err := persistence.AutoMigrate(db); err != nil {
			t.Fatalf("testdb: auto migrate: %v", err)
		}
	}
	return db
}
