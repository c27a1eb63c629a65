package repositories

import (
	"database/sql"
	"stop-sequencing-service/internal/platform/db"
	"testing"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := InitSchema(conn); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return conn
}
