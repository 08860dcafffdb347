package postgresql_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/gajihub/payroll-core-go/internal/pkg/database"
	"github.com/stretchr/testify/require"
)

var (
	testDBOnce sync.Once
	testDB     *database.DB
	testDBErr  error
)

// testDatabase connects to the database named by TEST_DATABASE_URL. Tests in
// this package run real SQL and are skipped when no test database is
// provisioned.
func testDatabase(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	testDBOnce.Do(func() {
		testDB, testDBErr = database.NewPostgreSQLDB(dsn)
	})
	require.NoError(t, testDBErr, "failed to connect to test database")

	return testDB
}

func truncateTables(t *testing.T, ctx context.Context, db *database.DB, tables ...string) {
	t.Helper()

	for _, table := range tables {
		_, err := db.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE")
		require.NoError(t, err)
	}
}
