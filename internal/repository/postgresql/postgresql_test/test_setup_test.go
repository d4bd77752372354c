package postgresql_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/memento-hq/funeraria-backend-go/internal/pkg/database"
)

var (
	testDBOnce sync.Once
	testDB     *database.DB
	testDBErr  error
)

// requireTestDB connects to the database named by TEST_DATABASE_URL and skips
// the test when the variable is unset. The schema from
// migrations/0001_init.sql must already be applied to that database.
func requireTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	testDBOnce.Do(func() {
		testDB, testDBErr = database.NewPostgreSQLDB(dsn)
	})
	require.NoError(t, testDBErr)

	return testDB
}

func truncateAllTables(t *testing.T, db *database.DB) {
	t.Helper()
	ctx := context.Background()

	tables := []string{
		"payment_receipts",
		"payroll_records",
		"payroll_periods",
		"service_assignments",
		"resource_bookings",
		"collaborators",
	}
	for _, table := range tables {
		_, err := db.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE")
		require.NoError(t, err)
	}
}
