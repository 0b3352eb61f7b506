package repository

import (
	"testing"
	"time"

	"github.com/garyjia/ledger-auditor/internal/domain/entity"
	"github.com/garyjia/ledger-auditor/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/ledger-auditor/migrations"
	"github.com/garyjia/ledger-auditor/pkg/database"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	logger := zap.NewNop()

	db, err := database.New(database.Config{Path: database.MemoryPath}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.NewMigrator(db, logger).RunMigrations(migrations.FS))
	return sqlite.NewDB(db.DB, logger)
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func amount(v float64) *float64 { return &v }

func sampleEntry(id, client string) entity.Entry {
	return entity.Entry{
		ID:          id,
		ClientID:    client,
		Date:        date(2024, 3, 10),
		Value:       amount(1500),
		Description: "Venda para cliente ACME",
		Kind:        entity.EntryKindRevenue,
		Category:    entity.CategorySales,
		Confidence:  0.9,
	}
}
