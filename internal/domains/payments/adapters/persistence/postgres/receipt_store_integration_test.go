//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Apurer/dessert-delivery-api/internal/domains/payments/ports"
	"github.com/Apurer/dessert-delivery-api/internal/platform/migrations"
)

func setupReceiptsPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("payments_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}
	return db, cleanup
}

func TestReceiptStore_RecordOnceUntilExpiry(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupReceiptsPostgresContainer(t)
	defer cleanup()

	now := time.Now().UTC().Truncate(time.Millisecond)
	store := NewReceiptStore(db, time.Hour)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	created, err := store.Record(ctx, ports.Receipt{Key: "MBBank:1", OrderID: "DH-1"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = store.Record(ctx, ports.Receipt{Key: "MBBank:1", OrderID: "DH-2"})
	require.NoError(t, err)
	assert.False(t, created)

	receipt, err := store.Lookup(ctx, "MBBank:1")
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, "DH-1", receipt.OrderID)

	now = now.Add(2 * time.Hour)
	expired, err := store.Lookup(ctx, "MBBank:1")
	require.NoError(t, err)
	assert.Nil(t, expired)

	created, err = store.Record(ctx, ports.Receipt{Key: "MBBank:1", OrderID: "DH-3"})
	require.NoError(t, err)
	assert.True(t, created)

	now = now.Add(2 * time.Hour)
	purged, err := store.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}
