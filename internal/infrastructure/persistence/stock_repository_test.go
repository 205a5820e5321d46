package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupStockTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE stock_levels (
			location TEXT NOT NULL,
			item_code TEXT NOT NULL,
			quantity DECIMAL NOT NULL DEFAULT 0
		)
	`).Error
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE stock_movements (
			location TEXT NOT NULL,
			item_code TEXT NOT NULL,
			quantity DECIMAL NOT NULL,
			is_cancelled INTEGER NOT NULL DEFAULT 0,
			is_finalized INTEGER NOT NULL DEFAULT 1,
			posted_at DATETIME NOT NULL
		)
	`).Error
	require.NoError(t, err)

	return db
}

func seedMovement(t *testing.T, db *gorm.DB, location string, qty decimal.Decimal, cancelled, finalized bool, at time.Time) {
	t.Helper()

	err := db.Exec(
		`INSERT INTO stock_movements (location, item_code, quantity, is_cancelled, is_finalized, posted_at) VALUES (?, ?, ?, ?, ?, ?)`,
		location, "ITEM-001", qty, cancelled, finalized, at,
	).Error
	require.NoError(t, err)
}

func TestGormStockReader_LevelTotal(t *testing.T) {
	db := setupStockTestDB(t)
	reader := NewGormStockReader(db)
	ctx := context.Background()

	t.Run("reports absent view rows", func(t *testing.T) {
		total, found, err := reader.LevelTotal(ctx, "BIN-A-01")
		require.NoError(t, err)
		assert.False(t, found)
		assert.True(t, total.IsZero())
	})

	t.Run("sums rows across items", func(t *testing.T) {
		for _, row := range []struct {
			item string
			qty  int64
		}{{"ITEM-001", 7}, {"ITEM-002", 5}} {
			err := db.Exec(
				`INSERT INTO stock_levels (location, item_code, quantity) VALUES (?, ?, ?)`,
				"BIN-A-01", row.item, decimal.NewFromInt(row.qty),
			).Error
			require.NoError(t, err)
		}

		total, found, err := reader.LevelTotal(ctx, "BIN-A-01")
		require.NoError(t, err)
		assert.True(t, found)
		assert.True(t, total.Equal(decimal.NewFromInt(12)))
	})

	t.Run("zero total with rows is still found", func(t *testing.T) {
		err := db.Exec(
			`INSERT INTO stock_levels (location, item_code, quantity) VALUES (?, ?, ?)`,
			"BIN-B-02", "ITEM-001", decimal.Zero,
		).Error
		require.NoError(t, err)

		total, found, err := reader.LevelTotal(ctx, "BIN-B-02")
		require.NoError(t, err)
		assert.True(t, found)
		assert.True(t, total.IsZero())
	})
}

func TestGormStockReader_LedgerTotal(t *testing.T) {
	db := setupStockTestDB(t)
	reader := NewGormStockReader(db)
	ctx := context.Background()

	now := time.Now()
	seedMovement(t, db, "BIN-A-01", decimal.NewFromInt(10), false, true, now.Add(-3*time.Hour))
	seedMovement(t, db, "BIN-A-01", decimal.NewFromInt(-4), false, true, now.Add(-2*time.Hour))
	// Cancelled and draft entries never count.
	seedMovement(t, db, "BIN-A-01", decimal.NewFromInt(100), true, true, now.Add(-1*time.Hour))
	seedMovement(t, db, "BIN-A-01", decimal.NewFromInt(50), false, false, now)

	total, err := reader.LedgerTotal(ctx, "BIN-A-01")
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(6)))

	total, err = reader.LedgerTotal(ctx, "BIN-Z-99")
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestGormStockReader_LastMovementAt(t *testing.T) {
	db := setupStockTestDB(t)
	reader := NewGormStockReader(db)
	ctx := context.Background()

	at, err := reader.LastMovementAt(ctx, "BIN-A-01")
	require.NoError(t, err)
	assert.Nil(t, at)

	older := time.Now().Add(-2 * time.Hour).UTC().Truncate(time.Second)
	newer := time.Now().Add(-1 * time.Hour).UTC().Truncate(time.Second)
	seedMovement(t, db, "BIN-A-01", decimal.NewFromInt(5), false, true, older)
	seedMovement(t, db, "BIN-A-01", decimal.NewFromInt(-2), false, true, newer)

	at, err = reader.LastMovementAt(ctx, "BIN-A-01")
	require.NoError(t, err)
	require.NotNil(t, at)
	assert.True(t, at.Equal(newer))
}

func TestGormStockReader_MovementActivity(t *testing.T) {
	db := setupStockTestDB(t)
	reader := NewGormStockReader(db)
	ctx := context.Background()

	now := time.Now()
	seedMovement(t, db, "BIN-A-01", decimal.NewFromInt(10), false, true, now.Add(-2*time.Hour))
	seedMovement(t, db, "BIN-A-01", decimal.NewFromInt(-4), false, true, now.Add(-1*time.Hour))
	// Outside the window.
	seedMovement(t, db, "BIN-A-01", decimal.NewFromInt(99), false, true, now.Add(-40*24*time.Hour))

	activity, err := reader.MovementActivity(ctx, "BIN-A-01", now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), activity.Count)
	assert.True(t, activity.TotalMoved.Equal(decimal.NewFromInt(14)))
}
