package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"plantops-backend/internal/model"
)

// A helper to create a real SQLite database for store tests.
func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.RawMaterial{},
		&model.FinishedGood{},
		&model.Movement{},
		&model.ProductionRecord{},
		&model.ProductionOrder{},
		&model.MachineStatus{},
	))
	return db
}

func TestRecordMovement_CreatesThenUpdatesRow(t *testing.T) {
	ctx := context.Background()
	s := NewGormStore(newTestDB(t))

	// First movement on an empty stock table creates exactly one row.
	_, err := s.RecordMovement(ctx, "X", "Widget", 5, "entrada", "Ana")
	require.NoError(t, err)

	goods, err := s.ListFinishedGoods(ctx)
	require.NoError(t, err)
	require.Len(t, goods, 1)
	assert.Equal(t, "X", goods[0].SKU)
	assert.Equal(t, 5.0, goods[0].Quantity)

	// A second movement updates that same row rather than adding one.
	_, err = s.RecordMovement(ctx, "X", "Widget", -2, "saída", "Ana")
	require.NoError(t, err)

	goods, err = s.ListFinishedGoods(ctx)
	require.NoError(t, err)
	require.Len(t, goods, 1)
	assert.Equal(t, 3.0, goods[0].Quantity)

	// The ledger holds both entries; ListMovements is newest first.
	movs, err := s.ListMovements(ctx)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, -2.0, movs[0].Qty)
	assert.Equal(t, 5.0, movs[1].Qty)
}

func TestRecordMovement_FirstMatchingRowOnly(t *testing.T) {
	ctx := context.Background()
	s := NewGormStore(newTestDB(t))

	require.NoError(t, s.ReplaceFinishedGoods(ctx, []model.FinishedGood{
		{SKU: "X", Name: "Widget", Quantity: 1},
		{SKU: "X", Name: "Widget", Quantity: 10},
	}))

	_, err := s.RecordMovement(ctx, "X", "Widget", 4, "entrada", "Bia")
	require.NoError(t, err)

	goods, err := s.ListFinishedGoods(ctx)
	require.NoError(t, err)
	require.Len(t, goods, 2)
	assert.Equal(t, 5.0, goods[0].Quantity, "only the first matching row takes the delta")
	assert.Equal(t, 10.0, goods[1].Quantity)
}

func TestCreateOrder_ConsumesLotsInOrder(t *testing.T) {
	ctx := context.Background()
	s := NewGormStore(newTestDB(t))

	require.NoError(t, s.ReplaceRawMaterials(ctx, []model.RawMaterial{
		{Code: "M1", Name: "Resina", Quantity: 3},
		{Code: "M1", Name: "Resina", Quantity: 4},
	}))

	order, err := s.CreateOrder(ctx, "P1", 10, []BOMLine{{Code: "M1", QtyPer: 0.5}})
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, "P1", order.Product)
	assert.Equal(t, 10.0, order.Qty)

	// Need was 5: the first lot drains to 0, the second drops to 2.
	rows, err := s.ListRawMaterials(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 0.0, rows[0].Quantity)
	assert.Equal(t, 2.0, rows[1].Quantity)

	// The order log row carries the BOM as JSON.
	orders, err := s.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	var bom []BOMLine
	require.NoError(t, json.Unmarshal([]byte(orders[0].BOM), &bom))
	require.Len(t, bom, 1)
	assert.Equal(t, "M1", bom[0].Code)

	// Consumption shows up in the ledger as an issue.
	movs, err := s.ListMovements(ctx)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, "M1", movs[0].SKU)
	assert.Equal(t, -5.0, movs[0].Qty)
}

func TestCreateOrder_ShortageAbortsWholeOrder(t *testing.T) {
	ctx := context.Background()
	s := NewGormStore(newTestDB(t))

	require.NoError(t, s.ReplaceRawMaterials(ctx, []model.RawMaterial{
		{Code: "M1", Name: "Resina", Quantity: 1},
		{Code: "M1", Name: "Resina", Quantity: 3},
		{Code: "M2", Name: "Zamac", Quantity: 100},
	}))

	// M1 is short (have 4, need 5) and M3 has no row at all. M2 is covered;
	// it must stay untouched because the order aborts as a whole.
	_, err := s.CreateOrder(ctx, "P1", 10, []BOMLine{
		{Code: "M1", QtyPer: 0.5},
		{Code: "M2", QtyPer: 1},
		{Code: "M3", QtyPer: 0.1},
	})
	require.Error(t, err)

	var insuff *InsufficientStockError
	require.ErrorAs(t, err, &insuff)
	require.Len(t, insuff.Shortages, 2)
	assert.Equal(t, "M1", insuff.Shortages[0].Code)
	assert.Equal(t, 5.0, insuff.Shortages[0].Required)
	assert.Equal(t, 4.0, insuff.Shortages[0].Available)
	assert.Equal(t, "M3", insuff.Shortages[1].Code)
	assert.Contains(t, err.Error(), "M1")

	// No stock row changed, no order row, no ledger entry.
	rows, err := s.ListRawMaterials(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.0, rows[0].Quantity)
	assert.Equal(t, 3.0, rows[1].Quantity)
	assert.Equal(t, 100.0, rows[2].Quantity)

	orders, err := s.ListOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)

	movs, err := s.ListMovements(ctx)
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestCreateOrder_ExactStockWithinTolerance(t *testing.T) {
	ctx := context.Background()
	s := NewGormStore(newTestDB(t))

	// 0.1*3 accumulates float noise; the epsilon must absorb it.
	require.NoError(t, s.ReplaceRawMaterials(ctx, []model.RawMaterial{
		{Code: "M1", Quantity: 0.1 + 0.1 + 0.1},
	}))

	_, err := s.CreateOrder(ctx, "P1", 3, []BOMLine{{Code: "M1", QtyPer: 0.1}})
	require.NoError(t, err)

	rows, err := s.ListRawMaterials(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, rows[0].Quantity, 1e-9)
	assert.GreaterOrEqual(t, rows[0].Quantity, 0.0, "a lot must never go negative")
}

func TestReplaceTable_IsASnapshot(t *testing.T) {
	ctx := context.Background()
	s := NewGormStore(newTestDB(t))

	require.NoError(t, s.ReplaceProduction(ctx, []model.ProductionRecord{
		{Date: "2026-08-01", Machine: "Oriente 45", Produced: 100},
		{Date: "2026-08-02", Machine: "Jasot", Produced: 50},
	}))
	require.NoError(t, s.ReplaceProduction(ctx, []model.ProductionRecord{
		{Date: "2026-08-03", Machine: "MG", Produced: 70},
	}))

	rows, err := s.ListProduction(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "MG", rows[0].Machine)
}

func TestUpsertMachineStatus_InPlace(t *testing.T) {
	ctx := context.Background()
	s := NewGormStore(newTestDB(t))

	require.NoError(t, s.UpsertMachineStatus(ctx, &model.MachineStatus{
		Machine: "Oriente 45", Product: "P1", Operator: "Ana", Status: model.StatusInjection,
	}))
	require.NoError(t, s.UpsertMachineStatus(ctx, &model.MachineStatus{
		Machine: "Oriente 45", Product: "P2", Operator: "Bia", Status: model.StatusBreakdown,
	}))

	rows, err := s.ListMachineStatuses(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "P2", rows[0].Product)
	assert.Equal(t, model.StatusBreakdown, rows[0].Status)
}
