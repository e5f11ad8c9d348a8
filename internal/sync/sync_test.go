package sync

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"plantops-backend/config"
	"plantops-backend/internal/model"
	"plantops-backend/internal/store"
	"plantops-backend/internal/workbook"
)

func newTestService(t *testing.T) (*Service, store.Store, *workbook.File) {
	dir := t.TempDir()

	db, err := gorm.Open(sqlite.Open(filepath.Join(dir, "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.RawMaterial{},
		&model.FinishedGood{},
		&model.Movement{},
		&model.ProductionRecord{},
		&model.ProductionOrder{},
	))

	cfg := &config.WorkbookConfig{
		Path:        filepath.Join(dir, "Indicadores.xlsx"),
		LockPath:    filepath.Join(dir, ".write_lock"),
		LockPoll:    5 * time.Millisecond,
		LockTimeout: 2 * time.Second,
		Sheets:      config.DefaultSheets(),
	}

	st := store.NewGormStore(db)
	return NewService(cfg, st), st, workbook.New(cfg.Path)
}

func TestBootstrapImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, st, wb := newTestService(t)

	require.NoError(t, wb.WriteSheets(map[string]workbook.Sheet{
		"Estoque MP": {
			Columns: []string{"mp_id", "name", "quantity", "unit", "location"},
			Rows: [][]any{
				{"M1", "Resina PP", 3.0, "kg", "A1"},
				{"M1", "Resina PP", 4.0, "kg", "A2"},
			},
		},
		"Produção - injeção+ Zamac": {
			Columns: []string{"date", "machine", "product", "shift", "operator",
				"scheduled", "produced", "efficiency", "cycles", "scrap_kg", "notes"},
			Rows: [][]any{
				{"2026-08-01", "Oriente 45", "P1", "T1", "Ana", 120.0, 100.0, 0.83, 50.0, 1.2, "ok"},
			},
		},
	}))

	require.NoError(t, svc.BootstrapImport(ctx))

	raws, err := st.ListRawMaterials(ctx)
	require.NoError(t, err)
	require.Len(t, raws, 2)
	assert.Equal(t, "M1", raws[0].Code)
	assert.Equal(t, 3.0, raws[0].Quantity)
	assert.Equal(t, "A2", raws[1].Location)

	prods, err := st.ListProduction(ctx)
	require.NoError(t, err)
	require.Len(t, prods, 1)
	assert.Equal(t, "Ana", prods[0].Operator)
	assert.Equal(t, 0.83, prods[0].Efficiency)

	// Sheets absent from the workbook leave their tables untouched.
	goods, err := st.ListFinishedGoods(ctx)
	require.NoError(t, err)
	assert.Empty(t, goods)
}

func TestBootstrapImport_ToleratesMissingColumns(t *testing.T) {
	ctx := context.Background()
	svc, st, wb := newTestService(t)

	// No unit/location columns, and a quantity that is not a number.
	require.NoError(t, wb.WriteSheets(map[string]workbook.Sheet{
		"Estoque Injetados": {
			Columns: []string{"sku", "name", "quantity"},
			Rows: [][]any{
				{"S1", "Tampa", "abc"},
				{"S2", "Corpo", 7.0},
			},
		},
	}))

	require.NoError(t, svc.BootstrapImport(ctx))

	goods, err := st.ListFinishedGoods(ctx)
	require.NoError(t, err)
	require.Len(t, goods, 2)
	assert.Equal(t, 0.0, goods[0].Quantity, "unparsable quantity reads as zero")
	assert.Equal(t, 7.0, goods[1].Quantity)
	assert.Equal(t, "", goods[0].Unit)
}

func TestBootstrapImport_MissingWorkbookImportsNothing(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newTestService(t)

	require.NoError(t, svc.BootstrapImport(ctx))

	raws, err := st.ListRawMaterials(ctx)
	require.NoError(t, err)
	assert.Empty(t, raws)
}

func TestExport_WritesSheetsAndPreservesOthers(t *testing.T) {
	ctx := context.Background()
	svc, st, wb := newTestService(t)

	// A sheet outside the mapping must survive exports untouched.
	require.NoError(t, wb.WriteSheets(map[string]workbook.Sheet{
		"Notas": {Columns: []string{"texto"}, Rows: [][]any{{"não mexer"}}},
	}))

	require.NoError(t, st.ReplaceRawMaterials(ctx, []model.RawMaterial{
		{Code: "M1", Name: "Resina", Quantity: 12.5, Unit: "kg"},
	}))
	_, err := st.CreateOrder(ctx, "P1", 10, []store.BOMLine{{Code: "M1", QtyPer: 0.5}})
	require.NoError(t, err)

	require.NoError(t, svc.Export(ctx, TableRawStock, TableOrders))

	got, err := wb.ReadSheets("Estoque MP", "Ordens de Produção", "Notas")
	require.NoError(t, err)

	require.Len(t, got["Estoque MP"].Rows, 1)
	assert.Equal(t, "M1", got["Estoque MP"].Rows[0][0])
	assert.Equal(t, "7.5", got["Estoque MP"].Rows[0][2])

	require.Len(t, got["Ordens de Produção"].Rows, 1)
	assert.Equal(t, "P1", got["Ordens de Produção"].Rows[0][1])
	assert.Equal(t, "10", got["Ordens de Produção"].Rows[0][2])

	require.Len(t, got["Notas"].Rows, 1)
	assert.Equal(t, "não mexer", got["Notas"].Rows[0][0])
}

func TestImportIfNeeded_SkipsWhenMirrorHasData(t *testing.T) {
	ctx := context.Background()
	svc, st, wb := newTestService(t)

	require.NoError(t, wb.WriteSheets(map[string]workbook.Sheet{
		"Estoque MP": {
			Columns: []string{"mp_id", "name", "quantity"},
			Rows:    [][]any{{"M9", "Nova resina", 1.0}},
		},
	}))

	require.NoError(t, st.ReplaceRawMaterials(ctx, []model.RawMaterial{
		{Code: "M1", Name: "Resina", Quantity: 5},
	}))

	require.NoError(t, svc.ImportIfNeeded(ctx))

	raws, err := st.ListRawMaterials(ctx)
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, "M1", raws[0].Code, "existing mirror data must not be clobbered")
}
