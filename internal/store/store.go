package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"plantops-backend/internal/model"
)

// Store defines the interface for all mirror database operations.
type Store interface {
	DB() *gorm.DB

	ListRawMaterials(ctx context.Context) ([]model.RawMaterial, error)
	ReplaceRawMaterials(ctx context.Context, rows []model.RawMaterial) error
	ListFinishedGoods(ctx context.Context) ([]model.FinishedGood, error)
	ReplaceFinishedGoods(ctx context.Context, rows []model.FinishedGood) error

	ListProduction(ctx context.Context) ([]model.ProductionRecord, error)
	ReplaceProduction(ctx context.Context, rows []model.ProductionRecord) error

	RecordMovement(ctx context.Context, sku, name string, delta float64, reason, operator string) (*model.Movement, error)
	ListMovements(ctx context.Context) ([]model.Movement, error)

	CreateOrder(ctx context.Context, product string, qty float64, bom []BOMLine) (*model.ProductionOrder, error)
	ListOrders(ctx context.Context) ([]model.ProductionOrder, error)
	ReplaceOrders(ctx context.Context, rows []model.ProductionOrder) error

	UpsertMachineStatus(ctx context.Context, st *model.MachineStatus) error
	ListMachineStatuses(ctx context.Context) ([]model.MachineStatus, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB { return s.db }

// --- Snapshot reads and writes (relational mirror) ---

// Tables are read in ascending id order: insertion order is the documented
// tie-break for everything downstream (movement targets, lot consumption).

func (s *gormStore) ListRawMaterials(ctx context.Context) ([]model.RawMaterial, error) {
	var rows []model.RawMaterial
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list raw materials: %w", err)
	}
	return rows, nil
}

func (s *gormStore) ListFinishedGoods(ctx context.Context) ([]model.FinishedGood, error) {
	var rows []model.FinishedGood
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list finished goods: %w", err)
	}
	return rows, nil
}

func (s *gormStore) ListProduction(ctx context.Context) ([]model.ProductionRecord, error) {
	var rows []model.ProductionRecord
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list production: %w", err)
	}
	return rows, nil
}

func (s *gormStore) ReplaceRawMaterials(ctx context.Context, rows []model.RawMaterial) error {
	return s.replaceTable(ctx, &model.RawMaterial{}, func(tx *gorm.DB) error {
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

func (s *gormStore) ReplaceFinishedGoods(ctx context.Context, rows []model.FinishedGood) error {
	return s.replaceTable(ctx, &model.FinishedGood{}, func(tx *gorm.DB) error {
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

func (s *gormStore) ReplaceProduction(ctx context.Context, rows []model.ProductionRecord) error {
	return s.replaceTable(ctx, &model.ProductionRecord{}, func(tx *gorm.DB) error {
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

// replaceTable swaps a table's full contents inside one transaction, so a
// failed write never leaves a half-replaced table behind.
func (s *gormStore) replaceTable(ctx context.Context, emptyModel any, insert func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(emptyModel).Error; err != nil {
			return fmt.Errorf("clear table: %w", err)
		}
		if err := insert(tx); err != nil {
			return fmt.Errorf("insert rows: %w", err)
		}
		return nil
	})
}

// --- Stock ledger ---

// RecordMovement appends an immutable ledger entry and keeps the
// denormalized finished-goods total in step: the first stock row matching
// the SKU (insertion order) takes the whole delta; with no match a new row
// is appended carrying the given name. The ledger entry is written in the
// same transaction either way.
func (s *gormStore) RecordMovement(ctx context.Context, sku, name string, delta float64, reason, operator string) (*model.Movement, error) {
	mov := &model.Movement{
		SKU:       sku,
		Name:      name,
		Qty:       delta,
		Reason:    reason,
		Operator:  operator,
		CreatedAt: time.Now(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(mov).Error; err != nil {
			return fmt.Errorf("append movement: %w", err)
		}

		if sku != "" {
			var target model.FinishedGood
			err := tx.Where("sku = ?", sku).Order("id").First(&target).Error
			if err == nil {
				return tx.Model(&target).Update("quantity", target.Quantity+delta).Error
			}
			if err != gorm.ErrRecordNotFound {
				return fmt.Errorf("find stock row for %q: %w", sku, err)
			}
		}

		row := model.FinishedGood{SKU: sku, Name: name, Quantity: delta}
		return tx.Create(&row).Error
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

func (s *gormStore) ListMovements(ctx context.Context) ([]model.Movement, error) {
	var rows []model.Movement
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return rows, nil
}

// --- BOM consumption engine ---

// CreateOrder checks the whole order for feasibility and only then consumes
// stock. Per component, availability is the sum over every stock_raw row
// with a matching code; consumption walks those rows oldest lot first
// (ascending id) and never takes a row below zero. On any shortage the
// transaction rolls back and the error lists every short component. A
// successful order appends a production_orders log row with the BOM
// marshalled as JSON, plus one issue ledger entry per component.
func (s *gormStore) CreateOrder(ctx context.Context, product string, qty float64, bom []BOMLine) (*model.ProductionOrder, error) {
	// Merge duplicate lines so a code repeated in the BOM cannot double-count
	// its availability.
	codes := make([]string, 0, len(bom))
	need := make(map[string]float64, len(bom))
	for _, line := range bom {
		if _, seen := need[line.Code]; !seen {
			codes = append(codes, line.Code)
		}
		need[line.Code] += line.QtyPer * qty
	}

	var order *model.ProductionOrder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []model.RawMaterial
		if err := tx.Order("id").Find(&rows).Error; err != nil {
			return fmt.Errorf("load raw stock: %w", err)
		}

		var shortages []Shortage
		for _, code := range codes {
			avail, matched := 0.0, false
			for _, r := range rows {
				if r.Code == code {
					avail += r.Quantity
					matched = true
				}
			}
			if !matched || avail < need[code]-qtyEpsilon {
				shortages = append(shortages, Shortage{Code: code, Required: need[code], Available: avail})
			}
		}
		if len(shortages) > 0 {
			return &InsufficientStockError{Shortages: shortages}
		}

		names := make(map[string]string, len(codes))
		for _, code := range codes {
			remaining := need[code]
			for i := range rows {
				if rows[i].Code != code || remaining <= qtyEpsilon {
					continue
				}
				if names[code] == "" {
					names[code] = rows[i].Name
				}
				take := remaining
				if rows[i].Quantity < take {
					take = rows[i].Quantity
				}
				rows[i].Quantity -= take
				remaining -= take
				if err := tx.Model(&model.RawMaterial{}).
					Where("id = ?", rows[i].ID).
					Update("quantity", rows[i].Quantity).Error; err != nil {
					return fmt.Errorf("decrement lot %d: %w", rows[i].ID, err)
				}
			}
		}

		bomJSON, err := json.Marshal(bom)
		if err != nil {
			return fmt.Errorf("marshal BOM: %w", err)
		}
		o := model.ProductionOrder{
			Product:   product,
			Qty:       qty,
			BOM:       string(bomJSON),
			CreatedAt: time.Now(),
		}
		if err := tx.Create(&o).Error; err != nil {
			return fmt.Errorf("append order: %w", err)
		}

		// Every consumption gets a ledger entry so the stock deltas stay
		// explainable from the movements table alone.
		for _, code := range codes {
			entry := model.Movement{
				SKU:       code,
				Name:      names[code],
				Qty:       -need[code],
				Reason:    fmt.Sprintf("production order %d", o.ID),
				CreatedAt: o.CreatedAt,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return fmt.Errorf("append consumption ledger entry: %w", err)
			}
		}

		order = &o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *gormStore) ReplaceOrders(ctx context.Context, rows []model.ProductionOrder) error {
	return s.replaceTable(ctx, &model.ProductionOrder{}, func(tx *gorm.DB) error {
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

func (s *gormStore) ListOrders(ctx context.Context) ([]model.ProductionOrder, error) {
	var rows []model.ProductionOrder
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return rows, nil
}

// --- Machine status board ---

// UpsertMachineStatus writes the machine's current state in place, keyed by
// machine name. No history is kept.
func (s *gormStore) UpsertMachineStatus(ctx context.Context, st *model.MachineStatus) error {
	st.UpdatedAt = time.Now()
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "machine"}},
		DoUpdates: clause.AssignmentColumns([]string{"product", "operator", "status", "updated_at"}),
	}).Create(st).Error
}

func (s *gormStore) ListMachineStatuses(ctx context.Context) ([]model.MachineStatus, error) {
	var rows []model.MachineStatus
	if err := s.db.WithContext(ctx).Order("machine").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list machine statuses: %w", err)
	}
	return rows, nil
}
