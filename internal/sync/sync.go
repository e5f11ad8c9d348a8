// Package sync moves data between the workbook (the durable interchange
// format) and the relational mirror (the system of record during a session).
// The import direction runs once at bootstrap and on demand; the export
// direction runs after every successful mutation, never batched.
package sync

import (
	"context"
	"fmt"
	"log"

	"plantops-backend/config"
	"plantops-backend/internal/flock"
	"plantops-backend/internal/store"
	"plantops-backend/internal/workbook"
)

// Mirror table names handled by the sync engine.
const (
	TableRawStock      = "stock_raw"
	TableFinishedStock = "stock_finished"
	TableProduction    = "production"
	TableOrders        = "production_orders"
)

// Service implements the workbook ↔ mirror synchronization.
type Service struct {
	cfg   *config.WorkbookConfig
	store store.Store
	wb    *workbook.File
	lock  *flock.Lock
}

// NewService creates a sync service around the configured workbook.
func NewService(cfg *config.WorkbookConfig, st store.Store) *Service {
	return &Service{
		cfg:   cfg,
		store: st,
		wb:    workbook.New(cfg.Path),
		lock:  flock.New(cfg.LockPath, cfg.LockPoll, cfg.LockTimeout),
	}
}

// ImportIfNeeded runs the bootstrap import when the mirror holds no data for
// any mapped table but the workbook file exists. Called once at startup.
func (s *Service) ImportIfNeeded(ctx context.Context) error {
	if !s.wb.Exists() {
		log.Printf("workbook %s not found; skipping bootstrap import", s.wb.Path())
		return nil
	}

	empty, err := s.mirrorEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	log.Println("mirror is empty; importing workbook...")
	return s.BootstrapImport(ctx)
}

// BootstrapImport reads every configured sheet that exists in the workbook
// and fully overwrites the corresponding mirror table. Sheets absent from
// the file leave their tables untouched; an unreadable workbook degrades to
// an empty import rather than failing startup.
func (s *Service) BootstrapImport(ctx context.Context) error {
	names := make([]string, 0, len(s.cfg.Sheets))
	for _, sheet := range s.cfg.Sheets {
		names = append(names, sheet)
	}

	sheets, err := s.wb.ReadSheets(names...)
	if err != nil {
		log.Printf("workbook unreadable, importing nothing: %v", err)
		return nil
	}

	for table, sheetName := range s.cfg.Sheets {
		sheet, ok := sheets[sheetName]
		if !ok {
			continue
		}
		if err := s.importTable(ctx, table, sheet); err != nil {
			return fmt.Errorf("import sheet %q into %s: %w", sheetName, table, err)
		}
		log.Printf("imported sheet %q into %s (%d rows)", sheetName, table, len(sheet.Rows))
	}
	return nil
}

func (s *Service) importTable(ctx context.Context, table string, sheet workbook.Sheet) error {
	switch table {
	case TableRawStock:
		return s.store.ReplaceRawMaterials(ctx, decodeRawMaterials(sheet))
	case TableFinishedStock:
		return s.store.ReplaceFinishedGoods(ctx, decodeFinishedGoods(sheet))
	case TableProduction:
		return s.store.ReplaceProduction(ctx, decodeProduction(sheet))
	case TableOrders:
		// Orders are append-only in normal operation; a resync replaces the
		// log wholesale so the workbook stays authoritative.
		return s.store.ReplaceOrders(ctx, decodeOrders(sheet))
	default:
		return fmt.Errorf("unknown mirror table %q", table)
	}
}

// Export snapshots the named mirror tables and overwrites their sheets,
// preserving every other sheet in the workbook. The whole rewrite runs under
// the workbook lock.
func (s *Service) Export(ctx context.Context, tables ...string) error {
	sheets := make(map[string]workbook.Sheet, len(tables))
	for _, table := range tables {
		sheetName, ok := s.cfg.Sheets[table]
		if !ok {
			return fmt.Errorf("no sheet configured for table %q", table)
		}
		sheet, err := s.exportTable(ctx, table)
		if err != nil {
			return err
		}
		sheets[sheetName] = sheet
	}

	return s.lock.WithLock(ctx, func() error {
		return s.wb.WriteSheets(sheets)
	})
}

func (s *Service) exportTable(ctx context.Context, table string) (workbook.Sheet, error) {
	switch table {
	case TableRawStock:
		rows, err := s.store.ListRawMaterials(ctx)
		if err != nil {
			return workbook.Sheet{}, err
		}
		return encodeRawMaterials(rows), nil
	case TableFinishedStock:
		rows, err := s.store.ListFinishedGoods(ctx)
		if err != nil {
			return workbook.Sheet{}, err
		}
		return encodeFinishedGoods(rows), nil
	case TableProduction:
		rows, err := s.store.ListProduction(ctx)
		if err != nil {
			return workbook.Sheet{}, err
		}
		return encodeProduction(rows), nil
	case TableOrders:
		rows, err := s.store.ListOrders(ctx)
		if err != nil {
			return workbook.Sheet{}, err
		}
		return encodeOrders(rows), nil
	default:
		return workbook.Sheet{}, fmt.Errorf("unknown mirror table %q", table)
	}
}

// mirrorEmpty reports whether every mapped mirror table is empty.
func (s *Service) mirrorEmpty(ctx context.Context) (bool, error) {
	for table := range s.cfg.Sheets {
		var count int64
		if err := s.store.DB().WithContext(ctx).Table(table).Count(&count).Error; err != nil {
			return false, fmt.Errorf("count %s: %w", table, err)
		}
		if count > 0 {
			return false, nil
		}
	}
	return true, nil
}
