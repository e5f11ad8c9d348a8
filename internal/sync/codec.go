package sync

import (
	"strconv"
	"strings"
	"time"

	"plantops-backend/internal/model"
	"plantops-backend/internal/workbook"
)

// Sheet column layouts. Synthetic mirror ids are not part of the interchange
// format for stock and production sheets; order ids are, because the order
// log's identity must survive a re-import.
var (
	rawColumns        = []string{"mp_id", "name", "quantity", "unit", "location"}
	finishedColumns   = []string{"sku", "name", "quantity", "unit", "location"}
	productionColumns = []string{"date", "machine", "product", "shift", "operator",
		"scheduled", "produced", "efficiency", "cycles", "scrap_kg", "notes"}
	orderColumns = []string{"id", "product", "qtd", "bom", "created_at"}
)

// colIndex maps header names to their positions, trimming stray whitespace
// the way hand-edited spreadsheets need.
func colIndex(columns []string) map[string]int {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		idx[strings.TrimSpace(c)] = i
	}
	return idx
}

// cellString returns the named cell of a row, or "" when the column is
// absent or the row too short. Missing data reads as empty, never as an
// error.
func cellString(idx map[string]int, row []any, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) || row[i] == nil {
		return ""
	}
	s, _ := row[i].(string)
	return strings.TrimSpace(s)
}

// cellFloat parses the named cell as a number; anything unparsable reads
// as zero.
func cellFloat(idx map[string]int, row []any, name string) float64 {
	s := cellString(idx, row, name)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func encodeRawMaterials(rows []model.RawMaterial) workbook.Sheet {
	sheet := workbook.Sheet{Columns: rawColumns}
	for _, r := range rows {
		sheet.Rows = append(sheet.Rows, []any{r.Code, r.Name, r.Quantity, r.Unit, r.Location})
	}
	return sheet
}

func decodeRawMaterials(sheet workbook.Sheet) []model.RawMaterial {
	idx := colIndex(sheet.Columns)
	out := make([]model.RawMaterial, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		out = append(out, model.RawMaterial{
			Code:     cellString(idx, row, "mp_id"),
			Name:     cellString(idx, row, "name"),
			Quantity: cellFloat(idx, row, "quantity"),
			Unit:     cellString(idx, row, "unit"),
			Location: cellString(idx, row, "location"),
		})
	}
	return out
}

func encodeFinishedGoods(rows []model.FinishedGood) workbook.Sheet {
	sheet := workbook.Sheet{Columns: finishedColumns}
	for _, r := range rows {
		sheet.Rows = append(sheet.Rows, []any{r.SKU, r.Name, r.Quantity, r.Unit, r.Location})
	}
	return sheet
}

func decodeFinishedGoods(sheet workbook.Sheet) []model.FinishedGood {
	idx := colIndex(sheet.Columns)
	out := make([]model.FinishedGood, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		out = append(out, model.FinishedGood{
			SKU:      cellString(idx, row, "sku"),
			Name:     cellString(idx, row, "name"),
			Quantity: cellFloat(idx, row, "quantity"),
			Unit:     cellString(idx, row, "unit"),
			Location: cellString(idx, row, "location"),
		})
	}
	return out
}

func encodeProduction(rows []model.ProductionRecord) workbook.Sheet {
	sheet := workbook.Sheet{Columns: productionColumns}
	for _, r := range rows {
		sheet.Rows = append(sheet.Rows, []any{
			r.Date, r.Machine, r.Product, r.Shift, r.Operator,
			r.Scheduled, r.Produced, r.Efficiency, r.Cycles, r.ScrapKg, r.Notes,
		})
	}
	return sheet
}

func decodeProduction(sheet workbook.Sheet) []model.ProductionRecord {
	idx := colIndex(sheet.Columns)
	out := make([]model.ProductionRecord, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		out = append(out, model.ProductionRecord{
			Date:       cellString(idx, row, "date"),
			Machine:    cellString(idx, row, "machine"),
			Product:    cellString(idx, row, "product"),
			Shift:      cellString(idx, row, "shift"),
			Operator:   cellString(idx, row, "operator"),
			Scheduled:  cellFloat(idx, row, "scheduled"),
			Produced:   cellFloat(idx, row, "produced"),
			Efficiency: cellFloat(idx, row, "efficiency"),
			Cycles:     cellFloat(idx, row, "cycles"),
			ScrapKg:    cellFloat(idx, row, "scrap_kg"),
			Notes:      cellString(idx, row, "notes"),
		})
	}
	return out
}

func encodeOrders(rows []model.ProductionOrder) workbook.Sheet {
	sheet := workbook.Sheet{Columns: orderColumns}
	for _, r := range rows {
		sheet.Rows = append(sheet.Rows, []any{
			float64(r.ID), r.Product, r.Qty, r.BOM, r.CreatedAt.Format(time.RFC3339),
		})
	}
	return sheet
}

func decodeOrders(sheet workbook.Sheet) []model.ProductionOrder {
	idx := colIndex(sheet.Columns)
	out := make([]model.ProductionOrder, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		created, _ := time.Parse(time.RFC3339, cellString(idx, row, "created_at"))
		out = append(out, model.ProductionOrder{
			ID:        uint(cellFloat(idx, row, "id")),
			Product:   cellString(idx, row, "product"),
			Qty:       cellFloat(idx, row, "qtd"),
			BOM:       cellString(idx, row, "bom"),
			CreatedAt: created,
		})
	}
	return out
}
