package model

import "time"

// Movement is one entry in the append-only stock ledger. Qty is a signed
// delta: positive for receipts, negative for issues. Rows are immutable once
// written; the matching stock_finished total is denormalized and kept in step
// by every writer.
type Movement struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SKU       string    `gorm:"column:sku;size:64;index" json:"sku"`
	Name      string    `gorm:"size:256" json:"name"`
	Qty       float64   `gorm:"not null" json:"qty"`
	Reason    string    `gorm:"size:256" json:"reason"`
	Operator  string    `gorm:"size:128" json:"operator"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

// TableName keeps the ledger under its historical table name.
func (Movement) TableName() string { return "movements" }
