package model

import "time"

// ProductionOrder is the log row appended for every successful BOM
// consumption. BOM holds the bill of materials as opaque JSON; the order id
// is the auto-incremented log sequence.
type ProductionOrder struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Product   string    `gorm:"size:128" json:"product"`
	Qty       float64   `gorm:"column:qtd;not null" json:"qtd"`
	BOM       string    `gorm:"column:bom;type:text" json:"bom"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

// TableName maps ProductionOrder onto the production_orders mirror table.
func (ProductionOrder) TableName() string { return "production_orders" }
