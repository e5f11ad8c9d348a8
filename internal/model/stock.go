package model

// RawMaterial is one lot of raw material on hand. Codes are not unique:
// several rows may share an mp_id when the same material sits in more than
// one lot or location. Rows are never deleted automatically; consumed lots
// stay behind with quantity zero.
type RawMaterial struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Code     string  `gorm:"column:mp_id;size:64;index" json:"mp_id"`
	Name     string  `gorm:"size:256" json:"name"`
	Quantity float64 `gorm:"not null;default:0" json:"quantity"`
	Unit     string  `gorm:"size:32" json:"unit"`
	Location string  `gorm:"size:128" json:"location"`
}

// TableName maps RawMaterial onto the stock_raw mirror table.
func (RawMaterial) TableName() string { return "stock_raw" }

// FinishedGood is one lot of injected (finished) product on hand. Like raw
// material rows, SKUs may repeat across rows.
type FinishedGood struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	SKU      string  `gorm:"column:sku;size:64;index" json:"sku"`
	Name     string  `gorm:"size:256" json:"name"`
	Quantity float64 `gorm:"not null;default:0" json:"quantity"`
	Unit     string  `gorm:"size:32" json:"unit"`
	Location string  `gorm:"size:128" json:"location"`
}

// TableName maps FinishedGood onto the stock_finished mirror table.
func (FinishedGood) TableName() string { return "stock_finished" }
