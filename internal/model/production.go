package model

// ProductionRecord is one shift/machine production entry. Efficiency is a
// ratio in [0,1]; the API scales it by 100 when reporting percentages.
type ProductionRecord struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	Date       string  `gorm:"column:date;size:32;index" json:"date"` // YYYY-MM-DD
	Machine    string  `gorm:"size:128" json:"machine"`
	Product    string  `gorm:"size:128" json:"product"`
	Shift      string  `gorm:"size:32" json:"shift"`
	Operator   string  `gorm:"size:128" json:"operator"`
	Scheduled  float64 `gorm:"not null;default:0" json:"scheduled"`
	Produced   float64 `gorm:"not null;default:0" json:"produced"`
	Efficiency float64 `gorm:"not null;default:0" json:"efficiency"`
	Cycles     float64 `gorm:"not null;default:0" json:"cycles"`
	ScrapKg    float64 `gorm:"column:scrap_kg;not null;default:0" json:"scrap_kg"`
	Notes      string  `gorm:"type:text" json:"notes"`
}

// TableName maps ProductionRecord onto the production mirror table.
func (ProductionRecord) TableName() string { return "production" }
