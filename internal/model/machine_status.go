package model

import "time"

// Machine status values shown on the per-machine board.
const (
	StatusInjection = "In Injection"
	StatusBreakdown = "Breakdown"
	StatusSetup     = "Setup"
	StatusStopped   = "Stopped"
)

// ValidStatus reports whether s is one of the enumerated board statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusInjection, StatusBreakdown, StatusSetup, StatusStopped:
		return true
	}
	return false
}

// MachineStatus is the current state of one physical machine, upserted in
// place. No history is retained.
type MachineStatus struct {
	Machine   string    `gorm:"primaryKey;size:128" json:"machine"`
	Product   string    `gorm:"size:128" json:"product"`
	Operator  string    `gorm:"size:128" json:"operator"`
	Status    string    `gorm:"size:32;not null" json:"status"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
