package model

import "time"

// HeatTreatCycle records one furnace load.
type HeatTreatCycle struct {
	ID             int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Furnace        string     `gorm:"size:64;not null;index" json:"furnace"`
	LoadID         string     `gorm:"size:64" json:"load_id,omitempty"`
	CycleType      string     `gorm:"size:64" json:"cycle_type,omitempty"`
	SetTemperature *float64   `json:"set_temperature"`
	StartedAt      time.Time  `gorm:"not null;index" json:"started_at"`
	EndedAt        *time.Time `json:"ended_at"`
	Operator       string     `gorm:"size:64" json:"operator,omitempty"`
	Notes          string     `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt      time.Time  `gorm:"not null" json:"-"`
}
