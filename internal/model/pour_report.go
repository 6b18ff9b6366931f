package model

import "time"

// PourReport records one centrifugal-casting pour. Numeric fields are pointers
// because the historical spreadsheet exports use both "" and "0" to mean "not
// recorded"; those normalize to NULL, never to zero.
type PourReport struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	FullHeatNumber  string    `gorm:"size:64;not null;uniqueIndex" json:"full_heat_number"`
	HeatNumber      string    `gorm:"size:64;not null;index" json:"heat_number"`
	DashNumber      string    `gorm:"size:16" json:"dash_number,omitempty"`
	PourDate        *string   `gorm:"size:10" json:"pour_date"`
	Alloy           string    `gorm:"size:64" json:"alloy,omitempty"`
	MoldSize        string    `gorm:"size:64" json:"mold_size,omitempty"`
	CastWeight      *float64  `json:"cast_weight"`
	CostPerPound    *float64  `json:"cost_per_pound"`
	PourTemperature *float64  `json:"pour_temperature"`
	DieTemperature  *float64  `json:"die_temperature"`
	DieRPM          *int      `gorm:"column:die_rpm" json:"die_rpm"`
	SpinTimeMinutes *float64  `json:"spin_time_minutes"`
	BHN             *float64  `gorm:"column:bhn" json:"bhn"`
	TIR             *float64  `gorm:"column:tir" json:"tir"`
	StartTime       *string   `gorm:"size:8" json:"start_time"`
	TapTime         *string   `gorm:"size:8" json:"tap_time"`
	NewLining       bool      `json:"new_lining"`
	Operator        string    `gorm:"size:64" json:"operator,omitempty"`
	Notes           string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time `gorm:"not null" json:"-"`
	UpdatedAt       time.Time `gorm:"not null" json:"-"`
}
