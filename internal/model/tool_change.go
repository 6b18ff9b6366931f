package model

import "time"

// ToolChange records a tooling swap on a machine. Cost roll-ups per work
// center happen downstream in the reporting views.
type ToolChange struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	EquipmentNumber string    `gorm:"size:64;not null;index" json:"equipment_number"`
	WorkCenter      string    `gorm:"size:64;index" json:"work_center,omitempty"`
	PartNumber      string    `gorm:"size:64" json:"part_number,omitempty"`
	JobNumber       string    `gorm:"size:64" json:"job_number,omitempty"`
	ToolDescription string    `gorm:"size:256" json:"tool_description,omitempty"`
	InsertCount     int       `json:"insert_count,omitempty"`
	Cost            *float64  `json:"cost"`
	Operator        string    `gorm:"size:64" json:"operator,omitempty"`
	ChangedAt       time.Time `gorm:"not null;index" json:"changed_at"`
	CreatedAt       time.Time `gorm:"not null" json:"-"`
}
