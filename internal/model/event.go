package model

import "time"

// Machine state event types.
const (
	EventStart = "START"
	EventStop  = "STOP"
)

// MachineStateEvent is one START/STOP scan for a piece of equipment.
// Events are append-only: rows are never updated after creation.
type MachineStateEvent struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	EquipmentNumber string    `gorm:"size:64;not null;index:idx_events_equipment_ts,priority:1" json:"equipment_number"`
	EventType       string    `gorm:"size:8;not null" json:"event_type"`
	EventTimestamp  time.Time `gorm:"not null;index:idx_events_equipment_ts,priority:2" json:"event_timestamp"`
	Operator        string    `gorm:"size:64" json:"operator,omitempty"`
	Shift           int       `json:"shift,omitempty"`
	WorkCenter      string    `gorm:"size:64" json:"work_center,omitempty"`
	PartNumber      string    `gorm:"size:64" json:"part_number,omitempty"`
	JobNumber       string    `gorm:"size:64" json:"job_number,omitempty"`
	QRCodeData      string    `gorm:"size:128" json:"qr_code_data,omitempty"`
	CreatedAt       time.Time `gorm:"not null" json:"-"`
}
