package model

import "time"

// QRCodeDefinition maps a scanned token to a machine event type. A definition
// may be bound to one piece of equipment; an empty EquipmentNumber means the
// code is valid on any machine.
type QRCodeDefinition struct {
	Code            string    `gorm:"primaryKey;size:128" json:"code"`
	EventType       string    `gorm:"size:8;not null" json:"event_type"`
	EquipmentNumber string    `gorm:"size:64" json:"equipment_number,omitempty"`
	Description     string    `gorm:"size:256" json:"description,omitempty"`
	CreatedAt       time.Time `gorm:"not null" json:"-"`
	UpdatedAt       time.Time `gorm:"not null" json:"-"`
}
