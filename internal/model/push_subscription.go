package model

import "time"

// PushSubscription holds the information for a browser push subscription.
// Operators subscribe to equipment numbers and get a push when a machine
// closes a runtime interval.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Equipment []SubscriptionEquipment `gorm:"foreignKey:Endpoint;references:Endpoint;constraint:OnDelete:CASCADE"`
}

// SubscriptionEquipment links a subscription to one equipment number.
type SubscriptionEquipment struct {
	Endpoint        string `gorm:"primaryKey" json:"-"`
	EquipmentNumber string `gorm:"primaryKey;size:64;index" json:"equipment_number"`
}

// TableName keeps the join table singular; "equipments" is not a word.
func (SubscriptionEquipment) TableName() string { return "subscription_equipment" }
