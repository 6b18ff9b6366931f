package model

import "time"

// QCMeasurement records one dimensional or hardness inspection result.
type QCMeasurement struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PartNumber string    `gorm:"size:64;not null;index" json:"part_number"`
	JobNumber  string    `gorm:"size:64;index" json:"job_number,omitempty"`
	Feature    string    `gorm:"size:128" json:"feature,omitempty"`
	Nominal    *float64  `json:"nominal"`
	Actual     *float64  `json:"actual"`
	Tolerance  *float64  `json:"tolerance"`
	BHN        *float64  `gorm:"column:bhn" json:"bhn"`
	TIR        *float64  `gorm:"column:tir" json:"tir"`
	Operator   string    `gorm:"size:64" json:"operator,omitempty"`
	MeasuredAt time.Time `gorm:"not null;index" json:"measured_at"`
	CreatedAt  time.Time `gorm:"not null" json:"-"`
}
