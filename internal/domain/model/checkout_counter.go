package model

import "time"

// 会計カウンター。Occupancy は MaxKasir を超えない。
type CheckoutCounter struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Code      string    `gorm:"type:varchar(40);not null;uniqueIndex" json:"code"`
	Name      string    `gorm:"type:varchar(120)" json:"name"`
	MaxKasir  int       `gorm:"not null" json:"max_kasir"`
	Occupancy int       `gorm:"not null" json:"occupancy"`
	Version   int64     `gorm:"not null" json:"version"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
