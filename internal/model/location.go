package model

import "time"

type Location struct {
	ID        uint64  `gorm:"primaryKey"`
	Name      string  `gorm:"size:128;not null"`
	City      string  `gorm:"size:64;index"`
	Latitude  float64 `gorm:"not null;index"`
	Longitude float64 `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
