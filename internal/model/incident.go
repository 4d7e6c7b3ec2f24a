package model

import "time"

// Incident 社区事件上报（路灯坏了、违章堆放……）
type Incident struct {
	ID          uint64    `gorm:"primaryKey;index:idx_incident_comm_time,priority:3,sort:desc"`
	CommunityID uint64    `gorm:"not null;index:idx_incident_comm_time,priority:1"`
	ReporterID  uint64    `gorm:"not null;index"`
	Title       string    `gorm:"size:200;not null"`
	Description string    `gorm:"type:text"`
	Category    string    `gorm:"size:32;not null;default:'other'"`
	Status      int       `gorm:"not null;default:0"` // 0=open 1=resolved 2=deleted
	Latitude    float64   `gorm:"not null"`
	Longitude   float64   `gorm:"not null"`
	CreatedAt   time.Time `gorm:"index:idx_incident_comm_time,priority:2,sort:desc"`
	UpdatedAt   time.Time
}
