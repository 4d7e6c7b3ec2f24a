package model

import "time"

type Post struct {
	ID          uint64    `gorm:"primaryKey;index:idx_post_comm_time,priority:3,sort:desc"`
	CommunityID uint64    `gorm:"not null;index:idx_post_comm_time,priority:1"`
	AuthorID    uint64    `gorm:"not null;index"`
	Title       string    `gorm:"size:200;not null"`
	Content     string    `gorm:"type:text"`
	Status      int       `gorm:"not null;default:0"` // 0=normal 1=deleted
	LikeCount   int64     `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"index:idx_post_comm_time,priority:2,sort:desc"`
	UpdatedAt   time.Time
}

type PostLike struct {
	ID        uint64 `gorm:"primaryKey"`
	UserID    uint64 `gorm:"not null;uniqueIndex:uk_post_user,priority:2"`
	PostID    uint64 `gorm:"not null;uniqueIndex:uk_post_user,priority:1"`
	CreatedAt time.Time
}

func (PostLike) TableName() string { return "post_likes" }
