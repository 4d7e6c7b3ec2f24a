package model

import "time"

// Role 社区成员角色，闭合枚举，入口处校验
type Role int8

const (
	RoleMember Role = 0
	RoleAdmin  Role = 1
)

func (r Role) Valid() bool { return r == RoleMember || r == RoleAdmin }

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleMember:
		return "member"
	}
	return "unknown"
}

type Community struct {
	ID          uint64 `gorm:"primaryKey"`
	Name        string `gorm:"uniqueIndex;size:64;not null"`
	Description string `gorm:"type:text"`
	LocationID  uint64 `gorm:"not null;index"`
	CreatorID   uint64 `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CommunityMember 用户-社区关系行，(community_id, user_id) 唯一
type CommunityMember struct {
	ID          uint64    `gorm:"primaryKey"`
	CommunityID uint64    `gorm:"not null;index;uniqueIndex:uk_community_user"`
	UserID      uint64    `gorm:"not null;index;uniqueIndex:uk_community_user"`
	Role        Role      `gorm:"not null;default:0"`
	JoinedAt    time.Time `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MembershipOutbox 成员变更事件表，事务内写入，由 relayer 异步投递到 kafka
type MembershipOutbox struct {
	ID          uint64 `gorm:"primaryKey"`
	EventType   string `gorm:"size:32;not null"` // joined/left/removed/promoted/demoted/community_created/community_deleted
	CommunityID uint64 `gorm:"not null;index"`
	ActorID     uint64 `gorm:"not null"`
	TargetID    uint64 `gorm:"not null"`
	Payload     string `gorm:"type:json;not null"`
	Status      int8   `gorm:"not null;default:0;comment:'0=pending,1=sent,2=failed'"`
	Retry       int    `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (MembershipOutbox) TableName() string { return "membership_outbox" }
