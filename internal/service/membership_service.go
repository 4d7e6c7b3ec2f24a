package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"civichub/internal/apperr"
	"civichub/internal/model"
	"civichub/internal/repository/mysql"
	redisrepo "civichub/internal/repository/redis"

	"gorm.io/gorm"
)

// MembershipService 社区成员生命周期：建社、加入、退出、移除、提升、降级。
// 规则：有成员的社区必须始终有至少一名管理员；唯一管理员自愿退出时
// 由入社最早的成员接任；最后一名成员退出时社区整体解散。
// 每个操作一个事务，admin 计数和后续写入之间持有行锁。
type MembershipService struct {
	db          *gorm.DB
	communities *mysql.CommunityRepository
	members     *mysql.CommunityMemberRepository
	locations   *mysql.LocationRepository
	users       *mysql.UserRepository
	outbox      *mysql.OutboxRepository
	memberCnt   *redisrepo.MemberCountCache // 可为空（测试/无 redis 环境）
}

func NewMembershipService(db *gorm.DB, memberCnt *redisrepo.MemberCountCache) *MembershipService {
	return &MembershipService{
		db:          db,
		communities: mysql.NewCommunityRepository(db),
		members:     mysql.NewCommunityMemberRepository(db),
		locations:   mysql.NewLocationRepository(db),
		users:       mysql.NewUserRepository(db),
		outbox:      mysql.NewOutboxRepository(db),
		memberCnt:   memberCnt,
	}
}

type LocationInput struct {
	Name      string  `json:"name"`
	City      string  `json:"city"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type CreateCommunityInput struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	LocationID  uint64         `json:"location_id"`
	Location    *LocationInput `json:"location"`
}

// CommunityView 面向调用方的社区视图
type CommunityView struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	LocationID  uint64 `json:"location_id"`
	MemberCount int64  `json:"member_count"`
	IsMember    bool   `json:"is_member"`
	IsAdmin     bool   `json:"is_admin"`
}

type LeaveResult struct {
	CommunityDeleted bool `json:"community_deleted"`
}

// notFoundOr 记录未找到归为 NotFound，其余算存储故障
func notFoundOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(msg)
	}
	return apperr.Internal(err)
}

// CreateCommunity 建社区，创建者原子地成为唯一管理员
func (s *MembershipService) CreateCommunity(ctx context.Context, creatorID uint64, in CreateCommunityInput) (*CommunityView, error) {
	if in.Name == "" {
		return nil, apperr.Validation("community name required")
	}
	if in.Description == "" {
		return nil, apperr.Validation("community description required")
	}
	if in.LocationID == 0 && in.Location == nil {
		return nil, apperr.Validation("location required")
	}

	var community model.Community
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locationID := in.LocationID
		if locationID != 0 {
			if _, err := s.locations.FindByID(tx, locationID); err != nil {
				// 引用无法解析且没有内联位置时按 NotFound 处理
				if in.Location == nil {
					return notFoundOr(err, "location not found")
				}
				locationID = 0
			}
		}
		if locationID == 0 {
			loc := &model.Location{
				Name:      in.Location.Name,
				City:      in.Location.City,
				Latitude:  in.Location.Latitude,
				Longitude: in.Location.Longitude,
			}
			if err := s.locations.Create(tx, loc); err != nil {
				return apperr.Internal(err)
			}
			locationID = loc.ID
		}

		if _, err := s.communities.FindByName(tx, in.Name); err == nil {
			return apperr.Conflict("community name already taken")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Internal(err)
		}

		community = model.Community{
			Name:        in.Name,
			Description: in.Description,
			LocationID:  locationID,
			CreatorID:   creatorID,
		}
		if err := s.communities.Create(tx, &community); err != nil {
			return apperr.Internal(err)
		}
		if err := s.members.Create(tx, &model.CommunityMember{
			CommunityID: community.ID,
			UserID:      creatorID,
			Role:        model.RoleAdmin,
			JoinedAt:    time.Now(),
		}); err != nil {
			return apperr.Internal(err)
		}
		return s.emit(tx, "community_created", community.ID, creatorID, creatorID)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCount(ctx, community.ID)
	return &CommunityView{
		ID:          community.ID,
		Name:        community.Name,
		Description: community.Description,
		LocationID:  community.LocationID,
		MemberCount: 1,
		IsMember:    true,
		IsAdmin:     true,
	}, nil
}

// Join 以普通成员身份加入
func (s *MembershipService) Join(ctx context.Context, communityID, userID uint64) (*CommunityView, error) {
	var view *CommunityView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		community, err := s.communities.FindByID(tx, communityID)
		if err != nil {
			return notFoundOr(err, "community not found")
		}

		if _, err = s.members.Find(tx, communityID, userID); err == nil {
			return apperr.Conflict("already a member")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Internal(err)
		}

		if err = s.members.Create(tx, &model.CommunityMember{
			CommunityID: communityID,
			UserID:      userID,
			Role:        model.RoleMember,
			JoinedAt:    time.Now(),
		}); err != nil {
			return apperr.Internal(err)
		}
		if err = s.emit(tx, "joined", communityID, userID, userID); err != nil {
			return err
		}

		view, err = s.viewOf(tx, community, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCount(ctx, communityID)
	return view, nil
}

// Leave 自愿退出。唯一管理员退出触发接任；最后一人退出解散社区。
func (s *MembershipService) Leave(ctx context.Context, communityID, userID uint64) (*LeaveResult, error) {
	res := &LeaveResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.communities.FindByID(tx, communityID); err != nil {
			return notFoundOr(err, "community not found")
		}
		m, err := s.members.Find(tx, communityID, userID)
		if err != nil {
			return notFoundOr(err, "not a member of this community")
		}

		if m.Role == model.RoleMember {
			if err = s.members.Delete(tx, m.ID); err != nil {
				return apperr.Internal(err)
			}
			return s.emit(tx, "left", communityID, userID, userID)
		}

		// 管理员退出：先看还有没有别的管理员
		admins, err := s.members.CountAdmins(tx, communityID)
		if err != nil {
			return apperr.Internal(err)
		}
		if admins > 1 {
			if err = s.members.Delete(tx, m.ID); err != nil {
				return apperr.Internal(err)
			}
			return s.emit(tx, "left", communityID, userID, userID)
		}

		// 唯一管理员：接任或解散
		successor, err := s.members.OldestOther(tx, communityID, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 社区里只剩自己，整体解散
			if err = s.members.DeleteByCommunity(tx, communityID); err != nil {
				return apperr.Internal(err)
			}
			if err = s.communities.Delete(tx, communityID); err != nil {
				return apperr.Internal(err)
			}
			res.CommunityDeleted = true
			return s.emit(tx, "community_deleted", communityID, userID, userID)
		}
		if err != nil {
			return apperr.Internal(err)
		}

		// 入社最早的成员接任管理员，然后删除退出者
		if err = s.members.UpdateRole(tx, successor.ID, model.RoleAdmin); err != nil {
			return apperr.Internal(err)
		}
		if err = s.emit(tx, "promoted", communityID, userID, successor.UserID); err != nil {
			return err
		}
		if err = s.members.Delete(tx, m.ID); err != nil {
			return apperr.Internal(err)
		}
		return s.emit(tx, "left", communityID, userID, userID)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCount(ctx, communityID)
	return res, nil
}

// RemoveMember 管理员移除成员；本人移除自己等价于退出，走 Leave 以获得接任/解散语义。
// 管理员直接移除唯一管理员不提供接任路径，一律拒绝。
func (s *MembershipService) RemoveMember(ctx context.Context, communityID, actorID, targetUserID uint64) (*LeaveResult, error) {
	if actorID == targetUserID {
		return s.Leave(ctx, communityID, actorID)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.communities.FindByID(tx, communityID); err != nil {
			return notFoundOr(err, "community not found")
		}
		if err := s.requireAdmin(tx, communityID, actorID); err != nil {
			return err
		}

		target, err := s.members.Find(tx, communityID, targetUserID)
		if err != nil {
			return notFoundOr(err, "member not found")
		}

		if target.Role == model.RoleAdmin {
			admins, err := s.members.CountAdmins(tx, communityID)
			if err != nil {
				return apperr.Internal(err)
			}
			if admins == 1 {
				return apperr.Conflict("cannot remove the last admin")
			}
		}

		if err = s.members.Delete(tx, target.ID); err != nil {
			return apperr.Internal(err)
		}
		return s.emit(tx, "removed", communityID, actorID, targetUserID)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCount(ctx, communityID)
	return &LeaveResult{}, nil
}

// Promote 普通成员提升为管理员
func (s *MembershipService) Promote(ctx context.Context, communityID, actorID, targetMemberID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.communities.FindByID(tx, communityID); err != nil {
			return notFoundOr(err, "community not found")
		}
		if err := s.requireAdmin(tx, communityID, actorID); err != nil {
			return err
		}

		target, err := s.members.FindByID(tx, communityID, targetMemberID)
		if err != nil {
			return notFoundOr(err, "member not found")
		}
		if target.Role == model.RoleAdmin {
			return apperr.Conflict("member is already an admin")
		}

		if err = s.members.UpdateRole(tx, target.ID, model.RoleAdmin); err != nil {
			return apperr.Internal(err)
		}
		return s.emit(tx, "promoted", communityID, actorID, target.UserID)
	})
}

// Demote 管理员降为普通成员。不允许降自己，也不允许动最后一名管理员。
func (s *MembershipService) Demote(ctx context.Context, communityID, actorID, targetMemberID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.communities.FindByID(tx, communityID); err != nil {
			return notFoundOr(err, "community not found")
		}
		if err := s.requireAdmin(tx, communityID, actorID); err != nil {
			return err
		}

		target, err := s.members.FindByID(tx, communityID, targetMemberID)
		if err != nil {
			return notFoundOr(err, "member not found")
		}
		if target.Role != model.RoleAdmin {
			return apperr.Conflict("member is not an admin")
		}
		if target.UserID == actorID {
			return apperr.Conflict("cannot demote yourself")
		}

		admins, err := s.members.CountAdmins(tx, communityID)
		if err != nil {
			return apperr.Internal(err)
		}
		if admins <= 1 {
			return apperr.Conflict("cannot demote the last admin")
		}

		if err = s.members.UpdateRole(tx, target.ID, model.RoleMember); err != nil {
			return apperr.Internal(err)
		}
		return s.emit(tx, "demoted", communityID, actorID, target.UserID)
	})
}

// ListMembers 成员列表，入社时间升序
func (s *MembershipService) ListMembers(ctx context.Context, communityID uint64) ([]model.CommunityMember, error) {
	var list []model.CommunityMember
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.communities.FindByID(tx, communityID); err != nil {
			return notFoundOr(err, "community not found")
		}
		var err error
		list, err = s.members.ListByCommunity(tx, communityID)
		if err != nil {
			return apperr.Internal(err)
		}
		return nil
	})
	return list, err
}

// requireAdmin 统一的能力检查：操作者必须是该社区管理员或平台管理员
func (s *MembershipService) requireAdmin(tx *gorm.DB, communityID, userID uint64) error {
	role, isMember, err := s.members.RoleOf(tx, communityID, userID)
	if err != nil {
		return apperr.Internal(err)
	}
	if isMember && role == model.RoleAdmin {
		return nil
	}

	siteAdmin, err := s.users.IsSiteAdmin(tx, userID)
	if err != nil {
		return apperr.Internal(err)
	}
	if siteAdmin {
		return nil
	}
	return apperr.Authorization("admin role required")
}

func (s *MembershipService) viewOf(tx *gorm.DB, c *model.Community, userID uint64) (*CommunityView, error) {
	count, err := s.members.CountMembers(tx, c.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	role, isMember, err := s.members.RoleOf(tx, c.ID, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &CommunityView{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		LocationID:  c.LocationID,
		MemberCount: count,
		IsMember:    isMember,
		IsAdmin:     isMember && role == model.RoleAdmin,
	}, nil
}

// emit 事务内写 outbox，由 relayer 异步投递
func (s *MembershipService) emit(tx *gorm.DB, event string, communityID, actorID, targetID uint64) error {
	payload, _ := json.Marshal(map[string]any{
		"event_time":   time.Now().UTC().Format(time.RFC3339Nano),
		"community_id": communityID,
		"actor_id":     actorID,
		"target_id":    targetID,
	})
	err := s.outbox.Insert(tx, &model.MembershipOutbox{
		EventType:   event,
		CommunityID: communityID,
		ActorID:     actorID,
		TargetID:    targetID,
		Payload:     string(payload),
	})
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *MembershipService) invalidateCount(ctx context.Context, communityID uint64) {
	if s.memberCnt == nil {
		return
	}
	_ = s.memberCnt.Invalidate(ctx, communityID)
}
