package service

import (
	"context"
	"errors"
	"sort"

	"civichub/internal/apperr"
	"civichub/internal/model"
	"civichub/internal/pkg"
	"civichub/internal/repository/mysql"
	redisrepo "civichub/internal/repository/redis"

	"gorm.io/gorm"
)

// CommunityService 社区读路径：详情、列表、附近搜索
type CommunityService struct {
	db        *gorm.DB
	repo      *mysql.CommunityRepository
	members   *mysql.CommunityMemberRepository
	locations *mysql.LocationRepository
	memberCnt *redisrepo.MemberCountCache // 可为空
}

func NewCommunityService(db *gorm.DB, memberCnt *redisrepo.MemberCountCache) *CommunityService {
	return &CommunityService{
		db:        db,
		repo:      mysql.NewCommunityRepository(db),
		members:   mysql.NewCommunityMemberRepository(db),
		locations: mysql.NewLocationRepository(db),
		memberCnt: memberCnt,
	}
}

// Get 社区视图，成员数优先走缓存
func (s *CommunityService) Get(ctx context.Context, communityID, userID uint64) (*CommunityView, error) {
	c, err := s.repo.FindByID(s.db.WithContext(ctx), communityID)
	if err != nil {
		return nil, notFoundOr(err, "community not found")
	}

	count, cached := s.cachedCount(ctx, communityID)
	if !cached {
		count, err = s.members.CountMembers(s.db.WithContext(ctx), communityID)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		if s.memberCnt != nil {
			_ = s.memberCnt.Set(ctx, communityID, count)
		}
	}

	role, isMember, err := s.members.RoleOf(s.db.WithContext(ctx), communityID, userID)
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

func (s *CommunityService) List(ctx context.Context, page, size int) ([]model.Community, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 50 {
		size = 20
	}

	offset := (page - 1) * size
	list, err := s.repo.List(offset, size)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return list, nil
}

type NearbyCommunity struct {
	Community  model.Community `json:"community"`
	DistanceKm float64         `json:"distance_km"`
}

// Nearby 附近社区：包围盒粗筛位置，再按大圆距离精算排序
func (s *CommunityService) Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]NearbyCommunity, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, apperr.Validation("invalid coordinates")
	}
	if radiusKm <= 0 || radiusKm > 100 {
		radiusKm = 10
	}

	minLat, maxLat, minLng, maxLng := pkg.BoundingBox(lat, lng, radiusKm)
	locs, err := s.locations.ListInBox(minLat, maxLat, minLng, maxLng)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	dist := make(map[uint64]float64, len(locs))
	ids := make([]uint64, 0, len(locs))
	for _, loc := range locs {
		d := pkg.HaversineKm(lat, lng, loc.Latitude, loc.Longitude)
		if d <= radiusKm {
			dist[loc.ID] = d
			ids = append(ids, loc.ID)
		}
	}

	communities, err := s.repo.ListByLocationIDs(ids)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	out := make([]NearbyCommunity, 0, len(communities))
	for _, c := range communities {
		out = append(out, NearbyCommunity{Community: c, DistanceKm: dist[c.LocationID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out, nil
}

func (s *CommunityService) cachedCount(ctx context.Context, communityID uint64) (int64, bool) {
	if s.memberCnt == nil {
		return 0, false
	}
	count, ok, err := s.memberCnt.Get(ctx, communityID)
	if err != nil || !ok {
		return 0, false
	}
	return count, true
}

// FindByName handler 建社前的重名探测等场景使用
func (s *CommunityService) FindByName(name string) (*model.Community, error) {
	c, err := s.repo.FindByName(s.db, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("community not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return c, nil
}
