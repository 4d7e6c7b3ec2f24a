package service

import (
	"context"
	"time"

	"civichub/internal/apperr"
	"civichub/internal/model"
	"civichub/internal/repository/mysql"

	"gorm.io/gorm"
)

var incidentCategories = map[string]bool{
	"infrastructure": true,
	"safety":         true,
	"environment":    true,
	"noise":          true,
	"other":          true,
}

// IncidentService 社区事件上报的增查改，无额外不变量，仅属主/管理员检查
type IncidentService struct {
	db         *gorm.DB
	repo       *mysql.IncidentRepository
	memberRepo *mysql.CommunityMemberRepository
}

func NewIncidentService(db *gorm.DB) *IncidentService {
	return &IncidentService{
		db:         db,
		repo:       mysql.NewIncidentRepository(db),
		memberRepo: mysql.NewCommunityMemberRepository(db),
	}
}

type ReportIncidentInput struct {
	CommunityID uint64  `json:"community_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

func (s *IncidentService) Report(ctx context.Context, reporterID uint64, in ReportIncidentInput) (*model.Incident, error) {
	if in.Title == "" {
		return nil, apperr.Validation("title required")
	}
	if in.Category == "" {
		in.Category = "other"
	}
	if !incidentCategories[in.Category] {
		return nil, apperr.Validation("unknown category")
	}
	if in.Latitude < -90 || in.Latitude > 90 || in.Longitude < -180 || in.Longitude > 180 {
		return nil, apperr.Validation("invalid coordinates")
	}

	_, isMember, err := s.memberRepo.RoleOf(s.db.WithContext(ctx), in.CommunityID, reporterID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !isMember {
		return nil, apperr.Authorization("not a member of this community")
	}

	inc := &model.Incident{
		CommunityID: in.CommunityID,
		ReporterID:  reporterID,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
	}
	if err = s.repo.Create(inc); err != nil {
		return nil, apperr.Internal(err)
	}
	return inc, nil
}

func (s *IncidentService) ListByCommunity(ctx context.Context, communityID uint64, lastID uint64, lastCreatedAt time.Time, size int) ([]model.Incident, uint64, time.Time, error) {
	if size <= 0 || size > 50 {
		size = 20
	}
	list, err := s.repo.ListByCommunityCursor(communityID, lastID, lastCreatedAt, size)
	if err != nil {
		return nil, 0, time.Time{}, apperr.Internal(err)
	}
	var nextID uint64
	var nextTS time.Time
	if len(list) > 0 {
		last := list[len(list)-1]
		nextID = last.ID
		nextTS = last.CreatedAt
	}
	return list, nextID, nextTS, nil
}

// Resolve 上报人或社区管理员可标记解决
func (s *IncidentService) Resolve(ctx context.Context, userID, incidentID uint64) error {
	return s.updateStatus(ctx, userID, incidentID, 1)
}

// Delete 上报人或社区管理员可删除
func (s *IncidentService) Delete(ctx context.Context, userID, incidentID uint64) error {
	return s.updateStatus(ctx, userID, incidentID, 2)
}

func (s *IncidentService) updateStatus(ctx context.Context, userID, incidentID uint64, status int) error {
	inc, err := s.repo.FindByID(incidentID)
	if err != nil {
		return notFoundOr(err, "incident not found")
	}

	if inc.ReporterID != userID {
		role, isMember, err := s.memberRepo.RoleOf(s.db.WithContext(ctx), inc.CommunityID, userID)
		if err != nil {
			return apperr.Internal(err)
		}
		if !isMember || role != model.RoleAdmin {
			return apperr.Authorization("only the reporter or a community admin can modify this incident")
		}
	}
	if err = s.repo.UpdateStatus(incidentID, status); err != nil {
		return apperr.Internal(err)
	}
	return nil
}
