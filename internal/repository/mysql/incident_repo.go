package mysql

import (
	"time"

	"civichub/internal/model"

	"gorm.io/gorm"
)

type IncidentRepository struct {
	DB *gorm.DB
}

func NewIncidentRepository(db *gorm.DB) *IncidentRepository {
	return &IncidentRepository{DB: db}
}

func (r *IncidentRepository) Create(inc *model.Incident) error {
	return r.DB.Create(inc).Error
}

func (r *IncidentRepository) FindByID(id uint64) (*model.Incident, error) {
	var inc model.Incident
	err := r.DB.First(&inc, "id = ? AND status <> 2", id).Error
	if err != nil {
		return nil, err
	}
	return &inc, nil
}

// ListByCommunityCursor 同帖子一样的时间游标分页
func (r *IncidentRepository) ListByCommunityCursor(communityID uint64, lastID uint64, lastCreatedAt time.Time, limit int) ([]model.Incident, error) {
	var list []model.Incident
	q := r.DB.Where("community_id = ? AND status <> 2", communityID)
	if !lastCreatedAt.IsZero() {
		q = q.Where("(created_at < ? OR (created_at = ? AND id < ?))", lastCreatedAt, lastCreatedAt, lastID)
	}
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&list).Error
	return list, err
}

func (r *IncidentRepository) UpdateStatus(id uint64, status int) error {
	return r.DB.Model(&model.Incident{}).
		Where("id = ?", id).
		Update("status", status).Error
}
