package mysql

import (
	"civichub/internal/model"

	"gorm.io/gorm"
)

type CommunityRepository struct {
	DB *gorm.DB
}

func NewCommunityRepository(db *gorm.DB) *CommunityRepository {
	return &CommunityRepository{DB: db}
}

func (r *CommunityRepository) Create(tx *gorm.DB, c *model.Community) error {
	return tx.Create(c).Error
}

func (r *CommunityRepository) FindByID(tx *gorm.DB, id uint64) (*model.Community, error) {
	var community model.Community
	err := tx.First(&community, id).Error
	if err != nil {
		return nil, err
	}
	return &community, nil
}

func (r *CommunityRepository) FindByName(tx *gorm.DB, name string) (*model.Community, error) {
	var community model.Community
	err := tx.Where("name = ?", name).First(&community).Error
	if err != nil {
		return nil, err
	}
	return &community, nil
}

func (r *CommunityRepository) List(offset, limit int) ([]model.Community, error) {
	var list []model.Community
	err := r.DB.Order("id desc").Offset(offset).Limit(limit).Find(&list).Error
	return list, err
}

// ListByLocationIDs 包围盒粗筛后的社区查询，精算距离在 service 层做
func (r *CommunityRepository) ListByLocationIDs(locationIDs []uint64) ([]model.Community, error) {
	if len(locationIDs) == 0 {
		return nil, nil
	}
	var list []model.Community
	err := r.DB.Where("location_id IN ?", locationIDs).Find(&list).Error
	return list, err
}

func (r *CommunityRepository) Delete(tx *gorm.DB, id uint64) error {
	return tx.Delete(&model.Community{}, id).Error
}
