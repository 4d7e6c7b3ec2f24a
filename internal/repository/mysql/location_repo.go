package mysql

import (
	"civichub/internal/model"

	"gorm.io/gorm"
)

type LocationRepository struct {
	DB *gorm.DB
}

func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{DB: db}
}

func (r *LocationRepository) Create(tx *gorm.DB, loc *model.Location) error {
	return tx.Create(loc).Error
}

func (r *LocationRepository) FindByID(tx *gorm.DB, id uint64) (*model.Location, error) {
	var loc model.Location
	err := tx.First(&loc, id).Error
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// ListInBox 包围盒内的位置，nearby 查询的粗筛阶段
func (r *LocationRepository) ListInBox(minLat, maxLat, minLng, maxLng float64) ([]model.Location, error) {
	var list []model.Location
	err := r.DB.
		Where("latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?", minLat, maxLat, minLng, maxLng).
		Find(&list).Error
	return list, err
}
