package mysql

import (
	"time"

	"civichub/internal/model"

	"gorm.io/gorm"
)

type PostRepository struct {
	DB *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{DB: db}
}

func (r *PostRepository) Create(post *model.Post) error {
	return r.DB.Create(post).Error
}

func (r *PostRepository) FindByID(id uint64) (*model.Post, error) {
	var post model.Post
	err := r.DB.First(&post, "id = ? AND status = 0", id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ListByCommunityCursor 时间游标分页，(created_at, id) 双字段打破并列
func (r *PostRepository) ListByCommunityCursor(communityID uint64, lastID uint64, lastCreatedAt time.Time, limit int) ([]model.Post, error) {
	var list []model.Post
	q := r.DB.Where("community_id = ? AND status = 0", communityID)
	if !lastCreatedAt.IsZero() {
		q = q.Where("(created_at < ? OR (created_at = ? AND id < ?))", lastCreatedAt, lastCreatedAt, lastID)
	}
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&list).Error
	return list, err
}

// SoftDelete 软删除，幂等：已删除时 RowsAffected=0 不报错
func (r *PostRepository) SoftDelete(tx *gorm.DB, id uint64) error {
	return tx.Model(&model.Post{}).
		Where("id = ? AND status = 0", id).
		Update("status", 1).Error
}

func (r *PostRepository) AdjustLikeCount(tx *gorm.DB, postID uint64, delta int64) error {
	if delta < 0 {
		return tx.Model(&model.Post{}).
			Where("id = ?", postID).
			UpdateColumn("like_count", gorm.Expr("CASE WHEN like_count > 0 THEN like_count - 1 ELSE 0 END")).Error
	}
	return tx.Model(&model.Post{}).
		Where("id = ?", postID).
		UpdateColumn("like_count", gorm.Expr("like_count + ?", delta)).Error
}
