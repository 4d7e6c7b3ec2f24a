package service

import (
	"context"
	"time"

	"civichub/internal/apperr"
	"civichub/internal/model"
	"civichub/internal/repository/mysql"

	"gorm.io/gorm"
)

type PostService struct {
	db         *gorm.DB
	repo       *mysql.PostRepository
	memberRepo *mysql.CommunityMemberRepository
}

func NewPostService(db *gorm.DB) *PostService {
	return &PostService{
		db:         db,
		repo:       mysql.NewPostRepository(db),
		memberRepo: mysql.NewCommunityMemberRepository(db),
	}
}

// CreatePost 仅社区成员可发帖
func (s *PostService) CreatePost(ctx context.Context, userID, communityID uint64, title, content string) (*model.Post, error) {
	if title == "" {
		return nil, apperr.Validation("title required")
	}

	_, isMember, err := s.memberRepo.RoleOf(s.db.WithContext(ctx), communityID, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !isMember {
		return nil, apperr.Authorization("not a member of this community")
	}

	post := &model.Post{
		CommunityID: communityID,
		AuthorID:    userID,
		Title:       title,
		Content:     content,
	}
	if err = s.repo.Create(post); err != nil {
		return nil, apperr.Internal(err)
	}
	return post, nil
}

// ListByCommunity 游标分页，首页传零值游标。返回下一页游标。
func (s *PostService) ListByCommunity(ctx context.Context, communityID uint64, lastID uint64, lastCreatedAt time.Time, size int) ([]model.Post, uint64, time.Time, error) {
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

// DeletePost 作者或该社区管理员可删；已删除视为幂等成功
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post model.Post
		err := tx.First(&post, postID).Error
		if err != nil {
			return notFoundOr(err, "post not found")
		}
		if post.Status != 0 {
			return nil
		}

		if post.AuthorID != userID {
			role, isMember, err := s.memberRepo.RoleOf(tx, post.CommunityID, userID)
			if err != nil {
				return apperr.Internal(err)
			}
			if !isMember || role != model.RoleAdmin {
				return apperr.Authorization("only the author or a community admin can delete this post")
			}
		}
		if err = s.repo.SoftDelete(tx, post.ID); err != nil {
			return apperr.Internal(err)
		}
		return nil
	})
}
