package service

import (
	"context"

	"civichub/internal/apperr"
	"civichub/internal/repository/mysql"
	redisrepo "civichub/internal/repository/redis"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostLikeService struct {
	repo      *mysql.PostLikeRepository
	likeCache *redisrepo.LikeCountCache // 可为空
	lock      *redisrepo.DistLock       // 可为空
}

func NewPostLikeService(db *gorm.DB, likeCache *redisrepo.LikeCountCache, lock *redisrepo.DistLock) *PostLikeService {
	return &PostLikeService{
		repo:      mysql.NewPostLikeRepository(db),
		likeCache: likeCache,
		lock:      lock,
	}
}

// Like 先写库；计数缓存在锁内回写，拿不到锁就删 key 交给读侧回填
func (s *PostLikeService) Like(ctx context.Context, userID, postID uint64) (bool, error) {
	if userID == 0 || postID == 0 {
		return false, apperr.Validation("invalid id")
	}

	changed, err := s.repo.Like(ctx, userID, postID)
	if err != nil {
		return false, apperr.Internal(err)
	}
	if changed {
		s.refreshCount(ctx, postID)
	}
	return changed, nil
}

func (s *PostLikeService) Unlike(ctx context.Context, userID, postID uint64) (bool, error) {
	if userID == 0 || postID == 0 {
		return false, apperr.Validation("invalid id")
	}

	changed, err := s.repo.Unlike(ctx, userID, postID)
	if err != nil {
		return false, apperr.Internal(err)
	}
	if changed {
		s.refreshCount(ctx, postID)
	}
	return changed, nil
}

// GetLikeCount 缓存优先，miss 则回源并回填
func (s *PostLikeService) GetLikeCount(ctx context.Context, postID uint64) (int64, error) {
	if s.likeCache != nil {
		if cnt, ok, err := s.likeCache.Get(ctx, postID); err == nil && ok {
			return cnt, nil
		}
	}
	cnt, err := s.repo.GetLikeCount(ctx, postID)
	if err != nil {
		return 0, notFoundOr(err, "post not found")
	}
	if s.likeCache != nil {
		_ = s.likeCache.Set(ctx, postID, cnt)
	}
	return cnt, nil
}

func (s *PostLikeService) IsLiked(ctx context.Context, userID, postID uint64) (bool, error) {
	liked, err := s.repo.IsLiked(ctx, userID, postID)
	if err != nil {
		return false, apperr.Internal(err)
	}
	return liked, nil
}

// refreshCount 锁内回源重写计数；拿不到锁就只删 key
func (s *PostLikeService) refreshCount(ctx context.Context, postID uint64) {
	if s.likeCache == nil {
		return
	}
	if s.lock == nil {
		_ = s.likeCache.Delete(ctx, postID)
		return
	}

	token := uuid.NewString()
	got, _ := s.lock.Acquire(ctx, postID, token)
	if !got {
		_ = s.likeCache.Delete(ctx, postID)
		return
	}
	defer s.lock.Release(ctx, postID, token)

	cnt, err := s.repo.GetLikeCount(ctx, postID)
	if err != nil {
		_ = s.likeCache.Delete(ctx, postID)
		return
	}
	_ = s.likeCache.Set(ctx, postID, cnt)
}
