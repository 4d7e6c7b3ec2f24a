package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	LikeCntTTL       = 24 * time.Hour
	LockTTL          = 300 * time.Millisecond
	LikeCntKeyPrefix = "like:cnt:post"
	LockKeyPrefix    = "lock:like:post"
)

// LikeCountCache 帖子点赞计数缓存，写后删除、读侧回填
type LikeCountCache struct {
	ttl time.Duration
}

type DistLock struct {
	RDB *redis.Client
}

func NewLikeCountCache() *LikeCountCache {
	return &LikeCountCache{ttl: LikeCntTTL}
}

func (r *LikeCountCache) key(postID uint64) string {
	return fmt.Sprintf("%s:%d", LikeCntKeyPrefix, postID)
}

func (r *LikeCountCache) Get(ctx context.Context, postID uint64) (int64, bool, error) {
	val, err := Client.Get(ctx, r.key(postID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	return val, true, err
}

func (r *LikeCountCache) Set(ctx context.Context, postID uint64, cnt int64) error {
	return Client.Set(ctx, r.key(postID), cnt, r.ttl).Err()
}

func (r *LikeCountCache) Delete(ctx context.Context, postID uint64) error {
	if err := Client.Del(ctx, r.key(postID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

// Acquire 尝试加分布式锁
func (l *DistLock) Acquire(ctx context.Context, postID uint64, token string) (bool, error) {
	key := fmt.Sprintf("%s:%d", LockKeyPrefix, postID)
	return l.RDB.SetNX(ctx, key, token, LockTTL).Result()
}

// Release lua 保证只释放自己持有的锁
func (l *DistLock) Release(ctx context.Context, postID uint64, token string) error {
	key := fmt.Sprintf("%s:%d", LockKeyPrefix, postID)
	_, err := redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`).Run(ctx, l.RDB, []string{key}, token).Result()
	return err
}
