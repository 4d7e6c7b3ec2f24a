package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	MemberCntTTL       = 10 * time.Minute
	MemberCntKeyPrefix = "community:membercnt"
)

// MemberCountCache 社区成员数缓存。成员变更后删除，读侧回填。
type MemberCountCache struct {
	ttl time.Duration
}

func NewMemberCountCache() *MemberCountCache {
	return &MemberCountCache{ttl: MemberCntTTL}
}

func (c *MemberCountCache) key(communityID uint64) string {
	return fmt.Sprintf("%s:%d", MemberCntKeyPrefix, communityID)
}

func (c *MemberCountCache) Get(ctx context.Context, communityID uint64) (int64, bool, error) {
	val, err := Client.Get(ctx, c.key(communityID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return val, true, nil
}

func (c *MemberCountCache) Set(ctx context.Context, communityID uint64, cnt int64) error {
	return Client.Set(ctx, c.key(communityID), cnt, c.ttl).Err()
}

// Invalidate 写路径成功后调用，失败只记不阻断
func (c *MemberCountCache) Invalidate(ctx context.Context, communityID uint64) error {
	err := Client.Del(ctx, c.key(communityID)).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}
