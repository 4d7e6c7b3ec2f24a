package service

import (
	"context"
	"errors"
	"testing"

	"civichub/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelayerDrainMarksSent(t *testing.T) {
	db := newTestDB(t)
	members := NewMembershipService(db, nil)
	ctx := context.Background()
	creator := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	view := mustCreateCommunity(t, members, creator, "altstadt")
	_, err := members.Join(ctx, view.ID, bob)
	require.NoError(t, err)

	var sent []string
	relayer := NewOutboxRelayer(db, func(ctx context.Context, ob *model.MembershipOutbox) error {
		sent = append(sent, ob.EventType)
		return nil
	})
	relayer.drainOnce(ctx)

	assert.Equal(t, []string{"community_created", "joined"}, sent)

	var pending int64
	require.NoError(t, db.Model(&model.MembershipOutbox{}).Where("status = 0").Count(&pending).Error)
	assert.Zero(t, pending)

	// 再跑一轮不会重复投递
	relayer.drainOnce(ctx)
	assert.Len(t, sent, 2)
}

func TestRelayerDrainMarksFailed(t *testing.T) {
	db := newTestDB(t)
	members := NewMembershipService(db, nil)
	ctx := context.Background()
	creator := seedUser(t, db, "alice")

	view := mustCreateCommunity(t, members, creator, "altstadt")

	relayer := NewOutboxRelayer(db, func(ctx context.Context, ob *model.MembershipOutbox) error {
		return errors.New("broker unreachable")
	})
	relayer.drainOnce(ctx)

	var row model.MembershipOutbox
	require.NoError(t, db.Where("community_id = ?", view.ID).First(&row).Error)
	assert.Equal(t, int8(2), row.Status)
	assert.Equal(t, 1, row.Retry)
}
