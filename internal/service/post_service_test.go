package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"civichub/internal/apperr"
	"civichub/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePostRequiresMembership(t *testing.T) {
	db := newTestDB(t)
	members := NewMembershipService(db, nil)
	posts := NewPostService(db)
	ctx := context.Background()
	creator := seedUser(t, db, "alice")
	outsider := seedUser(t, db, "bob")

	view := mustCreateCommunity(t, members, creator, "altstadt")

	_, err := posts.CreatePost(ctx, outsider, view.ID, "hello", "body")
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))

	_, err = posts.CreatePost(ctx, creator, view.ID, "", "body")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	post, err := posts.CreatePost(ctx, creator, view.ID, "hello", "body")
	require.NoError(t, err)
	assert.NotZero(t, post.ID)
	assert.Equal(t, creator, post.AuthorID)
}

func TestListPostsCursor(t *testing.T) {
	db := newTestDB(t)
	members := NewMembershipService(db, nil)
	posts := NewPostService(db)
	ctx := context.Background()
	creator := seedUser(t, db, "alice")

	view := mustCreateCommunity(t, members, creator, "altstadt")

	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	for i := 0; i < 5; i++ {
		p, err := posts.CreatePost(ctx, creator, view.ID, fmt.Sprintf("post-%d", i), "body")
		require.NoError(t, err)
		// 拉开发帖时间，让游标顺序可预测
		require.NoError(t, db.Model(&model.Post{}).Where("id = ?", p.ID).
			Update("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
	}

	page1, nextID, nextTS, err := posts.ListByCommunity(ctx, view.ID, 0, time.Time{}, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, "post-4", page1[0].Title)
	assert.Equal(t, "post-3", page1[1].Title)

	page2, nextID, nextTS, err := posts.ListByCommunity(ctx, view.ID, nextID, nextTS, 2)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, "post-2", page2[0].Title)
	assert.Equal(t, "post-1", page2[1].Title)

	page3, _, _, err := posts.ListByCommunity(ctx, view.ID, nextID, nextTS, 2)
	require.NoError(t, err)
	require.Len(t, page3, 1)
	assert.Equal(t, "post-0", page3[0].Title)
}

func TestDeletePostAuthorOrAdmin(t *testing.T) {
	db := newTestDB(t)
	members := NewMembershipService(db, nil)
	posts := NewPostService(db)
	ctx := context.Background()
	creator := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	view := mustCreateCommunity(t, members, creator, "altstadt")
	_, err := members.Join(ctx, view.ID, bob)
	require.NoError(t, err)
	_, err = members.Join(ctx, view.ID, carol)
	require.NoError(t, err)

	post, err := posts.CreatePost(ctx, bob, view.ID, "hello", "body")
	require.NoError(t, err)

	// 其他普通成员不能删
	err = posts.DeletePost(ctx, carol, post.ID)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))

	// 作者可以删，重复删幂等
	require.NoError(t, posts.DeletePost(ctx, bob, post.ID))
	require.NoError(t, posts.DeletePost(ctx, bob, post.ID))

	var got model.Post
	require.NoError(t, db.First(&got, post.ID).Error)
	assert.Equal(t, 1, got.Status)

	// 社区管理员删别人的帖子
	post2, err := posts.CreatePost(ctx, bob, view.ID, "another", "body")
	require.NoError(t, err)
	require.NoError(t, posts.DeletePost(ctx, creator, post2.ID))

	err = posts.DeletePost(ctx, bob, 987654)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDeletedPostsExcludedFromList(t *testing.T) {
	db := newTestDB(t)
	members := NewMembershipService(db, nil)
	posts := NewPostService(db)
	ctx := context.Background()
	creator := seedUser(t, db, "alice")

	view := mustCreateCommunity(t, members, creator, "altstadt")
	keep, err := posts.CreatePost(ctx, creator, view.ID, "keep", "body")
	require.NoError(t, err)
	gone, err := posts.CreatePost(ctx, creator, view.ID, "gone", "body")
	require.NoError(t, err)
	require.NoError(t, posts.DeletePost(ctx, creator, gone.ID))

	list, _, _, err := posts.ListByCommunity(ctx, view.ID, 0, time.Time{}, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, keep.ID, list[0].ID)
}
