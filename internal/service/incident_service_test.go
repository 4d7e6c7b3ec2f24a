package service

import (
	"context"
	"testing"
	"time"

	"civichub/internal/apperr"
	"civichub/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reportInput(communityID uint64) ReportIncidentInput {
	return ReportIncidentInput{
		CommunityID: communityID,
		Title:       "broken street light",
		Description: "corner of main street",
		Category:    "infrastructure",
		Latitude:    49.41,
		Longitude:   8.71,
	}
}

func TestReportIncident(t *testing.T) {
	db := newTestDB(t)
	members := NewMembershipService(db, nil)
	incidents := NewIncidentService(db)
	ctx := context.Background()
	creator := seedUser(t, db, "alice")
	outsider := seedUser(t, db, "bob")

	view := mustCreateCommunity(t, members, creator, "altstadt")

	inc, err := incidents.Report(ctx, creator, reportInput(view.ID))
	require.NoError(t, err)
	assert.NotZero(t, inc.ID)
	assert.Equal(t, "infrastructure", inc.Category)

	// 非成员不能上报
	_, err = incidents.Report(ctx, outsider, reportInput(view.ID))
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
}

func TestReportIncidentValidation(t *testing.T) {
	db := newTestDB(t)
	members := NewMembershipService(db, nil)
	incidents := NewIncidentService(db)
	ctx := context.Background()
	creator := seedUser(t, db, "alice")

	view := mustCreateCommunity(t, members, creator, "altstadt")

	in := reportInput(view.ID)
	in.Title = ""
	_, err := incidents.Report(ctx, creator, in)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	in = reportInput(view.ID)
	in.Category = "aliens"
	_, err = incidents.Report(ctx, creator, in)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	in = reportInput(view.ID)
	in.Latitude = 91
	_, err = incidents.Report(ctx, creator, in)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	// 没填分类落到 other
	in = reportInput(view.ID)
	in.Category = ""
	inc, err := incidents.Report(ctx, creator, in)
	require.NoError(t, err)
	assert.Equal(t, "other", inc.Category)
}

func TestIncidentResolveAndDelete(t *testing.T) {
	db := newTestDB(t)
	members := NewMembershipService(db, nil)
	incidents := NewIncidentService(db)
	ctx := context.Background()
	creator := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	view := mustCreateCommunity(t, members, creator, "altstadt")
	_, err := members.Join(ctx, view.ID, bob)
	require.NoError(t, err)
	_, err = members.Join(ctx, view.ID, carol)
	require.NoError(t, err)

	inc, err := incidents.Report(ctx, bob, reportInput(view.ID))
	require.NoError(t, err)

	// 无关成员不能动
	err = incidents.Resolve(ctx, carol, inc.ID)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))

	// 上报人可以标记解决
	require.NoError(t, incidents.Resolve(ctx, bob, inc.ID))
	var got model.Incident
	require.NoError(t, db.First(&got, inc.ID).Error)
	assert.Equal(t, 1, got.Status)

	// 社区管理员可以删除
	require.NoError(t, incidents.Delete(ctx, creator, inc.ID))
	require.NoError(t, db.First(&got, inc.ID).Error)
	assert.Equal(t, 2, got.Status)

	err = incidents.Resolve(ctx, bob, 987654)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestIncidentListCursor(t *testing.T) {
	db := newTestDB(t)
	members := NewMembershipService(db, nil)
	incidents := NewIncidentService(db)
	ctx := context.Background()
	creator := seedUser(t, db, "alice")

	view := mustCreateCommunity(t, members, creator, "altstadt")

	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	var ids []uint64
	for i := 0; i < 3; i++ {
		inc, err := incidents.Report(ctx, creator, reportInput(view.ID))
		require.NoError(t, err)
		require.NoError(t, db.Model(&model.Incident{}).Where("id = ?", inc.ID).
			Update("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
		ids = append(ids, inc.ID)
	}

	page1, nextID, nextTS, err := incidents.ListByCommunity(ctx, view.ID, 0, time.Time{}, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, ids[2], page1[0].ID)
	assert.Equal(t, ids[1], page1[1].ID)

	page2, _, _, err := incidents.ListByCommunity(ctx, view.ID, nextID, nextTS, 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, ids[0], page2[0].ID)
}
