package repository

import (
	"context"
	"testing"
	"time"

	"vidtube/internal/models"
	"vidtube/internal/pagination"
	"vidtube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaylistRepository_ViewAndMembership(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPlaylistRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "")
	first := testutil.CreateVideo(t, db, owner.ID, testutil.WithViews(5))
	second := testutil.CreateVideo(t, db, owner.ID, testutil.WithViews(7))
	draft := testutil.CreateVideo(t, db, owner.ID, testutil.WithViews(100), testutil.Unpublished())

	pl := &models.Playlist{Name: "Favourites", Description: "best of", OwnerID: owner.ID}
	require.NoError(t, repo.Create(ctx, pl))

	for _, id := range []uint{second.ID, first.ID, draft.ID, second.ID} {
		require.NoError(t, repo.AddVideo(ctx, pl.ID, id))
	}

	view, err := repo.GetView(ctx, pl.ID)
	require.NoError(t, err)
	assert.Equal(t, "Favourites", view.Name)
	assert.Equal(t, owner.ID, view.Owner.ID)
	assert.Equal(t, int64(2), view.TotalVideos)
	assert.Equal(t, int64(12), view.TotalViews)

	videos, err := repo.ListVideos(ctx, pl.ID)
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.Equal(t, second.ID, videos[0].ID)
	assert.Equal(t, first.ID, videos[1].ID)

	require.NoError(t, repo.RemoveVideo(ctx, pl.ID, second.ID))
	require.NoError(t, repo.RemoveVideoEverywhere(ctx, first.ID))
	view, err = repo.GetView(ctx, pl.ID)
	require.NoError(t, err)
	assert.Zero(t, view.TotalVideos)
	assert.Zero(t, view.TotalViews)

	pl.Name = "Renamed"
	require.NoError(t, repo.Update(ctx, pl))
	got, err := repo.GetByID(ctx, pl.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	require.NoError(t, repo.Delete(ctx, pl.ID))
	_, err = repo.GetView(ctx, pl.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	var members int64
	require.NoError(t, db.Model(&models.PlaylistVideo{}).Count(&members).Error)
	assert.Zero(t, members)
}

func TestPlaylistRepository_ListByOwner(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPlaylistRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "")
	other := testutil.CreateUser(t, db, "")
	video := testutil.CreateVideo(t, db, owner.ID)

	var want []uint
	for i := 0; i < 3; i++ {
		pl := &models.Playlist{Name: "list", OwnerID: owner.ID}
		require.NoError(t, repo.Create(ctx, pl))
		require.NoError(t, repo.AddVideo(ctx, pl.ID, video.ID))
		want = append([]uint{pl.ID}, want...)
	}
	require.NoError(t, repo.Create(ctx, &models.Playlist{Name: "theirs", OwnerID: other.ID}))

	page, err := repo.ListByOwner(ctx, owner.ID, pagination.New(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalDocs)
	require.Len(t, page.Docs, 3)
	for i, pl := range page.Docs {
		assert.Equal(t, want[i], pl.ID)
		assert.Equal(t, int64(1), pl.TotalVideos)
	}

	require.NoError(t, repo.DeleteByOwner(ctx, owner.ID))
	page, err = repo.ListByOwner(ctx, owner.ID, pagination.New(1, 10))
	require.NoError(t, err)
	assert.Zero(t, page.TotalDocs)
}

func TestPasswordResetRepository_Lifecycle(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPasswordResetRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "")
	now := time.Now()

	live := &models.PasswordResetTicket{UserID: user.ID, OTP: "123456", ExpiresAt: now.Add(5 * time.Minute)}
	stale := &models.PasswordResetTicket{UserID: user.ID, OTP: "654321", ExpiresAt: now.Add(-time.Hour)}
	require.NoError(t, repo.Create(ctx, live))
	require.NoError(t, repo.Create(ctx, stale))

	got, err := repo.FindRedeemable(ctx, user.ID, "123456", now)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, live.ID, got.ID)

	got, err = repo.FindRedeemable(ctx, user.ID, "654321", now)
	require.NoError(t, err)
	assert.Nil(t, got)

	ok, err := repo.Consume(ctx, live.ID, now)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Consume(ctx, live.ID, now)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err = repo.FindRedeemable(ctx, user.ID, "123456", now)
	require.NoError(t, err)
	assert.Nil(t, got)

	removed, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	require.NoError(t, repo.Create(ctx, &models.PasswordResetTicket{UserID: user.ID, OTP: "111111", ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, repo.DeleteByUser(ctx, user.ID))
	var n int64
	require.NoError(t, db.Model(&models.PasswordResetTicket{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestTweetRepository_ListByOwner(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewTweetRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "")
	fan := testutil.CreateUser(t, db, "")

	var want []uint
	for i := 0; i < 4; i++ {
		tw := &models.Tweet{Content: "hello", OwnerID: author.ID}
		require.NoError(t, repo.Create(ctx, tw))
		want = append([]uint{tw.ID}, want...)
	}
	testutil.Like(t, db, models.LikeTargetTweet, want[1], fan.ID)

	var got []uint
	for page := 1; page <= 2; page++ {
		res, err := repo.ListByOwner(ctx, author.ID, fan.ID, pagination.New(page, 3))
		require.NoError(t, err)
		assert.Equal(t, int64(4), res.TotalDocs)
		for _, tw := range res.Docs {
			got = append(got, tw.ID)
			assert.Equal(t, tw.ID == want[1], tw.IsLiked)
		}
	}
	assert.Equal(t, want, got)

	require.NoError(t, repo.UpdateContent(ctx, want[0], "edited"))
	tw, err := repo.GetByID(ctx, want[0])
	require.NoError(t, err)
	assert.Equal(t, "edited", tw.Content)

	require.NoError(t, repo.Delete(ctx, want[0]))
	require.NoError(t, repo.DeleteByOwner(ctx, author.ID))
	res, err := repo.ListByOwner(ctx, author.ID, 0, pagination.New(1, 10))
	require.NoError(t, err)
	assert.Empty(t, res.Docs)
}
