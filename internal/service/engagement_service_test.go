package service

import (
	"context"
	"strings"
	"testing"

	"vidtube/internal/models"
	"vidtube/internal/pagination"
	"vidtube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionService_SelfSubscriptionRejectedBeforeStore(t *testing.T) {
	t.Parallel()

	// Nil repositories panic if touched.
	svc := NewSubscriptionService(nil, nil, nil)
	on, err := svc.Toggle(context.Background(), 4, 4, "alice")
	assertCode(t, err, models.CodeValidation)
	assert.False(t, on)
}

func TestSubscriptionService_CarolSubscribesToAlice(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, s.db, "alice")
	carol := testutil.CreateUser(t, s.db, "carol")

	subscribed, err := s.subscriptions.Toggle(ctx, carol.ID, alice.ID, "carol")
	require.NoError(t, err)
	assert.True(t, subscribed)

	about, err := s.channels.GetAbout(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), about.SubscribersCount)

	events := s.events.For(alice.ID)
	require.Len(t, events, 1)
	assert.Equal(t, "channel_subscribed", events[0].Type)

	list, err := s.subscriptions.Subscribers(ctx, alice.ID, pagination.New(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.TotalSubscribers)
	require.Len(t, list.Subscribers.Docs, 1)
	assert.Equal(t, carol.ID, list.Subscribers.Docs[0].ID)
	assert.False(t, list.Subscribers.Docs[0].SubscribedToSubscriber)

	channels, err := s.subscriptions.SubscribedChannels(ctx, carol.ID, carol.ID, pagination.New(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), channels.TotalChannels)
	assert.True(t, channels.SubscribedChannels.Docs[0].IsSubscribed)

	subscribed, err = s.subscriptions.Toggle(ctx, carol.ID, alice.ID, "carol")
	require.NoError(t, err)
	assert.False(t, subscribed)
	assert.Zero(t, s.count(t, &models.Subscription{}, "subscriber_id = ?", carol.ID))

	_, err = s.subscriptions.Toggle(ctx, carol.ID, 9999, "carol")
	assertCode(t, err, models.CodeNotFound)
	_, err = s.subscriptions.Subscribers(ctx, 9999, pagination.New(1, 10))
	assertCode(t, err, models.CodeNotFound)
}

func TestLikeService_TargetsMustExist(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, s.db, "")
	fan := testutil.CreateUser(t, s.db, "")
	draft := testutil.CreateVideo(t, s.db, owner.ID, testutil.Unpublished())
	video := testutil.CreateVideo(t, s.db, owner.ID)
	comment := testutil.CreateComment(t, s.db, video.ID, owner.ID, "hi")
	tweet, err := s.tweets.CreateTweet(ctx, owner.ID, "news")
	require.NoError(t, err)

	_, err = s.likes.Toggle(ctx, models.LikeTargetVideo, draft.ID, fan.ID, "")
	assertCode(t, err, models.CodeNotFound)
	_, err = s.likes.Toggle(ctx, models.LikeTargetComment, 9999, fan.ID, "")
	assertCode(t, err, models.CodeNotFound)
	_, err = s.likes.Toggle(ctx, models.LikeTarget("playlist"), 1, fan.ID, "")
	assertCode(t, err, models.CodeValidation)

	liked, err := s.likes.Toggle(ctx, models.LikeTargetComment, comment.ID, fan.ID, "")
	require.NoError(t, err)
	assert.True(t, liked)
	liked, err = s.likes.Toggle(ctx, models.LikeTargetTweet, tweet.ID, fan.ID, "")
	require.NoError(t, err)
	assert.True(t, liked)

	// Only video likes notify.
	assert.Empty(t, s.events.For(owner.ID))

	_, err = s.likes.Toggle(ctx, models.LikeTargetVideo, video.ID, fan.ID, "")
	require.NoError(t, err)
	page, err := s.likes.LikedVideos(ctx, fan.ID, pagination.New(1, 10))
	require.NoError(t, err)
	require.Len(t, page.Docs, 1)
	assert.Equal(t, video.ID, page.Docs[0].ID)
}

func TestCommentService_AddComment(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, s.db, "alice")
	bob := testutil.CreateUser(t, s.db, "bob")
	video := testutil.CreateVideo(t, s.db, alice.ID)
	other := testutil.CreateVideo(t, s.db, alice.ID)
	draft := testutil.CreateVideo(t, s.db, alice.ID, testutil.Unpublished())

	_, err := s.comments.AddComment(ctx, AddCommentInput{VideoID: video.ID, UserID: bob.ID, Content: "   "})
	assertCode(t, err, models.CodeValidation)
	_, err = s.comments.AddComment(ctx, AddCommentInput{VideoID: video.ID, UserID: bob.ID, Content: strings.Repeat("x", 501)})
	assertCode(t, err, models.CodeValidation)
	_, err = s.comments.AddComment(ctx, AddCommentInput{VideoID: draft.ID, UserID: bob.ID, Content: "hi"})
	assertCode(t, err, models.CodeNotFound)

	view, err := s.comments.AddComment(ctx, AddCommentInput{VideoID: video.ID, UserID: bob.ID, Username: "bob", Content: " first! "})
	require.NoError(t, err)
	assert.Equal(t, "first!", view.Content)
	assert.Equal(t, "bob", view.Owner.Username)
	assert.Zero(t, view.LikesCount)

	elsewhere := testutil.CreateComment(t, s.db, other.ID, bob.ID, "elsewhere")
	_, err = s.comments.AddComment(ctx, AddCommentInput{VideoID: video.ID, UserID: alice.ID, Content: "reply", ParentCommentID: &elsewhere.ID})
	assertCode(t, err, models.CodeValidation)
	missing := uint(9999)
	_, err = s.comments.AddComment(ctx, AddCommentInput{VideoID: video.ID, UserID: alice.ID, Content: "reply", ParentCommentID: &missing})
	assertCode(t, err, models.CodeValidation)

	reply, err := s.comments.AddComment(ctx, AddCommentInput{VideoID: video.ID, UserID: alice.ID, Content: "thanks", ParentCommentID: &view.ID})
	require.NoError(t, err)
	require.NotNil(t, reply.ParentCommentID)
	assert.Equal(t, view.ID, *reply.ParentCommentID)

	// Bob notified alice; alice replying on her own video notifies nobody.
	assert.Len(t, s.events.For(alice.ID), 1)
	assert.Empty(t, s.events.For(bob.ID))

	page, err := s.comments.ListVideoComments(ctx, video.ID, bob.ID, pagination.New(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalDocs)
	_, err = s.comments.ListVideoComments(ctx, 9999, bob.ID, pagination.New(1, 10))
	assertCode(t, err, models.CodeNotFound)
}

func TestCommentService_OwnerOnlyEdits(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, s.db, "alice")
	bob := testutil.CreateUser(t, s.db, "bob")
	video := testutil.CreateVideo(t, s.db, alice.ID)
	comment := testutil.CreateComment(t, s.db, video.ID, bob.ID, "original")
	testutil.Like(t, s.db, models.LikeTargetComment, comment.ID, alice.ID)

	_, err := s.comments.UpdateComment(ctx, comment.ID, alice.ID, "edited")
	assertCode(t, err, models.CodeForbidden)
	assertCode(t, s.comments.DeleteComment(ctx, comment.ID, alice.ID), models.CodeForbidden)
	_, err = s.comments.UpdateComment(ctx, 9999, bob.ID, "edited")
	assertCode(t, err, models.CodeNotFound)

	view, err := s.comments.UpdateComment(ctx, comment.ID, bob.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", view.Content)
	assert.Equal(t, int64(1), view.LikesCount)

	require.NoError(t, s.comments.DeleteComment(ctx, comment.ID, bob.ID))
	assert.Zero(t, s.count(t, &models.Like{}, "target_kind = ?", models.LikeTargetComment))
}

func TestTweetService_Lifecycle(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	author := testutil.CreateUser(t, s.db, "")
	fan := testutil.CreateUser(t, s.db, "")

	_, err := s.tweets.CreateTweet(ctx, author.ID, strings.Repeat("y", 501))
	assertCode(t, err, models.CodeValidation)

	tweet, err := s.tweets.CreateTweet(ctx, author.ID, "hello")
	require.NoError(t, err)
	_, err = s.likes.Toggle(ctx, models.LikeTargetTweet, tweet.ID, fan.ID, "")
	require.NoError(t, err)

	page, err := s.tweets.ListUserTweets(ctx, author.ID, fan.ID, pagination.New(1, 10))
	require.NoError(t, err)
	require.Len(t, page.Docs, 1)
	assert.True(t, page.Docs[0].IsLiked)
	_, err = s.tweets.ListUserTweets(ctx, 9999, 0, pagination.New(1, 10))
	assertCode(t, err, models.CodeNotFound)

	_, err = s.tweets.UpdateTweet(ctx, tweet.ID, fan.ID, "mine now")
	assertCode(t, err, models.CodeForbidden)
	updated, err := s.tweets.UpdateTweet(ctx, tweet.ID, author.ID, "hello again")
	require.NoError(t, err)
	assert.Equal(t, "hello again", updated.Content)

	assertCode(t, s.tweets.DeleteTweet(ctx, tweet.ID, fan.ID), models.CodeForbidden)
	require.NoError(t, s.tweets.DeleteTweet(ctx, tweet.ID, author.ID))
	assert.Zero(t, s.count(t, &models.Like{}, "target_kind = ?", models.LikeTargetTweet))
}

func TestPlaylistService_Membership(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, s.db, "")
	other := testutil.CreateUser(t, s.db, "")
	v1 := testutil.CreateVideo(t, s.db, other.ID, testutil.WithViews(3))
	v2 := testutil.CreateVideo(t, s.db, other.ID, testutil.WithViews(4))

	_, err := s.playlists.CreatePlaylist(ctx, owner.ID, " ", "")
	assertCode(t, err, models.CodeValidation)

	pl, err := s.playlists.CreatePlaylist(ctx, owner.ID, "Watch later", "")
	require.NoError(t, err)
	assert.Equal(t, "No description provided", pl.Description)

	_, err = s.playlists.AddVideo(ctx, pl.ID, v1.ID, other.ID)
	assertCode(t, err, models.CodeForbidden)
	_, err = s.playlists.AddVideo(ctx, pl.ID, 9999, owner.ID)
	assertCode(t, err, models.CodeNotFound)
	_, err = s.playlists.AddVideo(ctx, 9999, v1.ID, owner.ID)
	assertCode(t, err, models.CodeNotFound)

	// Someone else's draft stays hidden, but your own can be added.
	draft := testutil.CreateVideo(t, s.db, other.ID, testutil.Unpublished())
	_, err = s.playlists.AddVideo(ctx, pl.ID, draft.ID, owner.ID)
	assertCode(t, err, models.CodeNotFound)
	ownDraft := testutil.CreateVideo(t, s.db, owner.ID, testutil.Unpublished())
	_, err = s.playlists.AddVideo(ctx, pl.ID, ownDraft.ID, owner.ID)
	require.NoError(t, err)
	_, err = s.playlists.RemoveVideo(ctx, pl.ID, ownDraft.ID, owner.ID)
	require.NoError(t, err)

	for _, id := range []uint{v2.ID, v1.ID, v2.ID} {
		_, err = s.playlists.AddVideo(ctx, pl.ID, id, owner.ID)
		require.NoError(t, err)
	}
	detail, err := s.playlists.GetPlaylist(ctx, pl.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), detail.TotalVideos)
	assert.Equal(t, int64(7), detail.TotalViews)
	require.Len(t, detail.Videos, 2)
	assert.Equal(t, v2.ID, detail.Videos[0].ID)

	detail, err = s.playlists.RemoveVideo(ctx, pl.ID, v2.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, detail.Videos, 1)
	assert.Equal(t, v1.ID, detail.Videos[0].ID)

	_, err = s.playlists.UpdatePlaylist(ctx, pl.ID, owner.ID, PlaylistInput{})
	assertCode(t, err, models.CodeValidation)
	name := "Later"
	_, err = s.playlists.UpdatePlaylist(ctx, pl.ID, other.ID, PlaylistInput{Name: &name})
	assertCode(t, err, models.CodeForbidden)
	renamed, err := s.playlists.UpdatePlaylist(ctx, pl.ID, owner.ID, PlaylistInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Later", renamed.Name)

	mine, err := s.playlists.ListUserPlaylists(ctx, owner.ID, pagination.New(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), mine.TotalDocs)

	assertCode(t, s.playlists.DeletePlaylist(ctx, pl.ID, other.ID), models.CodeForbidden)
	require.NoError(t, s.playlists.DeletePlaylist(ctx, pl.ID, owner.ID))
	_, err = s.playlists.GetPlaylist(ctx, pl.ID)
	assertCode(t, err, models.CodeNotFound)
}
