package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"vidtube/internal/models"
	"vidtube/internal/repository"
	"vidtube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerInput(username string) RegisterInput {
	return RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		FullName: "Full " + username,
		Password: "secret1",
		Avatar:   models.MediaAsset{URL: "https://cdn.example.com/a.png", ExternalID: "avatars/" + username},
	}
}

func TestUserService_Register(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	in := registerInput("Dana")
	in.Email = "  DANA@Example.com "
	user, err := s.users.Register(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "dana", user.Username)
	assert.Equal(t, "dana@example.com", user.Email)
	assert.NotEqual(t, "secret1", user.Password)

	_, err = s.users.Register(ctx, registerInput("dana"))
	assertCode(t, err, models.CodeConflict)

	bad := registerInput("x")
	bad.Email = "not-an-email"
	bad.Password = "123"
	_, err = s.users.Register(ctx, bad)
	assertCode(t, err, models.CodeValidation)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Len(t, appErr.Details, 3)
}

func TestUserService_AuthenticateAndChangePassword(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	user, err := s.users.Register(ctx, registerInput("erin"))
	require.NoError(t, err)

	got, err := s.users.Authenticate(ctx, "ERIN", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	got, err = s.users.Authenticate(ctx, "erin@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = s.users.Authenticate(ctx, "erin", "wrong")
	assertCode(t, err, models.CodeUnauthorized)
	_, err = s.users.Authenticate(ctx, "ghost", "secret1")
	assertCode(t, err, models.CodeUnauthorized)
	_, err = s.users.Authenticate(ctx, "", "")
	assertCode(t, err, models.CodeValidation)

	assertCode(t, s.users.ChangePassword(ctx, user.ID, "wrong", "another1"), models.CodeValidation)
	assertCode(t, s.users.ChangePassword(ctx, user.ID, "secret1", "123"), models.CodeValidation)
	require.NoError(t, s.users.ChangePassword(ctx, user.ID, "secret1", "another1"))
	_, err = s.users.Authenticate(ctx, "erin", "another1")
	require.NoError(t, err)
}

func TestUserService_UpdateAccount(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	user, err := s.users.Register(ctx, registerInput("fay"))
	require.NoError(t, err)
	_, err = s.users.Register(ctx, registerInput("gus"))
	require.NoError(t, err)

	taken := "GUS@example.com"
	_, err = s.users.UpdateAccount(ctx, UpdateAccountInput{UserID: user.ID, Email: &taken})
	assertCode(t, err, models.CodeConflict)

	bio := "  films  "
	avatar := models.MediaAsset{URL: "https://cdn.example.com/new.png", ExternalID: "avatars/new"}
	updated, err := s.users.UpdateAccount(ctx, UpdateAccountInput{UserID: user.ID, Bio: &bio, Avatar: &avatar})
	require.NoError(t, err)
	assert.Equal(t, "films", updated.Bio)
	assert.Equal(t, avatar, updated.Avatar)
	assert.Equal(t, []string{"avatars/fay"}, s.store.Deleted())

	me, err := s.users.GetCurrentUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "films", me.Bio)
	assert.Equal(t, "fay@example.com", me.Email)
}

type capturingMailer struct {
	mu   sync.Mutex
	otps map[string]string
}

func (m *capturingMailer) SendPasswordReset(_ context.Context, to, otp string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.otps == nil {
		m.otps = map[string]string{}
	}
	m.otps[to] = otp
	return nil
}

func TestPasswordResetService_Flow(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	user, err := s.users.Register(ctx, registerInput("hana"))
	require.NoError(t, err)

	mail := &capturingMailer{}
	resets := repository.NewPasswordResetRepository(s.db)
	svc := NewPasswordResetService(repository.NewUserRepository(s.db), resets, mail, 5*time.Minute)

	require.NoError(t, svc.RequestReset(ctx, "nobody@example.com"))
	assert.Empty(t, mail.otps)
	assertCode(t, svc.RequestReset(ctx, "nope"), models.CodeValidation)

	require.NoError(t, svc.RequestReset(ctx, "HANA@example.com"))
	otp := mail.otps["hana@example.com"]
	require.Len(t, otp, 6)

	wrong := "000000"
	if otp == wrong {
		wrong = "111111"
	}
	assertCode(t, svc.ResetPassword(ctx, "hana@example.com", wrong, "brandnew"), models.CodeValidation)
	assertCode(t, svc.ResetPassword(ctx, "hana@example.com", "12ab", "brandnew"), models.CodeValidation)

	require.NoError(t, svc.ResetPassword(ctx, "hana@example.com", otp, "brandnew"))
	_, err = s.users.Authenticate(ctx, "hana", "brandnew")
	require.NoError(t, err)

	// Codes are single use.
	assertCode(t, svc.ResetPassword(ctx, "hana@example.com", otp, "again123"), models.CodeValidation)

	// A newer code supersedes the older one.
	require.NoError(t, svc.RequestReset(ctx, "hana@example.com"))
	first := mail.otps["hana@example.com"]
	require.NoError(t, svc.RequestReset(ctx, "hana@example.com"))
	second := mail.otps["hana@example.com"]
	assert.Equal(t, int64(1), s.count(t, &models.PasswordResetTicket{}, "user_id = ?", user.ID))
	if first != second {
		assertCode(t, svc.ResetPassword(ctx, "hana@example.com", first, "stale123"), models.CodeValidation)
	}
	require.NoError(t, svc.ResetPassword(ctx, "hana@example.com", second, "fresh123"))

	// A successful reset purges every remaining ticket for the user.
	require.NoError(t, resets.Create(ctx, &models.PasswordResetTicket{
		UserID: user.ID, OTP: "424242", ExpiresAt: time.Now().Add(time.Minute),
	}))
	require.NoError(t, svc.RequestReset(ctx, "hana@example.com"))
	require.NoError(t, resets.Create(ctx, &models.PasswordResetTicket{
		UserID: user.ID, OTP: "434343", ExpiresAt: time.Now().Add(time.Minute),
	}))
	require.NoError(t, svc.ResetPassword(ctx, "hana@example.com", mail.otps["hana@example.com"], "fresh456"))
	assert.Zero(t, s.count(t, &models.PasswordResetTicket{}, "user_id = ?", user.ID))
	assertCode(t, svc.ResetPassword(ctx, "hana@example.com", "434343", "sibling1"), models.CodeValidation)
	_, err = s.users.Authenticate(ctx, "hana", "fresh456")
	require.NoError(t, err)

	// Expired codes are rejected and swept by the janitor.
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	require.NoError(t, svc.RequestReset(ctx, "hana@example.com"))
	svc.now = time.Now
	assertCode(t, svc.ResetPassword(ctx, "hana@example.com", mail.otps["hana@example.com"], "brandnew2"), models.CodeValidation)

	janitorCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		svc.RunJanitor(janitorCtx, 10*time.Millisecond)
		close(done)
	}()
	require.Eventually(t, func() bool {
		return s.count(t, &models.PasswordResetTicket{}, "user_id = ?", user.ID) == 0
	}, time.Second, 10*time.Millisecond)
	cancel()
	<-done
}

func TestAccountService_DeleteAccountCascades(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, s.db, "alice")
	bob := testutil.CreateUser(t, s.db, "bob")

	aliceVideo := testutil.CreateVideo(t, s.db, alice.ID)
	bobVideo := testutil.CreateVideo(t, s.db, bob.ID)
	onAlice := testutil.CreateComment(t, s.db, aliceVideo.ID, bob.ID, "bob on alice")
	byAlice := testutil.CreateComment(t, s.db, bobVideo.ID, alice.ID, "alice on bob")
	testutil.Like(t, s.db, models.LikeTargetComment, byAlice.ID, bob.ID)
	testutil.Like(t, s.db, models.LikeTargetComment, onAlice.ID, alice.ID)
	testutil.Like(t, s.db, models.LikeTargetVideo, bobVideo.ID, alice.ID)
	testutil.Subscribe(t, s.db, alice.ID, bob.ID)
	testutil.Subscribe(t, s.db, bob.ID, alice.ID)

	tweet, err := s.tweets.CreateTweet(ctx, alice.ID, "bye")
	require.NoError(t, err)
	testutil.Like(t, s.db, models.LikeTargetTweet, tweet.ID, bob.ID)
	_, err = s.playlists.CreatePlaylist(ctx, alice.ID, "mine", "")
	require.NoError(t, err)
	_, err = s.videos.GetVideoDetail(ctx, bobVideo.ID, alice.ID)
	require.NoError(t, err)

	require.NoError(t, s.accounts.DeleteAccount(ctx, alice.ID))

	_, err = s.users.GetCurrentUser(ctx, alice.ID)
	assertCode(t, err, models.CodeNotFound)
	assert.Zero(t, s.count(t, &models.Video{}, "owner_id = ?", alice.ID))
	assert.Zero(t, s.count(t, &models.Comment{}, "owner_id = ? OR video_id = ?", alice.ID, aliceVideo.ID))
	assert.Zero(t, s.count(t, &models.Like{}, "liked_by_id = ?", alice.ID))
	assert.Zero(t, s.count(t, &models.Like{}, "target_kind = ? AND target_id = ?", models.LikeTargetComment, byAlice.ID))
	assert.Zero(t, s.count(t, &models.Like{}, "target_kind = ?", models.LikeTargetTweet))
	assert.Zero(t, s.count(t, &models.Tweet{}, "owner_id = ?", alice.ID))
	assert.Zero(t, s.count(t, &models.Playlist{}, "owner_id = ?", alice.ID))
	assert.Zero(t, s.count(t, &models.Subscription{}, "subscriber_id = ? OR channel_id = ?", alice.ID, alice.ID))
	assert.Zero(t, s.count(t, &models.WatchHistoryEntry{}, "user_id = ?", alice.ID))
	assert.Equal(t, int64(1), s.count(t, &models.Video{}, "owner_id = ?", bob.ID))
	assert.Contains(t, s.store.Deleted(), "avatars/alice")
	assert.Contains(t, s.store.Deleted(), aliceVideo.VideoFile.ExternalID)

	assertCode(t, s.accounts.DeleteAccount(ctx, alice.ID), models.CodeNotFound)
}

func TestChannelService_Dashboard(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, s.db, "studio")
	testutil.CreateVideo(t, s.db, owner.ID, testutil.WithViews(2))
	testutil.CreateVideo(t, s.db, owner.ID, testutil.WithViews(5), testutil.Unpublished())

	stats, err := s.channels.Stats(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalVideos)
	assert.Equal(t, int64(7), stats.TotalViews)

	videos, err := s.channels.DashboardVideos(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, videos, 2)

	about, err := s.channels.GetAbout(ctx, " Studio ")
	require.NoError(t, err)
	assert.Equal(t, int64(1), about.VideosCount)
	_, err = s.channels.GetAbout(ctx, "")
	assertCode(t, err, models.CodeValidation)
}
