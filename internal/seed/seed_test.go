package seed

import (
	"testing"

	"vidtube/internal/models"
	"vidtube/internal/testutil"
	"vidtube/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

func TestSeed_BuildsConnectedChannels(t *testing.T) {
	db := testutil.NewTestDB(t)

	sum, err := Seed(db, Options{NumUsers: 6, VideosPerUser: 2, Factory: SeedOptions{FastHash: true}})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if sum.Users != 6 || sum.Videos != 12 {
		t.Fatalf("unexpected summary: %+v", sum)
	}

	for _, name := range DemoUsernames {
		var u models.User
		if err := db.Where("username = ?", name).First(&u).Error; err != nil {
			t.Fatalf("demo user %s missing: %v", name, err)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(DefaultPassword)); err != nil {
			t.Fatalf("demo user %s cannot log in with the default password", name)
		}
	}

	var selfSubs int64
	if err := db.Model(&models.Subscription{}).Where("subscriber_id = channel_id").Count(&selfSubs).Error; err != nil {
		t.Fatalf("count subscriptions: %v", err)
	}
	if selfSubs != 0 {
		t.Fatalf("expected no self subscriptions, got %d", selfSubs)
	}

	var subs int64
	if err := db.Model(&models.Subscription{}).Count(&subs).Error; err != nil {
		t.Fatalf("count subscriptions: %v", err)
	}
	if subs != int64(sum.Subscriptions) || subs != 18 {
		t.Fatalf("expected 18 subscriptions, got %d (summary %d)", subs, sum.Subscriptions)
	}

	var likes int64
	if err := db.Model(&models.Like{}).Count(&likes).Error; err != nil {
		t.Fatalf("count likes: %v", err)
	}
	if likes != int64(sum.Likes) {
		t.Fatalf("expected %d likes, got %d", sum.Likes, likes)
	}
}

func TestSeed_CleanReplacesData(t *testing.T) {
	db := testutil.NewTestDB(t)
	opts := Options{NumUsers: 3, VideosPerUser: 1, Factory: SeedOptions{FastHash: true}}

	if _, err := Seed(db, opts); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	opts.ShouldClean = true
	if _, err := Seed(db, opts); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	var users int64
	if err := db.Model(&models.User{}).Count(&users).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if users != 3 {
		t.Fatalf("expected 3 users after clean reseed, got %d", users)
	}
}

func TestFactory_DryRunWritesNothing(t *testing.T) {
	db := testutil.NewTestDB(t)
	f := NewFactory(db, SeedOptions{DryRun: true, FastHash: true})

	u, err := f.CreateUser()
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	v, err := f.CreateVideo(u)
	if err != nil {
		t.Fatalf("create video: %v", err)
	}
	if u.ID == 0 || v.ID == 0 || v.OwnerID != u.ID {
		t.Fatalf("expected synthetic ids, got user=%d video=%d owner=%d", u.ID, v.ID, v.OwnerID)
	}

	var n int64
	if err := db.Model(&models.User{}).Count(&n).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if n != 0 {
		t.Fatalf("dry run wrote %d users", n)
	}
}

func TestFactory_UsersPassValidation(t *testing.T) {
	f := NewFactory(nil, SeedOptions{DryRun: true, FastHash: true})
	for i := 0; i < 25; i++ {
		u, err := f.BuildUser()
		if err != nil {
			t.Fatalf("build user: %v", err)
		}
		if err := validation.ValidateUsername(u.Username); err != nil {
			t.Fatalf("generated username %q: %v", u.Username, err)
		}
		if err := validation.ValidateEmail(u.Email); err != nil {
			t.Fatalf("generated email %q: %v", u.Email, err)
		}
		if u.Avatar.URL == "" || u.Avatar.ExternalID == "" {
			t.Fatalf("generated user has no avatar: %+v", u.Avatar)
		}
	}
}
