package database

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"vidtube/internal/config"
	"vidtube/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), GormConfig())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestConfigurePool(t *testing.T) {
	db := openSQLite(t)
	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}

	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestEmbeddedMigrations(t *testing.T) {
	all := GetMigrations()
	require.NotEmpty(t, all)
	assert.Equal(t, 1, all[0].Version)
	assert.Equal(t, "init", all[0].Name)
	assert.Contains(t, all[0].UpScript, "CREATE TABLE IF NOT EXISTS likes")
	assert.Contains(t, all[0].UpScript, "idx_like_target_actor")
	assert.Contains(t, all[0].DownScript, "DROP TABLE IF EXISTS users")
	assert.NotNil(t, GetMigrationByVersion(1))
	assert.Nil(t, GetMigrationByVersion(999))
}

func TestLoadMigrations_Validation(t *testing.T) {
	good := fstest.MapFS{
		"m/000002_second.up.sql":   {Data: []byte("B")},
		"m/000002_second.down.sql": {Data: []byte("b")},
		"m/000001_first.up.sql":    {Data: []byte("A")},
		"m/000001_first.down.sql":  {Data: []byte("a")},
		"m/README.md":              {Data: []byte("ignored")},
	}
	loaded, err := LoadMigrations(good, "m")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "000001_first", loaded[0].String())
	assert.Equal(t, "b", loaded[1].DownScript)

	missingDown := fstest.MapFS{"m/000001_first.up.sql": {Data: []byte("A")}}
	_, err = LoadMigrations(missingDown, "m")
	assert.Error(t, err)

	badName := fstest.MapFS{
		"m/first.up.sql":   {Data: []byte("A")},
		"m/first.down.sql": {Data: []byte("a")},
	}
	_, err = LoadMigrations(badName, "m")
	assert.Error(t, err)
}

type fakeStore struct {
	applied []int
	ran     []int
}

func (f *fakeStore) AppliedVersions(context.Context) ([]int, error) { return f.applied, nil }

func (f *fakeStore) Apply(_ context.Context, m Migration) error {
	f.ran = append(f.ran, m.Version)
	f.applied = append(f.applied, m.Version)
	return nil
}

func (f *fakeStore) Revert(context.Context, Migration) error { return nil }

func TestRunMigrations_AppliesOnlyPending(t *testing.T) {
	registered := []Migration{{Version: 1, Name: "a"}, {Version: 2, Name: "b"}, {Version: 3, Name: "c"}}
	store := &fakeStore{applied: []int{1}}

	require.NoError(t, runMigrations(context.Background(), store, registered))
	assert.Equal(t, []int{2, 3}, store.ran)

	store.ran = nil
	require.NoError(t, runMigrations(context.Background(), store, registered))
	assert.Empty(t, store.ran)
}

func TestRunMigrations_RejectsUnknownVersions(t *testing.T) {
	store := &fakeStore{applied: []int{1, 7}}
	err := runMigrations(context.Background(), store, []Migration{{Version: 1, Name: "a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000007")
}

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		mode     string
		allow    bool
		wantSQL  bool
		wantAuto bool
		wantErr  bool
	}{
		{"hybrid dev", "development", "", false, true, true, false},
		{"hybrid prod", "production", "hybrid", false, true, false, false},
		{"sql", "development", "sql", false, true, false, false},
		{"auto dev", "development", "auto", false, false, true, false},
		{"auto prod refused", "production", "auto", false, false, false, true},
		{"auto prod allowed", "production", "auto", true, false, true, false},
		{"unknown", "development", "yolo", false, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Env: tt.env, DBSchemaMode: tt.mode, DBAutoMigrateAllowDestructive: tt.allow}
			runSQL, runAuto, err := schemaPolicy(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, runSQL)
			assert.Equal(t, tt.wantAuto, runAuto)
		})
	}
}

func TestApplySchema_AutoOnSQLite(t *testing.T) {
	db := openSQLite(t)
	cfg := &config.Config{Env: "test", DBSchemaMode: SchemaModeAuto}
	require.NoError(t, ApplySchema(context.Background(), db, cfg))

	for _, model := range PersistentModels() {
		assert.True(t, db.Migrator().HasTable(model))
	}

	status, err := GetSchemaStatus(context.Background(), db, cfg)
	require.NoError(t, err)
	assert.False(t, status.WillRunSQL)
	assert.True(t, status.WillRunAutoMigrate)
}

func TestIsUniqueViolation(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, db.AutoMigrate(&models.Subscription{}))
	require.NoError(t, db.Create(&models.Subscription{SubscriberID: 1, ChannelID: 2}).Error)
	err := db.Create(&models.Subscription{SubscriberID: 1, ChannelID: 2}).Error

	assert.True(t, IsUniqueViolation(err))
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("connection reset")))
	assert.False(t, IsUniqueViolation(nil))
}
