package database

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"vidtube/internal/middleware"

	"gorm.io/gorm"
)

// MigrationLog is a record of an applied migration.
type MigrationLog struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the database table name for MigrationLog.
func (MigrationLog) TableName() string {
	return "migration_logs"
}

// MigrationStore tracks applied versions.
type MigrationStore interface {
	AppliedVersions(ctx context.Context) ([]int, error)
	Apply(ctx context.Context, m Migration) error
	Revert(ctx context.Context, m Migration) error
}

type migrationStore struct {
	db *gorm.DB
}

// NewMigrationStore creates a new MigrationStore instance.
func NewMigrationStore(db *gorm.DB) MigrationStore {
	return &migrationStore{db: db}
}

func (s *migrationStore) ensureTable(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&MigrationLog{}); err != nil {
		return fmt.Errorf("failed to ensure migration_logs table: %w", err)
	}
	return nil
}

func (s *migrationStore) AppliedVersions(ctx context.Context) ([]int, error) {
	if err := s.ensureTable(ctx); err != nil {
		return nil, err
	}
	var versions []int
	if err := s.db.WithContext(ctx).Model(&MigrationLog{}).Order("version ASC").Pluck("version", &versions).Error; err != nil {
		return nil, fmt.Errorf("failed to list applied migrations: %w", err)
	}
	return versions, nil
}

// Apply runs the up script and records it in one transaction.
func (s *migrationStore) Apply(ctx context.Context, m Migration) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(m.UpScript).Error; err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m, err)
		}
		if err := tx.Create(&MigrationLog{Version: m.Version, Name: m.Name}).Error; err != nil {
			return fmt.Errorf("failed to record migration %s: %w", m, err)
		}
		return nil
	})
}

// Revert runs the down script and removes its record in one transaction.
func (s *migrationStore) Revert(ctx context.Context, m Migration) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(m.DownScript).Error; err != nil {
			return fmt.Errorf("failed to roll back migration %s: %w", m, err)
		}
		if err := tx.Where("version = ?", m.Version).Delete(&MigrationLog{}).Error; err != nil {
			return fmt.Errorf("failed to remove migration record %s: %w", m, err)
		}
		return nil
	})
}

// RunMigrations applies every pending embedded migration in order.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	return runMigrations(ctx, NewMigrationStore(db), migrations)
}

func runMigrations(ctx context.Context, store MigrationStore, registered []Migration) error {
	applied, err := store.AppliedVersions(ctx)
	if err != nil {
		return err
	}
	if err := validateAppliedVersions(applied, registered); err != nil {
		return err
	}

	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	for _, m := range registered {
		if done[m.Version] {
			continue
		}
		middleware.Logger.Info("Applying migration", slog.String("migration", m.String()))
		if err := store.Apply(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// validateAppliedVersions rejects a database that has seen migrations this
// binary does not know, which means it is older than the schema.
func validateAppliedVersions(applied []int, registered []Migration) error {
	known := make(map[int]bool, len(registered))
	for _, m := range registered {
		known[m.Version] = true
	}

	var unknown []int
	for _, v := range applied {
		if !known[v] {
			unknown = append(unknown, v)
		}
	}
	if len(unknown) == 0 {
		return nil
	}

	sort.Ints(unknown)
	labels := make([]string, len(unknown))
	for i, v := range unknown {
		labels[i] = fmt.Sprintf("%06d", v)
	}
	return fmt.Errorf("migration_logs contains versions unknown to this build: %s", strings.Join(labels, ", "))
}

// RollbackMigration reverts the most recently applied migration when it
// matches version.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	m := GetMigrationByVersion(version)
	if m == nil {
		return fmt.Errorf("migration version %d not found", version)
	}

	store := NewMigrationStore(db)
	applied, err := store.AppliedVersions(ctx)
	if err != nil {
		return err
	}
	if len(applied) == 0 || applied[len(applied)-1] != version {
		return fmt.Errorf("migration %d is not the latest applied migration", version)
	}

	middleware.Logger.Info("Rolling back migration", slog.String("migration", m.String()))
	return store.Revert(ctx, *m)
}
