package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"devconnector/internal/middleware"

	"gorm.io/gorm"
)

// AppliedMigration is a row of the schema_migrations bookkeeping table.
type AppliedMigration struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	Checksum  string    `gorm:"size:64;not null"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

func (AppliedMigration) TableName() string {
	return "schema_migrations"
}

// Migrator applies SQL migrations. Each migration runs in its own
// transaction together with its bookkeeping row.
type Migrator struct {
	db         *gorm.DB
	migrations []Migration
}

func NewMigrator(db *gorm.DB, migrations []Migration) *Migrator {
	return &Migrator{db: db, migrations: migrations}
}

// Applied lists recorded migrations, oldest first.
func (m *Migrator) Applied(ctx context.Context) ([]AppliedMigration, error) {
	if err := m.db.WithContext(ctx).AutoMigrate(&AppliedMigration{}); err != nil {
		return nil, fmt.Errorf("prepare schema_migrations: %w", err)
	}
	var rows []AppliedMigration
	if err := m.db.WithContext(ctx).Order("version ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	return rows, nil
}

// Pending lists migrations not applied yet. It fails when the database holds
// versions this binary does not know or applied scripts were edited.
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkApplied(applied, m.migrations); err != nil {
		return nil, err
	}

	done := make(map[int]bool, len(applied))
	for _, a := range applied {
		done[a.Version] = true
	}
	var pending []Migration
	for _, mig := range m.migrations {
		if !done[mig.Version] {
			pending = append(pending, mig)
		}
	}
	return pending, nil
}

// Up applies every pending migration in version order and returns how many
// ran.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	pending, err := m.Pending(ctx)
	if err != nil {
		return 0, err
	}

	for i, mig := range pending {
		middleware.Logger.Info("Applying migration", slog.String("migration", mig.String()))
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(mig.Up).Error; err != nil {
				return err
			}
			return tx.Create(&AppliedMigration{Version: mig.Version, Name: mig.Name, Checksum: mig.Checksum()}).Error
		})
		if err != nil {
			return i, fmt.Errorf("apply migration %s: %w", mig, err)
		}
	}
	return len(pending), nil
}

// Down rolls back version, or the newest applied migration when version is 0.
func (m *Migrator) Down(ctx context.Context, version int) (*Migration, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	if len(applied) == 0 {
		return nil, errors.New("no migrations have been applied")
	}
	if version == 0 {
		version = applied[len(applied)-1].Version
	}

	var target *Migration
	for i := range m.migrations {
		if m.migrations[i].Version == version {
			target = &m.migrations[i]
		}
	}
	if target == nil {
		return nil, fmt.Errorf("migration version %d not found", version)
	}
	found := false
	for _, a := range applied {
		found = found || a.Version == version
	}
	if !found {
		return nil, fmt.Errorf("migration %s has not been applied", target)
	}

	middleware.Logger.Info("Rolling back migration", slog.String("migration", target.String()))
	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(target.Down).Error; err != nil {
			return err
		}
		return tx.Delete(&AppliedMigration{}, version).Error
	})
	if err != nil {
		return nil, fmt.Errorf("roll back migration %s: %w", target, err)
	}
	return target, nil
}

func checkApplied(applied []AppliedMigration, known []Migration) error {
	byVersion := make(map[int]Migration, len(known))
	for _, m := range known {
		byVersion[m.Version] = m
	}

	var unknown []int
	for _, a := range applied {
		m, ok := byVersion[a.Version]
		if !ok {
			unknown = append(unknown, a.Version)
			continue
		}
		if a.Checksum != "" && a.Checksum != m.Checksum() {
			return fmt.Errorf("migration %s was edited after it was applied", m)
		}
	}
	if len(unknown) == 0 {
		return nil
	}

	sort.Ints(unknown)
	parts := make([]string, 0, len(unknown))
	for _, v := range unknown {
		parts = append(parts, fmt.Sprintf("%06d", v))
	}
	return fmt.Errorf("schema_migrations has versions this build does not know: %s", strings.Join(parts, ", "))
}

// RunMigrations applies the embedded migrations.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	all, err := Migrations()
	if err != nil {
		return err
	}
	n, err := NewMigrator(db, all).Up(ctx)
	if n > 0 {
		middleware.Logger.Info("Migrations applied", slog.Int("count", n))
	}
	return err
}
