// Package storage persists registered commitments with gorm.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/cronokirby/saferith"
	"github.com/glebarez/sqlite"
	"github.com/taurusgroup/zkauth/pkg/auth"
	"github.com/taurusgroup/zkauth/pkg/session"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const (
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"
)

// Registration is the row stored for each identity.
type Registration struct {
	Identity     string `gorm:"primaryKey"`
	Y1           []byte `gorm:"not null"`
	Y2           []byte `gorm:"not null"`
	RegisteredAt time.Time
	UpdatedAt    time.Time
}

// Repository implements auth.Repository on a gorm database.
type Repository struct {
	db *gorm.DB
}

var _ auth.Repository = (*Repository)(nil)

// Open connects to the database and migrates the schema.
// driver is one of "sqlite" or "postgres"; dsn is a file path (or ":memory:") for
// sqlite and a connection string for postgres.
func Open(driver, dsn string) (*Repository, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSqlite, "":
		if dsn == "" {
			return nil, fmt.Errorf("'dsn' is required")
		}
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect %s database: %w", driver, err)
	}
	if err := db.AutoMigrate(&Registration{}); err != nil {
		return nil, fmt.Errorf("failed to migrate %s database: %w", driver, err)
	}
	return &Repository{db: db}, nil
}

// Save implements auth.Repository. A second registration for the same identity
// replaces the first.
func (r *Repository) Save(ctx context.Context, u session.User) error {
	row := Registration{
		Identity:     u.Identity,
		Y1:           bytesOf(u.Y1),
		Y2:           bytesOf(u.Y2),
		RegisteredAt: u.RegisteredAt,
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "identity"}},
		DoUpdates: clause.AssignmentColumns([]string{"y1", "y2", "registered_at", "updated_at"}),
	}).Create(&row)
	if result.Error != nil {
		return fmt.Errorf("saving %q: %w", u.Identity, result.Error)
	}
	return nil
}

// Load implements auth.Repository.
func (r *Repository) Load(ctx context.Context) ([]session.User, error) {
	var rows []Registration
	if err := r.db.WithContext(ctx).Order("identity").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("loading registrations: %w", err)
	}
	users := make([]session.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, session.User{
			Identity:     row.Identity,
			Y1:           new(saferith.Nat).SetBytes(row.Y1),
			Y2:           new(saferith.Nat).SetBytes(row.Y2),
			RegisteredAt: row.RegisteredAt,
		})
	}
	return users, nil
}

// Close closes the database.
func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

// bytesOf encodes a commitment. Commitments the verifier could not decode are
// stored empty, and load back as zero, which never verifies.
func bytesOf(x *saferith.Nat) []byte {
	if x == nil {
		return []byte{}
	}
	return x.Big().Bytes()
}
