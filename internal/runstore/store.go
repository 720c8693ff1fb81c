package runstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/stencil-engine/pkg/config"
	apperrors "github.com/stencil-engine/pkg/errors"
	"github.com/stencil-engine/pkg/telemetry"
)

// Store reads and writes benchmark run records.
type Store struct {
	db *gorm.DB
}

// Open connects to the configured database, migrates the schema and
// returns a Store. SQLite is the default backend; postgres and mysql
// are selected by type.
func Open(cfg *config.DatabaseConfig) (*Store, error) {
	db, err := newGormDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&RunRecord{}); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDatabaseError, "migrate schema", err)
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing gorm handle; used by tests.
func NewWithDB(db *gorm.DB) *Store {
	return &Store{db: db}
}

func newGormDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Type {
	case "", "sqlite":
		path := cfg.Path
		if path == "" {
			path = "stencil-runs.db"
		}
		dialector = sqlite.Open(path)
	case "postgres", "postgresql":
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database,
		)
		dialector = postgres.Open(dsn)
	case "mysql":
		dsn := fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?parseTime=true&loc=Local",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
		)
		dialector = mysql.Open(dsn)
	default:
		return nil, apperrors.Newf(apperrors.CodeConfigError, "unsupported database type: %s", cfg.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDatabaseError, "open database", err)
	}

	if telemetry.Enabled() {
		if err := db.Use(tracing.NewPlugin()); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeDatabaseError, "enable tracing", err)
		}
	}

	if sqlDB, err := db.DB(); err == nil {
		maxConns := cfg.MaxConns
		if maxConns <= 0 {
			maxConns = 4
		}
		sqlDB.SetMaxOpenConns(maxConns)
	}
	return db, nil
}

// Save persists one run record.
func (s *Store) Save(ctx context.Context, rec *RunRecord) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return apperrors.Wrap(apperrors.CodeDatabaseError, "save run record", err)
	}
	return nil
}

// Recent returns the latest runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var recs []RunRecord
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDatabaseError, "list run records", err)
	}
	return recs, nil
}

// Best returns the highest-throughput run for a stencil, or nil when
// none was recorded.
func (s *Store) Best(ctx context.Context, stencil string) (*RunRecord, error) {
	var rec RunRecord
	err := s.db.WithContext(ctx).
		Where("stencil = ?", stencil).
		Order("points_per_sec DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDatabaseError, "query best run", err)
	}
	return &rec, nil
}
