package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/coachme/dsview/internal/dataset"
	"github.com/coachme/dsview/internal/model"
	"github.com/coachme/dsview/internal/model/convert"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNoSamples is returned when a database has no samples table.
var ErrNoSamples = errors.New("database has no samples table")

// Manager handles database connections and operations.
type Manager struct {
	DB     *gorm.DB
	SqlDB  *sql.DB
	Logger *slog.Logger
}

// NewManager creates a new database manager.
func NewManager(log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{Logger: log}
}

// PostgresDSN builds a key/value connection string from individual settings.
func PostgresDSN(host, port, user, password, dbname string) string {
	return fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		host, port, user, password, dbname)
}

// IsPostgresDSN reports whether s is a postgres URL.
func IsPostgresDSN(s string) bool {
	return strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://")
}

// OpenPostgres connects to a Postgres database.
func (m *Manager) OpenPostgres(dsn string) error {
	m.Logger.Debug("Connecting to Postgres DB")

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        10000,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}
	return m.attach(db)
}

// OpenSQLite opens a SQLite database file.
// If path is empty, uses an in-memory database.
func (m *Manager) OpenSQLite(path string) error {
	dsn := "file::memory:?cache=shared"
	if path != "" {
		dsn = path
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		CreateBatchSize:        2000,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}

	// connection-local PRAGMAS only, reading must not modify the file
	pragmas := []string{
		"PRAGMA cache_size = -32000;",
		"PRAGMA temp_store = MEMORY;",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return fmt.Errorf("error setting PRAGMA: %w", err)
		}
	}

	if path != "" {
		m.Logger.Info("Using local SQLite DB", "path", path)
	}
	return m.attach(db)
}

func (m *Manager) attach(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return fmt.Errorf("failed to validate connection: %w", err)
	}
	m.DB = db
	m.SqlDB = sqlDB
	return nil
}

// Setup migrates the archive schema.
func (m *Manager) Setup() error {
	if m.DB.Dialector.Name() == "sqlite" {
		pragmas := []string{
			"PRAGMA user_version = 1;",
			"PRAGMA journal_mode = MEMORY;",
			"PRAGMA synchronous = OFF;",
		}
		for _, pragma := range pragmas {
			if err := m.DB.Exec(pragma).Error; err != nil {
				return fmt.Errorf("error setting PRAGMA: %w", err)
			}
		}
	}

	m.Logger.Debug("Migrating schema")
	if err := m.DB.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (m *Manager) Close() error {
	if m.SqlDB == nil {
		return nil
	}
	err := m.SqlDB.Close()
	m.DB = nil
	m.SqlDB = nil
	return err
}

// SaveDataset writes every record of ds, replacing any samples already stored.
func (m *Manager) SaveDataset(ctx context.Context, ds *dataset.Dataset) error {
	start := time.Now()

	samples := make([]model.Sample, 0, ds.Len())
	for i, rec := range ds.Records {
		s, err := convert.RecordToSample(rec, i)
		if err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		samples = append(samples, s)
	}

	err := m.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.SampleTensor{}).Error; err != nil {
			return err
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Sample{}).Error; err != nil {
			return err
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(&model.ArchiveInfo{}).Error; err != nil {
			return err
		}
		if len(samples) > 0 {
			if err := tx.CreateInBatches(&samples, 500).Error; err != nil {
				return err
			}
		}
		return tx.Create(&model.ArchiveInfo{
			Name:        archiveName(ds.Source),
			SourcePath:  ds.Source,
			SourceType:  ds.Format,
			SampleCount: len(samples),
		}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save dataset: %w", err)
	}

	m.Logger.Debug("Saved dataset", "samples", len(samples), "duration", time.Since(start))
	return nil
}

// LoadDataset reads all samples in position order.
func (m *Manager) LoadDataset(ctx context.Context) ([]*dataset.Record, error) {
	if !m.DB.Migrator().HasTable(&model.Sample{}) {
		return nil, ErrNoSamples
	}

	var samples []model.Sample
	err := m.DB.WithContext(ctx).
		Preload("Tensors", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("position").Order("id").
		Find(&samples).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read samples: %w", err)
	}

	records := make([]*dataset.Record, 0, len(samples))
	for _, s := range samples {
		rec, err := convert.SampleToRecord(s)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// ArchiveInfo returns the stored archive description, if any.
func (m *Manager) ArchiveInfo(ctx context.Context) (*model.ArchiveInfo, error) {
	if !m.DB.Migrator().HasTable(&model.ArchiveInfo{}) {
		return nil, nil
	}
	var info model.ArchiveInfo
	err := m.DB.WithContext(ctx).Order("id desc").Limit(1).Find(&info).Error
	if err != nil {
		return nil, err
	}
	if info.ID == 0 {
		return nil, nil
	}
	return &info, nil
}

func archiveName(source string) string {
	if source == "" || IsPostgresDSN(source) {
		return ""
	}
	base := filepath.Base(source)
	for ext := filepath.Ext(base); ext != ""; ext = filepath.Ext(base) {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}
