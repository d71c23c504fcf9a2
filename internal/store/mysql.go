package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/user/tootube/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// SnapshotDocument is the single-row representation of a named snapshot in
// MySQL. The document is stored as one opaque JSON blob, never split into
// relational rows — the store contract is whole-document load/save.
type SnapshotDocument struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex;size:100;not null"`
	Doc       []byte `gorm:"type:longblob"`
	UpdatedAt time.Time
}

// TableName returns the table name for SnapshotDocument
func (SnapshotDocument) TableName() string {
	return "snapshot_documents"
}

// MySQLBackend implements DocumentBackend on a MySQL database, for
// deployments where the data file should not live on local disk.
type MySQLBackend struct {
	db   *gorm.DB
	name string
}

// NewMySQLBackend connects to MySQL and migrates the document table. name
// identifies this deployment's document within the table.
func NewMySQLBackend(cfg *config.DBConfig, name string) (*MySQLBackend, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(mysql.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxConns)
	sqlDB.SetMaxIdleConns(cfg.MaxConns / 2)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&SnapshotDocument{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &MySQLBackend{db: db, name: name}, nil
}

// Load reads the named document, or (nil, nil) if it has never been saved.
func (b *MySQLBackend) Load(ctx context.Context) ([]byte, error) {
	var doc SnapshotDocument
	result := b.db.WithContext(ctx).Where("name = ?", b.name).First(&doc)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load snapshot document: %w", result.Error)
	}
	return doc.Doc, nil
}

// Save upserts the named document in one statement.
func (b *MySQLBackend) Save(ctx context.Context, doc []byte) error {
	row := SnapshotDocument{Name: b.name, Doc: doc}
	result := b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"doc", "updated_at"}),
	}).Create(&row)
	if result.Error != nil {
		return fmt.Errorf("failed to save snapshot document: %w", result.Error)
	}
	return nil
}

// Ping checks database connectivity.
func (b *MySQLBackend) Ping(ctx context.Context) error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection.
func (b *MySQLBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying db: %w", err)
	}
	return sqlDB.Close()
}
