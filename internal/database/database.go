package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"quickflip/server/internal/models"
)

const memoryPath = ":memory:"

// Database is the SQLite-backed Store. Each collection is a table of the
// same name.
type Database struct {
	db  *gorm.DB
	now func() time.Time
}

var collectionModels = map[string]interface{}{
	BuyerCollection:    &models.Buyer{},
	PropertyCollection: &models.Property{},
	DealCollection:     &models.Deal{},
}

func NewDatabase(dbPath string) (*Database, error) {
	if dbPath != memoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if dbPath == memoryPath {
		// Every new connection would open a separate empty in-memory database.
		sqlDB.SetMaxOpenConns(1)
	}

	// Enable foreign keys
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, err
	}

	return &Database{db: db, now: time.Now}, nil
}

// NewTestDB opens a migrated in-memory database.
func NewTestDB() (*Database, error) {
	d, err := NewDatabase(memoryPath)
	if err != nil {
		return nil, err
	}
	if err := d.RunMigrations(context.Background()); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func (d *Database) RunMigrations(ctx context.Context) error {
	for name, model := range collectionModels {
		if err := d.db.WithContext(ctx).Table(name).AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", name, err)
		}
	}
	return nil
}

func (d *Database) Store(ctx context.Context, collection string, rec Record) (string, error) {
	id := uuid.NewString()
	rec.Stamp(id, d.now().UTC())

	if err := d.db.WithContext(ctx).Table(collection).Create(rec).Error; err != nil {
		return "", fmt.Errorf("failed to insert into %s: %w", collection, err)
	}
	return id, nil
}

func (d *Database) Fetch(ctx context.Context, collection string, filter Filter, limit int, out interface{}) error {
	query := d.db.WithContext(ctx).Table(collection)
	if len(filter) > 0 {
		query = query.Where(map[string]interface{}(filter))
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	// Insertion order, so ties in downstream sorting stay deterministic
	if err := query.Order("rowid").Find(out).Error; err != nil {
		return fmt.Errorf("failed to query %s: %w", collection, err)
	}
	return nil
}

func (d *Database) Get(ctx context.Context, collection, id string, out interface{}) error {
	err := d.db.WithContext(ctx).Table(collection).Where("id = ?", id).Take(out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load %s %s: %w", collection, id, err)
	}
	return nil
}

func (d *Database) Replace(ctx context.Context, collection, id string, rec Record) error {
	rec.Touch(d.now().UTC())

	result := d.db.WithContext(ctx).Table(collection).Where("id = ?", id).Select("*").Updates(rec)
	if result.Error != nil {
		return fmt.Errorf("failed to update %s %s: %w", collection, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB exposes the underlying gorm handle.
func (d *Database) GetDB() *gorm.DB {
	return d.db
}
