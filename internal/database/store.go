package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"quickflip/server/config"
)

// Collection names shared by every backend.
const (
	BuyerCollection    = "buyer"
	PropertyCollection = "property"
	DealCollection     = "deal"
)

var ErrNotFound = errors.New("record not found")

// Filter selects records by exact field equality. Keys are stored field names.
// An empty filter matches everything.
type Filter map[string]interface{}

// Record is anything the gateway can persist. The gateway owns identity and
// timestamps.
type Record interface {
	Stamp(id string, now time.Time)
	Touch(now time.Time)
}

// Store is the persistence gateway the deal engine talks to.
type Store interface {
	// Store inserts rec into collection and returns its new identifier.
	Store(ctx context.Context, collection string, rec Record) (string, error)
	// Fetch decodes at most limit matching records into out, a pointer to a slice.
	Fetch(ctx context.Context, collection string, filter Filter, limit int, out interface{}) error
	// Get decodes the record with the given id into out, or returns ErrNotFound.
	Get(ctx context.Context, collection, id string, out interface{}) error
	// Replace overwrites the stored record with rec, or returns ErrNotFound.
	Replace(ctx context.Context, collection, id string, rec Record) error
	RunMigrations(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Open connects the backend selected in cfg.
func Open(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (Store, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		logger.Infof("Using SQLite database at: %s", cfg.Database.Path)
		return NewDatabase(cfg.Database.Path)
	case config.DriverMongo:
		logger.WithField("database", cfg.Database.Name).Info("Connecting to MongoDB")
		ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Database.ConnectTimeout)*time.Second)
		defer cancel()
		return NewMongoStore(ctx, cfg.Database.URL, cfg.Database.Name)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}
