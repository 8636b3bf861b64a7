// Package store persists submission records, one whole record per id.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"proofok-api/config"
	"proofok-api/models"
)

// ErrNotFound means no record exists for the id. Any other error from a
// store is an infrastructure failure.
var ErrNotFound = errors.New("record not found")

var idPattern = regexp.MustCompile(`^[0-9a-f]{12,32}$`)

// ValidID reports whether id has the shape of a submission id. Legacy
// 12-character tokens are accepted alongside full 32-character ids.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// RecordStore reads and writes whole records. Put is atomic: a reader sees
// either the previous record or the new one, never a partial write.
type RecordStore interface {
	Get(ctx context.Context, id string) (*models.Record, error)
	Put(ctx context.Context, rec *models.Record) error
}

// Backend is a RecordStore owning resources that must be released.
type Backend interface {
	RecordStore
	Close() error
}

// Open builds the backend selected by STORE_DRIVER.
func Open(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.Store.Driver {
	case "", "file":
		return NewFileStore(cfg.DataDir)
	case "sqlite":
		return OpenSQLite(ctx, cfg.Store.SQLitePath)
	case "mysql":
		db, err := config.OpenDB(cfg.Store, cfg.IsProduction())
		if err != nil {
			return nil, err
		}
		gs := NewGormStore(db)
		if err := gs.Migrate(ctx); err != nil {
			_ = gs.Close()
			return nil, err
		}
		return gs, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

func checkPut(ctx context.Context, rec *models.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec == nil {
		return errors.New("record is required")
	}
	if !ValidID(rec.ID) {
		return fmt.Errorf("invalid record id %q", rec.ID)
	}
	return nil
}
