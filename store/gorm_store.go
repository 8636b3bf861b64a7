package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"proofok-api/models"
)

// GormStore keeps records in the proof_records table.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps db. Each Put is a single upsert statement, so the
// implicit per-write transaction is skipped.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db.Session(&gorm.Session{SkipDefaultTransaction: true})}
}

// Migrate creates or updates the proof_records table.
func (s *GormStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&models.ProofRecordRow{}); err != nil {
		return fmt.Errorf("migrate proof_records: %w", err)
	}
	return nil
}

// Get loads the record for id.
func (s *GormStore) Get(ctx context.Context, id string) (*models.Record, error) {
	if !ValidID(id) {
		return nil, ErrNotFound
	}

	var row models.ProofRecordRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load record %s: %w", id, err)
	}
	return row.ToRecord()
}

// Put upserts the whole record.
func (s *GormStore) Put(ctx context.Context, rec *models.Record) error {
	if err := checkPut(ctx, rec); err != nil {
		return err
	}
	row, err := models.NewProofRecordRow(rec)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(row).Error
	if err != nil {
		return fmt.Errorf("save record %s: %w", rec.ID, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
