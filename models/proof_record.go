package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ProofRecordRow is the SQL shape of a Record: one row per submission with
// the full history serialized in Responses.
type ProofRecordRow struct {
	ID           string    `gorm:"primaryKey;column:id;size:64" json:"id"`
	OriginalName string    `gorm:"column:original_name;size:512" json:"original_name"`
	StoredName   string    `gorm:"column:stored_name;size:512" json:"stored_name"`
	CreatedAt    time.Time `gorm:"column:created_at;precision:3" json:"created_at"`
	Status       string    `gorm:"column:status;size:16" json:"status"`
	Responses    string    `gorm:"column:responses;type:longtext" json:"responses"`
}

// TableName overrides the table name used by ProofRecordRow.
func (ProofRecordRow) TableName() string {
	return "proof_records"
}

// NewProofRecordRow flattens rec. Status is written for ad-hoc SQL readers
// only; ToRecord never reads it back.
func NewProofRecordRow(rec *Record) (*ProofRecordRow, error) {
	responses := rec.Responses
	if responses == nil {
		responses = []DecisionEvent{}
	}
	raw, err := json.Marshal(responses)
	if err != nil {
		return nil, fmt.Errorf("encode responses for %s: %w", rec.ID, err)
	}
	return &ProofRecordRow{
		ID:           rec.ID,
		OriginalName: rec.OriginalName,
		StoredName:   rec.StoredName,
		CreatedAt:    rec.CreatedAt.UTC().Truncate(CreatedAtPrecision),
		Status:       string(rec.Status()),
		Responses:    string(raw),
	}, nil
}

// ToRecord rebuilds the domain record from a row.
func (row *ProofRecordRow) ToRecord() (*Record, error) {
	rec := &Record{
		ID:           row.ID,
		OriginalName: row.OriginalName,
		StoredName:   row.StoredName,
		CreatedAt:    row.CreatedAt.UTC(),
		Responses:    []DecisionEvent{},
	}
	if row.Responses != "" {
		if err := json.Unmarshal([]byte(row.Responses), &rec.Responses); err != nil {
			return nil, fmt.Errorf("decode responses for %s: %w", row.ID, err)
		}
		if rec.Responses == nil {
			rec.Responses = []DecisionEvent{}
		}
	}
	return rec, nil
}
