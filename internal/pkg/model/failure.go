package model

import (
	"fmt"
	"time"
)

// Failure is an append-only record of one relation record, or one
// whole-restore step, that could not be persisted. It never aborts the run.
type Failure struct {
	ProjectID int64 `json:"project_id"`
	// RelationKey is nil for a restore-level failure.
	RelationKey *string `json:"relation_key"`
	// RelationIndex is the zero-based position of the failed record
	// within its stream, nil for a restore-level failure.
	RelationIndex       *int           `json:"relation_index"`
	ExceptionClass      string         `json:"exception_class"`
	ExceptionMessage    string         `json:"exception_message"`
	CorrelationID       string         `json:"correlation_id"`
	ExternalIdentifiers map[string]any `json:"external_identifiers"`
	CreatedAt           time.Time      `json:"created_at"`
}

// NewRecordFailure creates a failure for one relation record.
func NewRecordFailure(projectID int64, record *Record, err error, correlationID string, externalIDs map[string]any, now time.Time) *Failure {
	relationKey := record.RelationKey
	relationIndex := record.RelationIndex
	return &Failure{
		ProjectID:           projectID,
		RelationKey:         &relationKey,
		RelationIndex:       &relationIndex,
		ExceptionClass:      fmt.Sprintf("%T", err),
		ExceptionMessage:    err.Error(),
		CorrelationID:       correlationID,
		ExternalIdentifiers: externalIDs,
		CreatedAt:           now,
	}
}

// NewRestoreFailure creates a restore-level failure, without a relation.
func NewRestoreFailure(projectID int64, err error, correlationID string, now time.Time) *Failure {
	return &Failure{
		ProjectID:           projectID,
		ExceptionClass:      fmt.Sprintf("%T", err),
		ExceptionMessage:    err.Error(),
		CorrelationID:       correlationID,
		ExternalIdentifiers: map[string]any{},
		CreatedAt:           now,
	}
}
