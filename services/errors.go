package services

import (
	"errors"
	"fmt"

	"proofok-api/models"
)

var (
	ErrRecordNotFound      = errors.New("proof link not found")
	ErrInvalidDecision     = models.ErrInvalidDecision
	ErrCommentRequired     = models.ErrCommentRequired
	ErrUnsupportedDocument = errors.New("only .pdf documents are accepted")
	ErrDocumentTooLarge    = errors.New("document exceeds the upload size limit")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrNotificationTimeout = errors.New("notification delivery did not finish in time")
	ErrPoolClosed          = errors.New("worker pool is closed")
)

// StoreError is an infrastructure failure reading or persisting a record.
// It always fails the request, unlike notification problems.
type StoreError struct {
	Op  string
	ID  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s record %s: %v", e.Op, e.ID, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NotificationFailure describes a failed outbound delivery.
type NotificationFailure struct {
	Endpoint string
	Err      error
}

func (e *NotificationFailure) Error() string {
	return fmt.Sprintf("Email send failed (%s): %v", e.Endpoint, e.Err)
}

func (e *NotificationFailure) Unwrap() error { return e.Err }
