package services

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"proofok-api/metrics"
	"proofok-api/models"
	"proofok-api/store"
	"proofok-api/utils"
)

// NewSubmissionID returns 32 lowercase hex characters from a random UUID.
// The id is the only capability guarding a proof link.
func NewSubmissionID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

// SubmissionService owns uploaded documents and their initial records.
type SubmissionService struct {
	store     store.RecordStore
	uploadDir string
	maxBytes  int64
	newID     func() string
	now       func() time.Time
}

// NewSubmissionService prepares uploadDir. maxBytes <= 0 disables the size cap.
func NewSubmissionService(records store.RecordStore, uploadDir string, maxBytes int64) (*SubmissionService, error) {
	if uploadDir == "" {
		return nil, errors.New("upload directory is required")
	}
	if err := os.MkdirAll(uploadDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &SubmissionService{
		store:     records,
		uploadDir: uploadDir,
		maxBytes:  maxBytes,
		newID:     NewSubmissionID,
		now:       time.Now,
	}, nil
}

// CreateSubmission stores body under a fresh id and writes a pending record.
func (s *SubmissionService) CreateSubmission(ctx context.Context, originalName string, body io.Reader) (*models.Record, error) {
	name := utils.SanitizeInput(originalName)
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return nil, ErrUnsupportedDocument
	}
	storedName := utils.SafeFilename(name)

	id := s.newID()
	dir := filepath.Join(s.uploadDir, id)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("create submission directory: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	if err := s.writeDocument(filepath.Join(dir, storedName), body); err != nil {
		cleanup()
		return nil, err
	}

	rec := models.NewRecord(id, name, storedName, s.now())
	if err := s.store.Put(ctx, rec); err != nil {
		cleanup()
		return nil, &StoreError{Op: "save", ID: id, Err: err}
	}
	metrics.RecordSubmission()
	return rec, nil
}

func (s *SubmissionService) writeDocument(path string, body io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	src := body
	if s.maxBytes > 0 {
		src = io.LimitReader(body, s.maxBytes+1)
	}
	written, err := io.Copy(f, src)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	if s.maxBytes > 0 && written > s.maxBytes {
		return ErrDocumentTooLarge
	}
	return nil
}

// Lookup resolves id to its record for the review page.
func (s *SubmissionService) Lookup(ctx context.Context, id string) (*models.Record, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, &StoreError{Op: "load", ID: id, Err: err}
	}
	return rec, nil
}

// DocumentPath resolves a file inside the submission directory of id.
// It returns ErrRecordNotFound when the directory is missing and
// ErrDocumentNotFound when the file is.
func (s *SubmissionService) DocumentPath(id, filename string) (string, error) {
	if !store.ValidID(id) {
		return "", ErrRecordNotFound
	}
	dir := filepath.Join(s.uploadDir, id)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return "", ErrRecordNotFound
	}

	name := strings.TrimPrefix(filename, "/")
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return "", ErrDocumentNotFound
	}
	path := filepath.Join(dir, name)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return "", ErrDocumentNotFound
	}
	return path, nil
}

// DocumentContentType guesses the content type from the file extension.
func DocumentContentType(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
