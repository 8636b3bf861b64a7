package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"proofok-api/models"
	"proofok-api/store"
)

const testID = "0123456789abcdef0123456789abcdef"

// memStore is an in-memory RecordStore that copies on every read and write.
type memStore struct {
	mu      sync.Mutex
	records map[string]*models.Record
	getErr  error
	putErr  error
	puts    int
}

func newMemStore(recs ...*models.Record) *memStore {
	s := &memStore{records: map[string]*models.Record{}}
	for _, rec := range recs {
		s.records[rec.ID] = rec.Clone()
	}
	return s
}

func (s *memStore) Get(ctx context.Context, id string) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	rec, ok := s.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return rec.Clone(), nil
}

func (s *memStore) Put(ctx context.Context, rec *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.puts++
	s.records[rec.ID] = rec.Clone()
	return nil
}

func (s *memStore) snapshot(id string) *models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[id].Clone()
}

// stubSender counts calls and optionally blocks until release is closed.
type stubSender struct {
	calls   atomic.Int32
	err     error
	release chan struct{}
	started chan struct{}
	done    chan error
	onSend  func()
}

func (s *stubSender) Send(ctx context.Context, msg models.MailMessage) error {
	s.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.onSend != nil {
		s.onSend()
	}
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.release != nil {
		<-s.release
	}
	if s.done != nil {
		s.done <- s.err
	}
	return s.err
}

func (s *stubSender) Endpoint() string { return "smtp.test:587" }

func pendingRecord() *models.Record {
	return models.NewRecord(testID, "Spring Catalog.pdf", "Spring Catalog.pdf", time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
}
