package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"proofok-api/metrics"
	"proofok-api/models"
	"proofok-api/store"
)

// Notifier delivers a composed message and reports a non-fatal outcome.
type Notifier interface {
	Dispatch(ctx context.Context, msg models.MailMessage) DispatchResult
}

type DecisionInput struct {
	SubmissionID  string
	Decision      string
	Comment       string
	ReviewerName  string
	ReviewerEmail string
	OriginAddress string
	// ReviewLink is the share URL quoted in the notification.
	ReviewLink string
	// At is the decision time; zero means now.
	At time.Time
}

// DecisionOutcome is returned once the decision is durably recorded.
// Warning is advisory and never means the decision was lost.
type DecisionOutcome struct {
	Success  bool
	Warning  string
	Record   *models.Record
	Event    models.DecisionEvent
	Delivery DispatchResult
}

type DecisionService struct {
	store    store.RecordStore
	composer *NotificationComposer
	notifier Notifier
	now      func() time.Time
}

// NewDecisionService wires the workflow. A nil notifier disables
// notifications entirely.
func NewDecisionService(records store.RecordStore, composer *NotificationComposer, notifier Notifier) *DecisionService {
	if composer == nil {
		composer = NewNotificationComposer()
	}
	return &DecisionService{
		store:    records,
		composer: composer,
		notifier: notifier,
		now:      time.Now,
	}
}

// SubmitDecision records a reviewer decision and then notifies the sender.
//
// Validation happens before any mutation. Store failures are returned as
// *StoreError. Once the record is persisted the call succeeds; notification
// problems only populate Warning.
//
// Repeated decisions on the same id are accepted and appended; the latest
// one becomes the status. Concurrent submissions for one id are not
// serialized: each request reads then writes, and the last write wins.
func (s *DecisionService) SubmitDecision(ctx context.Context, in DecisionInput) (*DecisionOutcome, error) {
	id := strings.TrimSpace(in.SubmissionID)
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, &StoreError{Op: "load", ID: id, Err: err}
	}

	decision, ok := models.ParseDecision(in.Decision)
	if !ok {
		return nil, ErrInvalidDecision
	}
	comment := strings.TrimSpace(in.Comment)
	if decision == models.DecisionRejected && comment == "" {
		return nil, ErrCommentRequired
	}

	at := in.At
	if at.IsZero() {
		at = s.now()
	}
	event := models.DecisionEvent{
		Timestamp:     at.UTC(),
		Decision:      decision,
		Comment:       comment,
		ReviewerName:  strings.TrimSpace(in.ReviewerName),
		ReviewerEmail: strings.TrimSpace(in.ReviewerEmail),
		OriginAddress: strings.TrimSpace(in.OriginAddress),
	}

	if err := rec.AppendDecision(event); err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, rec); err != nil {
		return nil, &StoreError{Op: "save", ID: id, Err: err}
	}
	metrics.RecordDecision(string(decision))

	outcome := &DecisionOutcome{Success: true, Record: rec, Event: event}
	if s.notifier != nil {
		msg := s.composer.Compose(rec, event, in.ReviewLink)
		outcome.Delivery = s.notifier.Dispatch(ctx, msg)
		outcome.Warning = outcome.Delivery.Warning
	}
	return outcome, nil
}
