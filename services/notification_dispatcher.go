package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"proofok-api/metrics"
	"proofok-api/models"
)

// DeliveryMode selects how notifications reach the outbound channel.
type DeliveryMode string

const (
	DeliveryDisabled     DeliveryMode = "disabled"
	DeliverySynchronous  DeliveryMode = "synchronous"
	DeliveryBoundedAsync DeliveryMode = "bounded-async"
)

// ParseDeliveryMode accepts the canonical names and the short EMAIL_MODE
// aliases off, sync and async.
func ParseDeliveryMode(raw string) (DeliveryMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "async", string(DeliveryBoundedAsync):
		return DeliveryBoundedAsync, nil
	case "sync", string(DeliverySynchronous):
		return DeliverySynchronous, nil
	case "off", string(DeliveryDisabled):
		return DeliveryDisabled, nil
	}
	return "", fmt.Errorf("unknown delivery mode %q (want off, sync or async)", raw)
}

// DeliveryOutcome is what the caller learned about a dispatch.
type DeliveryOutcome string

const (
	OutcomeSkipped      DeliveryOutcome = "skipped"
	OutcomeDelivered    DeliveryOutcome = "delivered"
	OutcomeFailed       DeliveryOutcome = "failed"
	OutcomeBackgrounded DeliveryOutcome = "backgrounded"
)

// DispatchResult never carries a fatal error: Err explains Warning and is
// one of ErrNotificationTimeout or *NotificationFailure.
type DispatchResult struct {
	Outcome DeliveryOutcome
	Warning string
	Err     error
}

// MailSender is the outbound channel.
type MailSender interface {
	Send(ctx context.Context, msg models.MailMessage) error
	Endpoint() string
}

// NotificationDispatcher delivers composed messages under a DeliveryMode.
type NotificationDispatcher struct {
	mode    DeliveryMode
	sender  MailSender
	pool    *WorkerPool
	timeout time.Duration
}

// NewNotificationDispatcher validates the collaborators the mode needs.
// The pool is only used in bounded-async mode and is shared process-wide.
func NewNotificationDispatcher(mode DeliveryMode, sender MailSender, pool *WorkerPool, timeout time.Duration) (*NotificationDispatcher, error) {
	switch mode {
	case DeliveryDisabled:
	case DeliverySynchronous:
		if sender == nil {
			return nil, errors.New("synchronous delivery requires a mail sender")
		}
	case DeliveryBoundedAsync:
		if sender == nil || pool == nil {
			return nil, errors.New("bounded-async delivery requires a mail sender and a worker pool")
		}
		if timeout <= 0 {
			return nil, errors.New("bounded-async delivery requires a positive timeout")
		}
	default:
		return nil, fmt.Errorf("unknown delivery mode %q", mode)
	}
	return &NotificationDispatcher{mode: mode, sender: sender, pool: pool, timeout: timeout}, nil
}

// Mode returns the configured delivery mode.
func (d *NotificationDispatcher) Mode() DeliveryMode {
	return d.mode
}

// Dispatch delivers msg according to the mode and reports the outcome.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, msg models.MailMessage) DispatchResult {
	var res DispatchResult
	switch d.mode {
	case DeliverySynchronous:
		res = d.failureOr(d.send(detachedContext(ctx), msg))
	case DeliveryBoundedAsync:
		res = d.dispatchBounded(ctx, msg)
	default:
		res = DispatchResult{Outcome: OutcomeSkipped}
	}
	metrics.RecordNotification(string(d.mode), string(res.Outcome))
	return res
}

// dispatchBounded hands the send to the pool and waits at most d.timeout.
// Two completion paths exist: the result arrives before the deadline and is
// reported, or the deadline wins and the task keeps running detached, its
// result only logged. Only the deadline bounds the wait; a caller that goes
// away does not stop the enqueue or the send.
func (d *NotificationDispatcher) dispatchBounded(ctx context.Context, msg models.MailMessage) DispatchResult {
	sendCtx := detachedContext(ctx)
	waitCtx, cancel := context.WithTimeout(sendCtx, d.timeout)
	defer cancel()

	done := make(chan error, 1)
	task := func() {
		err := d.send(sendCtx, msg)
		if err != nil {
			log.Printf("notification email send failed (subject=%q endpoint=%s): %v", msg.Subject, d.sender.Endpoint(), err)
		}
		done <- err
	}

	if err := d.pool.Submit(waitCtx, task); err != nil {
		return d.failureOr(fmt.Errorf("notification queue unavailable: %w", err))
	}

	select {
	case err := <-done:
		return d.failureOr(err)
	case <-waitCtx.Done():
		return DispatchResult{
			Outcome: OutcomeBackgrounded,
			Warning: fmt.Sprintf("Email is sending in background (timeout %s).", d.timeout),
			Err:     ErrNotificationTimeout,
		}
	}
}

func (d *NotificationDispatcher) send(ctx context.Context, msg models.MailMessage) error {
	start := time.Now()
	err := d.sender.Send(ctx, msg)
	metrics.ObserveDelivery(err, time.Since(start).Seconds())
	return err
}

func (d *NotificationDispatcher) failureOr(err error) DispatchResult {
	if err == nil {
		return DispatchResult{Outcome: OutcomeDelivered}
	}
	failure := &NotificationFailure{Endpoint: d.sender.Endpoint(), Err: err}
	return DispatchResult{Outcome: OutcomeFailed, Warning: failure.Error(), Err: failure}
}

// detachedContext keeps request values but drops its cancellation, so a
// delivery outlives the request that started it.
func detachedContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return context.WithoutCancel(ctx)
}
