package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"proofok-api/models"
)

var testMessage = models.MailMessage{Subject: "[Proof] a.pdf -- APPROVED", Text: "plain", HTML: "<p>rich</p>"}

func TestParseDeliveryMode(t *testing.T) {
	cases := map[string]DeliveryMode{
		"":              DeliveryBoundedAsync,
		"async":         DeliveryBoundedAsync,
		"bounded-async": DeliveryBoundedAsync,
		"SYNC":          DeliverySynchronous,
		"synchronous":   DeliverySynchronous,
		"off":           DeliveryDisabled,
		"disabled":      DeliveryDisabled,
	}
	for raw, want := range cases {
		got, err := ParseDeliveryMode(raw)
		if err != nil || got != want {
			t.Fatalf("ParseDeliveryMode(%q) = %q, %v; want %q", raw, got, err, want)
		}
	}
	if _, err := ParseDeliveryMode("carrier-pigeon"); err == nil {
		t.Fatalf("expected unknown mode to fail")
	}
}

func TestNewNotificationDispatcherValidatesCollaborators(t *testing.T) {
	if _, err := NewNotificationDispatcher(DeliverySynchronous, nil, nil, time.Second); err == nil {
		t.Fatalf("expected synchronous mode without sender to fail")
	}
	if _, err := NewNotificationDispatcher(DeliveryBoundedAsync, &stubSender{}, nil, time.Second); err == nil {
		t.Fatalf("expected bounded-async mode without pool to fail")
	}
	if _, err := NewNotificationDispatcher(DeliveryDisabled, nil, nil, 0); err != nil {
		t.Fatalf("expected disabled mode to need nothing, got %v", err)
	}
}

func TestDispatchDisabledNeverCallsSender(t *testing.T) {
	sender := &stubSender{}
	d, err := NewNotificationDispatcher(DeliveryDisabled, sender, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 3; i++ {
		res := d.Dispatch(context.Background(), testMessage)
		if res.Warning != "" || res.Outcome != OutcomeSkipped {
			t.Fatalf("expected silent skip, got %+v", res)
		}
	}
	if got := sender.calls.Load(); got != 0 {
		t.Fatalf("expected 0 sender calls, got %d", got)
	}
}

func TestDispatchSynchronous(t *testing.T) {
	sender := &stubSender{}
	d, _ := NewNotificationDispatcher(DeliverySynchronous, sender, nil, 0)

	res := d.Dispatch(context.Background(), testMessage)
	if res.Outcome != OutcomeDelivered || res.Warning != "" {
		t.Fatalf("expected delivered without warning, got %+v", res)
	}

	sender.err = errors.New("535 authentication failed")
	res = d.Dispatch(context.Background(), testMessage)
	if res.Outcome != OutcomeFailed {
		t.Fatalf("expected failed outcome, got %+v", res)
	}
	if res.Warning != "Email send failed (smtp.test:587): 535 authentication failed" {
		t.Fatalf("unexpected warning: %q", res.Warning)
	}
	var failure *NotificationFailure
	if !errors.As(res.Err, &failure) || failure.Endpoint != "smtp.test:587" {
		t.Fatalf("expected NotificationFailure, got %v", res.Err)
	}
	if sender.calls.Load() != 2 {
		t.Fatalf("expected 2 sender calls, got %d", sender.calls.Load())
	}
}

func TestDispatchBoundedAsyncDeliveredInTime(t *testing.T) {
	pool := NewWorkerPool(2, 4)
	defer pool.Close()
	sender := &stubSender{}
	d, _ := NewNotificationDispatcher(DeliveryBoundedAsync, sender, pool, time.Second)

	res := d.Dispatch(context.Background(), testMessage)
	if res.Outcome != OutcomeDelivered || res.Warning != "" || res.Err != nil {
		t.Fatalf("expected delivered without warning, got %+v", res)
	}
}

func TestDispatchBoundedAsyncFailureBeforeTimeout(t *testing.T) {
	pool := NewWorkerPool(2, 4)
	defer pool.Close()
	sender := &stubSender{err: errors.New("dial tcp: connection refused")}
	d, _ := NewNotificationDispatcher(DeliveryBoundedAsync, sender, pool, time.Second)

	res := d.Dispatch(context.Background(), testMessage)
	if res.Outcome != OutcomeFailed {
		t.Fatalf("expected failed outcome, got %+v", res)
	}
	if !strings.Contains(res.Warning, "connection refused") || !strings.Contains(res.Warning, "smtp.test:587") {
		t.Fatalf("expected warning naming endpoint and cause, got %q", res.Warning)
	}
}

func TestDispatchBoundedAsyncTimeoutDetachesDelivery(t *testing.T) {
	pool := NewWorkerPool(2, 4)
	defer pool.Close()

	sender := &stubSender{release: make(chan struct{}), done: make(chan error, 1)}
	timeout := 30 * time.Millisecond
	d, _ := NewNotificationDispatcher(DeliveryBoundedAsync, sender, pool, timeout)

	ctx, cancel := context.WithCancel(context.Background())
	start := time.Now()
	res := d.Dispatch(ctx, testMessage)
	elapsed := time.Since(start)
	// the request finishes; the delivery must not be canceled with it
	cancel()

	if res.Outcome != OutcomeBackgrounded || !errors.Is(res.Err, ErrNotificationTimeout) {
		t.Fatalf("expected backgrounded timeout, got %+v", res)
	}
	if res.Warning != "Email is sending in background (timeout 30ms)." {
		t.Fatalf("unexpected warning: %q", res.Warning)
	}
	if elapsed < timeout || elapsed > timeout+500*time.Millisecond {
		t.Fatalf("expected to return after ~%s, took %s", timeout, elapsed)
	}

	close(sender.release)
	select {
	case err := <-sender.done:
		if err != nil {
			t.Fatalf("expected detached delivery to complete, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("detached delivery never completed")
	}
	if sender.calls.Load() != 1 {
		t.Fatalf("expected exactly one delivery attempt, got %d", sender.calls.Load())
	}
}

func TestDispatchIgnoresCanceledRequest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sender := &stubSender{}
	d, _ := NewNotificationDispatcher(DeliverySynchronous, sender, nil, 0)
	if res := d.Dispatch(ctx, testMessage); res.Outcome != OutcomeDelivered {
		t.Fatalf("expected synchronous delivery despite canceled request, got %+v", res)
	}
	if sender.calls.Load() != 1 {
		t.Fatalf("expected 1 sender call, got %d", sender.calls.Load())
	}

	pool := NewWorkerPool(2, 64)
	defer pool.Close()
	sender = &stubSender{}
	d, _ = NewNotificationDispatcher(DeliveryBoundedAsync, sender, pool, time.Second)

	const dispatches = 50
	for i := 0; i < dispatches; i++ {
		res := d.Dispatch(ctx, testMessage)
		if res.Outcome != OutcomeDelivered {
			t.Fatalf("dispatch %d: expected delivered despite canceled request, got %+v", i, res)
		}
	}
	if got := sender.calls.Load(); got != dispatches {
		t.Fatalf("expected %d sender calls, got %d", dispatches, got)
	}
}

func TestDispatchBoundedAsyncSaturatedPool(t *testing.T) {
	pool := NewWorkerPool(1, 0)
	block := make(chan struct{})
	defer func() {
		close(block)
		pool.Close()
	}()
	if err := pool.Submit(context.Background(), func() { <-block }); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	sender := &stubSender{}
	d, _ := NewNotificationDispatcher(DeliveryBoundedAsync, sender, pool, 20*time.Millisecond)

	res := d.Dispatch(context.Background(), testMessage)
	if res.Outcome != OutcomeFailed || !strings.Contains(res.Warning, "queue") {
		t.Fatalf("expected queue failure warning, got %+v", res)
	}
	if sender.calls.Load() != 0 {
		t.Fatalf("expected no delivery attempt, got %d", sender.calls.Load())
	}
}
