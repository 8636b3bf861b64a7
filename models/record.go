package models

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Status is the review state of a submission.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Decision is a reviewer's verdict on a submission.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

var (
	ErrInvalidDecision = errors.New("invalid decision")
	ErrCommentRequired = errors.New("comment is required when rejecting")
)

// ParseDecision normalizes raw form input into a Decision.
func ParseDecision(raw string) (Decision, bool) {
	switch Decision(strings.ToLower(strings.TrimSpace(raw))) {
	case DecisionApproved:
		return DecisionApproved, true
	case DecisionRejected:
		return DecisionRejected, true
	}
	return "", false
}

// DecisionEvent is one immutable reviewer action.
type DecisionEvent struct {
	Timestamp     time.Time `json:"ts_utc"`
	Decision      Decision  `json:"decision"`
	Comment       string    `json:"comment"`
	ReviewerName  string    `json:"viewer_name"`
	ReviewerEmail string    `json:"viewer_email"`
	OriginAddress string    `json:"ip"`
}

// Validate checks the event before it may be appended to a record.
func (e DecisionEvent) Validate() error {
	if e.Decision != DecisionApproved && e.Decision != DecisionRejected {
		return ErrInvalidDecision
	}
	if e.Decision == DecisionRejected && strings.TrimSpace(e.Comment) == "" {
		return ErrCommentRequired
	}
	return nil
}

// Record is the review state of one uploaded document.
//
// Status is never stored independently: it is projected from the last
// element of Responses.
type Record struct {
	ID           string          `json:"token"`
	OriginalName string          `json:"original_name"`
	StoredName   string          `json:"stored_name"`
	CreatedAt    time.Time       `json:"created_utc"`
	Responses    []DecisionEvent `json:"responses"`
}

// CreatedAtPrecision is the finest creation time every record store keeps;
// the MySQL column is datetime(3).
const CreatedAtPrecision = time.Millisecond

// NewRecord returns a pending record with an empty history. createdAt is
// truncated to CreatedAtPrecision so it survives any store unchanged.
func NewRecord(id, originalName, storedName string, createdAt time.Time) *Record {
	return &Record{
		ID:           id,
		OriginalName: originalName,
		StoredName:   storedName,
		CreatedAt:    createdAt.UTC().Truncate(CreatedAtPrecision),
		Responses:    []DecisionEvent{},
	}
}

// Status returns the decision of the latest response, or pending.
func (r *Record) Status() Status {
	if r == nil || len(r.Responses) == 0 {
		return StatusPending
	}
	return Status(r.Responses[len(r.Responses)-1].Decision)
}

// DocumentRef is the location of the stored blob relative to the upload root.
func (r *Record) DocumentRef() string {
	return r.ID + "/" + r.StoredName
}

// AppendDecision appends ev to the history. A record that already carries a
// decision accepts further events; the latest one wins.
func (r *Record) AppendDecision(ev DecisionEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	ev.Timestamp = ev.Timestamp.UTC()
	r.Responses = append(r.Responses, ev)
	return nil
}

// Clone returns a deep copy so callers cannot mutate shared history.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	out.Responses = make([]DecisionEvent, len(r.Responses))
	copy(out.Responses, r.Responses)
	return &out
}

type recordJSON struct {
	ID           string          `json:"token"`
	OriginalName string          `json:"original_name"`
	StoredName   string          `json:"stored_name"`
	CreatedAt    time.Time       `json:"created_utc"`
	Status       Status          `json:"status"`
	Responses    []DecisionEvent `json:"responses"`
}

// MarshalJSON writes the projected status next to the history.
func (r Record) MarshalJSON() ([]byte, error) {
	responses := r.Responses
	if responses == nil {
		responses = []DecisionEvent{}
	}
	return json.Marshal(recordJSON{
		ID:           r.ID,
		OriginalName: r.OriginalName,
		StoredName:   r.StoredName,
		CreatedAt:    r.CreatedAt,
		Status:       r.Status(),
		Responses:    responses,
	})
}

// UnmarshalJSON ignores any stored status; it is recomputed from Responses.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.ID = raw.ID
	r.OriginalName = raw.OriginalName
	r.StoredName = raw.StoredName
	r.CreatedAt = raw.CreatedAt.UTC()
	r.Responses = raw.Responses
	if r.Responses == nil {
		r.Responses = []DecisionEvent{}
	}
	return nil
}
