// Package workitem holds the FNOL work item aggregate and its attachments.
package workitem

import (
	"errors"
	"time"
)

// Domain errors.
var (
	ErrNotFound         = errors.New("work item not found")
	ErrEmptySubject     = errors.New("subject cannot be empty")
	ErrEmptyBody        = errors.New("body cannot be empty")
	ErrDuplicateMessage = errors.New("work item already exists for message id")
)

// WorkItem is one inbound FNOL submission.
type WorkItem struct {
	id          int64
	messageID   string
	subject     string
	body        string
	fields      Fields
	status      Status
	tag         string
	createdAt   time.Time
	updatedAt   time.Time
	completedAt time.Time
}

// NewWorkItem creates a pending work item. The tag is derived from the
// claim category of the fields.
func NewWorkItem(messageID, subject, body string, fields Fields) (WorkItem, error) {
	if subject == "" {
		return WorkItem{}, ErrEmptySubject
	}
	if body == "" {
		return WorkItem{}, ErrEmptyBody
	}
	now := time.Now().UTC()
	return WorkItem{
		messageID: messageID,
		subject:   subject,
		body:      body,
		fields:    fields,
		status:    StatusPending,
		tag:       fields.ClaimCategory(),
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructWorkItem rebuilds a WorkItem from persistence.
func ReconstructWorkItem(
	id int64,
	messageID, subject, body string,
	fields Fields,
	status Status,
	tag string,
	createdAt, updatedAt, completedAt time.Time,
) WorkItem {
	return WorkItem{
		id:          id,
		messageID:   messageID,
		subject:     subject,
		body:        body,
		fields:      fields,
		status:      status,
		tag:         tag,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
		completedAt: completedAt,
	}
}

// ID returns the surrogate key (0 before persistence).
func (w WorkItem) ID() int64 { return w.id }

// MessageID returns the dedup key, empty when absent.
func (w WorkItem) MessageID() string { return w.messageID }

// HasMessageID reports whether the work item carries a dedup key.
func (w WorkItem) HasMessageID() bool { return w.messageID != "" }

// Subject returns the email subject.
func (w WorkItem) Subject() string { return w.subject }

// Body returns the email body.
func (w WorkItem) Body() string { return w.body }

// Fields returns the extracted fields.
func (w WorkItem) Fields() Fields { return w.fields }

// Status returns the lifecycle status.
func (w WorkItem) Status() Status { return w.status }

// Tag returns the claim category captured at creation.
func (w WorkItem) Tag() string { return w.tag }

// CreatedAt returns the creation timestamp.
func (w WorkItem) CreatedAt() time.Time { return w.createdAt }

// UpdatedAt returns the last update timestamp.
func (w WorkItem) UpdatedAt() time.Time { return w.updatedAt }

// CompletedAt returns when the item first reached a finished status.
// The zero time means it has not.
func (w WorkItem) CompletedAt() time.Time { return w.completedAt }

// WithID returns a copy with the given ID (used after persistence).
func (w WorkItem) WithID(id int64) WorkItem {
	w.id = id
	return w
}

// WithFields returns a copy with replaced fields. The tag is not re-derived.
func (w WorkItem) WithFields(fields Fields) WorkItem {
	w.fields = fields
	w.updatedAt = time.Now().UTC()
	return w
}

// WithStatus returns a copy with the given status. The first transition
// into a finished status stamps the completion time.
func (w WorkItem) WithStatus(status Status) WorkItem {
	now := time.Now().UTC()
	w.status = status
	w.updatedAt = now
	if status.IsFinished() && w.completedAt.IsZero() {
		w.completedAt = now
	}
	return w
}
