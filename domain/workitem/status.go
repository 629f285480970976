package workitem

import "strings"

// Status is the lifecycle tag of a work item. Values outside the
// recognised set are kept as-is.
type Status string

// Recognised status values.
const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusClosed    Status = "closed"
	StatusCompleted Status = "completed"
)

// ParseStatus trims the input and returns it as a Status.
func ParseStatus(s string) Status {
	return Status(strings.TrimSpace(s))
}

// String returns the status text.
func (s Status) String() string { return string(s) }

// IsEmpty reports whether no status is set.
func (s Status) IsEmpty() bool { return s == "" }

// IsFinished reports whether the status counts as processed for analytics.
func (s Status) IsFinished() bool {
	switch s {
	case StatusApproved, StatusClosed, StatusCompleted:
		return true
	}
	return false
}

// FinishedStatuses returns the statuses that count as processed.
func FinishedStatuses() []Status {
	return []Status{StatusApproved, StatusClosed, StatusCompleted}
}
