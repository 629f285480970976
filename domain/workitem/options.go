package workitem

import "github.com/claimsdesk/fnol/domain/query"

// WithMessageID filters by the "message_id" column.
func WithMessageID(messageID string) Option {
	return query.WithCondition("message_id", messageID)
}

// WithStatus filters by the "status" column.
func WithStatus(status Status) Option {
	return query.WithCondition("status", string(status))
}

// WithWorkItemID filters attachments by the "workitem_id" column.
func WithWorkItemID(id int64) Option {
	return query.WithCondition("workitem_id", id)
}

// WithWorkItemIDIn filters attachments by the "workitem_id" column using IN.
func WithWorkItemIDIn(ids []int64) Option {
	return query.WithConditionIn("workitem_id", ids)
}

// WithFilename filters attachments by the "filename" column.
func WithFilename(filename string) Option {
	return query.WithCondition("filename", filename)
}

// WithNewestFirst orders work items by creation time, newest first.
func WithNewestFirst() Option {
	return query.WithOrderDesc("created_at")
}

// WithUploadOrder orders attachments by insertion.
func WithUploadOrder() Option {
	return query.WithOrderAsc("id")
}
