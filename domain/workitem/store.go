package workitem

import (
	"context"

	"github.com/claimsdesk/fnol/domain/query"
)

// Option aliases the shared query option.
type Option = query.Option

// WorkItemStore persists work items.
type WorkItemStore interface {
	query.Store[WorkItem]
	// Create inserts a new work item. It returns ErrDuplicateMessage when the
	// message id is already taken.
	Create(ctx context.Context, item WorkItem) (WorkItem, error)
	// Save updates the mutable columns of an existing work item.
	Save(ctx context.Context, item WorkItem) (WorkItem, error)
	// Delete removes the work item and its attachment rows.
	Delete(ctx context.Context, id int64) error
}

// AttachmentStore persists attachment rows.
type AttachmentStore interface {
	query.Store[Attachment]
	// Create inserts the row unless (work item, filename) already exists,
	// in which case the stored row is returned with created=false.
	Create(ctx context.Context, attachment Attachment) (Attachment, bool, error)
}
