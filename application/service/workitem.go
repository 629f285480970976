package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claimsdesk/fnol/domain/query"
	"github.com/claimsdesk/fnol/domain/workitem"
)

// UpdateParams carries a partial work item update. Nil means unchanged.
type UpdateParams struct {
	Fields *workitem.Fields
	Status *string
}

// IsEmpty reports whether nothing would change.
func (p UpdateParams) IsEmpty() bool {
	return p.Fields == nil && p.Status == nil
}

// WorkItem provides work item listing and management.
type WorkItem struct {
	items       workitem.WorkItemStore
	attachments workitem.AttachmentStore
	logger      *slog.Logger
}

// NewWorkItem creates a new WorkItem service.
func NewWorkItem(items workitem.WorkItemStore, attachments workitem.AttachmentStore, logger *slog.Logger) *WorkItem {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkItem{
		items:       items,
		attachments: attachments,
		logger:      logger,
	}
}

// List returns work items newest first with their attachments.
func (s *WorkItem) List(ctx context.Context, options ...query.Option) ([]workitem.Record, error) {
	options = append(options, workitem.WithNewestFirst(), query.WithOrderDesc("id"))
	items, err := s.items.Find(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("find work items: %w", err)
	}
	return hydrateAll(ctx, s.attachments, items)
}

// Count returns the number of work items matching the options.
func (s *WorkItem) Count(ctx context.Context, options ...query.Option) (int64, error) {
	return s.items.Count(ctx, options...)
}

// Get returns one work item with its attachments.
func (s *WorkItem) Get(ctx context.Context, id int64) (workitem.Record, error) {
	item, err := s.items.FindOne(ctx, query.WithID(id))
	if err != nil {
		return workitem.Record{}, fmt.Errorf("get work item %d: %w", id, err)
	}
	return hydrate(ctx, s.attachments, item)
}

// Update replaces the fields and/or status of a work item.
func (s *WorkItem) Update(ctx context.Context, id int64, params UpdateParams) (workitem.Record, error) {
	var status workitem.Status
	if params.Status != nil {
		status = workitem.ParseStatus(*params.Status)
		if status.IsEmpty() {
			return workitem.Record{}, fmt.Errorf("%w: status cannot be empty", ErrValidation)
		}
	}

	item, err := s.items.FindOne(ctx, query.WithID(id))
	if err != nil {
		return workitem.Record{}, fmt.Errorf("get work item %d: %w", id, err)
	}

	if params.IsEmpty() {
		return hydrate(ctx, s.attachments, item)
	}

	if params.Fields != nil {
		item = item.WithFields(*params.Fields)
	}
	if params.Status != nil {
		item = item.WithStatus(status)
	}

	saved, err := s.items.Save(ctx, item)
	if err != nil {
		return workitem.Record{}, fmt.Errorf("save work item %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "work item updated",
		slog.Int64("work_item_id", id),
		slog.String("status", saved.Status().String()),
		slog.Bool("fields_replaced", params.Fields != nil),
	)

	return hydrate(ctx, s.attachments, saved)
}

// Delete removes a work item and its attachment rows. Blobs are left in
// the object store.
func (s *WorkItem) Delete(ctx context.Context, id int64) error {
	if _, err := s.items.FindOne(ctx, query.WithID(id)); err != nil {
		return fmt.Errorf("get work item %d: %w", id, err)
	}
	if err := s.items.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete work item %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "work item deleted", slog.Int64("work_item_id", id))
	return nil
}
