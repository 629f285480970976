package service

import (
	"context"
	"fmt"

	"github.com/claimsdesk/fnol/domain/workitem"
)

// hydrate loads the attachments of one work item.
func hydrate(ctx context.Context, attachments workitem.AttachmentStore, item workitem.WorkItem) (workitem.Record, error) {
	stored, err := attachments.Find(ctx, workitem.WithWorkItemID(item.ID()), workitem.WithUploadOrder())
	if err != nil {
		return workitem.Record{}, fmt.Errorf("find attachments: %w", err)
	}
	return workitem.NewRecord(item, stored), nil
}

// hydrateAll loads attachments for many work items with one query.
func hydrateAll(ctx context.Context, attachments workitem.AttachmentStore, items []workitem.WorkItem) ([]workitem.Record, error) {
	if len(items) == 0 {
		return []workitem.Record{}, nil
	}

	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.ID()
	}

	stored, err := attachments.Find(ctx, workitem.WithWorkItemIDIn(ids), workitem.WithUploadOrder())
	if err != nil {
		return nil, fmt.Errorf("find attachments: %w", err)
	}

	byItem := make(map[int64][]workitem.Attachment, len(items))
	for _, a := range stored {
		byItem[a.WorkItemID()] = append(byItem[a.WorkItemID()], a)
	}

	records := make([]workitem.Record, len(items))
	for i, item := range items {
		records[i] = workitem.NewRecord(item, byItem[item.ID()])
	}
	return records, nil
}
