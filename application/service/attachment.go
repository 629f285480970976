package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/claimsdesk/fnol/domain/query"
	"github.com/claimsdesk/fnol/domain/service"
	"github.com/claimsdesk/fnol/domain/workitem"
	"github.com/claimsdesk/fnol/infrastructure/blob"
	"github.com/claimsdesk/fnol/infrastructure/decoder"
)

// Attachment handles files uploaded outside the intake pipeline.
type Attachment struct {
	items       workitem.WorkItemStore
	attachments workitem.AttachmentStore
	objects     service.ObjectStore
	logger      *slog.Logger
}

// NewAttachment creates a new Attachment service.
func NewAttachment(
	items workitem.WorkItemStore,
	attachments workitem.AttachmentStore,
	objects service.ObjectStore,
	logger *slog.Logger,
) *Attachment {
	if logger == nil {
		logger = slog.Default()
	}
	return &Attachment{
		items:       items,
		attachments: attachments,
		objects:     objects,
		logger:      logger,
	}
}

// Upload stores a file for an existing work item and returns its URL.
// The row is left unclassified. Uploading a filename the work item already
// has replaces the blob and keeps the existing row.
func (s *Attachment) Upload(ctx context.Context, workItemID int64, filename string, data []byte) (string, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return "", fmt.Errorf("%w: %w", ErrValidation, workitem.ErrEmptyFilename)
	}

	exists, err := s.items.Exists(ctx, query.WithID(workItemID))
	if err != nil {
		return "", fmt.Errorf("check work item %d: %w", workItemID, err)
	}
	if !exists {
		return "", fmt.Errorf("%w: id %d", workitem.ErrNotFound, workItemID)
	}

	mimeType := decoder.MimeType(filename, "")
	url, err := s.objects.Upload(ctx, blob.Key(workItemID, filename), data, mimeType)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}

	attachment, err := workitem.NewAttachment(
		workItemID, filename, url, "", mimeType, int64(len(data)), workitem.UploaderManual,
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrValidation, err)
	}

	saved, created, err := s.attachments.Create(ctx, attachment)
	if err != nil {
		return "", fmt.Errorf("store attachment %s: %w", filename, err)
	}

	s.logger.InfoContext(ctx, "attachment uploaded",
		slog.Int64("work_item_id", workItemID),
		slog.String("filename", filename),
		slog.Int("bytes", len(data)),
		slog.Bool("new_row", created),
	)

	if !created {
		return saved.BlobURL(), nil
	}
	return url, nil
}
