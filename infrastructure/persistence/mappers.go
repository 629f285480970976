package persistence

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/claimsdesk/fnol/domain/workitem"
	"gorm.io/datatypes"
)

// WorkItemMapper maps between domain WorkItem and persistence WorkItemModel.
type WorkItemMapper struct{}

// ToDomain converts a WorkItemModel to a domain WorkItem.
func (m WorkItemMapper) ToDomain(e WorkItemModel) workitem.WorkItem {
	fields, err := workitem.ParseFields(e.ExtractedFields)
	if err != nil {
		slog.Warn("stored extracted fields are not an object", "workitem_id", e.ID, "error", err)
	}

	var completedAt time.Time
	if e.CompletedAt != nil {
		completedAt = *e.CompletedAt
	}

	return workitem.ReconstructWorkItem(
		e.ID,
		derefString(e.MessageID),
		e.EmailSubject,
		e.EmailBody,
		fields,
		workitem.Status(e.Status),
		derefString(e.Tag),
		e.CreatedAt,
		e.UpdatedAt,
		completedAt,
	)
}

// ToModel converts a domain WorkItem to a WorkItemModel.
func (m WorkItemMapper) ToModel(w workitem.WorkItem) WorkItemModel {
	var extracted datatypes.JSON
	if !w.Fields().IsNull() {
		data, err := json.Marshal(w.Fields())
		if err == nil {
			extracted = datatypes.JSON(data)
		}
	}

	var completedAt *time.Time
	if !w.CompletedAt().IsZero() {
		t := w.CompletedAt()
		completedAt = &t
	}

	return WorkItemModel{
		ID:              w.ID(),
		MessageID:       optionalString(w.MessageID()),
		EmailSubject:    w.Subject(),
		EmailBody:       w.Body(),
		ExtractedFields: extracted,
		Status:          w.Status().String(),
		Tag:             optionalString(w.Tag()),
		CreatedAt:       w.CreatedAt(),
		UpdatedAt:       w.UpdatedAt(),
		CompletedAt:     completedAt,
	}
}

// AttachmentMapper maps between domain Attachment and persistence AttachmentModel.
type AttachmentMapper struct{}

// ToDomain converts an AttachmentModel to a domain Attachment.
func (m AttachmentMapper) ToDomain(e AttachmentModel) workitem.Attachment {
	return workitem.ReconstructAttachment(
		e.ID,
		e.WorkItemID,
		e.Filename,
		e.BlobURL,
		workitem.DocType(derefString(e.DocType)),
		derefString(e.MimeType),
		e.FileSize,
		derefString(e.Uploader),
		e.UploadedAt,
	)
}

// ToModel converts a domain Attachment to an AttachmentModel.
func (m AttachmentMapper) ToModel(a workitem.Attachment) AttachmentModel {
	return AttachmentModel{
		ID:         a.ID(),
		WorkItemID: a.WorkItemID(),
		Filename:   a.Filename(),
		BlobURL:    a.BlobURL(),
		DocType:    optionalString(a.DocType().String()),
		MimeType:   optionalString(a.MimeType()),
		FileSize:   a.FileSize(),
		Uploader:   optionalString(a.Uploader()),
		UploadedAt: a.UploadedAt(),
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
