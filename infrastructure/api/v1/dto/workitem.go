// Package dto holds the request and response bodies of the v1 API.
package dto

import (
	"time"

	"github.com/claimsdesk/fnol/domain/workitem"
)

// IntakeRequest is the body of POST /fnol.
type IntakeRequest struct {
	MessageID       *string          `json:"message_id"`
	Subject         string           `json:"subject"`
	Body            string           `json:"body"`
	ExtractedFields *workitem.Fields `json:"extracted_fields"`
	Attachments     []map[string]any `json:"attachments"`
}

// UpdateRequest is the body of PUT /fnol/{id}.
type UpdateRequest struct {
	ExtractedFields *workitem.Fields `json:"extracted_fields"`
	Status          *string          `json:"status"`
}

// WorkItemResponse is a work item with its attachments.
type WorkItemResponse struct {
	ID              int64                `json:"id"`
	MessageID       *string              `json:"message_id"`
	Tag             *string              `json:"tag"`
	Subject         string               `json:"subject"`
	Body            string               `json:"body"`
	ExtractedFields workitem.Fields      `json:"extracted_fields"`
	Status          string               `json:"status"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
	CompletedAt     *time.Time           `json:"completed_at"`
	Attachments     []AttachmentResponse `json:"attachments"`
}

// AttachmentResponse is one stored attachment.
type AttachmentResponse struct {
	ID         int64     `json:"id"`
	Filename   string    `json:"filename"`
	BlobURL    string    `json:"blob_url"`
	DocType    *string   `json:"doc_type"`
	MimeType   string    `json:"mime_type,omitempty"`
	FileSize   int64     `json:"file_size"`
	Uploader   string    `json:"uploaded_by,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// UploadResponse is the body returned by POST /attachments.
type UploadResponse struct {
	URL string `json:"url"`
}

// NewWorkItemResponse converts a hydrated work item.
func NewWorkItemResponse(record workitem.Record) WorkItemResponse {
	item := record.WorkItem()
	attachments := record.Attachments()

	resp := WorkItemResponse{
		ID:              item.ID(),
		MessageID:       optional(item.MessageID()),
		Tag:             optional(item.Tag()),
		Subject:         item.Subject(),
		Body:            item.Body(),
		ExtractedFields: item.Fields(),
		Status:          item.Status().String(),
		CreatedAt:       item.CreatedAt(),
		UpdatedAt:       item.UpdatedAt(),
		Attachments:     make([]AttachmentResponse, len(attachments)),
	}
	if completed := item.CompletedAt(); !completed.IsZero() {
		resp.CompletedAt = &completed
	}
	for i, a := range attachments {
		resp.Attachments[i] = AttachmentResponse{
			ID:         a.ID(),
			Filename:   a.Filename(),
			BlobURL:    a.BlobURL(),
			DocType:    optional(a.DocType().String()),
			MimeType:   a.MimeType(),
			FileSize:   a.FileSize(),
			Uploader:   a.Uploader(),
			UploadedAt: a.UploadedAt(),
		}
	}
	return resp
}

// NewWorkItemListResponse converts many hydrated work items.
func NewWorkItemListResponse(records []workitem.Record) []WorkItemResponse {
	result := make([]WorkItemResponse, len(records))
	for i, r := range records {
		result[i] = NewWorkItemResponse(r)
	}
	return result
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
