package persistence

import (
	"time"

	"gorm.io/datatypes"
)

// WorkItemModel represents a row of fnol_work_items.
type WorkItemModel struct {
	ID              int64             `gorm:"column:id;primaryKey;autoIncrement"`
	MessageID       *string           `gorm:"column:message_id;uniqueIndex:idx_fnol_work_items_message_id"`
	EmailSubject    string            `gorm:"column:email_subject;not null"`
	EmailBody       string            `gorm:"column:email_body;type:text;not null"`
	ExtractedFields datatypes.JSON    `gorm:"column:extracted_fields"`
	Status          string            `gorm:"column:status;default:pending;index"`
	Tag             *string           `gorm:"column:tag"`
	CreatedAt       time.Time         `gorm:"column:created_at;index"`
	UpdatedAt       time.Time         `gorm:"column:updated_at"`
	CompletedAt     *time.Time        `gorm:"column:completed_at"`
	Attachments     []AttachmentModel `gorm:"foreignKey:WorkItemID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name.
func (WorkItemModel) TableName() string { return "fnol_work_items" }

// AttachmentModel represents a row of attachments.
type AttachmentModel struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	WorkItemID int64     `gorm:"column:workitem_id;uniqueIndex:idx_attachments_workitem_filename,priority:1"`
	Filename   string    `gorm:"column:filename;uniqueIndex:idx_attachments_workitem_filename,priority:2"`
	BlobURL    string    `gorm:"column:blob_url"`
	DocType    *string   `gorm:"column:doc_type;index"`
	MimeType   *string   `gorm:"column:mime_type"`
	FileSize   int64     `gorm:"column:file_size"`
	Uploader   *string   `gorm:"column:uploader"`
	UploadedAt time.Time `gorm:"column:uploaded_at"`
}

// TableName returns the table name.
func (AttachmentModel) TableName() string { return "attachments" }
