package workitem

import (
	"errors"
	"time"
)

// ErrEmptyFilename indicates an attachment without a filename.
var ErrEmptyFilename = errors.New("attachment filename cannot be empty")

// Uploader values recorded on attachments.
const (
	UploaderIntake = "email-intake"
	UploaderManual = "manual-upload"
)

// Attachment is one file stored for a work item.
type Attachment struct {
	id         int64
	workItemID int64
	filename   string
	blobURL    string
	docType    DocType
	mimeType   string
	fileSize   int64
	uploader   string
	uploadedAt time.Time
}

// NewAttachment creates an attachment for an already-uploaded blob.
func NewAttachment(
	workItemID int64,
	filename, blobURL string,
	docType DocType,
	mimeType string,
	fileSize int64,
	uploader string,
) (Attachment, error) {
	if filename == "" {
		return Attachment{}, ErrEmptyFilename
	}
	return Attachment{
		workItemID: workItemID,
		filename:   filename,
		blobURL:    blobURL,
		docType:    docType,
		mimeType:   mimeType,
		fileSize:   fileSize,
		uploader:   uploader,
		uploadedAt: time.Now().UTC(),
	}, nil
}

// ReconstructAttachment rebuilds an Attachment from persistence.
func ReconstructAttachment(
	id, workItemID int64,
	filename, blobURL string,
	docType DocType,
	mimeType string,
	fileSize int64,
	uploader string,
	uploadedAt time.Time,
) Attachment {
	return Attachment{
		id:         id,
		workItemID: workItemID,
		filename:   filename,
		blobURL:    blobURL,
		docType:    docType,
		mimeType:   mimeType,
		fileSize:   fileSize,
		uploader:   uploader,
		uploadedAt: uploadedAt,
	}
}

// ID returns the surrogate key.
func (a Attachment) ID() int64 { return a.id }

// WorkItemID returns the owning work item.
func (a Attachment) WorkItemID() int64 { return a.workItemID }

// Filename returns the filename, unique per work item.
func (a Attachment) Filename() string { return a.filename }

// BlobURL returns the durable object store URL.
func (a Attachment) BlobURL() string { return a.blobURL }

// DocType returns the classification label, empty when unclassified.
func (a Attachment) DocType() DocType { return a.docType }

// MimeType returns the content type.
func (a Attachment) MimeType() string { return a.mimeType }

// FileSize returns the size in bytes.
func (a Attachment) FileSize() int64 { return a.fileSize }

// Uploader returns who stored the file.
func (a Attachment) Uploader() string { return a.uploader }

// UploadedAt returns the upload timestamp.
func (a Attachment) UploadedAt() time.Time { return a.uploadedAt }

// WithID returns a copy with the given ID (used after persistence).
func (a Attachment) WithID(id int64) Attachment {
	a.id = id
	return a
}
