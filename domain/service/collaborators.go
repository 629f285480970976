// Package service defines the narrow contracts the intake pipeline depends on.
package service

import (
	"context"

	"github.com/claimsdesk/fnol/domain/workitem"
)

// TextExtractor obtains plain text from an attachment. It never fails:
// unsupported content and upstream errors yield an empty string.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, mimeType string) string
}

// FieldExtractor turns email text and attachment text into extracted
// fields. Failures are reported as degraded fields, not errors.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, subject, body, attachmentText string) workitem.Fields
}

// DocumentClassifier assigns one label of the closed set to an attachment.
// hint is the caller-supplied document type, possibly empty.
type DocumentClassifier interface {
	Classify(ctx context.Context, text, filename, hint string) workitem.DocType
}

// ObjectStore stores attachment bytes and returns a durable URL.
// Writing an existing key overwrites it.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Locker serialises work on a key across concurrent submissions.
// The returned function releases the claim.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}
