// Package decoder normalises inbound attachment descriptors and decodes
// their transport-encoded payloads.
package decoder

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
)

// ErrUndecodable indicates content that is not valid base64 in any accepted form.
var ErrUndecodable = errors.New("content is not base64")

// Descriptor is the canonical shape of one attachment in a submission.
type Descriptor struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
	Hint     string `json:"doc_type,omitempty"`
}

// Accepted key names, in preference order.
var (
	filenameKeys = []string{"filename", "name"}
	contentKeys  = []string{"content", "contentBytes"}
	hintKeys     = []string{"doc_type", "contentType"}
)

// NormalizeDescriptor converts a loosely keyed attachment object into a
// Descriptor, taking the first non-empty string for each accepted key.
func NormalizeDescriptor(raw map[string]any) Descriptor {
	return Descriptor{
		Filename: firstString(raw, filenameKeys),
		Content:  firstString(raw, contentKeys),
		Hint:     firstString(raw, hintKeys),
	}
}

// NormalizeDescriptors applies NormalizeDescriptor to each element.
func NormalizeDescriptors(raw []map[string]any) []Descriptor {
	out := make([]Descriptor, 0, len(raw))
	for _, r := range raw {
		out = append(out, NormalizeDescriptor(r))
	}
	return out
}

func firstString(raw map[string]any, keys []string) string {
	for _, k := range keys {
		if s, ok := raw[k].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// Attachment is a decoded attachment ready for OCR and upload.
type Attachment struct {
	Filename string
	Data     []byte
	MimeType string
	Hint     string
}

// Decoder turns descriptors into decoded attachments.
type Decoder struct {
	logger *slog.Logger
}

// NewDecoder creates a Decoder. A nil logger uses slog.Default().
func NewDecoder(logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{logger: logger}
}

// Decode decodes each descriptor in order. Descriptors missing a filename
// or content, or with undecodable content, are skipped. A filename seen
// earlier in the same call is skipped.
func (d *Decoder) Decode(ctx context.Context, descriptors []Descriptor) []Attachment {
	seen := make(map[string]struct{}, len(descriptors))
	out := make([]Attachment, 0, len(descriptors))

	for i, desc := range descriptors {
		if desc.Filename == "" || desc.Content == "" {
			d.logger.WarnContext(ctx, "attachment skipped: missing filename or content",
				slog.Int("index", i),
				slog.String("filename", desc.Filename),
			)
			continue
		}
		if _, dup := seen[desc.Filename]; dup {
			d.logger.InfoContext(ctx, "attachment skipped: duplicate filename in submission",
				slog.String("filename", desc.Filename),
			)
			continue
		}

		data, err := DecodeBase64(desc.Content)
		if err != nil {
			d.logger.WarnContext(ctx, "attachment skipped: undecodable content",
				slog.String("filename", desc.Filename),
				slog.String("error", err.Error()),
			)
			continue
		}

		seen[desc.Filename] = struct{}{}
		out = append(out, Attachment{
			Filename: desc.Filename,
			Data:     data,
			MimeType: MimeType(desc.Filename, desc.Hint),
			Hint:     desc.Hint,
		})
	}

	return out
}

// DecodeBase64 accepts standard or URL-safe base64, padded or raw.
// Whitespace, including line breaks from MIME encoders, is ignored.
func DecodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, s)

	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}
	for _, enc := range encodings {
		if data, err := enc.DecodeString(s); err == nil {
			return data, nil
		}
	}
	return nil, ErrUndecodable
}

// DefaultMimeType is used when nothing better is known.
const DefaultMimeType = "application/octet-stream"

var mimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".heic": "image/heic",
	".heif": "image/heif",
	".webp": "image/webp",
	".txt":  "text/plain",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".eml":  "message/rfc822",
	".msg":  "application/vnd.ms-outlook",
}

// MimeType determines the MIME type from the filename extension. When the
// extension is unknown and hint looks like a MIME type, hint is used.
func MimeType(filename, hint string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if t, ok := mimeTypes[ext]; ok {
		return t
	}
	if ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			if mt, _, err := mime.ParseMediaType(t); err == nil {
				return mt
			}
			return t
		}
	}
	if hint != "" {
		if mt, _, err := mime.ParseMediaType(hint); err == nil && strings.Contains(mt, "/") {
			return mt
		}
	}
	return DefaultMimeType
}
