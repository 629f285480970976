// Package jsonapi provides the JSON:API error document used for API failures.
package jsonapi

// MediaType is the JSON:API content type.
const MediaType = "application/vnd.api+json"

// Document represents a JSON:API top-level document.
// See: https://jsonapi.org/format/#document-structure
type Document struct {
	Data   any     `json:"data,omitempty"`
	Meta   *Meta   `json:"meta,omitempty"`
	Errors []Error `json:"errors,omitempty"`
}

// Meta holds non-standard meta-information about a document.
type Meta map[string]any

// Error represents a JSON:API error object.
// See: https://jsonapi.org/format/#error-objects
type Error struct {
	ID     string       `json:"id,omitempty"`
	Status string       `json:"status,omitempty"`
	Code   string       `json:"code,omitempty"`
	Title  string       `json:"title,omitempty"`
	Detail string       `json:"detail,omitempty"`
	Source *ErrorSource `json:"source,omitempty"`
	Meta   *Meta        `json:"meta,omitempty"`
}

// ErrorSource holds references to the source of an error.
type ErrorSource struct {
	Pointer   string `json:"pointer,omitempty"`
	Parameter string `json:"parameter,omitempty"`
	Header    string `json:"header,omitempty"`
}

// NewErrorResponse creates a JSON:API document with errors.
func NewErrorResponse(errors ...Error) *Document {
	return &Document{
		Errors: errors,
	}
}

// NewError creates a simple error with status, title and detail.
func NewError(status, title, detail string) Error {
	return Error{
		Status: status,
		Title:  title,
		Detail: detail,
	}
}
