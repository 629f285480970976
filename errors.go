package fnol

import "errors"

// Exported errors for library consumers.
var (
	// ErrNoDatabase indicates no database was configured.
	ErrNoDatabase = errors.New("fnol: no database configured")

	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = errors.New("fnol: client is closed")
)
