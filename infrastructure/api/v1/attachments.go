package v1

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/claimsdesk/fnol"
	"github.com/claimsdesk/fnol/infrastructure/api/middleware"
	"github.com/claimsdesk/fnol/infrastructure/api/v1/dto"
)

// MaxUploadBytes caps a standalone attachment upload.
const MaxUploadBytes = 32 << 20

// AttachmentsRouter handles standalone attachment uploads.
type AttachmentsRouter struct {
	client *fnol.Client
	logger *slog.Logger
}

// NewAttachmentsRouter creates a new AttachmentsRouter.
func NewAttachmentsRouter(client *fnol.Client) *AttachmentsRouter {
	return &AttachmentsRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for attachment endpoints.
func (r *AttachmentsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", r.Upload)

	return router
}

// Upload handles POST /api/v1/attachments?workitem_id=N with a multipart "file".
func (r *AttachmentsRouter) Upload(w http.ResponseWriter, req *http.Request) {
	raw := req.URL.Query().Get("workitem_id")
	workItemID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || workItemID < 1 {
		middleware.WriteError(w, req, middleware.BadRequest("invalid workitem_id: "+raw, nil), r.logger)
		return
	}

	req.Body = http.MaxBytesReader(w, req.Body, MaxUploadBytes)
	file, header, err := req.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.WriteError(w, req, middleware.NewAPIError(http.StatusRequestEntityTooLarge, "file too large", nil), r.logger)
			return
		}
		middleware.WriteError(w, req, middleware.BadRequest("multipart field \"file\" is required", err), r.logger)
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		middleware.WriteError(w, req, middleware.BadRequest("read upload", err), r.logger)
		return
	}

	url, err := r.client.Attachments.Upload(req.Context(), workItemID, header.Filename, data)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.UploadResponse{URL: url})
}
