package v1

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/claimsdesk/fnol"
	"github.com/claimsdesk/fnol/application/service"
	"github.com/claimsdesk/fnol/domain/query"
	"github.com/claimsdesk/fnol/domain/workitem"
	"github.com/claimsdesk/fnol/infrastructure/api/middleware"
	"github.com/claimsdesk/fnol/infrastructure/api/v1/dto"
	"github.com/claimsdesk/fnol/infrastructure/decoder"
)

// MaxIntakeBodyBytes caps the intake request body, attachments included.
const MaxIntakeBodyBytes = 64 << 20

// FNOLRouter handles work item endpoints.
type FNOLRouter struct {
	client *fnol.Client
	logger *slog.Logger
}

// NewFNOLRouter creates a new FNOLRouter.
func NewFNOLRouter(client *fnol.Client) *FNOLRouter {
	return &FNOLRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for work item endpoints.
func (r *FNOLRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", r.Create)
	router.Get("/", r.List)
	router.Get("/{id}", r.Get)
	router.Put("/{id}", r.Update)
	router.Delete("/{id}", r.Delete)

	return router
}

// Create handles POST /api/v1/fnol.
func (r *FNOLRouter) Create(w http.ResponseWriter, req *http.Request) {
	var body dto.IntakeRequest
	if err := decodeBody(w, req, &body, MaxIntakeBodyBytes); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	params := service.IntakeParams{
		Subject:     body.Subject,
		Body:        body.Body,
		Fields:      body.ExtractedFields,
		Attachments: decoder.NormalizeDescriptors(body.Attachments),
	}
	if body.MessageID != nil {
		params.MessageID = *body.MessageID
	}

	record, err := r.client.Intake.Submit(req.Context(), params)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.NewWorkItemResponse(record))
}

// List handles GET /api/v1/fnol.
func (r *FNOLRouter) List(w http.ResponseWriter, req *http.Request) {
	var options []query.Option
	q := req.URL.Query()
	if status := workitem.ParseStatus(q.Get("status")); !status.IsEmpty() {
		options = append(options, workitem.WithStatus(status))
	}
	limit, err := optionalInt(q.Get("limit"), "limit")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	offset, err := optionalInt(q.Get("offset"), "offset")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	if limit > 0 {
		options = append(options, query.WithLimit(limit))
	}
	if offset > 0 {
		options = append(options, query.WithOffset(offset))
	}

	records, err := r.client.WorkItems.List(req.Context(), options...)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.NewWorkItemListResponse(records))
}

// Get handles GET /api/v1/fnol/{id}.
func (r *FNOLRouter) Get(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	record, err := r.client.WorkItems.Get(req.Context(), id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.NewWorkItemResponse(record))
}

// Update handles PUT /api/v1/fnol/{id}.
func (r *FNOLRouter) Update(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var body dto.UpdateRequest
	if err := decodeBody(w, req, &body, 1<<20); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	record, err := r.client.WorkItems.Update(req.Context(), id, service.UpdateParams{
		Fields: body.ExtractedFields,
		Status: body.Status,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.NewWorkItemResponse(record))
}

// Delete handles DELETE /api/v1/fnol/{id}.
func (r *FNOLRouter) Delete(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if err := r.client.WorkItems.Delete(req.Context(), id); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func decodeBody(w http.ResponseWriter, req *http.Request, v any, limit int64) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, limit))
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return middleware.NewAPIError(http.StatusRequestEntityTooLarge, "request body too large", nil)
		}
		if errors.Is(err, io.EOF) {
			return middleware.BadRequest("request body is empty", nil)
		}
		return middleware.BadRequest("invalid request body", err)
	}
	return nil
}

func pathID(req *http.Request) (int64, error) {
	raw := chi.URLParam(req, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, middleware.BadRequest("invalid work item id: "+raw, nil)
	}
	return id, nil
}

func optionalInt(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, middleware.BadRequest("invalid "+name+": "+raw, nil)
	}
	return n, nil
}
