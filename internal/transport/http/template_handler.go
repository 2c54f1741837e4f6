package httptransport

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"doctemplates/internal/domains"
	"doctemplates/internal/httpx"
	"doctemplates/internal/payload"

	"github.com/google/uuid"
)

type TemplateHandlers struct {
	service   TemplateServices
	maxUpload int64
}

type TemplateServices interface {
	ListTemplates() []*domains.Template
	SearchTemplates(query string) []*domains.Template
	GetTemplate(id uuid.UUID) (*domains.Template, error)
	CreateTemplate(ctx context.Context, create domains.TemplateCreate) (*domains.Template, error)
	ImportTemplate(ctx context.Context, data []byte) (*domains.Template, error)
	UpdateTemplate(ctx context.Context, id uuid.UUID, update domains.TemplateUpdate) (*domains.Template, error)
	ExportTemplate(ctx context.Context, id uuid.UUID) ([]byte, error)

	GetVersion(id uuid.UUID, tag string) (*domains.Template, *domains.TemplateVersion, error)
	CreateVersion(ctx context.Context, id uuid.UUID, create domains.TemplateVersionCreate) (*domains.TemplateVersion, error)
	ImportVersion(ctx context.Context, id uuid.UUID, data []byte) (*domains.TemplateVersion, error)
	UpdateVersion(ctx context.Context, id uuid.UUID, tag string, update domains.TemplateVersionUpdate) (*domains.TemplateVersion, error)
	LoadDocx(ctx context.Context, id uuid.UUID, tag string) ([]byte, error)
	LoadExamplePayload(ctx context.Context, id uuid.UUID, tag string) ([]byte, error)
	ExportVersion(ctx context.Context, id uuid.UUID, tag string) ([]byte, error)
	ValidatePayload(ctx context.Context, id uuid.UUID, tag string, incoming map[string]any) (payload.ValidationResult, error)
}

func NewTemplateHandlers(service TemplateServices, maxUpload int64) *TemplateHandlers {
	return &TemplateHandlers{
		service:   service,
		maxUpload: maxUpload,
	}
}

func (h *TemplateHandlers) ListTemplates(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	var templates []*domains.Template
	if query == "" {
		templates = h.service.ListTemplates()
	} else {
		templates = h.service.SearchTemplates(query)
	}
	httpx.JSON(w, http.StatusOK, NewTemplateResponses(templates))
}

func (h *TemplateHandlers) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.GetID(w, r)
	if !ok {
		return
	}
	template, err := h.service.GetTemplate(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewTemplateResponse(template))
}

func (h *TemplateHandlers) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	templateData, err := httpx.ReadBody[domains.TemplateCreate](r)
	if err != nil {
		slog.Error("CreateTemplate read template err", "err", err)
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(templateData.Title) == "" {
		httpx.Error(w, http.StatusBadRequest, "title is required")
		return
	}

	template, err := h.service.CreateTemplate(r.Context(), templateData)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logChange(r, "template created", "template_id", template.ID())
	httpx.JSON(w, http.StatusCreated, NewTemplateResponse(template))
}

func (h *TemplateHandlers) ImportTemplate(w http.ResponseWriter, r *http.Request) {
	data, ok := h.readArchive(w, r)
	if !ok {
		return
	}
	template, err := h.service.ImportTemplate(r.Context(), data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logChange(r, "template imported", "template_id", template.ID())
	httpx.JSON(w, http.StatusCreated, NewTemplateResponse(template))
}

func (h *TemplateHandlers) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.GetID(w, r)
	if !ok {
		return
	}
	update, err := httpx.ReadBody[domains.TemplateUpdate](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	template, err := h.service.UpdateTemplate(r.Context(), id, update)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logChange(r, "template updated", "template_id", template.ID())
	httpx.JSON(w, http.StatusOK, NewTemplateResponse(template))
}

func (h *TemplateHandlers) ExportTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.GetID(w, r)
	if !ok {
		return
	}
	data, err := h.service.ExportTemplate(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Attachment(w, r, httpx.ZipContentType, fmt.Sprintf("%s.zip", id), data)
}

// logChange records a successful write, with the token subject when the
// route is protected.
func logChange(r *http.Request, msg string, args ...any) {
	if sub, ok := httpx.SubjectFromContext(r.Context()); ok {
		args = append(args, "subject", sub)
	}
	slog.Info(msg, args...)
}

func Health(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, HealthResponse{Status: "App is healthy"})
}

// readArchive reads the zip upload from the "file" form field.
func (h *TemplateHandlers) readArchive(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	data, contentType, err := httpx.ReadFormFile(r, "file", h.maxUpload)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	if contentType != "" && contentType != httpx.ZipContentType && contentType != "application/x-zip-compressed" {
		httpx.Error(w, http.StatusBadRequest, "only .zip files are allowed")
		return nil, false
	}
	return data, true
}
